package leduc

import (
	"testing"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
	"github.com/lox/dcfr-solver/internal/tree"
)

func TestTreeShapeWithIsomorphism(t *testing.T) {
	tr, err := tree.BuildSkeleton(Rules{}, game.Turn)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if len(tr.AllNodes) != 240 {
		t.Errorf("|allNodes| = %d, want 240", len(tr.AllNodes))
	}
	if got := tr.NumDecisionNodes(); got != 96 {
		t.Errorf("decision nodes = %d, want 96", got)
	}
}

func TestTreeShapeWithoutIsomorphism(t *testing.T) {
	tr, err := tree.BuildSkeleton(noIsomorphismRules{}, game.Turn)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if len(tr.AllNodes) != 465 {
		t.Errorf("|allNodes| = %d, want 465", len(tr.AllNodes))
	}
	if got := tr.NumDecisionNodes(); got != 186 {
		t.Errorf("decision nodes = %d, want 186", got)
	}
}

// noIsomorphismRules wraps Rules but reports no suit-equivalence classes, to
// exercise the tree builder's uncompressed chance fan-out (S2).
type noIsomorphismRules struct{ Rules }

func (noIsomorphismRules) ChanceInfo(board cards.CardSet) game.ChanceInfo {
	info := Rules{}.ChanceInfo(board)
	info.Isomorphisms = nil
	return info
}

func TestRoundOpensWithCheckOrBet(t *testing.T) {
	var r Rules
	s := r.InitialState()
	actions := r.ValidActions(s)
	if len(actions) != 2 || actions[0] != Check || actions[1] != Bet {
		t.Errorf("initial actions = %v, want [Check Bet]", actions)
	}
}

func TestBetDoublesAfterCommunityCard(t *testing.T) {
	var r Rules
	s := r.InitialState()
	s = r.StateAfterDecision(s, Check)
	s = r.StateAfterDecision(s, Check)
	if r.NodeType(s) != game.Chance {
		t.Fatalf("Check,Check should deal the community card")
	}

	// Simulate what the tree builder does at a chance node: deal a card,
	// advance street, reset to P0 to act.
	s.Board = cards.CardToSet(cards.IDFrom(jackValue, suitA))
	s.CurrentStreet = game.River
	s.PlayerToAct = cards.P0
	s.LastAction = game.NoAction

	s = r.StateAfterDecision(s, Bet)
	if s.TotalWagers[cards.P0] != 5 {
		t.Errorf("post-community bet wager = %d, want 1+4=5", s.TotalWagers[cards.P0])
	}
}
