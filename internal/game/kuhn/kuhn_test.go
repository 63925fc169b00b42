package kuhn

import (
	"testing"

	"github.com/lox/dcfr-solver/internal/game"
	"github.com/lox/dcfr-solver/internal/tree"
)

func TestTreeShape(t *testing.T) {
	tr, err := tree.BuildSkeleton(Rules{}, game.Flop)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if len(tr.AllNodes) != 9 {
		t.Errorf("|allNodes| = %d, want 9", len(tr.AllNodes))
	}
	if got := tr.NumDecisionNodes(); got != 4 {
		t.Errorf("decision nodes = %d, want 4", got)
	}
}

func TestRootIsDecision(t *testing.T) {
	var r Rules
	s := r.InitialState()
	if r.NodeType(s) != game.Decision {
		t.Fatalf("initial state should be a decision node")
	}
	if s.PlayerToAct != 0 {
		t.Fatalf("P0 acts first")
	}
}

func TestPassPassIsShowdown(t *testing.T) {
	var r Rules
	s := r.InitialState()
	s = r.StateAfterDecision(s, Pass)
	s = r.StateAfterDecision(s, Pass)
	if r.NodeType(s) != game.Showdown {
		t.Errorf("Pass,Pass should reach showdown")
	}
}

func TestBetPassIsFold(t *testing.T) {
	var r Rules
	s := r.InitialState()
	s = r.StateAfterDecision(s, Bet)
	s = r.StateAfterDecision(s, Pass)
	if r.NodeType(s) != game.Fold {
		t.Errorf("Bet,Pass should fold")
	}
	if s.TotalWagers[0] != 2 || s.TotalWagers[1] != 1 {
		t.Errorf("wagers after Bet,Pass = %v, want [2 1]", s.TotalWagers)
	}
}

func TestPassBetBetIsShowdownWithMatchedWagers(t *testing.T) {
	var r Rules
	s := r.InitialState()
	s = r.StateAfterDecision(s, Pass)
	s = r.StateAfterDecision(s, Bet)
	s = r.StateAfterDecision(s, Bet)
	if r.NodeType(s) != game.Showdown {
		t.Errorf("Pass,Bet,Bet should reach showdown")
	}
	if s.TotalWagers[0] != 2 || s.TotalWagers[1] != 2 {
		t.Errorf("wagers after Pass,Bet,Bet = %v, want [2 2]", s.TotalWagers)
	}
}
