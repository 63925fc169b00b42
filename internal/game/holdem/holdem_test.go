package holdem

import (
	"testing"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
)

func mustCards(t *testing.T, s string) cards.CardSet {
	t.Helper()
	set, err := cards.ParseCardSet(s)
	if err != nil {
		t.Fatalf("ParseCardSet(%q): %v", s, err)
	}
	return set
}

// S4: a rainbow flop has zero non-trivial suit isomorphism classes, and
// that stays true after a card of a fourth suit lands on the turn.
func TestS4RainbowFlopNoIsomorphism(t *testing.T) {
	board := mustCards(t, "Ah,7c,2s")
	r := New(Settings{Board: board, UseIsomorphism: true})

	info := r.ChanceInfo(board)
	if got := cards.SetSize(info.Available); got != 49 {
		t.Errorf("root |available| = %d, want 49", got)
	}
	if len(info.Isomorphisms) != 0 {
		t.Errorf("root isomorphisms = %v, want none", info.Isomorphisms)
	}

	river := board | mustCards(t, "3d")
	info = r.ChanceInfo(river)
	if got := cards.SetSize(info.Available); got != 48 {
		t.Errorf("river |available| = %d, want 48", got)
	}
	if len(info.Isomorphisms) != 0 {
		t.Errorf("river isomorphisms = %v, want none", info.Isomorphisms)
	}
}

// S5: a monotone flop groups the three suits absent from the board; the
// class persists through a same-suit turn and shrinks after an off-suit turn.
func TestS5MonotoneFlopIsomorphism(t *testing.T) {
	board := mustCards(t, "Ah,7h,2h")
	r := New(Settings{Board: board, UseIsomorphism: true})

	info := r.ChanceInfo(board)
	wantClass := func(classes []game.SuitEquivalenceClass, size int) bool {
		for _, c := range classes {
			if len(c) == size {
				return true
			}
		}
		return false
	}
	if len(info.Isomorphisms) != 1 || !wantClass(info.Isomorphisms, 3) {
		t.Fatalf("root isomorphisms = %v, want one class of size 3", info.Isomorphisms)
	}

	heartTurn := board | mustCards(t, "3h")
	info = r.ChanceInfo(heartTurn)
	if len(info.Isomorphisms) != 1 || !wantClass(info.Isomorphisms, 3) {
		t.Fatalf("heart-turn isomorphisms = %v, want class still size 3", info.Isomorphisms)
	}

	diamondTurn := board | mustCards(t, "3d")
	info = r.ChanceInfo(diamondTurn)
	if len(info.Isomorphisms) != 1 || !wantClass(info.Isomorphisms, 2) {
		t.Fatalf("diamond-turn isomorphisms = %v, want class shrink to size 2", info.Isomorphisms)
	}
}

// S6: percent-of-pot bet/raise sizing with ceiling rounding.
func TestS6BetAndRaiseRounding(t *testing.T) {
	settings := Settings{
		Board:          mustCards(t, "Ah,7c,2s"),
		StartingWager:  12,
		DeadMoney:      3,
		EffectiveStack: 1000,
	}
	settings.Sizing[cards.P0][game.Flop] = StreetSizing{BetSizes: []int{33, 100, 150}, RaiseSizes: []int{50, 100}}
	settings.Sizing[cards.P1][game.Flop] = StreetSizing{BetSizes: []int{33, 100, 150}, RaiseSizes: []int{50, 100}}
	r := New(settings)

	s := r.InitialState()
	s = r.StateAfterDecision(s, Bet0) // 33% of pot 27 (wagers+dead) -> ceil(0.33*27)=9
	if s.TotalWagers != [2]int{21, 12} {
		t.Errorf("wagers after 33%% bet = %v, want [21 12]", s.TotalWagers)
	}

	s = r.StateAfterDecision(s, Raise0) // 50% raise
	if s.TotalWagers != [2]int{21, 44} {
		t.Errorf("wagers after 50%% raise = %v, want [21 44]", s.TotalWagers)
	}

	s = r.StateAfterDecision(s, Call)
	if s.TotalWagers != [2]int{44, 44} {
		t.Errorf("wagers after call = %v, want [44 44]", s.TotalWagers)
	}
}

// S7: folding adds no further wagers.
func TestS7FoldAddsNoWagers(t *testing.T) {
	settings := Settings{
		Board:          mustCards(t, "Ah,7c,2s"),
		StartingWager:  12,
		EffectiveStack: 1000,
	}
	r := New(settings)
	s := r.InitialState()
	s = r.StateAfterDecision(s, Check)
	s = r.StateAfterDecision(s, Fold)
	if s.TotalWagers != [2]int{12, 12} {
		t.Errorf("wagers after Check,Fold = %v, want [12 12]", s.TotalWagers)
	}
	if r.NodeType(s) != game.Fold {
		t.Errorf("Check,Fold should be a fold terminal")
	}
}

// S8: a bet sized to reach or exceed the effective stack is not offered.
func TestS8OverStackBetElided(t *testing.T) {
	settings := Settings{
		Board:          mustCards(t, "Ah,7c,2s"),
		StartingWager:  12,
		EffectiveStack: 20, // a 33% bet of pot 24 -> ceil(7.92)=8, wager 20 == stack: elided
	}
	settings.Sizing[cards.P0][game.Flop] = StreetSizing{BetSizes: []int{33}}
	r := New(settings)

	s := r.InitialState()
	actions := r.ValidActions(s)
	for _, a := range actions {
		if a == Bet0 {
			t.Fatalf("Bet33 should be elided when it reaches the effective stack, got actions %v", actions)
		}
	}
}
