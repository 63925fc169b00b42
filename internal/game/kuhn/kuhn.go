// Package kuhn implements the three-card Kuhn poker GameRules provider,
// the smallest complete instance of the solver's game contract.
package kuhn

import (
	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
)

const (
	Pass game.ActionID = iota
	Bet
)

// card values for the three Kuhn ranks; suit is arbitrary since Kuhn never
// compares suits.
const (
	Jack = iota
	Queen
	King
)

// Rules implements game.Rules for Kuhn poker: one private card per player,
// a single betting round, ante of 1 already reflected in the initial
// wagers, no chance nodes (the player's card is never a shared board card).
type Rules struct{}

var _ game.Rules = Rules{}

func (Rules) InitialState() game.GameState {
	return game.GameState{
		TotalWagers: [2]int{1, 1},
		PlayerToAct: cards.P0,
		LastAction:  game.NoAction,
	}
}

func (Rules) DeadMoney() int    { return 0 }
func (Rules) GameHandSize() int { return 1 }

func (Rules) NodeType(s game.GameState) game.NodeType {
	matched := s.TotalWagers[cards.P0] == s.TotalWagers[cards.P1]
	switch s.LastAction {
	case game.NoAction:
		return game.Decision
	case Pass:
		if !matched {
			// Wagers still differ after a Pass: that Pass declined to call a bet.
			return game.Fold
		}
		// Wagers matched: a Pass with the opponent now to act is a check,
		// awaiting their response; a Pass with P0 back to act is the second
		// consecutive check of the round.
		if s.PlayerToAct == cards.P0 {
			return game.Showdown
		}
		return game.Decision
	default: // Bet
		if matched {
			return game.Showdown
		}
		return game.Decision
	}
}

func (Rules) ValidActions(s game.GameState) []game.ActionID {
	return []game.ActionID{Pass, Bet}
}

func (Rules) StateAfterDecision(s game.GameState, a game.ActionID) game.GameState {
	next := s
	actor := s.PlayerToAct
	opp := actor.Opponent()
	if a == Bet {
		if s.TotalWagers[cards.P0] == s.TotalWagers[cards.P1] {
			next.TotalWagers[actor] = s.TotalWagers[opp] + 1
		} else {
			next.TotalWagers[actor] = s.TotalWagers[opp]
		}
	}
	next.LastAction = a
	next.PlayerToAct = opp
	return next
}

func (Rules) ChanceInfo(board cards.CardSet) game.ChanceInfo {
	return game.ChanceInfo{}
}

func kuhnHands() []cards.CardSet {
	return []cards.CardSet{
		cards.CardToSet(cards.IDFrom(Jack, cards.Clubs)),
		cards.CardToSet(cards.IDFrom(Queen, cards.Clubs)),
		cards.CardToSet(cards.IDFrom(King, cards.Clubs)),
	}
}

func (Rules) RangeHands(p cards.Player) []cards.CardSet {
	return kuhnHands()
}

func (Rules) InitialRangeWeights(p cards.Player) []float32 {
	return []float32{1, 1, 1}
}

func (Rules) ValidSortedHandRanks(p cards.Player, board cards.CardSet) []game.HandRankEntry {
	hands := kuhnHands()
	entries := make([]game.HandRankEntry, len(hands))
	for i, h := range hands {
		entries[i] = game.HandRankEntry{Rank: uint32(cards.ValueOf(cards.LowestCard(h))), Index: uint16(i)}
	}
	return entries
}

func (Rules) IndexAfterSuitSwap(p cards.Player, handIndex int, parent, child cards.Suit) int {
	return handIndex
}

func (Rules) ActionName(a game.ActionID, betOrRaiseSize int) string {
	if a == Bet {
		return "Bet"
	}
	return "Pass"
}
