// Package leduc implements the Leduc hold'em GameRules provider: a
// six-card deck (two suits of Jack/Queen/King), one private card per
// player, a single community card dealt after a pre-community betting
// round, and bets that double after the community card lands.
package leduc

import (
	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
)

const (
	Fold game.ActionID = iota
	Check
	Call
	Bet
	Raise
)

const (
	jackValue = iota
	queenValue
	kingValue
)

// Leduc's deck carries only two suits; their equivalence class is the
// entire source of the game's suit-isomorphism compression.
const (
	suitA = cards.Hearts
	suitB = cards.Spades
)

type Rules struct{}

var _ game.Rules = Rules{}

func hands() []cards.CardSet {
	return []cards.CardSet{
		cards.CardToSet(cards.IDFrom(jackValue, suitA)),
		cards.CardToSet(cards.IDFrom(jackValue, suitB)),
		cards.CardToSet(cards.IDFrom(queenValue, suitA)),
		cards.CardToSet(cards.IDFrom(queenValue, suitB)),
		cards.CardToSet(cards.IDFrom(kingValue, suitA)),
		cards.CardToSet(cards.IDFrom(kingValue, suitB)),
	}
}

func (Rules) InitialState() game.GameState {
	return game.GameState{
		TotalWagers:   [2]int{1, 1},
		PlayerToAct:   cards.P0,
		LastAction:    game.NoAction,
		CurrentStreet: game.Turn,
	}
}

func (Rules) DeadMoney() int    { return 0 }
func (Rules) GameHandSize() int { return 1 }

func (Rules) NodeType(s game.GameState) game.NodeType {
	switch s.LastAction {
	case game.NoAction:
		return game.Decision
	case Fold:
		return game.Fold
	case Check:
		// playerToAct == P0 means the actor who just checked was P1: the
		// street is over (chance on the turn, showdown on the river).
		if s.PlayerToAct == cards.P0 {
			if s.CurrentStreet == game.Turn {
				return game.Chance
			}
			return game.Showdown
		}
		return game.Decision
	case Call:
		if s.CurrentStreet == game.Turn {
			return game.Chance
		}
		return game.Showdown
	case Bet, Raise:
		return game.Decision
	default:
		return game.Fold
	}
}

func (Rules) ValidActions(s game.GameState) []game.ActionID {
	switch s.LastAction {
	case game.NoAction, Check:
		return []game.ActionID{Check, Bet}
	case Bet:
		return []game.ActionID{Fold, Call, Raise}
	case Raise:
		return []game.ActionID{Fold, Call}
	default:
		return nil
	}
}

func (Rules) StateAfterDecision(s game.GameState, a game.ActionID) game.GameState {
	next := s
	next.PlayerToAct = s.PlayerToAct.Opponent()
	next.LastAction = a

	betAmount := 2
	if s.CurrentStreet != game.Turn {
		betAmount = 4
	}

	switch a {
	case Fold, Check:
	case Call, Bet:
		next.TotalWagers[s.PlayerToAct] += betAmount
	case Raise:
		next.TotalWagers[s.PlayerToAct] += 2 * betAmount
	}
	return next
}

func (Rules) ChanceInfo(board cards.CardSet) game.ChanceInfo {
	var avail cards.CardSet
	for _, h := range hands() {
		avail |= h
	}
	avail &^= board
	return game.ChanceInfo{
		Available:    avail,
		Isomorphisms: []game.SuitEquivalenceClass{{suitA, suitB}},
	}
}

func (Rules) RangeHands(p cards.Player) []cards.CardSet {
	return hands()
}

func (Rules) InitialRangeWeights(p cards.Player) []float32 {
	return []float32{1, 1, 1, 1, 1, 1}
}

func (Rules) ValidSortedHandRanks(p cards.Player, board cards.CardSet) []game.HandRankEntry {
	const (
		jackHigh = iota
		queenHigh
		kingHigh
		pairOfJacks
		pairOfQueens
		pairOfKings
	)
	boardValue := cards.ValueOf(cards.LowestCard(board))

	switch boardValue {
	case jackValue:
		return []game.HandRankEntry{
			{Rank: queenHigh, Index: 2}, {Rank: queenHigh, Index: 3},
			{Rank: kingHigh, Index: 4}, {Rank: kingHigh, Index: 5},
			{Rank: pairOfJacks, Index: 0}, {Rank: pairOfJacks, Index: 1},
		}
	case queenValue:
		return []game.HandRankEntry{
			{Rank: jackHigh, Index: 0}, {Rank: jackHigh, Index: 1},
			{Rank: kingHigh, Index: 4}, {Rank: kingHigh, Index: 5},
			{Rank: pairOfQueens, Index: 2}, {Rank: pairOfQueens, Index: 3},
		}
	default: // kingValue
		return []game.HandRankEntry{
			{Rank: jackHigh, Index: 0}, {Rank: jackHigh, Index: 1},
			{Rank: queenHigh, Index: 2}, {Rank: queenHigh, Index: 3},
			{Rank: pairOfKings, Index: 4}, {Rank: pairOfKings, Index: 5},
		}
	}
}

// IndexAfterSuitSwap relabels the single card in hand handIndex by swapping
// parent and child suits and returns the index of the resulting hand.
func (Rules) IndexAfterSuitSwap(p cards.Player, handIndex int, parent, child cards.Suit) int {
	hs := hands()
	swapped := swapSuit(hs[handIndex], parent, child)
	for i, h := range hs {
		if h == swapped {
			return i
		}
	}
	return handIndex
}

func swapSuit(hand cards.CardSet, a, b cards.Suit) cards.CardSet {
	c := cards.LowestCard(hand)
	v := cards.ValueOf(c)
	switch cards.SuitOf(c) {
	case a:
		return cards.CardToSet(cards.IDFrom(v, b))
	case b:
		return cards.CardToSet(cards.IDFrom(v, a))
	default:
		return hand
	}
}

func (Rules) ActionName(a game.ActionID, betOrRaiseSize int) string {
	switch a {
	case Fold:
		return "Fold"
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Bet:
		return "Bet"
	case Raise:
		return "Raise"
	default:
		return "???"
	}
}
