// Package holdem implements the No-Limit Hold'em GameRules provider:
// configurable starting board/street, percent-of-pot bet and raise sizing
// per street and position, an effective-stack cap, and suit-isomorphism
// detection driven by the board's per-suit value footprint.
package holdem

import (
	"sort"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/evaluator"
	"github.com/lox/dcfr-solver/internal/game"
)

const (
	Fold game.ActionID = iota
	Check
	Call
	Bet0
	Bet1
	Bet2
	Raise0
	Raise1
	Raise2
)

// StreetSizing lists the percent-of-pot bet and raise sizes offered on one
// street, for one player.
type StreetSizing struct {
	BetSizes   []int
	RaiseSizes []int
}

// RangeHand is one weighted two-card combo in a player's starting range.
type RangeHand struct {
	Hand   cards.CardSet
	Weight float32
}

// Settings configures one Hold'em instance: the starting board/street,
// both players' ranges, betting geometry, and stack depth.
type Settings struct {
	Board          cards.CardSet
	Ranges         [2][]RangeHand
	StartingWager  int
	EffectiveStack int
	DeadMoney      int
	// Sizing[player][street] holds that player's bet/raise percentages on
	// that street; street indexes as game.Flop=0, game.Turn=1, game.River=2.
	Sizing [2][3]StreetSizing
	// UseIsomorphism disables suit-isomorphism detection when false, forcing
	// every suit to be dealt and evaluated as its own distinct chance child.
	UseIsomorphism bool
}

type Rules struct {
	settings Settings
}

func New(settings Settings) Rules {
	return Rules{settings: settings}
}

var _ game.Rules = Rules{}

func (r Rules) sizingFor(p cards.Player, street game.Street) StreetSizing {
	return r.settings.Sizing[p][street]
}

func isBet(a game.ActionID) bool   { return a >= Bet0 && a <= Bet2 }
func isRaise(a game.ActionID) bool { return a >= Raise0 && a <= Raise2 }

func (r Rules) InitialState() game.GameState {
	var street game.Street
	switch cards.SetSize(r.settings.Board) {
	case 3:
		street = game.Flop
	case 4:
		street = game.Turn
	default:
		street = game.River
	}
	return game.GameState{
		Board:                r.settings.Board,
		TotalWagers:          [2]int{r.settings.StartingWager, r.settings.StartingWager},
		DeadMoney:            r.settings.DeadMoney,
		PlayerToAct:          cards.P0,
		LastAction:           game.NoAction,
		CurrentStreet:        street,
		PreviousStreetsWager: r.settings.StartingWager,
	}
}

func (r Rules) DeadMoney() int    { return r.settings.DeadMoney }
func (r Rules) GameHandSize() int { return 2 }

func (r Rules) NodeType(s game.GameState) game.NodeType {
	switch {
	case s.LastAction == game.NoAction:
		return game.Decision
	case s.LastAction == Fold:
		return game.Fold
	case s.LastAction == Check:
		if s.PlayerToAct == cards.P0 {
			if s.CurrentStreet == game.River {
				return game.Showdown
			}
			return game.Chance
		}
		return game.Decision
	case s.LastAction == Call:
		if s.CurrentStreet == game.River {
			return game.Showdown
		}
		return game.Chance
	default: // Bet/Raise
		return game.Decision
	}
}

func (r Rules) ValidActions(s game.GameState) []game.ActionID {
	switch {
	case s.LastAction == game.NoAction, s.LastAction == Check:
		actions := []game.ActionID{Check}
		return append(actions, r.validBets(s)...)
	case isBet(s.LastAction), isRaise(s.LastAction):
		actions := []game.ActionID{Fold, Call}
		return append(actions, r.validRaises(s)...)
	default:
		return nil
	}
}

func (r Rules) validBets(s game.GameState) []game.ActionID {
	sizing := r.sizingFor(s.PlayerToAct, s.CurrentStreet)
	var out []game.ActionID
	for i, pct := range sizing.BetSizes {
		if _, ok := tryWagersAfterBet(s.TotalWagers, s.PlayerToAct, pct, r.settings.EffectiveStack, r.settings.DeadMoney); ok {
			out = append(out, Bet0+game.ActionID(i))
		}
	}
	return out
}

func (r Rules) validRaises(s game.GameState) []game.ActionID {
	sizing := r.sizingFor(s.PlayerToAct, s.CurrentStreet)
	var out []game.ActionID
	for i, pct := range sizing.RaiseSizes {
		if _, ok := tryWagersAfterRaise(s.TotalWagers, s.PlayerToAct, pct, r.settings.EffectiveStack, r.settings.DeadMoney); ok {
			out = append(out, Raise0+game.ActionID(i))
		}
	}
	return out
}

// areWagersValid rejects wagers that would risk more than either player has
// behind; exact equality is reserved for a true all-in and is not offered
// as a sized bet or raise.
func areWagersValid(wagers [2]int, effectiveStack int) bool {
	return wagers[0] < effectiveStack && wagers[1] < effectiveStack
}

// potSizeFor returns the size of the pot a percent-of-pot bet is computed
// against: both already-matched wagers plus any dead money already in the
// middle.
func potSizeFor(matchedWager, deadMoney int) int {
	return matchedWager*2 + deadMoney
}

func tryWagersAfterBet(old [2]int, bettor cards.Player, pct, effectiveStack, deadMoney int) ([2]int, bool) {
	betAmount := (potSizeFor(old[0], deadMoney)*pct + 99) / 100
	next := old
	next[bettor] += betAmount
	return next, areWagersValid(next, effectiveStack)
}

func tryWagersAfterRaise(old [2]int, raiser cards.Player, pct, effectiveStack, deadMoney int) ([2]int, bool) {
	opp := raiser.Opponent()
	oldRequired := old[opp] - old[raiser]
	// Match the current bet first, then bet pct on top of that amount.
	matched := [2]int{old[opp], old[opp]}
	next, ok := tryWagersAfterBet(matched, raiser, pct, effectiveStack, deadMoney)
	if !ok {
		return next, false
	}
	newRequired := next[raiser] - next[opp]
	if newRequired >= oldRequired && areWagersValid(next, effectiveStack) {
		return next, true
	}
	return next, false
}

func (r Rules) StateAfterDecision(s game.GameState, a game.ActionID) game.GameState {
	next := s
	actor := s.PlayerToAct
	next.PlayerToAct = actor.Opponent()
	next.LastAction = a

	switch {
	case a == Fold, a == Check:
	case a == Call:
		next.TotalWagers[actor] = s.TotalWagers[actor.Opponent()]
	case isBet(a):
		idx := int(a - Bet0)
		pct := r.sizingFor(actor, s.CurrentStreet).BetSizes[idx]
		wagers, _ := tryWagersAfterBet(s.TotalWagers, actor, pct, r.settings.EffectiveStack, r.settings.DeadMoney)
		next.TotalWagers = wagers
	case isRaise(a):
		idx := int(a - Raise0)
		pct := r.sizingFor(actor, s.CurrentStreet).RaiseSizes[idx]
		wagers, _ := tryWagersAfterRaise(s.TotalWagers, actor, pct, r.settings.EffectiveStack, r.settings.DeadMoney)
		next.TotalWagers = wagers
	}
	return next
}

func (r Rules) ChanceInfo(board cards.CardSet) game.ChanceInfo {
	info := game.ChanceInfo{Available: cards.FullDeck &^ board}
	if r.settings.UseIsomorphism {
		info.Isomorphisms = isomorphismClasses(board)
	}
	return info
}

// isomorphismClasses groups suits by the set of ranks they contribute to
// board; suits with an identical (possibly empty) rank footprint produce
// isomorphic subtrees under a suit permutation.
func isomorphismClasses(board cards.CardSet) []game.SuitEquivalenceClass {
	var footprint [4]uint16
	tmp := board
	for tmp != 0 {
		c, rest := cards.PopLowest(tmp)
		tmp = rest
		footprint[cards.SuitOf(c)] |= 1 << uint(cards.ValueOf(c))
	}
	groups := make(map[uint16][]cards.Suit)
	for s := cards.Suit(0); s < 4; s++ {
		groups[footprint[s]] = append(groups[footprint[s]], s)
	}
	var classes []game.SuitEquivalenceClass
	for _, g := range groups {
		if len(g) >= 2 {
			classes = append(classes, game.SuitEquivalenceClass(g))
		}
	}
	return classes
}

func (r Rules) RangeHands(p cards.Player) []cards.CardSet {
	hands := make([]cards.CardSet, len(r.settings.Ranges[p]))
	for i, rh := range r.settings.Ranges[p] {
		hands[i] = rh.Hand
	}
	return hands
}

func (r Rules) InitialRangeWeights(p cards.Player) []float32 {
	weights := make([]float32, len(r.settings.Ranges[p]))
	for i, rh := range r.settings.Ranges[p] {
		weights[i] = rh.Weight
	}
	return weights
}

func setToCards(s cards.CardSet) []cards.CardID {
	out := make([]cards.CardID, 0, cards.SetSize(s))
	for s != 0 {
		var c cards.CardID
		c, s = cards.PopLowest(s)
		out = append(out, c)
	}
	return out
}

func (r Rules) ValidSortedHandRanks(p cards.Player, board cards.CardSet) []game.HandRankEntry {
	boardCards := setToCards(board)
	hands := r.settings.Ranges[p]
	entries := make([]game.HandRankEntry, 0, len(hands))
	for i, rh := range hands {
		if !cards.Disjoint(rh.Hand, board) {
			continue
		}
		combined := append(append([]cards.CardID(nil), boardCards...), setToCards(rh.Hand)...)
		rank := evaluator.BestRank(combined)
		entries = append(entries, game.HandRankEntry{Rank: uint32(rank), Index: uint16(i)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	return entries
}

func (r Rules) IndexAfterSuitSwap(p cards.Player, handIndex int, parent, child cards.Suit) int {
	hands := r.settings.Ranges[p]
	swapped := swapSuitInSet(hands[handIndex].Hand, parent, child)
	for i, rh := range hands {
		if rh.Hand == swapped {
			return i
		}
	}
	return handIndex
}

func swapSuitInSet(hand cards.CardSet, a, b cards.Suit) cards.CardSet {
	var out cards.CardSet
	for hand != 0 {
		var c cards.CardID
		c, hand = cards.PopLowest(hand)
		suit := cards.SuitOf(c)
		switch suit {
		case a:
			out |= cards.CardToSet(cards.IDFrom(cards.ValueOf(c), b))
		case b:
			out |= cards.CardToSet(cards.IDFrom(cards.ValueOf(c), a))
		default:
			out |= cards.CardToSet(c)
		}
	}
	return out
}

func (r Rules) ActionName(a game.ActionID, betOrRaiseSize int) string {
	switch {
	case a == Fold:
		return "Fold"
	case a == Check:
		return "Check"
	case a == Call:
		return "Call"
	case isBet(a):
		return "Bet"
	case isRaise(a):
		return "Raise"
	default:
		return "???"
	}
}
