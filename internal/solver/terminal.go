package solver

import (
	"fmt"

	"github.com/lox/dcfr-solver/internal/alloc"
	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/tree"
)

// blockingAggregates computes, over the subset of hands disjoint from
// board, the total reach and the per-card reach aggregate used by the
// inclusion-exclusion blocking formula at fold and showdown terminals.
func blockingAggregates(hands []cards.CardSet, reach []float32, board cards.CardSet) (float32, [52]float32) {
	var total float32
	var perCard [52]float32
	for j, h := range hands {
		if !cards.Disjoint(h, board) {
			continue
		}
		total += reach[j]
		tmp := h
		for tmp != 0 {
			c, rest := cards.PopLowest(tmp)
			tmp = rest
			perCard[c] += reach[j]
		}
	}
	return total, perCard
}

// unblockedReach returns the villain reach not blocked by hero's hand,
// applying the 2-card-game inclusion-exclusion correction via
// sameHandIndexTable when applicable.
func unblockedReach(hand cards.CardSet, total float32, perCard [52]float32, gameHandSize int, sameTable []int, h int, villainReach []float32) float32 {
	valid := total
	tmp := hand
	for tmp != 0 {
		c, rest := cards.PopLowest(tmp)
		tmp = rest
		valid -= perCard[c]
	}
	if gameHandSize == 2 && sameTable != nil {
		if j := sameTable[h]; j >= 0 {
			valid += villainReach[j]
		}
	}
	return valid
}

// traverseFold computes the terminal payoff for a player folding: the
// folder loses their wager, the other player collects it plus dead money.
func (k *Kernel) traverseFold(node *tree.Node, hero cards.Player, villainReach []float32, thread int) *alloc.ScopedVector {
	villain := hero.Opponent()
	rangeSizeHero := k.Tree.RangeSize[hero]
	out := alloc.Borrow(k.alloc, thread, rangeSizeHero)
	os := out.Slice()

	folder := node.State.PlayerToAct.Opponent()
	fwager := node.State.TotalWagers[folder]
	var payoff float32
	if folder == villain {
		payoff = float32(fwager + node.State.DeadMoney)
	} else {
		payoff = float32(-fwager)
	}

	total, perCard := blockingAggregates(k.Tree.RangeHands[villain], villainReach, node.State.Board)
	sameTable := k.Tree.SameHandIndexTable[hero]

	for h, hand := range k.Tree.RangeHands[hero] {
		if !cards.Disjoint(hand, node.State.Board) {
			continue
		}
		valid := unblockedReach(hand, total, perCard, k.Tree.GameHandSize, sameTable, h, villainReach)
		os[h] = payoff * valid
	}
	return out
}

// traverseShowdown compares hero and villain hand ranks via three
// ascending/descending two-pointer passes (hero wins, hero loses, ties),
// each maintaining running blocking aggregates over the relevant villain
// sub-range instead of an O(R_h*R_v) comparison.
func (k *Kernel) traverseShowdown(node *tree.Node, hero cards.Player, villainReach []float32, thread int) *alloc.ScopedVector {
	villain := hero.Opponent()
	rangeSizeHero := k.Tree.RangeSize[hero]
	out := alloc.Borrow(k.alloc, thread, rangeSizeHero)
	os := out.Slice()

	board := node.State.Board
	heroRanks := k.Rules.ValidSortedHandRanks(hero, board)
	villainRanks := k.Rules.ValidSortedHandRanks(villain, board)

	if node.State.TotalWagers[0] != node.State.TotalWagers[1] {
		panic(fmt.Sprintf("solver: showdown invariant violated: unequal wagers %v", node.State.TotalWagers))
	}
	w := node.State.TotalWagers[0]
	d := node.State.DeadMoney
	win := float32(w + d)
	lose := float32(-w)
	tie := float32(d) / 2

	heroHands := k.Tree.RangeHands[hero]
	villainHands := k.Tree.RangeHands[villain]

	// Pass 1: hero wins against strictly lower-ranked villain hands.
	{
		var total float32
		var perCard [52]float32
		vi := 0
		for _, he := range heroRanks {
			for vi < len(villainRanks) && villainRanks[vi].Rank < he.Rank {
				j := int(villainRanks[vi].Index)
				total += villainReach[j]
				addCards(&perCard, villainHands[j], villainReach[j])
				vi++
			}
			h := int(he.Index)
			valid := total
			valid -= subtractCards(perCard, heroHands[h])
			os[h] += win * valid
		}
	}

	// Pass 2: hero loses against strictly higher-ranked villain hands.
	{
		var total float32
		var perCard [52]float32
		vi := len(villainRanks) - 1
		for i := len(heroRanks) - 1; i >= 0; i-- {
			he := heroRanks[i]
			for vi >= 0 && villainRanks[vi].Rank > he.Rank {
				j := int(villainRanks[vi].Index)
				total += villainReach[j]
				addCards(&perCard, villainHands[j], villainReach[j])
				vi--
			}
			h := int(he.Index)
			valid := total
			valid -= subtractCards(perCard, heroHands[h])
			os[h] += lose * valid
		}
	}

	// Pass 3: ties, only meaningful when dead money makes them non-zero EV.
	if d > 0 {
		sameTable := k.Tree.SameHandIndexTable[hero]
		var total float32
		var perCard [52]float32
		vi := 0
		havePrev := false
		var prevRank uint32
		for _, he := range heroRanks {
			if !havePrev || he.Rank != prevRank {
				total = 0
				perCard = [52]float32{}
				for vi < len(villainRanks) && villainRanks[vi].Rank < he.Rank {
					vi++
				}
				for vi < len(villainRanks) && villainRanks[vi].Rank == he.Rank {
					j := int(villainRanks[vi].Index)
					total += villainReach[j]
					addCards(&perCard, villainHands[j], villainReach[j])
					vi++
				}
				prevRank = he.Rank
				havePrev = true
			}
			h := int(he.Index)
			valid := unblockedReach(heroHands[h], total, perCard, k.Tree.GameHandSize, sameTable, h, villainReach)
			os[h] += tie * valid
		}
	}

	return out
}

func addCards(perCard *[52]float32, hand cards.CardSet, weight float32) {
	tmp := hand
	for tmp != 0 {
		c, rest := cards.PopLowest(tmp)
		tmp = rest
		perCard[c] += weight
	}
}

func subtractCards(perCard [52]float32, hand cards.CardSet) float32 {
	var sum float32
	tmp := hand
	for tmp != 0 {
		c, rest := cards.PopLowest(tmp)
		tmp = rest
		sum += perCard[c]
	}
	return sum
}
