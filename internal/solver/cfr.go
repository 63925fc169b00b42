// Package solver implements the vectorized DCFR traversal kernel: five
// traversal modes operating over whole hand ranges in parallel, with
// card-blocking corrections at terminal nodes and suit-isomorphism
// reconstruction at chance nodes.
package solver

import (
	"math"

	"github.com/lox/dcfr-solver/internal/alloc"
	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
	"github.com/lox/dcfr-solver/internal/tree"
)

// Kernel owns the tree, rules, scratch arenas, and thread pool that a
// traversal needs. One Kernel solves one Tree.
type Kernel struct {
	Tree  *tree.Tree
	Rules game.Rules
	alloc *alloc.StackAllocator
	pool  *threadPool
}

// NewKernel builds a Kernel with numThreads worker arenas of arenaSize
// float32s each (0 selects alloc.DefaultArenaSize).
func NewKernel(t *tree.Tree, rules game.Rules, numThreads, arenaSize int) *Kernel {
	return &Kernel{
		Tree:  t,
		Rules: rules,
		alloc: alloc.New(numThreads, arenaSize),
		pool:  newThreadPool(numThreads),
	}
}

// MaxUsage reports the scratch-arena high-water mark across all threads,
// in float32 elements.
func (k *Kernel) MaxUsage() int {
	max := 0
	for t := 0; t < k.alloc.NumThreads(); t++ {
		if u := k.alloc.MaxUsage(t); u > max {
			max = u
		}
	}
	return max
}

// TraverseFromRoot seeds villain reach from the rules' initial range
// weights and returns an owned (heap) copy of output_ev for hero's range.
func (k *Kernel) TraverseFromRoot(hero cards.Player, mode TraversalMode, params DiscountParams) []float32 {
	villain := hero.Opponent()
	vr := append([]float32(nil), k.Tree.RangeWeights[villain]...)
	thread := k.pool.acquire()
	defer k.pool.release(thread)
	ev := k.traverse(k.Tree.Root, hero, mode, params, vr, thread)
	out := append([]float32(nil), ev.Slice()...)
	ev.Release()
	return out
}

// ExpectedValue normalizes an output_ev vector by hero's range weights and
// the tree's total range weight, in f64.
func (k *Kernel) ExpectedValue(hero cards.Player, ev []float32) float64 {
	var sum float64
	weights := k.Tree.RangeWeights[hero]
	for h, w := range weights {
		sum += float64(w) * float64(ev[h])
	}
	return sum / k.Tree.TotalRangeWeight
}

// BestResponseEV computes the maximally exploitative EV against the
// current average strategy.
func (k *Kernel) BestResponseEV(hero cards.Player) float64 {
	ev := k.TraverseFromRoot(hero, BestResponse, DiscountParams{})
	return k.ExpectedValue(hero, ev)
}

// Exploitability returns (BR(P0)+BR(P1)-deadMoney)/2, the fast zero-sum
// form. It is zero at an exact Nash equilibrium.
func (k *Kernel) Exploitability() float64 {
	br0 := k.BestResponseEV(cards.P0)
	br1 := k.BestResponseEV(cards.P1)
	return (br0 + br1 - float64(k.Tree.DeadMoney)) / 2
}

func (k *Kernel) parallelEligible(s game.GameState) bool {
	return s.CurrentStreet == k.Tree.StartingStreet && k.Tree.StartingStreet != game.River
}

func (k *Kernel) traverse(nodeIdx int, hero cards.Player, mode TraversalMode, params DiscountParams, villainReach []float32, thread int) *alloc.ScopedVector {
	node := &k.Tree.AllNodes[nodeIdx]
	switch node.Kind {
	case tree.KindChance:
		return k.traverseChance(node, hero, mode, params, villainReach, thread)
	case tree.KindDecision:
		if node.State.PlayerToAct == hero {
			return k.traverseHeroDecision(node, hero, mode, params, villainReach, thread)
		}
		return k.traverseVillainDecision(node, hero, mode, params, villainReach, thread)
	case tree.KindFold:
		return k.traverseFold(node, hero, villainReach, thread)
	case tree.KindShowdown:
		return k.traverseShowdown(node, hero, villainReach, thread)
	default:
		panic("solver: unknown node kind")
	}
}

// traverseChance recurses into each emitted chance child, scaling villain
// reach by the chance-card normalization factor, then reconstructs elided
// isomorphic siblings' EVs via suit-swapped hand indices.
func (k *Kernel) traverseChance(node *tree.Node, hero cards.Player, mode TraversalMode, params DiscountParams, villainReach []float32, thread int) *alloc.ScopedVector {
	villain := hero.Opponent()
	rangeSizeHero := k.Tree.RangeSize[hero]
	denom := float32(cards.SetSize(node.AvailableCards) - 2*k.Tree.GameHandSize)

	out := alloc.Borrow(k.alloc, thread, rangeSizeHero)
	os := out.Slice()

	merge := func(c cards.CardID, evSlice []float32) {
		cSet := cards.CardToSet(c)
		for h, hand := range k.Tree.RangeHands[hero] {
			if cards.Disjoint(hand, cSet) {
				os[h] += evSlice[h]
			}
		}
		suitC := cards.SuitOf(c)
		for _, m := range node.SuitMappings {
			if m.Parent != suitC {
				continue
			}
			cPrime := cards.IDFrom(cards.ValueOf(c), m.Child)
			cPrimeSet := cards.CardToSet(cPrime)
			for h, hand := range k.Tree.RangeHands[hero] {
				if !cards.Disjoint(hand, cPrimeSet) {
					continue
				}
				hPrime := k.Rules.IndexAfterSuitSwap(hero, h, m.Parent, m.Child)
				os[h] += evSlice[hPrime]
			}
		}
	}

	fillVR := func(c cards.CardID, vr *alloc.ScopedVector) {
		vs := vr.Slice()
		cSet := cards.CardToSet(c)
		for j, hand := range k.Tree.RangeHands[villain] {
			if cards.Disjoint(hand, cSet) {
				vs[j] = villainReach[j] / denom
			} else {
				vs[j] = 0
			}
		}
	}

	if k.parallelEligible(node.State) && node.NumChildren > 1 {
		results := make([][]float32, node.NumChildren)
		parallelFor(k.pool, thread, node.NumChildren, func(kk, tid int) {
			vr := alloc.Borrow(k.alloc, tid, len(villainReach))
			fillVR(node.DealtCards[kk], vr)
			childIdx := k.Tree.Child(node, kk)
			ev := k.traverse(childIdx, hero, mode, params, vr.Slice(), tid)
			results[kk] = append([]float32(nil), ev.Slice()...)
			ev.Release()
			vr.Release()
		})
		for kk := 0; kk < node.NumChildren; kk++ {
			merge(node.DealtCards[kk], results[kk])
		}
	} else {
		for kk := 0; kk < node.NumChildren; kk++ {
			c := node.DealtCards[kk]
			vr := alloc.Borrow(k.alloc, thread, len(villainReach))
			fillVR(c, vr)
			childIdx := k.Tree.Child(node, kk)
			ev := k.traverse(childIdx, hero, mode, params, vr.Slice(), thread)
			merge(c, ev.Slice())
			ev.Release()
			vr.Release()
		}
	}

	return out
}

// traverseHeroDecision implements the three hero-to-act cases: training
// (vanilla/plus/discounted), expected-value, and best-response.
func (k *Kernel) traverseHeroDecision(node *tree.Node, hero cards.Player, mode TraversalMode, params DiscountParams, villainReach []float32, thread int) *alloc.ScopedVector {
	a := node.NumChildren
	rangeSize := k.Tree.RangeSize[hero]
	training := mode.isTraining()

	out := alloc.Borrow(k.alloc, thread, rangeSize)
	os := out.Slice()

	var sigma *alloc.ScopedVector
	if mode != BestResponse {
		sigma = alloc.Borrow(k.alloc, thread, a*rangeSize)
		ss := sigma.Slice()
		for i := 0; i < rangeSize; i++ {
			row := ss[i*a : i*a+a]
			if training {
				currentStrategyInto(node, k.Tree.AllRegretSums, i, a, row)
			} else {
				averageStrategyInto(node, k.Tree.AllStrategySums, i, a, row)
			}
		}
	}

	if mode == DiscountedCfr {
		for idx := node.TrainingDataOffset; idx < node.TrainingDataOffset+a*rangeSize; idx++ {
			r := k.Tree.AllRegretSums[idx]
			if r > 0 {
				r *= params.AlphaT
			} else {
				r *= params.BetaT
			}
			k.Tree.AllRegretSums[idx] = r
			k.Tree.AllStrategySums[idx] *= params.GammaT
		}
	}

	childEVs := make([]*alloc.ScopedVector, a)
	if k.parallelEligible(node.State) && a > 1 {
		parallelFor(k.pool, thread, a, func(act, tid int) {
			childIdx := k.Tree.Child(node, act)
			childEVs[act] = k.traverse(childIdx, hero, mode, params, villainReach, tid)
		})
	} else {
		for act := 0; act < a; act++ {
			childIdx := k.Tree.Child(node, act)
			childEVs[act] = k.traverse(childIdx, hero, mode, params, villainReach, thread)
		}
	}

	if mode == BestResponse {
		for h := 0; h < rangeSize; h++ {
			best := float32(math.Inf(-1))
			for act := 0; act < a; act++ {
				if v := childEVs[act].Slice()[h]; v > best {
					best = v
				}
			}
			os[h] = best
		}
	} else {
		ss := sigma.Slice()
		for h := 0; h < rangeSize; h++ {
			row := ss[h*a : h*a+a]
			var sum float32
			for act := 0; act < a; act++ {
				sum += childEVs[act].Slice()[h] * row[act]
			}
			os[h] = sum
		}
	}

	if training {
		ss := sigma.Slice()
		for h := 0; h < rangeSize; h++ {
			row := ss[h*a : h*a+a]
			base := trainingIndex(node, h, a)
			for act := 0; act < a; act++ {
				idx := base + act
				delta := childEVs[act].Slice()[h] - os[h]
				newR := k.Tree.AllRegretSums[idx] + delta
				if mode == CfrPlus && newR < 0 {
					newR = 0
				}
				k.Tree.AllRegretSums[idx] = newR
				k.Tree.AllStrategySums[idx] += row[act]
			}
		}
	}

	for act := a - 1; act >= 0; act-- {
		childEVs[act].Release()
	}
	if sigma != nil {
		sigma.Release()
	}

	return out
}

// traverseVillainDecision folds villain's strategy into reach probability
// before recursing, per action; no regret or strategy sums are touched.
func (k *Kernel) traverseVillainDecision(node *tree.Node, hero cards.Player, mode TraversalMode, params DiscountParams, villainReach []float32, thread int) *alloc.ScopedVector {
	villain := hero.Opponent()
	a := node.NumChildren
	rangeSizeHero := k.Tree.RangeSize[hero]
	rangeSizeVillain := k.Tree.RangeSize[villain]
	training := mode.isTraining()

	out := alloc.Borrow(k.alloc, thread, rangeSizeHero)
	os := out.Slice()

	sigma := alloc.Borrow(k.alloc, thread, a*rangeSizeVillain)
	ss := sigma.Slice()
	for j := 0; j < rangeSizeVillain; j++ {
		row := ss[j*a : j*a+a]
		if training {
			currentStrategyInto(node, k.Tree.AllRegretSums, j, a, row)
		} else {
			averageStrategyInto(node, k.Tree.AllStrategySums, j, a, row)
		}
	}

	runAction := func(act int, tid int) *alloc.ScopedVector {
		newVR := alloc.Borrow(k.alloc, tid, rangeSizeVillain)
		nv := newVR.Slice()
		for j := 0; j < rangeSizeVillain; j++ {
			nv[j] = villainReach[j] * ss[j*a+act]
		}
		childIdx := k.Tree.Child(node, act)
		ev := k.traverse(childIdx, hero, mode, params, nv, tid)
		result := append([]float32(nil), ev.Slice()...)
		ev.Release()
		newVR.Release()
		return wrapPlain(result)
	}

	if k.parallelEligible(node.State) && a > 1 {
		results := make([]*alloc.ScopedVector, a)
		parallelFor(k.pool, thread, a, func(act, tid int) {
			results[act] = runAction(act, tid)
		})
		for h := 0; h < rangeSizeHero; h++ {
			var sum float32
			for act := 0; act < a; act++ {
				sum += results[act].Slice()[h]
			}
			os[h] = sum
		}
	} else {
		results := make([]*alloc.ScopedVector, a)
		for act := 0; act < a; act++ {
			results[act] = runAction(act, thread)
		}
		for h := 0; h < rangeSizeHero; h++ {
			var sum float32
			for act := 0; act < a; act++ {
				sum += results[act].Slice()[h]
			}
			os[h] = sum
		}
	}

	sigma.Release()
	return out
}

// wrapPlain adapts a plain owned slice to the ScopedVector interface so
// callers can treat it uniformly; Release is a no-op since the backing
// array is heap-owned, not arena-owned.
func wrapPlain(s []float32) *alloc.ScopedVector {
	return alloc.Wrap(s)
}
