// Package tree builds the static, flat-array game tree that the CFR
// traversal kernel walks: post-order construction, suit-isomorphism
// compression at chance nodes, and training-buffer sizing.
package tree

import (
	"fmt"
	"sort"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
)

// NodeKind discriminates the tagged Node variant.
type NodeKind int

const (
	KindChance NodeKind = iota
	KindDecision
	KindFold
	KindShowdown
)

// SuitMapping records a suit whose chance children were elided because the
// suit is equivalent to Parent; the EV of each elided Child-suit card is
// reconstructed from the Parent-suit card of the same value. A chance node
// holds at most one mapping per elided suit.
type SuitMapping struct {
	Child  cards.Suit
	Parent cards.Suit
}

// Node is a tagged variant stored in Tree.AllNodes. Children's node indices,
// when present, occupy the contiguous range
// [ChildrenOffset, ChildrenOffset+NumChildren) of Tree.ChildIndices.
type Node struct {
	Kind  NodeKind
	State game.GameState

	ChildrenOffset int
	NumChildren    int

	// Chance-only.
	AvailableCards cards.CardSet
	SuitMappings   []SuitMapping
	// DealtCards[i] is the card dealt to reach the i-th child.
	DealtCards []cards.CardID

	// Decision-only.
	TrainingDataOffset int
}

// Tree owns the flat node array plus the range and training-buffer state
// the CFR kernel mutates during training. Children of a node are not
// positionally contiguous in AllNodes (each child's full post-order
// subtree is interposed between siblings' top nodes); ChildIndices is the
// indirection array that ChildrenOffset addresses into.
type Tree struct {
	AllNodes    []Node
	ChildIndices []int
	Root        int

	RangeHands   [2][]cards.CardSet
	RangeWeights [2][]float32
	RangeSize    [2]int
	GameHandSize int

	// SameHandIndexTable[p][i] = j iff player-p hand i equals
	// player-opponent(p) hand j, else -1. Populated only when
	// GameHandSize == 2.
	SameHandIndexTable [2][]int

	DeadMoney        int
	TotalRangeWeight float64

	AllRegretSums   []float32
	AllStrategySums []float32

	StartingStreet game.Street
}

type builder struct {
	rules game.Rules
	nodes []Node
	child []int
	// trainingSize accumulates the required length of the training arrays.
	trainingSize int
	rangeSize    [2]int
}

// BuildSkeleton constructs the node array and also allocates
// AllRegretSums/AllStrategySums at their full size, zero-filled; the
// training buffers are not deferred to InitCfrVectors.
func BuildSkeleton(rules game.Rules, startingStreet game.Street) (*Tree, error) {
	b := &builder{rules: rules}
	b.rangeSize[cards.P0] = len(rules.RangeHands(cards.P0))
	b.rangeSize[cards.P1] = len(rules.RangeHands(cards.P1))

	initial := rules.InitialState()
	root, err := b.build(initial)
	if err != nil {
		return nil, err
	}
	if root != len(b.nodes)-1 {
		return nil, fmt.Errorf("tree: internal invariant violated: root %d != len(nodes)-1 %d", root, len(b.nodes)-1)
	}

	t := &Tree{
		AllNodes:       b.nodes,
		ChildIndices:   b.child,
		Root:           root,
		GameHandSize:   rules.GameHandSize(),
		DeadMoney:      rules.DeadMoney(),
		StartingStreet: startingStreet,
	}
	t.RangeSize = b.rangeSize
	for p := cards.P0; p <= cards.P1; p++ {
		t.RangeHands[p] = rules.RangeHands(p)
		t.RangeWeights[p] = rules.InitialRangeWeights(p)
	}
	t.AllStrategySums = make([]float32, b.trainingSize)
	t.AllRegretSums = make([]float32, b.trainingSize)

	if t.GameHandSize == 2 {
		t.SameHandIndexTable[cards.P0] = buildSameHandIndexTable(t.RangeHands[cards.P0], t.RangeHands[cards.P1])
		t.SameHandIndexTable[cards.P1] = buildSameHandIndexTable(t.RangeHands[cards.P1], t.RangeHands[cards.P0])
	}

	t.TotalRangeWeight = totalRangeWeight(t.RangeHands, t.RangeWeights, initial.Board)
	if t.TotalRangeWeight <= 0 {
		return nil, fmt.Errorf("tree: build failed: total range weight is zero (no disjoint hand pairs)")
	}
	return t, nil
}

// build recursively constructs the subtree rooted at s in post-order and
// returns the index of the newly appended node.
func (b *builder) build(s game.GameState) (int, error) {
	switch b.rules.NodeType(s) {
	case game.Decision:
		return b.buildDecision(s)
	case game.Chance:
		return b.buildChance(s)
	case game.Fold:
		b.nodes = append(b.nodes, Node{Kind: KindFold, State: s})
		return len(b.nodes) - 1, nil
	case game.Showdown:
		b.nodes = append(b.nodes, Node{Kind: KindShowdown, State: s})
		return len(b.nodes) - 1, nil
	default:
		return 0, fmt.Errorf("tree: unknown node type for state %+v", s)
	}
}

func (b *builder) buildDecision(s game.GameState) (int, error) {
	actions := b.rules.ValidActions(s)
	childIdxs := make([]int, 0, len(actions))
	for _, a := range actions {
		next := b.rules.StateAfterDecision(s, a)
		idx, err := b.build(next)
		if err != nil {
			return 0, err
		}
		childIdxs = append(childIdxs, idx)
	}
	offset := b.appendChildRun(childIdxs)

	rangeSize := b.rangeSize[s.PlayerToAct]
	trainingOffset := b.trainingSize
	b.trainingSize += len(actions) * rangeSize

	b.nodes = append(b.nodes, Node{
		Kind:               KindDecision,
		State:              s,
		ChildrenOffset:      offset,
		NumChildren:         len(actions),
		TrainingDataOffset: trainingOffset,
	})
	return len(b.nodes) - 1, nil
}

func (b *builder) buildChance(s game.GameState) (int, error) {
	info := b.rules.ChanceInfo(s.Board)

	representative := classRepresentative(info.Isomorphisms)

	childIdxs := make([]int, 0)
	var dealt []cards.CardID
	var mappings []SuitMapping

	avail := info.Available
	for avail != 0 {
		c, rest := cards.PopLowest(avail)
		avail = rest

		suit := cards.SuitOf(c)
		if rep, ok := representative[suit]; ok && rep != suit {
			mapped := false
			for _, m := range mappings {
				if m.Child == suit {
					mapped = true
					break
				}
			}
			if !mapped {
				mappings = append(mappings, SuitMapping{Child: suit, Parent: rep})
			}
			continue
		}

		next := s
		next.Board |= cards.CardToSet(c)
		next.PlayerToAct = cards.P0
		next.LastAction = game.NoAction
		next.PreviousStreetsWager = next.TotalWagers[cards.P0]
		if next.CurrentStreet < game.River {
			next.CurrentStreet++
		}

		idx, err := b.build(next)
		if err != nil {
			return 0, err
		}
		childIdxs = append(childIdxs, idx)
		dealt = append(dealt, c)
	}

	offset := b.appendChildRun(childIdxs)
	b.nodes = append(b.nodes, Node{
		Kind:           KindChance,
		State:          s,
		ChildrenOffset: offset,
		NumChildren:    len(childIdxs),
		AvailableCards: info.Available,
		SuitMappings:   mappings,
		DealtCards:     dealt,
	})
	return len(b.nodes) - 1, nil
}

// classRepresentative maps every suit of every isomorphism class of two or
// more suits, the representative included, to the class's representative
// (smallest ordinal).
func classRepresentative(classes []game.SuitEquivalenceClass) map[cards.Suit]cards.Suit {
	rep := make(map[cards.Suit]cards.Suit)
	for _, class := range classes {
		if len(class) < 2 {
			continue
		}
		sorted := append([]cards.Suit(nil), class...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		r := sorted[0]
		for _, s := range sorted {
			rep[s] = r
		}
	}
	return rep
}

// appendChildRun records childIdxs (node indices, not positions) as a
// contiguous run in the indirection array and returns its offset.
func (b *builder) appendChildRun(childIdxs []int) int {
	offset := len(b.child)
	b.child = append(b.child, childIdxs...)
	return offset
}

func buildSameHandIndexTable(own, opp []cards.CardSet) []int {
	table := make([]int, len(own))
	for i := range table {
		table[i] = -1
	}
	for i, h := range own {
		for j, o := range opp {
			if h == o {
				table[i] = j
				break
			}
		}
	}
	return table
}

func totalRangeWeight(hands [2][]cards.CardSet, weights [2][]float32, board cards.CardSet) float64 {
	var total float64
	for i, h0 := range hands[cards.P0] {
		if !cards.Disjoint(h0, board) {
			continue
		}
		for j, h1 := range hands[cards.P1] {
			if !cards.Disjoint(h1, board) || !cards.Disjoint(h0, h1) {
				continue
			}
			total += float64(weights[cards.P0][i]) * float64(weights[cards.P1][j])
		}
	}
	return total
}

// Child returns the node index of the i-th child of n.
func (t *Tree) Child(n *Node, i int) int {
	return t.ChildIndices[n.ChildrenOffset+i]
}

// InitCfrVectors zero-fills the training arrays; BuildSkeleton already
// allocates them, so this is a convenience reset for repeated solves.
func (t *Tree) InitCfrVectors() {
	for i := range t.AllRegretSums {
		t.AllRegretSums[i] = 0
	}
	for i := range t.AllStrategySums {
		t.AllStrategySums[i] = 0
	}
}

// NumDecisionNodes counts Decision-kind nodes in AllNodes.
func (t *Tree) NumDecisionNodes() int {
	n := 0
	for i := range t.AllNodes {
		if t.AllNodes[i].Kind == KindDecision {
			n++
		}
	}
	return n
}

const (
	bytesPerNode        = 152 // Node carries a GameState plus slice headers; fixed footprint on 64-bit.
	bytesPerChildIndex  = 8
	bytesPerSameHandIdx = 8
	bytesPerTrainingF32 = 4
)

// SkeletonSize estimates the byte footprint of the node array, child-index
// indirection, and same-hand-index tables, before training buffers are
// populated. Reporting only; not exact since Node's SuitMappings/DealtCards
// slices vary per chance node.
func (t *Tree) SkeletonSize() int64 {
	size := int64(len(t.AllNodes)) * bytesPerNode
	size += int64(len(t.ChildIndices)) * bytesPerChildIndex
	size += int64(len(t.SameHandIndexTable[0])+len(t.SameHandIndexTable[1])) * bytesPerSameHandIdx
	for i := range t.AllNodes {
		n := &t.AllNodes[i]
		size += int64(len(n.SuitMappings)) * 16
		size += int64(len(n.DealtCards)) * 8
	}
	return size
}

// EstimateFullTreeSize adds the two training arrays' byte footprint to
// SkeletonSize.
func (t *Tree) EstimateFullTreeSize() int64 {
	training := int64(len(t.AllRegretSums)+len(t.AllStrategySums)) * bytesPerTrainingF32
	return t.SkeletonSize() + training
}
