// Package output renders a solved (or skeleton) tree as the recursive JSON
// strategy export: one object per node, decision nodes carrying the
// time-averaged strategy keyed by hand name.
package output

import (
	"encoding/json"
	"strings"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game"
	"github.com/lox/dcfr-solver/internal/tree"
)

// Node is one exported tree node. Decision-only fields are omitted on
// terminals and vice versa.
type Node struct {
	NodeType     string                `json:"NodeType"`
	Player       string                `json:"Player,omitempty"`
	ValidActions []string              `json:"ValidActions,omitempty"`
	Strategy     map[string][]float32  `json:"Strategy,omitempty"`
	Children     []*Node               `json:"Children,omitempty"`
	TotalWagers  *[2]int               `json:"TotalWagers,omitempty"`
	DeadMoney    *int                  `json:"DeadMoney,omitempty"`
}

// Export walks t from its root and returns the exported tree, reading the
// time-averaged strategy out of t.AllStrategySums at every decision node.
func Export(t *tree.Tree, rules game.Rules) *Node {
	return exportNode(t, rules, t.Root)
}

// Marshal renders the exported tree as indented JSON.
func Marshal(t *tree.Tree, rules game.Rules) ([]byte, error) {
	return json.MarshalIndent(Export(t, rules), "", "  ")
}

func exportNode(t *tree.Tree, rules game.Rules, idx int) *Node {
	n := &t.AllNodes[idx]
	switch n.Kind {
	case tree.KindChance:
		out := &Node{NodeType: "Chance"}
		for i := 0; i < n.NumChildren; i++ {
			out.Children = append(out.Children, exportNode(t, rules, t.Child(n, i)))
		}
		return out
	case tree.KindFold:
		return terminalNode("Fold", n)
	case tree.KindShowdown:
		return terminalNode("Showdown", n)
	case tree.KindDecision:
		return decisionNode(t, rules, n)
	default:
		return &Node{NodeType: "Unknown"}
	}
}

func terminalNode(kind string, n *tree.Node) *Node {
	wagers := n.State.TotalWagers
	dead := n.State.DeadMoney
	return &Node{NodeType: kind, TotalWagers: &wagers, DeadMoney: &dead}
}

func decisionNode(t *tree.Tree, rules game.Rules, n *tree.Node) *Node {
	player := n.State.PlayerToAct
	actions := rules.ValidActions(n.State)
	actionNames := make([]string, len(actions))
	for i, a := range actions {
		actionNames[i] = rules.ActionName(a, 0)
	}

	numActions := len(actions)
	strategy := make(map[string][]float32)
	for h, hand := range t.RangeHands[player] {
		if !cards.Disjoint(hand, n.State.Board) {
			continue
		}
		row := make([]float32, numActions)
		averageStrategyInto(t, n, h, numActions, row)
		strategy[handName(hand)] = row
	}

	children := make([]*Node, n.NumChildren)
	for i := range children {
		children[i] = exportNode(t, rules, t.Child(n, i))
	}

	return &Node{
		NodeType:     "Decision",
		Player:       player.String(),
		ValidActions: actionNames,
		Strategy:     strategy,
		Children:     children,
	}
}

// averageStrategyInto fills sigma with the time-averaged strategy for hand
// index i at node, mirroring the kernel's own normalization so the export
// is byte-consistent with what the trained strategy actually plays.
func averageStrategyInto(t *tree.Tree, node *tree.Node, i, a int, sigma []float32) {
	base := node.TrainingDataOffset + i*a
	var sum float32
	for act := 0; act < a; act++ {
		sigma[act] = t.AllStrategySums[base+act]
		sum += sigma[act]
	}
	if sum <= 0 {
		uniform := float32(1) / float32(a)
		for act := 0; act < a; act++ {
			sigma[act] = uniform
		}
		return
	}
	for act := 0; act < a; act++ {
		sigma[act] /= sum
	}
}

// handName renders a hand's cards in ascending card-ID order, e.g. "KsAh".
func handName(h cards.CardSet) string {
	var sb strings.Builder
	tmp := h
	for tmp != 0 {
		var c cards.CardID
		c, tmp = cards.PopLowest(tmp)
		sb.WriteString(c.String())
	}
	return sb.String()
}
