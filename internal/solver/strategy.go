package solver

import "github.com/lox/dcfr-solver/internal/tree"

// trainingIndex returns the offset of hand i's action slice within a
// node's training arrays. Storage is hand-major (idx = offset + i*A + act)
// so that one hand's row of per-action values is contiguous and can be
// addressed as a real sub-slice.
func trainingIndex(node *tree.Node, i, a int) int {
	return node.TrainingDataOffset + i*a
}

// currentStrategyInto fills sigma[0:A] with the regret-matching strategy
// for hand i at node, reading allRegretSums. Uniform when all regrets for
// i are non-positive.
func currentStrategyInto(node *tree.Node, regretSums []float32, i, a int, sigma []float32) {
	base := trainingIndex(node, i, a)
	var sum float32
	for act := 0; act < a; act++ {
		r := regretSums[base+act]
		if r > 0 {
			sigma[act] = r
			sum += r
		} else {
			sigma[act] = 0
		}
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

// averageStrategyInto fills sigma[0:A] with the time-averaged strategy for
// hand i at node, reading allStrategySums. Uniform on zero denominator.
func averageStrategyInto(node *tree.Node, strategySums []float32, i, a int, sigma []float32) {
	base := trainingIndex(node, i, a)
	var sum float32
	for act := 0; act < a; act++ {
		sigma[act] = strategySums[base+act]
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
