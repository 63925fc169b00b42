package solver

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dcfr-solver/internal/cards"
)

// TrainerConfig configures one DCFR training run.
type TrainerConfig struct {
	MaxIterations                int
	TargetExploitabilityPercent  float64
	ExploitabilityCheckFrequency int
	StartingPot                  float64
}

// TrainerResult summarizes a completed (or early-terminated) training run.
type TrainerResult struct {
	Iterations     int
	EV             [2]float64
	Exploitability float64
	Elapsed        time.Duration
}

// ProgressFunc is called after every exploitability check.
type ProgressFunc func(iteration int, exploitability float64, elapsed time.Duration)

// Train runs the DCFR trainer loop: each iteration performs a discounted
// CFR pass for both heroes in sequence, so the second hero's pass observes
// the first hero's updated regret and strategy sums. Every
// ExploitabilityCheckFrequency iterations it measures fast exploitability
// and exits early once it falls at or below TargetExploitabilityPercent of
// the starting pot.
func Train(ctx context.Context, k *Kernel, cfg TrainerConfig, clock quartz.Clock, progress ProgressFunc) TrainerResult {
	if clock == nil {
		clock = quartz.NewReal()
	}
	start := clock.Now()
	logger := log.Default().With("component", "trainer")

	iter := 0
	for iter = 1; iter <= cfg.MaxIterations; iter++ {
		params := ComputeDiscountParams(DefaultAlpha, DefaultBeta, DefaultGamma, iter)
		for _, hero := range [2]cards.Player{cards.P0, cards.P1} {
			k.TraverseFromRoot(hero, DiscountedCfr, params)
		}

		if iter%cfg.ExploitabilityCheckFrequency == 0 {
			expl := k.Exploitability()
			elapsed := clock.Since(start)
			logger.Debug("exploitability check", "iteration", iter, "exploitability", expl)
			if progress != nil {
				progress(iter, expl, elapsed)
			}
			if cfg.StartingPot > 0 && expl/cfg.StartingPot*100 <= cfg.TargetExploitabilityPercent {
				return finalResult(k, iter, expl, clock.Since(start))
			}
		}

		select {
		case <-ctx.Done():
			logger.Warn("training cancelled", "iteration", iter)
			return finalResult(k, iter, k.Exploitability(), clock.Since(start))
		default:
		}
	}
	return finalResult(k, cfg.MaxIterations, k.Exploitability(), clock.Since(start))
}

func finalResult(k *Kernel, iterations int, expl float64, elapsed time.Duration) TrainerResult {
	ev0 := k.ExpectedValue(cards.P0, k.TraverseFromRoot(cards.P0, ExpectedValue, DiscountParams{}))
	ev1 := k.ExpectedValue(cards.P1, k.TraverseFromRoot(cards.P1, ExpectedValue, DiscountParams{}))
	if expl < 0 {
		expl = 0
	}
	return TrainerResult{
		Iterations:     iterations,
		EV:             [2]float64{ev0, ev1},
		Exploitability: expl,
		Elapsed:        elapsed,
	}
}
