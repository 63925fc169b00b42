// Package config loads the YAML settings file that configures a Hold'em
// solve: board, ranges, bet/raise-sizing tree, and solver parameters.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/game/holdem"
	"github.com/lox/dcfr-solver/internal/notation"
)

const maxSizesPerStreet = 3

// SolverParams carries the solver.* fields a loaded config contributes to a
// session independent of which game is being solved.
type SolverParams struct {
	Threads                      int
	TargetExploitabilityPercent  float64
	MaxIterations                int
	ExploitabilityCheckFrequency int
}

type streetActions struct {
	BetSizes   []int `yaml:"bet-sizes"`
	RaiseSizes []int `yaml:"raise-sizes"`
}

type playerActions struct {
	Flop  streetActions `yaml:"flop"`
	Turn  streetActions `yaml:"turn"`
	River streetActions `yaml:"river"`
}

type treeFile struct {
	Actions struct {
		OOP playerActions `yaml:"oop"`
		IP  playerActions `yaml:"ip"`
	} `yaml:"actions"`
	StartingWagerPerPlayer  int   `yaml:"starting-wager-per-player"`
	EffectiveStackRemaining int   `yaml:"effective-stack-remaining"`
	DeadMoneyInPot          *int  `yaml:"dead-money-in-pot"`
	UseIsomorphism          *bool `yaml:"use-isomorphism"`
}

type solverFile struct {
	Threads                      *int     `yaml:"threads"`
	TargetExploitability         *float64 `yaml:"target-exploitability"`
	MaxIterations                *int     `yaml:"max-iterations"`
	ExploitabilityCheckFrequency *int     `yaml:"exploitability-check-frequency"`
}

type holdemFile struct {
	Board  string `yaml:"board"`
	Ranges struct {
		OOP string `yaml:"oop"`
		IP  string `yaml:"ip"`
	} `yaml:"ranges"`
	Tree   treeFile   `yaml:"tree"`
	Solver solverFile `yaml:"solver"`
}

// LoadHoldem reads and validates a Hold'em settings file, returning the
// game settings and solver parameters it describes.
func LoadHoldem(path string) (holdem.Settings, SolverParams, error) {
	var zero holdem.Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f holdemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if f.Board == "" {
		return zero, SolverParams{}, fmt.Errorf("config: board is required")
	}
	board, err := cards.ParseCardSet(f.Board)
	if err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: board: %w", err)
	}
	if n := cards.SetSize(board); n < 3 || n > 5 {
		return zero, SolverParams{}, fmt.Errorf("config: board must have 3-5 cards, got %d", n)
	}

	settings := holdem.Settings{Board: board}

	if f.Ranges.OOP == "" || f.Ranges.IP == "" {
		return zero, SolverParams{}, fmt.Errorf("config: ranges.oop and ranges.ip are required")
	}
	oopCombos, err := notation.Parse(f.Ranges.OOP)
	if err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: ranges.oop: %w", err)
	}
	ipCombos, err := notation.Parse(f.Ranges.IP)
	if err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: ranges.ip: %w", err)
	}
	settings.Ranges[cards.P0] = comboRangeHands(oopCombos)
	settings.Ranges[cards.P1] = comboRangeHands(ipCombos)

	if err := loadSizing(&settings.Sizing[cards.P0], f.Tree.Actions.OOP); err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: tree.actions.oop: %w", err)
	}
	if err := loadSizing(&settings.Sizing[cards.P1], f.Tree.Actions.IP); err != nil {
		return zero, SolverParams{}, fmt.Errorf("config: tree.actions.ip: %w", err)
	}

	if f.Tree.StartingWagerPerPlayer <= 0 {
		return zero, SolverParams{}, fmt.Errorf("config: tree.starting-wager-per-player must be positive")
	}
	settings.StartingWager = f.Tree.StartingWagerPerPlayer

	if f.Tree.EffectiveStackRemaining <= 0 {
		return zero, SolverParams{}, fmt.Errorf("config: tree.effective-stack-remaining must be positive")
	}
	settings.EffectiveStack = f.Tree.EffectiveStackRemaining

	if f.Tree.DeadMoneyInPot != nil {
		if *f.Tree.DeadMoneyInPot < 0 {
			return zero, SolverParams{}, fmt.Errorf("config: tree.dead-money-in-pot must be non-negative")
		}
		settings.DeadMoney = *f.Tree.DeadMoneyInPot
	}

	settings.UseIsomorphism = true
	if f.Tree.UseIsomorphism != nil {
		settings.UseIsomorphism = *f.Tree.UseIsomorphism
	}

	params := SolverParams{
		Threads:                      6,
		TargetExploitabilityPercent:  0.3,
		MaxIterations:                1000,
		ExploitabilityCheckFrequency: 10,
	}
	if f.Solver.Threads != nil {
		if *f.Solver.Threads < 1 || *f.Solver.Threads > 64 {
			return zero, SolverParams{}, fmt.Errorf("config: solver.threads must be in [1,64]")
		}
		params.Threads = *f.Solver.Threads
	}
	if f.Solver.TargetExploitability != nil {
		params.TargetExploitabilityPercent = *f.Solver.TargetExploitability
	}
	if f.Solver.MaxIterations != nil {
		if *f.Solver.MaxIterations < 1 {
			return zero, SolverParams{}, fmt.Errorf("config: solver.max-iterations must be >= 1")
		}
		params.MaxIterations = *f.Solver.MaxIterations
	}
	if f.Solver.ExploitabilityCheckFrequency != nil {
		if *f.Solver.ExploitabilityCheckFrequency < 1 {
			return zero, SolverParams{}, fmt.Errorf("config: solver.exploitability-check-frequency must be >= 1")
		}
		params.ExploitabilityCheckFrequency = *f.Solver.ExploitabilityCheckFrequency
	}

	return settings, params, nil
}

func comboRangeHands(combos []notation.Combo) []holdem.RangeHand {
	out := make([]holdem.RangeHand, len(combos))
	for i, c := range combos {
		out[i] = holdem.RangeHand{Hand: c.Hand, Weight: c.Weight}
	}
	return out
}

func loadSizing(dst *[3]holdem.StreetSizing, src playerActions) error {
	streets := [3]streetActions{src.Flop, src.Turn, src.River}
	for i, s := range streets {
		if err := validateSizes(s.BetSizes); err != nil {
			return fmt.Errorf("bet-sizes: %w", err)
		}
		if err := validateSizes(s.RaiseSizes); err != nil {
			return fmt.Errorf("raise-sizes: %w", err)
		}
		dst[i] = holdem.StreetSizing{BetSizes: s.BetSizes, RaiseSizes: s.RaiseSizes}
	}
	return nil
}

func validateSizes(sizes []int) error {
	if len(sizes) > maxSizesPerStreet {
		return fmt.Errorf("at most %d sizes allowed, got %d", maxSizesPerStreet, len(sizes))
	}
	for _, v := range sizes {
		if v <= 0 {
			return fmt.Errorf("size %d must be positive", v)
		}
	}
	return nil
}
