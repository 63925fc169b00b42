// Package session implements the solver context (C8): it owns a loaded
// game's Rules, its lazily-built Tree, and the solver parameters that
// govern a training run, gluing the game, tree, and solver packages
// together behind the commands the REPL dispatches.
package session

import (
	"context"
	"fmt"

	"github.com/lox/dcfr-solver/internal/cards"
	"github.com/lox/dcfr-solver/internal/config"
	"github.com/lox/dcfr-solver/internal/game"
	"github.com/lox/dcfr-solver/internal/game/holdem"
	"github.com/lox/dcfr-solver/internal/game/kuhn"
	"github.com/lox/dcfr-solver/internal/game/leduc"
	"github.com/lox/dcfr-solver/internal/solver"
	"github.com/lox/dcfr-solver/internal/tree"
)

// Params holds the solver.* settings a loaded game contributes or defaults.
type Params struct {
	Threads                      int
	TargetExploitabilityPercent  float64
	MaxIterations                int
	ExploitabilityCheckFrequency int
}

// Session is the long-lived object the REPL commands mutate: at most one
// game is loaded at a time, and its tree is built lazily on first use by
// tree-size or solve.
type Session struct {
	rules          game.Rules
	startingStreet game.Street
	params         Params

	tree   *tree.Tree
	kernel *solver.Kernel

	lastResult *solver.TrainerResult
}

// New returns an empty session with nothing loaded.
func New() *Session {
	return &Session{}
}

// LoadKuhn configures the session for Kuhn poker with the source's default
// solver parameters.
func (s *Session) LoadKuhn() {
	s.rules = kuhn.Rules{}
	s.startingStreet = game.Flop
	s.params = Params{
		Threads:                      1,
		TargetExploitabilityPercent:  0.3,
		MaxIterations:                100000,
		ExploitabilityCheckFrequency: 10000,
	}
	s.tree = nil
	s.kernel = nil
}

// LoadLeduc configures the session for Leduc poker with chance-card
// isomorphism enabled, matching the source's default.
func (s *Session) LoadLeduc() {
	s.rules = leduc.Rules{}
	s.startingStreet = game.Flop
	s.params = Params{
		Threads:                      6,
		TargetExploitabilityPercent:  0.3,
		MaxIterations:                10000,
		ExploitabilityCheckFrequency: 1000,
	}
	s.tree = nil
	s.kernel = nil
}

// LoadHoldem loads Hold'em settings from a YAML file.
func (s *Session) LoadHoldem(path string) error {
	settings, params, err := config.LoadHoldem(path)
	if err != nil {
		return err
	}
	s.rules = holdem.New(settings)
	switch cards.SetSize(settings.Board) {
	case 3:
		s.startingStreet = game.Flop
	case 4:
		s.startingStreet = game.Turn
	default:
		s.startingStreet = game.River
	}
	s.params = Params{
		Threads:                      params.Threads,
		TargetExploitabilityPercent:  params.TargetExploitabilityPercent,
		MaxIterations:                params.MaxIterations,
		ExploitabilityCheckFrequency: params.ExploitabilityCheckFrequency,
	}
	s.tree = nil
	s.kernel = nil
	return nil
}

// Loaded reports whether a game has been loaded.
func (s *Session) Loaded() bool {
	return s.rules != nil
}

// Params returns the current solver parameters.
func (s *Session) Params() Params {
	return s.params
}

// buildIfNeeded constructs the tree skeleton and kernel on first use.
func (s *Session) buildIfNeeded() error {
	if s.tree != nil {
		return nil
	}
	t, err := tree.BuildSkeleton(s.rules, s.startingStreet)
	if err != nil {
		return err
	}
	s.tree = t
	s.kernel = solver.NewKernel(t, s.rules, s.params.Threads, 0)
	return nil
}

// Tree returns the session's tree, building it if this is the first call.
func (s *Session) Tree() (*tree.Tree, error) {
	if !s.Loaded() {
		return nil, fmt.Errorf("session: no game loaded")
	}
	if err := s.buildIfNeeded(); err != nil {
		return nil, err
	}
	return s.tree, nil
}

// Rules returns the loaded game's rules, for callers (e.g. JSON export)
// that need to re-derive valid actions and names.
func (s *Session) Rules() game.Rules {
	return s.rules
}

// Solve builds the tree if needed and runs DCFR training to completion or
// the target exploitability, whichever comes first.
func (s *Session) Solve(ctx context.Context, progress solver.ProgressFunc) (solver.TrainerResult, error) {
	if !s.Loaded() {
		return solver.TrainerResult{}, fmt.Errorf("session: no game loaded")
	}
	if err := s.buildIfNeeded(); err != nil {
		return solver.TrainerResult{}, err
	}
	s.tree.InitCfrVectors()

	initial := s.rules.InitialState()
	startingPot := float64(initial.TotalWagers[cards.P0] + initial.TotalWagers[cards.P1] + s.tree.DeadMoney)

	cfg := solver.TrainerConfig{
		MaxIterations:                s.params.MaxIterations,
		TargetExploitabilityPercent:  s.params.TargetExploitabilityPercent,
		ExploitabilityCheckFrequency: s.params.ExploitabilityCheckFrequency,
		StartingPot:                  startingPot,
	}
	result := solver.Train(ctx, s.kernel, cfg, nil, progress)
	s.lastResult = &result
	return result, nil
}

// Kernel exposes the built kernel for JSON export or further queries;
// callers must call Tree or Solve first.
func (s *Session) Kernel() *solver.Kernel {
	return s.kernel
}

// MaxArenaUsage reports the stack allocator's high-water mark, in bytes.
func (s *Session) MaxArenaUsage() int64 {
	if s.kernel == nil {
		return 0
	}
	return int64(s.kernel.MaxUsage()) * 4
}
