package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/dcfr-solver/internal/output"
	"github.com/lox/dcfr-solver/internal/repl"
	"github.com/lox/dcfr-solver/internal/session"
	"github.com/lox/dcfr-solver/internal/sizefmt"
)

var cli struct {
	Debug  bool   `help:"enable debug logging"`
	Export string `help:"path to write the final strategy as JSON after each solve"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	kong.Parse(&cli,
		kong.Name("dcfrsolver"),
		kong.Description("Discounted CFR poker tree solver"),
		kong.UsageOnError(),
	)

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	log.Default().SetLevel(level)

	sess := session.New()
	d := repl.New("dcfrsolver", os.Stdout)

	d.RegisterNoArg(
		"kuhn",
		"Loads settings for Kuhn poker, a simplified version of poker with three possible hands and one betting round.",
		func() bool {
			sess.LoadKuhn()
			fmt.Println("Successfully loaded Kuhn poker.")
			return true
		},
	)

	d.RegisterNoArg(
		"leduc",
		"Loads settings for Leduc poker, a simplified version of poker with six possible hands and two betting rounds.",
		func() bool {
			sess.LoadLeduc()
			fmt.Println("Successfully loaded Leduc poker.")
			return true
		},
	)

	d.RegisterWithArg(
		"holdem",
		"file",
		"Loads Holdem game settings from a given .yml configuration file.",
		func(arg string) bool {
			path := removeOuterQuotes(arg)
			fmt.Printf("Loading Holdem settings from %s:\n", path)
			if err := sess.LoadHoldem(path); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
				return false
			}
			fmt.Println("Successfully loaded Holdem settings.")
			return true
		},
	)

	d.RegisterNoArg(
		"tree-size",
		"Provides an estimate of the size of the tree. Game settings must be loaded first.",
		func() bool { return runTreeSize(sess) },
	)

	d.RegisterNoArg(
		"solve",
		`Solves the game tree using Discounted CFR. It is recommended to first run "tree-size" to ensure that the tree fits in RAM.`,
		func() bool { return runSolve(sess) },
	)

	d.Run(os.Stdin)
}

func removeOuterQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '\'' || first == '"') && first == last {
		return s[1 : len(s)-1]
	}
	return s
}

func printNotLoaded() {
	fmt.Fprintln(os.Stderr, `Error: Game settings not loaded. Please run "kuhn", "leduc", or "holdem <file>" first.`)
}

func runTreeSize(sess *session.Session) bool {
	if !sess.Loaded() {
		printNotLoaded()
		return false
	}
	t, err := sess.Tree()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return false
	}
	fmt.Println(headerStyle.Render("Tree skeleton"))
	fmt.Printf("Total number of nodes: %d\n", len(t.AllNodes))
	fmt.Printf("Number of decision nodes: %d\n", t.NumDecisionNodes())
	fmt.Printf("Tree skeleton size: %s\n", sizefmt.Bytes(t.SkeletonSize()))
	fmt.Printf("Expected full tree size: %s\n", sizefmt.Bytes(t.EstimateFullTreeSize()))
	return true
}

func runSolve(sess *session.Session) bool {
	if !sess.Loaded() {
		printNotLoaded()
		return false
	}
	params := sess.Params()
	fmt.Printf(
		"Starting training. Target exploitability: %.5f%% Maximum iterations: %d\n",
		params.TargetExploitabilityPercent, params.MaxIterations,
	)

	result, err := sess.Solve(context.Background(), func(iteration int, exploitability float64, elapsed time.Duration) {
		fmt.Printf("Finished iteration %d. Exploitability: %.5f (%s elapsed)\n", iteration, exploitability, elapsed.Round(time.Millisecond))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return false
	}

	fmt.Println(headerStyle.Render("Finished training."))
	fmt.Printf("Player 0 expected value: %.5f\n", result.EV[0])
	fmt.Printf("Player 1 expected value: %.5f\n", result.EV[1])
	fmt.Printf("Exploitability: %.5f\n", result.Exploitability)
	fmt.Printf("Maximum stack allocator memory usage: %s\n", sizefmt.Bytes(sess.MaxArenaUsage()))

	if cli.Export != "" {
		t, err := sess.Tree()
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		data, err := output.Marshal(t, sess.Rules())
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		if err := os.WriteFile(cli.Export, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		fmt.Printf("Wrote strategy export to %s\n", cli.Export)
	}

	return true
}
