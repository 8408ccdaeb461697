package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/fit"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	os.Exit(runFixtureMode(*fixturePath))
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := fit.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n", f.Description)
	}
	fmt.Printf("Dataset: n=%d seed=%d | Chain: %d warmup + %d kept\n\n",
		f.Simulation.N, f.Simulation.Seed, f.Config.Warmup, f.Config.Kept)

	outcome, err := fit.RunFixture(ctx, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	return printChecks(outcome)
}

// #endregion fixture-mode

// #region output

// printChecks outputs the expectation table and returns the exit code.
func printChecks(outcome fit.Outcome) int {
	fmt.Printf("%-22s| %-6s| %s\n", "Check", "Result", "Detail")
	fmt.Printf("%-22s+%-7s+%s\n", "----------------------", "-------", "----------------------------------------")

	failures := 0
	for _, c := range outcome.Checks {
		result := "OK"
		if !c.Pass {
			result = "FAIL"
			failures++
		}
		fmt.Printf("%-22s| %-6s| %s\n", c.Name, result, c.Detail)
	}

	fmt.Printf("\nSummary: %d checks, %d failed | acceptance=%.3f elapsed=%s\n",
		len(outcome.Checks), failures, outcome.Result.Acceptance, outcome.Result.Elapsed)

	if failures > 0 {
		return 1
	}
	return 0
}

// #endregion output
