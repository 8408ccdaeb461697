package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/fit"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/mcmc"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/runlog"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/store"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/summary"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/survival"
)

// #region main
func main() {
	dbPath := envOr("AFT_DB", "weibull_aft.db")

	dataPath := flag.String("data", "", "path to dataset CSV (time,event,covariates...)")
	timeCol := flag.String("time-col", "time", "header of the survival time column")
	eventCol := flag.String("event-col", "event", "header of the 0/1 event column")
	treatCol := flag.String("treatment-col", "treatment", "header of the treatment covariate")
	warmup := flag.Int("warmup", 15000, "warm-up draws discarded before collection")
	kept := flag.Int("kept", 5000, "posterior draws collected after warm-up")
	seed := flag.Uint64("seed", 1, "sampler rng seed")
	pred := flag.Int("pred", 1000, "predictive survival times per group per draw")
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fit --data path/to/dataset.csv [--warmup N] [--kept N] [--seed N] [--pred K]")
		os.Exit(2)
	}

	csvConfig := survival.DefaultCSVConfig()
	csvConfig.TimeColumn = *timeCol
	csvConfig.EventColumn = *eventCol
	obs, names, err := survival.LoadCSV(*dataPath, csvConfig)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	config := fit.DefaultConfig()
	config.Warmup = *warmup
	config.Kept = *kept
	config.Sampler.Seed = *seed
	config.Generator.Seed = *seed
	config.Generator.PredictiveDraws = *pred
	config.Generator.InterceptIndex = columnIndex(names, "intercept")
	config.Generator.TreatmentIndex = columnIndex(names, *treatCol)
	if config.Generator.InterceptIndex < 0 || config.Generator.TreatmentIndex < 0 {
		log.Fatalf("dataset must provide intercept and %q covariates, got %v", *treatCol, names)
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := fit.Run(ctx, obs, mcmc.NewRandomWalk(config.Sampler), config)
	if err != nil {
		log.Fatalf("fit failed: %v", err)
	}

	if err := persist(st, result, config, *seed); err != nil {
		log.Fatalf("persist failed: %v", err)
	}

	fmt.Printf("Run %s complete.\n", result.RunID)
	fmt.Printf("  Data:       %d events / %d censored / %d covariates\n",
		result.NumEvents, result.NumCensored, result.NumCovariates)
	fmt.Printf("  Sampler:    %d warmup + %d kept, acceptance %.3f\n",
		config.Warmup, config.Kept, result.Acceptance)
	fmt.Printf("  Elapsed:    %s\n", result.Elapsed)
	printQuantities(result, config.Generator.TreatmentIndex)
}

// #endregion main

// #region persist

func persist(st *store.Store, result fit.Result, config fit.Config, seed uint64) error {
	rec := store.RunRecord{
		RunID:         result.RunID,
		Seed:          seed,
		ConfigJSON:    config.JSON(),
		NumEvents:     result.NumEvents,
		NumCensored:   result.NumCensored,
		NumCovariates: result.NumCovariates,
		Acceptance:    result.Acceptance,
		ElapsedMs:     result.Elapsed.Milliseconds(),
	}
	if err := st.CreateRun(rec); err != nil {
		return err
	}
	if err := st.SaveDraws(result.RunID, result.Draws); err != nil {
		return err
	}

	detail, _ := json.Marshal(runlog.SampleDetail{
		Seed:       seed,
		Warmup:     config.Warmup,
		Kept:       config.Kept,
		Acceptance: result.Acceptance,
		FinalScale: result.FinalScale,
		ElapsedMs:  result.Elapsed.Milliseconds(),
	})
	if err := runlog.Log(st.DB(), runlog.Entry{
		RunID:      result.RunID,
		Stage:      "sample",
		DetailJSON: string(detail),
		Outcome:    "ok",
	}); err != nil {
		return err
	}
	return runlog.Log(st.DB(), runlog.Entry{
		RunID:   result.RunID,
		Stage:   "persist",
		Outcome: "ok",
	})
}

// #endregion persist

// #region output

func printQuantities(result fit.Result, treatmentIndex int) {
	ratios := summary.HazardRatios(result.Draws)
	iv, err := summary.CredibleInterval(ratios, 0.95)
	if err != nil {
		log.Printf("summary error: %v", err)
		return
	}
	betas, err := summary.Coefficients(result.Draws, treatmentIndex)
	if err != nil {
		log.Printf("summary error: %v", err)
		return
	}

	fmt.Printf("\nPosterior quantities (%d draws):\n", len(result.Draws))
	fmt.Printf("  %-22s %10s  %s\n", "Quantity", "Mean", "95% CrI")
	fmt.Printf("  %-22s %10.4f  [%.4f, %.4f]\n", "hazard ratio", summary.Mean(ratios), iv.Lo, iv.Hi)
	fmt.Printf("  %-22s %10.4f\n", "treatment coefficient", summary.Mean(betas))
	fmt.Printf("  %-22s %10.4f\n", "shape", summary.Mean(summary.Shapes(result.Draws)))
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func columnIndex(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

// #endregion helpers
