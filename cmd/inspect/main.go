package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/posterior"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/store"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/summary"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to weibull_aft.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail (empty with --latest picks newest)")
	latest := flag.Bool("latest", false, "show detail for the most recent run")
	level := flag.Float64("level", 0.95, "credible level for interval summaries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/weibull_aft.db [--last N] [--run id | --latest] [--level p] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runID != "" || *latest {
		if err := runDetailMode(st, *runID, *level, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(st, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string  `json:"run_id"`
	CreatedAt   string  `json:"created_at"`
	Seed        uint64  `json:"seed"`
	NumEvents   int     `json:"n_events"`
	NumCensored int     `json:"n_censored"`
	Acceptance  float64 `json:"acceptance"`
	ElapsedMs   int64   `json:"elapsed_ms"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:       r.RunID,
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Seed:        r.Seed,
			NumEvents:   r.NumEvents,
			NumCensored: r.NumCensored,
			Acceptance:  r.Acceptance,
			ElapsedMs:   r.ElapsedMs,
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %6s  %7s  %9s  %10s  %8s  %s\n",
		"Run", "Seed", "Events", "Censored", "Acceptance", "Elapsed", "Time")
	fmt.Printf("%-10s+-%6s+-%7s+-%9s+-%10s+-%8s+-%s\n",
		"----------", "------", "-------", "---------", "----------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %6d  %7d  %9d  %10.3f  %6.1fs  %s\n",
			shortID(r.RunID), r.Seed, r.NumEvents, r.NumCensored, r.Acceptance,
			float64(r.ElapsedMs)/1000, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type quantityOutput struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Lo   float64 `json:"lo"`
	Hi   float64 `json:"hi"`
}

type curvePoint struct {
	Time float64 `json:"time"`
	Trt  float64 `json:"s_trt"`
	Pbo  float64 `json:"s_pbo"`
}

type detailOutput struct {
	RunID       string           `json:"run_id"`
	CreatedAt   string           `json:"created_at"`
	Seed        uint64           `json:"seed"`
	NumEvents   int              `json:"n_events"`
	NumCensored int              `json:"n_censored"`
	Acceptance  float64          `json:"acceptance"`
	NumDraws    int              `json:"n_draws"`
	Level       float64          `json:"level"`
	Quantities  []quantityOutput `json:"quantities"`
	Curve       []curvePoint     `json:"survival_curve,omitempty"`
	ConfigJSON  string           `json:"config_json,omitempty"`
}

func runDetailMode(st *store.Store, runID string, level float64, jsonOut bool) error {
	var rec store.RunRecord
	var err error
	if runID == "" {
		rec, err = st.LatestRun()
	} else {
		rec, err = st.GetRun(runID)
	}
	if err != nil {
		return err
	}

	draws, err := st.LoadDraws(rec.RunID)
	if err != nil {
		return err
	}
	if len(draws) == 0 {
		return fmt.Errorf("run %s has no draws", rec.RunID)
	}

	quantities, err := summarize(draws, level)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:       rec.RunID,
		CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Seed:        rec.Seed,
		NumEvents:   rec.NumEvents,
		NumCensored: rec.NumCensored,
		Acceptance:  rec.Acceptance,
		NumDraws:    len(draws),
		Level:       level,
		Quantities:  quantities,
		Curve:       survivalCurve(draws),
		ConfigJSON:  rec.ConfigJSON,
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Seed:       %d\n", out.Seed)
	fmt.Printf("Data:       %d events / %d censored\n", out.NumEvents, out.NumCensored)
	fmt.Printf("Acceptance: %.3f\n", out.Acceptance)
	fmt.Printf("Draws:      %d\n", out.NumDraws)

	fmt.Printf("\nPosterior quantities (%.0f%% intervals):\n", level*100)
	fmt.Printf("  %-15s %10s  %s\n", "Quantity", "Mean", "Interval")
	for _, q := range out.Quantities {
		fmt.Printf("  %-15s %10.4f  [%.4f, %.4f]\n", q.Name, q.Mean, q.Lo, q.Hi)
	}

	if len(out.Curve) > 0 {
		fmt.Printf("\nPredictive survival S(t):\n")
		fmt.Printf("  %8s  %8s  %8s\n", "t", "trt", "pbo")
		for _, pt := range out.Curve {
			fmt.Printf("  %8.3f  %8.3f  %8.3f\n", pt.Time, pt.Trt, pt.Pbo)
		}
	}
	return nil
}

// survivalCurve estimates both groups' predictive survival fractions on a
// shared grid. Runs fitted with --pred 0 have no predictive times and get
// no curve.
func survivalCurve(draws []posterior.Draw) []curvePoint {
	trt := summary.PooledPredictive(draws, true)
	pbo := summary.PooledPredictive(draws, false)
	if len(trt) == 0 || len(pbo) == 0 {
		return nil
	}

	maxT := 0.0
	for _, t := range trt {
		if t > maxT {
			maxT = t
		}
	}
	for _, t := range pbo {
		if t > maxT {
			maxT = t
		}
	}

	grid := summary.TimeGrid(maxT, 10)
	sTrt := summary.SurvivalCurve(trt, grid)
	sPbo := summary.SurvivalCurve(pbo, grid)

	curve := make([]curvePoint, len(grid))
	for i := range grid {
		curve[i] = curvePoint{Time: grid[i], Trt: sTrt[i], Pbo: sPbo[i]}
	}
	return curve
}

func summarize(draws []posterior.Draw, level float64) ([]quantityOutput, error) {
	series := []struct {
		name string
		xs   []float64
	}{
		{"hazard_trt", extract(draws, func(d posterior.Draw) float64 { return d.HazardTrt })},
		{"hazard_pbo", extract(draws, func(d posterior.Draw) float64 { return d.HazardPbo })},
		{"hazard_ratio", summary.HazardRatios(draws)},
		{"shape", summary.Shapes(draws)},
	}

	out := make([]quantityOutput, 0, len(series))
	for _, s := range series {
		iv, err := summary.CredibleInterval(s.xs, level)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", s.name, err)
		}
		out = append(out, quantityOutput{
			Name: s.name,
			Mean: summary.Mean(s.xs),
			Lo:   iv.Lo,
			Hi:   iv.Hi,
		})
	}
	return out, nil
}

func extract(draws []posterior.Draw, pick func(posterior.Draw) float64) []float64 {
	xs := make([]float64, len(draws))
	for i, d := range draws {
		xs[i] = pick(d)
	}
	return xs
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
