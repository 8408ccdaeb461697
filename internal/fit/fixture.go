package fit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"golang.org/x/exp/rand"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/mcmc"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/simdata"
	"github.com/Jiaqing-Zhang/weibull-aft/internal/summary"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. A fixture
// pins a simulated dataset, a full pipeline config, and the expectations a
// replay run must meet.
type Fixture struct {
	Description string            `json:"description"`
	Simulation  FixtureSimulation `json:"simulation"`
	Config      FixtureConfig     `json:"config"`
	Expected    FixtureExpected   `json:"expected"`
}

// FixtureSimulation mirrors simdata.Config with JSON tags.
type FixtureSimulation struct {
	Seed       uint64    `json:"seed"`
	N          int       `json:"n"`
	Beta       []float64 `json:"beta"`
	Shape      float64   `json:"shape"`
	TreatFrac  float64   `json:"treat_frac"`
	CensorTime float64   `json:"censor_time"`
}

// FixtureConfig bundles all sub-configs for a replay run.
type FixtureConfig struct {
	PriorBetaSD     float64 `json:"prior_beta_sd"`
	PriorAlphaRate  float64 `json:"prior_alpha_rate"`
	Warmup          int     `json:"warmup"`
	Kept            int     `json:"kept"`
	SamplerSeed     uint64  `json:"sampler_seed"`
	InitialScale    float64 `json:"initial_scale"`
	PredictiveDraws int     `json:"predictive_draws"`
	PredictiveSeed  uint64  `json:"predictive_seed"`
	InterceptIndex  int     `json:"intercept_index"`
	TreatmentIndex  int     `json:"treatment_index"`
}

// FixtureExpected captures the checks applied to the finished run.
type FixtureExpected struct {
	HazardRatioLevel    float64 `json:"hazard_ratio_level"`    // credible level, e.g. 0.95
	HazardRatioContains float64 `json:"hazard_ratio_contains"` // value the interval must bracket
	MinAcceptance       float64 `json:"min_acceptance"`        // 0 disables the check
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSimConfig converts a FixtureSimulation to a domain simdata.Config.
func (fs *FixtureSimulation) ToSimConfig() simdata.Config {
	return simdata.Config{
		N:          fs.N,
		Beta:       fs.Beta,
		Shape:      fs.Shape,
		TreatFrac:  fs.TreatFrac,
		CensorTime: fs.CensorTime,
	}
}

// ToConfig converts a FixtureConfig to a domain Config. Fixtures carry the
// full configuration so runs stay reproducible when defaults change.
func (fc *FixtureConfig) ToConfig() Config {
	config := DefaultConfig()
	config.Prior.BetaSD = fc.PriorBetaSD
	config.Prior.AlphaRate = fc.PriorAlphaRate
	config.Warmup = fc.Warmup
	config.Kept = fc.Kept
	config.Sampler.Seed = fc.SamplerSeed
	config.Sampler.InitialScale = fc.InitialScale
	config.Generator.PredictiveDraws = fc.PredictiveDraws
	config.Generator.Seed = fc.PredictiveSeed
	config.Generator.InterceptIndex = fc.InterceptIndex
	config.Generator.TreatmentIndex = fc.TreatmentIndex
	return config
}

// #endregion fixture-loader

// #region fixture-run

// Check is one fixture expectation's outcome.
type Check struct {
	Name   string
	Pass   bool
	Detail string
}

// Outcome captures the result of replaying one fixture.
type Outcome struct {
	Result   Result
	Interval summary.Interval
	Checks   []Check
}

// Passed reports whether every check passed.
func (o Outcome) Passed() bool {
	for _, c := range o.Checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

// RunFixture simulates the fixture's dataset, fits it with a random-walk
// oracle, and evaluates the recorded expectations.
func RunFixture(ctx context.Context, f *Fixture) (Outcome, error) {
	obs, err := simdata.Generate(rand.NewSource(f.Simulation.Seed), f.Simulation.ToSimConfig())
	if err != nil {
		return Outcome{}, fmt.Errorf("simulate dataset: %w", err)
	}

	config := f.Config.ToConfig()
	result, err := Run(ctx, obs, mcmc.NewRandomWalk(config.Sampler), config)
	if err != nil {
		return Outcome{}, err
	}

	level := f.Expected.HazardRatioLevel
	if level == 0 {
		level = 0.95
	}
	interval, err := summary.CredibleInterval(summary.HazardRatios(result.Draws), level)
	if err != nil {
		return Outcome{}, fmt.Errorf("hazard ratio interval: %w", err)
	}

	checks := []Check{}
	if target := f.Expected.HazardRatioContains; target != 0 {
		checks = append(checks, Check{
			Name: "hazard_ratio_interval",
			Pass: interval.Contains(target),
			Detail: fmt.Sprintf("%.0f%% interval [%.4f, %.4f] vs target %.4f",
				level*100, interval.Lo, interval.Hi, target),
		})
	}
	if floor := f.Expected.MinAcceptance; floor > 0 {
		checks = append(checks, Check{
			Name:   "acceptance_rate",
			Pass:   !math.IsNaN(result.Acceptance) && result.Acceptance >= floor,
			Detail: fmt.Sprintf("acceptance %.3f vs minimum %.3f", result.Acceptance, floor),
		})
	}

	return Outcome{Result: result, Interval: interval, Checks: checks}, nil
}

// #endregion fixture-run
