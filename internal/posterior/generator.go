// Package posterior maps raw parameter draws to group hazards, hazard
// ratios, and posterior-predictive survival times.
package posterior

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// #region generator
// Generator derives per-draw quantities. It is pure given a parameter draw
// and the per-index rng seed, so draws are processed in parallel.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator validates the configuration.
func NewGenerator(config GeneratorConfig) (*Generator, error) {
	if config.PredictiveDraws < 0 {
		return nil, fmt.Errorf("predictive draws must be non-negative, got %d", config.PredictiveDraws)
	}
	if config.InterceptIndex < 0 || config.TreatmentIndex < 0 {
		return nil, fmt.Errorf("coefficient indices must be non-negative, got intercept=%d treatment=%d",
			config.InterceptIndex, config.TreatmentIndex)
	}
	if config.InterceptIndex == config.TreatmentIndex {
		return nil, fmt.Errorf("intercept and treatment indices must differ, both are %d", config.InterceptIndex)
	}
	return &Generator{config: config}, nil
}

// #endregion generator

// #region from-samples
// FromSamples derives quantities for every parameter draw. Each theta is a
// flat vector of P coefficients followed by the Weibull shape. Results keep
// the input order; reproducibility does not depend on worker scheduling
// because draw i always seeds its own rng with Seed + i.
func (g *Generator) FromSamples(thetas [][]float64) ([]Draw, error) {
	minLen := g.config.InterceptIndex + 2 // at least the named coefficients plus the shape
	if g.config.TreatmentIndex+2 > minLen {
		minLen = g.config.TreatmentIndex + 2
	}
	for i, theta := range thetas {
		if len(theta) < minLen {
			return nil, fmt.Errorf("draw %d has %d parameters, need at least %d", i, len(theta), minLen)
		}
		alpha := theta[len(theta)-1]
		if !(alpha > 0) {
			return nil, fmt.Errorf("draw %d has non-positive shape %g", i, alpha)
		}
	}

	draws := make([]Draw, len(thetas))
	workers := g.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(thetas) {
		workers = len(thetas)
	}

	var wg sync.WaitGroup
	indices := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				draws[i] = g.derive(i, thetas[i])
			}
		}()
	}
	for i := range thetas {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return draws, nil
}

// derive computes one draw's quantities. The two coefficient indices fix
// which effects the hazards are built from.
func (g *Generator) derive(index int, theta []float64) Draw {
	p := len(theta) - 1
	beta := make([]float64, p)
	copy(beta, theta[:p])
	alpha := theta[p]

	b0 := beta[g.config.InterceptIndex]
	b1 := beta[g.config.TreatmentIndex]

	d := Draw{
		Index:       index,
		Beta:        beta,
		Alpha:       alpha,
		HazardTrt:   math.Exp((b0 + b1) * alpha),
		HazardPbo:   math.Exp(b0 * alpha),
		HazardRatio: math.Exp(b1 * alpha),
	}

	if g.config.PredictiveDraws > 0 {
		src := rand.NewSource(g.config.Seed + uint64(index))
		d.PredTrt = predictiveTimes(alpha, d.HazardTrt, g.config.PredictiveDraws, src)
		d.PredPbo = predictiveTimes(alpha, d.HazardPbo, g.config.PredictiveDraws, src)
	}
	return d
}

// predictiveTimes simulates survival times from Weibull(shape, scale).
func predictiveTimes(shape, scale float64, n int, src rand.Source) []float64 {
	w := distuv.Weibull{K: shape, Lambda: scale, Src: src}
	times := make([]float64, n)
	for i := range times {
		times[i] = w.Rand()
	}
	return times
}

// #endregion from-samples
