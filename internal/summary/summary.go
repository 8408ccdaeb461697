// Package summary reduces posterior draws to the numbers an analyst reads:
// means, credible intervals, and predictive survival curves.
package summary

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/posterior"
)

// #region interval
// Interval is a central credible interval at some level.
type Interval struct {
	Level float64
	Lo    float64
	Hi    float64
}

// Contains reports whether v lies inside the interval (inclusive).
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v <= iv.Hi
}

// CredibleInterval computes the central credible interval from empirical
// quantiles, e.g. level 0.95 uses the 2.5% and 97.5% quantiles.
func CredibleInterval(xs []float64, level float64) (Interval, error) {
	if len(xs) == 0 {
		return Interval{}, fmt.Errorf("no values to summarize")
	}
	if level <= 0 || level >= 1 {
		return Interval{}, fmt.Errorf("credible level must be in (0, 1), got %g", level)
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	tail := (1 - level) / 2
	return Interval{
		Level: level,
		Lo:    stat.Quantile(tail, stat.Empirical, sorted, nil),
		Hi:    stat.Quantile(1-tail, stat.Empirical, sorted, nil),
	}, nil
}

// #endregion interval

// #region series
// Mean is the arithmetic mean.
func Mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}

// HazardRatios extracts the hazard-ratio series from a set of draws.
func HazardRatios(draws []posterior.Draw) []float64 {
	xs := make([]float64, len(draws))
	for i, d := range draws {
		xs[i] = d.HazardRatio
	}
	return xs
}

// Shapes extracts the Weibull shape series from a set of draws.
func Shapes(draws []posterior.Draw) []float64 {
	xs := make([]float64, len(draws))
	for i, d := range draws {
		xs[i] = d.Alpha
	}
	return xs
}

// Coefficients extracts one β coefficient's series.
func Coefficients(draws []posterior.Draw, index int) ([]float64, error) {
	xs := make([]float64, len(draws))
	for i, d := range draws {
		if index < 0 || index >= len(d.Beta) {
			return nil, fmt.Errorf("coefficient index %d out of range for %d coefficients", index, len(d.Beta))
		}
		xs[i] = d.Beta[index]
	}
	return xs, nil
}

// #endregion series

// #region survival-curve
// SurvivalCurve estimates S(t) over a time grid as the pooled fraction of
// predictive survival times exceeding each grid point.
func SurvivalCurve(times []float64, grid []float64) []float64 {
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	curve := make([]float64, len(grid))
	for i, t := range grid {
		// first index with sorted[idx] > t
		idx := sort.SearchFloat64s(sorted, t)
		for idx < len(sorted) && sorted[idx] == t {
			idx++
		}
		if len(sorted) > 0 {
			curve[i] = float64(len(sorted)-idx) / float64(len(sorted))
		}
	}
	return curve
}

// TimeGrid builds n evenly spaced points on (0, max].
func TimeGrid(max float64, n int) []float64 {
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = max * float64(i+1) / float64(n)
	}
	return grid
}

// PooledPredictive concatenates one group's predictive times across draws.
// pickTrt selects the treatment group; otherwise placebo.
func PooledPredictive(draws []posterior.Draw, pickTrt bool) []float64 {
	var pooled []float64
	for _, d := range draws {
		if pickTrt {
			pooled = append(pooled, d.PredTrt...)
		} else {
			pooled = append(pooled, d.PredPbo...)
		}
	}
	return pooled
}

// #endregion survival-curve
