// Package mcmc defines the posterior-sampling contract consumed by the fit
// pipeline, plus a self-contained random-walk Metropolis implementation.
package mcmc

import "context"

// #region log-density
// LogDensity evaluates the (unnormalized) log-density of a target
// distribution at a parameter point. Implementations must signal infeasible
// regions with -Inf and never panic for finite numeric input.
type LogDensity func(theta []float64) float64

// #endregion log-density

// #region oracle
// Oracle produces draws approximately distributed according to
// exp(target(θ)). Draws are returned in generation order after the sampler
// has internally discarded the first warmup states, so callers can rely on
// positional semantics. Any ergodic kernel qualifies; gradient use is an
// implementation detail.
type Oracle interface {
	Sample(ctx context.Context, target LogDensity, initial []float64, warmup, kept int) ([][]float64, error)
}

// #endregion oracle
