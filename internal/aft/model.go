// Package aft evaluates the joint log-posterior of a Bayesian Weibull
// accelerated-failure-time regression over a right-censored dataset.
package aft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/survival"
)

// #region prior-config
// PriorConfig holds the prior hyperparameters.
type PriorConfig struct {
	BetaSD    float64 // sd of the independent Normal(0, BetaSD) prior on each coefficient
	AlphaRate float64 // rate of the Exponential prior on the Weibull shape
}

// DefaultPriorConfig returns weakly informative defaults.
func DefaultPriorConfig() PriorConfig {
	return PriorConfig{
		BetaSD:    100,
		AlphaRate: 1,
	}
}

// #endregion prior-config

// #region model
// Model is an immutable log-posterior evaluator. The parameter vector is
// flat: P regression coefficients followed by the Weibull shape.
//
// Uncensored observations contribute Weibull log-density terms; censored
// observations contribute log-survival terms, since all that is known is
// that the subject survived at least to the recorded time. Both use the
// shared scale λ_i = exp((x_i·β)·α).
type Model struct {
	events   survival.Group
	censored survival.Group
	p        int

	betaPrior  distuv.Normal
	alphaPrior distuv.Exponential
}

// NewModel builds a model over a censoring partition.
func NewModel(events, censored survival.Group, config PriorConfig) (*Model, error) {
	if config.BetaSD <= 0 {
		return nil, fmt.Errorf("prior beta sd must be positive, got %g", config.BetaSD)
	}
	if config.AlphaRate <= 0 {
		return nil, fmt.Errorf("prior alpha rate must be positive, got %g", config.AlphaRate)
	}
	if events.Len() == 0 && censored.Len() == 0 {
		return nil, fmt.Errorf("%w: both groups empty", survival.ErrInvalidData)
	}

	p := events.NumCovariates()
	if p == 0 {
		p = censored.NumCovariates()
	}
	if events.Len() > 0 && censored.Len() > 0 && events.NumCovariates() != censored.NumCovariates() {
		return nil, fmt.Errorf("%w: covariate dimension mismatch between groups (%d vs %d)",
			survival.ErrInvalidData, events.NumCovariates(), censored.NumCovariates())
	}

	return &Model{
		events:   events,
		censored: censored,
		p:        p,
		betaPrior: distuv.Normal{
			Mu:    0,
			Sigma: config.BetaSD,
		},
		alphaPrior: distuv.Exponential{
			Rate: config.AlphaRate,
		},
	}, nil
}

// NumCoeff returns the number of regression coefficients P.
func (m *Model) NumCoeff() int {
	return m.p
}

// Dim returns the parameter vector length (P coefficients + shape).
func (m *Model) Dim() int {
	return m.p + 1
}

// InitialPoint returns a feasible starting parameter vector: zero
// coefficients and unit shape.
func (m *Model) InitialPoint() []float64 {
	theta := make([]float64, m.Dim())
	theta[m.p] = 1
	return theta
}

// #endregion model

// #region log-posterior
// LogPosterior evaluates log-prior + log-likelihood at theta. Infeasible or
// numerically overflowing parameter values yield -Inf rather than an error,
// so a sampler can treat them as zero-density regions and move on.
func (m *Model) LogPosterior(theta []float64) float64 {
	if len(theta) != m.Dim() {
		return math.Inf(-1)
	}
	beta := theta[:m.p]
	alpha := theta[m.p]
	if !(alpha > 0) { // also rejects NaN
		return math.Inf(-1)
	}

	lp := m.alphaPrior.LogProb(alpha)
	for _, b := range beta {
		lp += m.betaPrior.LogProb(b)
	}

	lp += m.groupLogLik(m.events, beta, alpha, false)
	lp += m.groupLogLik(m.censored, beta, alpha, true)

	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

// groupLogLik sums the group's likelihood contributions: Weibull log-density
// for events, log-survival for censored observations. An empty group
// contributes exactly 0.
func (m *Model) groupLogLik(g survival.Group, beta []float64, alpha float64, censored bool) float64 {
	if g.Len() == 0 {
		return 0
	}

	betaVec := mat.NewVecDense(len(beta), beta)
	var linpred mat.VecDense
	linpred.MulVec(g.X, betaVec)

	var sum float64
	for i, t := range g.Times {
		lambda := Scale(linpred.AtVec(i), alpha)
		if !(lambda > 0) || math.IsInf(lambda, 1) {
			// exp overflow or NaN in the scale: zero-density region
			return math.Inf(-1)
		}
		w := distuv.Weibull{K: alpha, Lambda: lambda}
		if censored {
			sum += w.LogSurvival(t)
		} else {
			sum += w.LogProb(t)
		}
	}
	return sum
}

// Scale maps one linear-predictor value to the Weibull scale,
// λ = exp((x·β)·α). The shape-scaled exponent is what makes covariates act
// multiplicatively on the time axis.
func Scale(linpred, alpha float64) float64 {
	return math.Exp(linpred * alpha)
}

// #endregion log-posterior
