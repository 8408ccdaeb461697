package mcmc

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// #region config
// RandomWalkConfig holds tuning parameters for the Metropolis sampler.
type RandomWalkConfig struct {
	Seed          uint64  // rng seed; runs with equal seeds are identical
	InitialScale  float64 // per-component proposal sd before adaptation
	TargetAccept  float64 // acceptance rate targeted while adapting
	AdaptInterval int     // proposals between scale adjustments during warm-up
}

// DefaultRandomWalkConfig targets the classic 0.234 random-walk acceptance rate.
func DefaultRandomWalkConfig() RandomWalkConfig {
	return RandomWalkConfig{
		Seed:          1,
		InitialScale:  0.1,
		TargetAccept:  0.234,
		AdaptInterval: 50,
	}
}

// #endregion config

// #region stats
// SampleStats summarizes one sampling run.
type SampleStats struct {
	Proposals  int
	Accepted   int
	Acceptance float64 // acceptance rate over the kept phase
	FinalScale float64 // proposal sd after warm-up adaptation froze
}

// #endregion stats

// #region random-walk
// RandomWalk is an adaptive Gaussian random-walk Metropolis sampler. The
// proposal scale is adjusted toward TargetAccept during warm-up and frozen
// for the kept phase, preserving detailed balance where draws are collected.
type RandomWalk struct {
	config RandomWalkConfig
}

// NewRandomWalk creates a sampler with the given configuration.
func NewRandomWalk(config RandomWalkConfig) *RandomWalk {
	return &RandomWalk{config: config}
}

// Sample implements Oracle.
func (s *RandomWalk) Sample(ctx context.Context, target LogDensity, initial []float64, warmup, kept int) ([][]float64, error) {
	draws, _, err := s.SampleWithStats(ctx, target, initial, warmup, kept)
	return draws, err
}

// SampleWithStats is Sample plus run diagnostics.
func (s *RandomWalk) SampleWithStats(ctx context.Context, target LogDensity, initial []float64, warmup, kept int) ([][]float64, SampleStats, error) {
	if len(initial) == 0 {
		return nil, SampleStats{}, fmt.Errorf("empty initial point")
	}
	if warmup < 0 || kept < 0 {
		return nil, SampleStats{}, fmt.Errorf("negative draw counts: warmup=%d kept=%d", warmup, kept)
	}
	if s.config.InitialScale <= 0 {
		return nil, SampleStats{}, fmt.Errorf("proposal scale must be positive, got %g", s.config.InitialScale)
	}

	cur := make([]float64, len(initial))
	copy(cur, initial)
	curLP := target(cur)
	if math.IsNaN(curLP) || math.IsInf(curLP, -1) {
		return nil, SampleStats{}, fmt.Errorf("initial point has zero target density")
	}

	rng := rand.New(rand.NewSource(s.config.Seed))
	scale := s.config.InitialScale
	prop := make([]float64, len(cur))

	stats := SampleStats{}
	draws := make([][]float64, 0, kept)

	windowProposals, windowAccepts := 0, 0
	keptAccepts := 0

	total := warmup + kept
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, SampleStats{}, fmt.Errorf("sampling interrupted after %d of %d draws: %w", i, total, err)
		}

		for j := range cur {
			prop[j] = cur[j] + scale*rng.NormFloat64()
		}
		propLP := target(prop)

		// -Inf proposals always lose the ratio test; NaN never accepts.
		accept := propLP-curLP >= 0 || math.Log(rng.Float64()) < propLP-curLP
		if accept {
			copy(cur, prop)
			curLP = propLP
		}

		stats.Proposals++
		if accept {
			stats.Accepted++
		}

		if i < warmup {
			windowProposals++
			if accept {
				windowAccepts++
			}
			if s.config.AdaptInterval > 0 && windowProposals == s.config.AdaptInterval {
				rate := float64(windowAccepts) / float64(windowProposals)
				scale *= math.Exp(rate - s.config.TargetAccept)
				scale = clampScale(scale)
				windowProposals, windowAccepts = 0, 0
			}
			continue
		}

		if accept {
			keptAccepts++
		}
		draw := make([]float64, len(cur))
		copy(draw, cur)
		draws = append(draws, draw)
	}

	stats.FinalScale = scale
	if kept > 0 {
		stats.Acceptance = float64(keptAccepts) / float64(kept)
	}
	return draws, stats, nil
}

func clampScale(scale float64) float64 {
	const lo, hi = 1e-8, 1e3
	if scale < lo {
		return lo
	}
	if scale > hi {
		return hi
	}
	return scale
}

// #endregion random-walk
