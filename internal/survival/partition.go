package survival

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidData flags a malformed or inconsistent input dataset. It is
// surfaced before any sampling begins.
var ErrInvalidData = errors.New("invalid survival data")

// #region partition-config
// PartitionConfig controls dataset validation during partitioning.
type PartitionConfig struct {
	// RequireBothGroups rejects datasets where either the event or the
	// censored group is empty. Fitting a model that needs both still
	// works on one-sided data, so callers may turn this off.
	RequireBothGroups bool
}

// DefaultPartitionConfig accepts one-sided datasets.
func DefaultPartitionConfig() PartitionConfig {
	return PartitionConfig{RequireBothGroups: false}
}

// #endregion partition-config

// #region partition
// Partition splits observations into the event group (Censored == false)
// and the right-censored group, preserving time/covariate row alignment
// within each group.
func Partition(obs []Observation, config PartitionConfig) (events, censored Group, err error) {
	if len(obs) == 0 {
		return Group{}, Group{}, fmt.Errorf("%w: empty dataset", ErrInvalidData)
	}

	p := len(obs[0].Covariates)
	if p == 0 {
		return Group{}, Group{}, fmt.Errorf("%w: observation 0 has no covariates", ErrInvalidData)
	}

	var eventTimes, censTimes []float64
	var eventRows, censRows []float64

	for i, o := range obs {
		if !(o.Time > 0) {
			return Group{}, Group{}, fmt.Errorf("%w: observation %d has non-positive time %g", ErrInvalidData, i, o.Time)
		}
		if len(o.Covariates) != p {
			return Group{}, Group{}, fmt.Errorf("%w: observation %d has %d covariates, want %d",
				ErrInvalidData, i, len(o.Covariates), p)
		}
		if o.Censored {
			censTimes = append(censTimes, o.Time)
			censRows = append(censRows, o.Covariates...)
		} else {
			eventTimes = append(eventTimes, o.Time)
			eventRows = append(eventRows, o.Covariates...)
		}
	}

	if config.RequireBothGroups {
		if len(eventTimes) == 0 {
			return Group{}, Group{}, fmt.Errorf("%w: no uncensored events in dataset", ErrInvalidData)
		}
		if len(censTimes) == 0 {
			return Group{}, Group{}, fmt.Errorf("%w: no censored observations in dataset", ErrInvalidData)
		}
	}

	events = makeGroup(eventTimes, eventRows, p)
	censored = makeGroup(censTimes, censRows, p)
	return events, censored, nil
}

// makeGroup assembles a Group from flattened rows. Empty groups keep a nil
// matrix since a zero-row Dense is not representable.
func makeGroup(times, rows []float64, p int) Group {
	if len(times) == 0 {
		return Group{}
	}
	return Group{
		Times: times,
		X:     mat.NewDense(len(times), p, rows),
	}
}

// #endregion partition
