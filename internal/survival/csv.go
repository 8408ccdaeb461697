package survival

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// #region csv-config
// CSVConfig controls how a tabular dataset is read.
type CSVConfig struct {
	TimeColumn   string // header of the time column
	EventColumn  string // header of the 0/1 event-indicator column (1 = event observed)
	AddIntercept bool   // prepend a constant 1.0 covariate column
}

// DefaultCSVConfig matches the simulate tool's output layout.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{
		TimeColumn:   "time",
		EventColumn:  "event",
		AddIntercept: true,
	}
}

// #endregion csv-config

// #region load-csv
// LoadCSV reads observations from a headered CSV file. Every column other
// than the time and event columns is treated as a covariate, in file order.
// Returns the observations and the covariate names (including "intercept"
// when one is added).
func LoadCSV(path string, config CSVConfig) ([]Observation, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, config)
}

// ReadCSV is LoadCSV for an already-open reader.
func ReadCSV(r io.Reader, config CSVConfig) ([]Observation, []string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", ErrInvalidData, err)
	}

	timeIdx, eventIdx := -1, -1
	var covIdx []int
	var names []string
	if config.AddIntercept {
		names = append(names, "intercept")
	}
	for i, h := range header {
		switch h {
		case config.TimeColumn:
			timeIdx = i
		case config.EventColumn:
			eventIdx = i
		default:
			covIdx = append(covIdx, i)
			names = append(names, h)
		}
	}
	if timeIdx < 0 {
		return nil, nil, fmt.Errorf("%w: missing time column %q", ErrInvalidData, config.TimeColumn)
	}
	if eventIdx < 0 {
		return nil, nil, fmt.Errorf("%w: missing event column %q", ErrInvalidData, config.EventColumn)
	}

	var obs []Observation
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrInvalidData, line+1, err)
		}
		line++

		t, err := strconv.ParseFloat(rec[timeIdx], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: bad time %q", ErrInvalidData, line, rec[timeIdx])
		}
		ev, err := strconv.ParseFloat(rec[eventIdx], 64)
		if err != nil || (ev != 0 && ev != 1) {
			return nil, nil, fmt.Errorf("%w: line %d: event indicator must be 0 or 1, got %q", ErrInvalidData, line, rec[eventIdx])
		}

		covs := make([]float64, 0, len(covIdx)+1)
		if config.AddIntercept {
			covs = append(covs, 1.0)
		}
		for _, ci := range covIdx {
			v, err := strconv.ParseFloat(rec[ci], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: bad covariate %q in column %q", ErrInvalidData, line, rec[ci], header[ci])
			}
			covs = append(covs, v)
		}

		obs = append(obs, Observation{
			Time:       t,
			Censored:   ev == 0,
			Covariates: covs,
		})
	}
	if len(obs) == 0 {
		return nil, nil, fmt.Errorf("%w: no data rows", ErrInvalidData)
	}
	return obs, names, nil
}

// #endregion load-csv
