package survival

import "gonum.org/v1/gonum/mat"

// #region observation
// Observation is one subject: an observed or censored survival time plus
// its covariate row (intercept included).
type Observation struct {
	Time       float64
	Censored   bool
	Covariates []float64
}

// #endregion observation

// #region group
// Group holds one side of the censoring partition as parallel rows:
// Times[i] and row i of X describe the same original observation.
type Group struct {
	Times []float64
	X     *mat.Dense // Len() rows × NumCovariates columns; nil when empty
}

// Len returns the number of observations in the group.
func (g Group) Len() int {
	return len(g.Times)
}

// NumCovariates returns the covariate dimension, or 0 for an empty group.
func (g Group) NumCovariates() int {
	if g.X == nil {
		return 0
	}
	_, c := g.X.Dims()
	return c
}

// Row returns one covariate row as a fresh slice.
func (g Group) Row(i int) []float64 {
	return mat.Row(nil, i, g.X)
}

// #endregion group
