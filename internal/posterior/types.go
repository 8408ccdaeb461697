package posterior

// #region draw
// Draw is one posterior sample together with its derived quantities. Each
// Draw is an independent immutable record owned by the caller.
type Draw struct {
	Index       int
	Beta        []float64
	Alpha       float64
	HazardTrt   float64 // exp((β_intercept + β_treatment)·α)
	HazardPbo   float64 // exp(β_intercept·α)
	HazardRatio float64 // exp(β_treatment·α)
	PredTrt     []float64
	PredPbo     []float64
}

// #endregion draw

// #region generator-config
// GeneratorConfig controls derived-quantity generation. The covariate-to-
// effect mapping is explicit rather than positional: InterceptIndex and
// TreatmentIndex name the coefficients the hazard derivation uses.
type GeneratorConfig struct {
	PredictiveDraws int    // predictive survival times per group per posterior sample
	InterceptIndex  int    // β index of the intercept coefficient
	TreatmentIndex  int    // β index of the treatment coefficient
	Seed            uint64 // predictive rng base seed; draw i uses Seed + i
	Workers         int    // parallel workers; 0 means GOMAXPROCS
}

// DefaultGeneratorConfig matches the two-column intercept+treatment design.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PredictiveDraws: 1000,
		InterceptIndex:  0,
		TreatmentIndex:  1,
		Seed:            1,
		Workers:         0,
	}
}

// #endregion generator-config
