package posterior

import (
	"math"
	"testing"
)

func smallConfig() GeneratorConfig {
	config := DefaultGeneratorConfig()
	config.PredictiveDraws = 25
	return config
}

func TestHazardRatioIsOneForZeroTreatmentEffect(t *testing.T) {
	gen, err := NewGenerator(smallConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	thetas := [][]float64{
		{-0.5, 0, 1.0},
		{2.3, 0, 0.4},
		{0, 0, 7.7},
	}
	draws, err := gen.FromSamples(thetas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range draws {
		if d.HazardRatio != 1 {
			t.Errorf("draw %d: hazard ratio = %g, want exactly 1", d.Index, d.HazardRatio)
		}
		if d.HazardTrt != d.HazardPbo {
			t.Errorf("draw %d: group hazards differ with zero treatment effect", d.Index)
		}
	}
}

func TestDerivedHazardsMatchFormulas(t *testing.T) {
	gen, err := NewGenerator(smallConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	b0, b1, alpha := -1.0/6.0, 1.0, 1.3
	draws, err := gen.FromSamples([][]float64{{b0, b1, alpha}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := draws[0]

	if want := math.Exp((b0 + b1) * alpha); math.Abs(d.HazardTrt-want) > 1e-12 {
		t.Errorf("treatment hazard = %g, want %g", d.HazardTrt, want)
	}
	if want := math.Exp(b0 * alpha); math.Abs(d.HazardPbo-want) > 1e-12 {
		t.Errorf("placebo hazard = %g, want %g", d.HazardPbo, want)
	}
	if want := math.Exp(b1 * alpha); math.Abs(d.HazardRatio-want) > 1e-12 {
		t.Errorf("hazard ratio = %g, want %g", d.HazardRatio, want)
	}
	if math.Abs(d.HazardRatio-d.HazardTrt/d.HazardPbo) > 1e-12 {
		t.Error("hazard ratio should equal the ratio of group hazards")
	}
}

func TestExplicitCoefficientMapping(t *testing.T) {
	config := smallConfig()
	config.InterceptIndex = 2
	config.TreatmentIndex = 0
	gen, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	// theta = (β_trt, β_other, β_intercept, α)
	draws, err := gen.FromSamples([][]float64{{0.7, 9.9, -0.2, 1.1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Exp(0.7 * 1.1); math.Abs(draws[0].HazardRatio-want) > 1e-12 {
		t.Errorf("hazard ratio = %g, want %g (mapping must follow configured indices)", draws[0].HazardRatio, want)
	}
}

func TestPredictiveTimesReproduciblePerIndex(t *testing.T) {
	gen, err := NewGenerator(smallConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	thetas := [][]float64{
		{0.1, 0.5, 1.2},
		{-0.3, 0.8, 0.9},
		{0.0, 1.1, 1.5},
	}

	serial := smallConfig()
	serial.Workers = 1
	genSerial, _ := NewGenerator(serial)

	a, err := gen.FromSamples(thetas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := genSerial.FromSamples(thetas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		if len(a[i].PredTrt) != 25 || len(a[i].PredPbo) != 25 {
			t.Fatalf("draw %d: predictive lengths %d/%d, want 25/25", i, len(a[i].PredTrt), len(a[i].PredPbo))
		}
		for k := range a[i].PredTrt {
			if a[i].PredTrt[k] != b[i].PredTrt[k] || a[i].PredPbo[k] != b[i].PredPbo[k] {
				t.Fatalf("draw %d: predictive times depend on worker scheduling", i)
			}
			if a[i].PredTrt[k] <= 0 || a[i].PredPbo[k] <= 0 {
				t.Fatalf("draw %d: non-positive predictive survival time", i)
			}
		}
	}
}

func TestFromSamplesCopiesParameters(t *testing.T) {
	gen, err := NewGenerator(smallConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	theta := []float64{0.2, 0.3, 1.4}
	draws, err := gen.FromSamples([][]float64{theta})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	theta[0] = 99
	if draws[0].Beta[0] == 99 {
		t.Fatal("draw shares backing storage with input theta")
	}
}

func TestFromSamplesValidation(t *testing.T) {
	gen, err := NewGenerator(smallConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	if _, err := gen.FromSamples([][]float64{{0.1, 1.2}}); err == nil {
		t.Error("expected error for theta missing the treatment coefficient")
	}
	if _, err := gen.FromSamples([][]float64{{0.1, 0.2, -1}}); err == nil {
		t.Error("expected error for non-positive shape")
	}

	if _, err := NewGenerator(GeneratorConfig{PredictiveDraws: -1, TreatmentIndex: 1}); err == nil {
		t.Error("expected error for negative predictive draws")
	}
	if _, err := NewGenerator(GeneratorConfig{InterceptIndex: 1, TreatmentIndex: 1}); err == nil {
		t.Error("expected error for colliding coefficient indices")
	}
}
