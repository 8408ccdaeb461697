package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/posterior"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "fit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunRoundTrip(t *testing.T) {
	s := openStore(t)

	rec := RunRecord{
		RunID:         "run-1",
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Seed:          42,
		ConfigJSON:    `{"warmup":100}`,
		NumEvents:     800,
		NumCensored:   200,
		NumCovariates: 2,
		Acceptance:    0.23,
		ElapsedMs:     1500,
	}
	if err := s.CreateRun(rec); err != nil {
		t.Fatalf("create run: %v", err)
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Seed != 42 || got.NumEvents != 800 || got.NumCensored != 200 || got.NumCovariates != 2 {
		t.Errorf("run metadata mismatch: %+v", got)
	}
	if got.ConfigJSON != rec.ConfigJSON {
		t.Errorf("config json = %q, want %q", got.ConfigJSON, rec.ConfigJSON)
	}
	if math.Abs(got.Acceptance-0.23) > 1e-12 || got.ElapsedMs != 1500 {
		t.Errorf("diagnostics mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created at = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestDrawsRoundTrip(t *testing.T) {
	s := openStore(t)
	if err := s.CreateRun(RunRecord{RunID: "run-2", Seed: 1}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	draws := []posterior.Draw{
		{
			Index: 0, Beta: []float64{-0.2, 1.1}, Alpha: 0.95,
			HazardTrt: 2.4, HazardPbo: 0.8, HazardRatio: 3.0,
			PredTrt: []float64{1.5, 2.5}, PredPbo: []float64{0.5, 0.7},
		},
		{
			Index: 1, Beta: []float64{-0.1, 0.9}, Alpha: 1.05,
			HazardTrt: 2.2, HazardPbo: 0.9, HazardRatio: 2.44,
		},
	}
	if err := s.SaveDraws("run-2", draws); err != nil {
		t.Fatalf("save draws: %v", err)
	}

	got, err := s.LoadDraws("run-2")
	if err != nil {
		t.Fatalf("load draws: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(got))
	}
	for i := range draws {
		if got[i].Index != draws[i].Index || got[i].Alpha != draws[i].Alpha {
			t.Errorf("draw %d: scalar mismatch: %+v", i, got[i])
		}
		if got[i].HazardRatio != draws[i].HazardRatio {
			t.Errorf("draw %d: hazard ratio mismatch", i)
		}
		for j := range draws[i].Beta {
			if got[i].Beta[j] != draws[i].Beta[j] {
				t.Errorf("draw %d: beta[%d] = %g, want %g", i, j, got[i].Beta[j], draws[i].Beta[j])
			}
		}
	}
	if len(got[0].PredTrt) != 2 || got[0].PredTrt[1] != 2.5 {
		t.Errorf("predictive times mismatch: %v", got[0].PredTrt)
	}
	if got[1].PredTrt != nil {
		t.Errorf("expected nil predictive times for draw 1, got %v", got[1].PredTrt)
	}
}

func TestListAndLatestRuns(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		err := s.CreateRun(RunRecord{RunID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("create run %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("expected newest-first [c b], got %+v", runs)
	}

	latest, err := s.LatestRun()
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if latest.RunID != "c" {
		t.Errorf("latest run = %s, want c", latest.RunID)
	}
}

func TestDuplicateRunRejected(t *testing.T) {
	s := openStore(t)
	if err := s.CreateRun(RunRecord{RunID: "dup"}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := s.CreateRun(RunRecord{RunID: "dup"}); err == nil {
		t.Fatal("expected primary-key violation for duplicate run id")
	}
}

func TestFloatEncodingRoundTrip(t *testing.T) {
	in := []float64{0, -1.5, math.Pi, 1e300, -1e-300}
	out := decodeFloats(encodeFloats(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d: %g != %g", i, in[i], out[i])
		}
	}
	if encodeFloats(nil) != nil {
		t.Error("empty slice should encode to nil")
	}
	if decodeFloats(nil) != nil {
		t.Error("nil blob should decode to nil")
	}
}
