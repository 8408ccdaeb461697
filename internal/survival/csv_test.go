package survival

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSVWithIntercept(t *testing.T) {
	in := "time,event,treatment\n2.5,1,1\n4.0,0,0\n"
	obs, names, err := ReadCSV(strings.NewReader(in), DefaultCSVConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if len(names) != 2 || names[0] != "intercept" || names[1] != "treatment" {
		t.Fatalf("unexpected covariate names: %v", names)
	}

	if obs[0].Time != 2.5 || obs[0].Censored {
		t.Errorf("row 1 parsed wrong: %+v", obs[0])
	}
	if obs[0].Covariates[0] != 1 || obs[0].Covariates[1] != 1 {
		t.Errorf("row 1 covariates = %v, want [1 1]", obs[0].Covariates)
	}
	if !obs[1].Censored {
		t.Error("event=0 row should be censored")
	}
	if obs[1].Covariates[1] != 0 {
		t.Errorf("row 2 treatment = %g, want 0", obs[1].Covariates[1])
	}
}

func TestReadCSVExplicitIntercept(t *testing.T) {
	in := "time,event,intercept,treatment\n1.0,1,1,0\n"
	config := DefaultCSVConfig()
	config.AddIntercept = false

	obs, names, err := ReadCSV(strings.NewReader(in), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "intercept" {
		t.Fatalf("unexpected covariate names: %v", names)
	}
	if len(obs[0].Covariates) != 2 {
		t.Fatalf("expected 2 covariates, got %v", obs[0].Covariates)
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"missing time column", "t,event,x\n1,1,0\n"},
		{"missing event column", "time,e,x\n1,1,0\n"},
		{"bad time value", "time,event,x\nabc,1,0\n"},
		{"bad event value", "time,event,x\n1,2,0\n"},
		{"bad covariate value", "time,event,x\n1,1,oops\n"},
		{"no data rows", "time,event,x\n"},
	}
	for _, tc := range cases {
		_, _, err := ReadCSV(strings.NewReader(tc.in), DefaultCSVConfig())
		if !errors.Is(err, ErrInvalidData) {
			t.Errorf("%s: expected ErrInvalidData, got %v", tc.name, err)
		}
	}
}
