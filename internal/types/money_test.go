package types

import (
	"errors"
	"math"
	"testing"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already rounded", 12.5, 12.5},
		{"round down", 160.8106187, 160.81},
		{"round down band", 12.8648, 12.86},
		{"round up", 12.8651, 12.87},
		{"half up on cents digit", 2.675, 2.68},
		{"half up small", 1.005, 1.01},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundCents(tt.in); got != tt.want {
				t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundCents_NonFinite(t *testing.T) {
	if got := RoundCents(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("RoundCents(+Inf) = %v", got)
	}
	if got := RoundCents(math.NaN()); !math.IsNaN(got) {
		t.Errorf("RoundCents(NaN) = %v", got)
	}
}

func TestLoadResult(t *testing.T) {
	var pending LoadResult
	if !pending.Pending() || pending.OK() {
		t.Errorf("zero LoadResult should be pending")
	}
	ok := Loaded("embed://zones.geojson", 12)
	if !ok.OK() || ok.Pending() {
		t.Errorf("Loaded result should be OK")
	}
	failed := LoadFailed("embed://zones.geojson", errors.New("boom"))
	if failed.OK() || failed.Pending() {
		t.Errorf("failed result should be neither OK nor pending")
	}
}
