package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shipquote/internal/modules/quote"
	"shipquote/internal/modules/zone"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCmd(t *testing.T) {
	out, err := runCmd(t, "quote",
		"--matrix", "embed://none.json",
		"--origin", "ZONE-5-MIDWEST", "--dest", "ZONE-10-PACIFIC",
		"--length", "12", "--width", "10", "--height", "8",
		"--weight", "5", "--declared-value", "150",
	)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	var r quote.Result
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if r.Total != 160.81 {
		t.Errorf("total = %v, want 160.81", r.Total)
	}
}

func TestQuoteCmd_Overrides(t *testing.T) {
	out, err := runCmd(t, "quote",
		"--matrix", "embed://none.json",
		"--overrides", "fuel_pct=0",
		"--origin", "ZONE-5-MIDWEST", "--dest", "ZONE-5-MIDWEST",
		"--length", "1", "--width", "1", "--height", "1", "--weight", "1",
	)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	var r quote.Result
	_ = json.Unmarshal([]byte(out), &r)
	// (4 + 0.25*500 + 0.30*1) * 1 * 1 with no fuel.
	if r.Total != 129.3 || r.Breakdown.FuelSurcharge != 0 {
		t.Errorf("unexpected result: total %v fuel %v", r.Total, r.Breakdown.FuelSurcharge)
	}
}

func TestQuoteCmd_Errors(t *testing.T) {
	base := []string{"quote", "--origin", "A", "--dest", "B", "--length", "1", "--width", "1", "--height", "1", "--weight", "1"}
	tests := []struct {
		name  string
		extra []string
	}{
		{"bad service", []string{"--service", "overnight"}},
		{"unknown preset", []string{"--preset", "nope"}},
		{"bad override", []string{"--overrides", "fuel_pct=abc"}},
		{"zero divisor", []string{"--overrides", "dim_divisor=0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCmd(t, append(base, tt.extra...)...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBatchCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipments.json")
	body := `[
		{"origin_zone":"ZONE-5-MIDWEST","dest_zone":"ZONE-10-PACIFIC","length_in":12,"width_in":10,"height_in":8,"weight_lb":5,"service":"standard","declared_value":150},
		{"origin_zone":"ZONE-11-ALASKA","dest_zone":"ZONE-12-HAWAII","length_in":20,"width_in":20,"height_in":20,"weight_lb":10,"service":"expedited","declared_value":1000,"residential":true}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "batch", path, "--matrix", "embed://none.json")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var results []quote.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 2 || results[0].Total != 160.81 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[1].Breakdown.FixedFees != 48.5 {
		t.Errorf("fixed fees = %v, want 48.5", results[1].Breakdown.FixedFees)
	}
}

func TestBatchCmd_NotFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipments.json")
	body := `[{"origin_zone":"ZONE-5-MIDWEST","dest_zone":"ZONE-10-PACIFIC","length_in":12,"width_in":10,"height_in":8,"weight_lb":5,"service":"standard"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "batch", path, "--matrix", "embed://none.json", "--overrides", "dim_divisor=0")
	if err == nil || !strings.Contains(err.Error(), "not finite") {
		t.Fatalf("expected a not finite error, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestZonesCmd(t *testing.T) {
	out, err := runCmd(t, "zones")
	if err != nil {
		t.Fatalf("zones: %v", err)
	}
	var zones []zone.Zone
	if err := json.Unmarshal([]byte(out), &zones); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(zones) != 12 {
		t.Errorf("expected 12 zones, got %d", len(zones))
	}
}
