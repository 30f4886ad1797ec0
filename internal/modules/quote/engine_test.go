package quote

import (
	"errors"
	"math"
	"sync"
	"testing"

	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
)

// fakeZones is an in-memory ZoneLookup.
type fakeZones struct {
	zones  map[string]zone.Zone
	matrix zone.Matrix
}

func (f *fakeZones) GetZone(id string) (zone.Zone, bool) {
	z, ok := f.zones[id]
	return z, ok
}

func (f *fakeZones) GetDistance(origin, dest string) float64 {
	if miles, ok := f.matrix.Lookup(origin, dest); ok {
		return miles
	}
	return zone.FallbackMiles
}

// fakeTariff is a fixed TariffSource.
type fakeTariff struct {
	params        tariff.Params
	confidencePct float64
}

func (f *fakeTariff) Snapshot() (tariff.Params, float64) { return f.params, f.confidencePct }

func testZones() *fakeZones {
	return &fakeZones{
		zones: map[string]zone.Zone{
			"ZONE-5-MIDWEST":  {ID: "ZONE-5-MIDWEST", Name: "Midwest", Multiplier: 1.00},
			"ZONE-10-PACIFIC": {ID: "ZONE-10-PACIFIC", Name: "Pacific Coast", Multiplier: 1.15, RemoteFee: 2.5},
			"ZONE-11-ALASKA":  {ID: "ZONE-11-ALASKA", Name: "Alaska", Multiplier: 1.85, RemoteFee: 25},
			"ZONE-12-HAWAII":  {ID: "ZONE-12-HAWAII", Name: "Hawaii", Multiplier: 1.75, RemoteFee: 20},
		},
		matrix: zone.Matrix{
			"ZONE-5-MIDWEST": {"ZONE-5-MIDWEST": 150},
		},
	}
}

func defaultTariff() *fakeTariff {
	return &fakeTariff{params: tariff.DefaultParams(), confidencePct: tariff.DefaultConfidencePct}
}

func exampleShipment() Shipment {
	return Shipment{
		OriginZone:    "ZONE-5-MIDWEST",
		DestZone:      "ZONE-10-PACIFIC",
		LengthIn:      12,
		WidthIn:       10,
		HeightIn:      8,
		WeightLb:      5,
		Service:       tariff.ServiceStandard,
		DeclaredValue: 150,
	}
}

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

func TestCalculateQuote_WorkedExample(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	r := e.CalculateQuote(exampleShipment())
	b := r.Breakdown

	approx(t, "dim_weight", b.DimWeight, 6.9065, 1e-4)
	approx(t, "billable_weight", b.BillableWeight, 6.9065, 1e-4)
	approx(t, "miles", b.Miles, 500, 0)
	approx(t, "zone_factor", b.ZoneFactor, 1.075, 1e-12)
	approx(t, "service_factor", b.ServiceFactor, 1.0, 0)
	approx(t, "variable_cost", b.VariableCost, 127.0719, 1e-4)
	approx(t, "subtotal", b.Subtotal, 140.9023, 1e-4)
	approx(t, "fuel_surcharge", b.FuelSurcharge, 16.9083, 1e-4)
	approx(t, "peak_surcharge", b.PeakSurcharge, 0, 0)
	approx(t, "fixed_fees", b.FixedFees, 2.5, 1e-12)
	approx(t, "insurance", b.Insurance, 0.5, 1e-12)

	if r.Total != 160.81 || b.Total != 160.81 {
		t.Errorf("total = %v, want 160.81", r.Total)
	}
	if r.Band != 12.86 || b.ConfidenceBand != 12.86 {
		t.Errorf("band = %v, want 12.86", r.Band)
	}
	if r.Shipment != exampleShipment() {
		t.Errorf("result should embed the shipment")
	}
}

func TestCalculateQuote_AllSurchargesStack(t *testing.T) {
	tf := defaultTariff()
	tf.params.PeakPct = 8
	e := NewEngine(testZones(), tf)

	r := e.CalculateQuote(Shipment{
		OriginZone:    "ZONE-11-ALASKA",
		DestZone:      "ZONE-12-HAWAII",
		LengthIn:      20,
		WidthIn:       20,
		HeightIn:      20,
		WeightLb:      10,
		Service:       tariff.ServiceExpedited,
		DeclaredValue: 1000,
		Residential:   true,
	})
	b := r.Breakdown

	approx(t, "zone_factor", b.ZoneFactor, 1.8, 1e-12)
	approx(t, "service_factor", b.ServiceFactor, 1.35, 0)
	approx(t, "fixed_fees", b.FixedFees, 3.5+25+20, 1e-12)
	approx(t, "insurance", b.Insurance, 9, 1e-12)
	approx(t, "peak_surcharge", b.PeakSurcharge, b.Subtotal*0.08, 1e-9)
	if r.Total != 484.01 {
		t.Errorf("total = %v, want 484.01", r.Total)
	}
}

func TestCalculateQuote_UnknownZonesUseDefaults(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	s := exampleShipment()
	s.OriginZone = "ZONE-X"
	s.DestZone = "ZONE-Y"

	b := e.CalculateQuote(s).Breakdown
	if b.ZoneFactor != 1 {
		t.Errorf("zone_factor = %v, want 1", b.ZoneFactor)
	}
	if b.FixedFees != 0 {
		t.Errorf("fixed_fees = %v, want 0", b.FixedFees)
	}
	if b.Miles != zone.FallbackMiles {
		t.Errorf("miles = %v, want fallback", b.Miles)
	}
}

func TestCalculateQuote_UsesMatrixDistance(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	s := exampleShipment()
	s.DestZone = "ZONE-5-MIDWEST"
	if got := e.CalculateQuote(s).Breakdown.Miles; got != 150 {
		t.Errorf("miles = %v, want 150", got)
	}
}

func TestCalculateQuote_BillableWeight(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	tests := []struct {
		name         string
		l, w, h, lb  float64
		wantBillable float64
	}{
		{"dense parcel bills actual weight", 5, 5, 5, 40, 40},
		{"bulky parcel bills dim weight", 24, 24, 24, 2, 24 * 24 * 24 / 139.0},
		{"equal", 139, 1, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := exampleShipment()
			s.LengthIn, s.WidthIn, s.HeightIn, s.WeightLb = tt.l, tt.w, tt.h, tt.lb
			b := e.CalculateQuote(s).Breakdown
			approx(t, "billable_weight", b.BillableWeight, tt.wantBillable, 1e-9)
			if b.BillableWeight < s.WeightLb || b.BillableWeight < b.DimWeight {
				t.Errorf("billable %v below weight %v or dim %v", b.BillableWeight, s.WeightLb, b.DimWeight)
			}
		})
	}
}

func TestCalculateQuote_Insurance(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	tests := []struct {
		declared float64
		want     float64
	}{
		{0, 0},
		{50, 0},
		{100, 0},
		{101, 0.01},
		{150, 0.5},
		{2600, 25},
	}
	for _, tt := range tests {
		s := exampleShipment()
		s.DeclaredValue = tt.declared
		approx(t, "insurance", e.CalculateQuote(s).Breakdown.Insurance, tt.want, 1e-9)
	}
}

func TestCalculateQuote_TotalNotBelowSubtotal(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	zones := []string{"ZONE-5-MIDWEST", "ZONE-10-PACIFIC", "ZONE-11-ALASKA", "ZONE-X"}
	for _, o := range zones {
		for _, d := range zones {
			for _, residential := range []bool{false, true} {
				s := exampleShipment()
				s.OriginZone, s.DestZone, s.Residential = o, d, residential
				r := e.CalculateQuote(s)
				// Total is rounded to cents; allow half a cent.
				if r.Total < r.Breakdown.Subtotal-0.005 {
					t.Errorf("%s->%s: total %v < subtotal %v", o, d, r.Total, r.Breakdown.Subtotal)
				}
			}
		}
	}
}

func TestCalculateQuote_ZeroDivisorIsNotFinite(t *testing.T) {
	tf := defaultTariff()
	tf.params.DimDivisor = 0
	r := NewEngine(testZones(), tf).CalculateQuote(exampleShipment())
	if r.Finite() {
		t.Errorf("expected non-finite result, got %+v", r.Breakdown)
	}
	if !math.IsInf(r.Total, 1) {
		t.Errorf("total = %v, want +Inf", r.Total)
	}
}

func TestCalculateQuote_ReadsLatestParams(t *testing.T) {
	tf := defaultTariff()
	e := NewEngine(testZones(), tf)
	before := e.CalculateQuote(exampleShipment()).Total

	tf.params.BaseRate = 10
	after := e.CalculateQuote(exampleShipment()).Total
	if after <= before {
		t.Errorf("quote should reflect the edited base rate: before %v after %v", before, after)
	}
}

func TestCalculateQuote_NoSideEffects(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	e.CalculateQuote(exampleShipment())
	if _, ok := e.CurrentQuote(); ok {
		t.Error("CalculateQuote must not set the current quote")
	}
	if len(e.BatchResults()) != 0 {
		t.Error("CalculateQuote must not touch the batch")
	}
}

func TestSetCurrentQuote(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	first := e.SetCurrentQuote(exampleShipment())

	got, ok := e.CurrentQuote()
	if !ok || got.Total != first.Total {
		t.Fatalf("CurrentQuote = %+v, %v", got, ok)
	}

	s := exampleShipment()
	s.WeightLb = 50
	second := e.SetCurrentQuote(s)
	got, _ = e.CurrentQuote()
	if got.Total != second.Total || got.Shipment.WeightLb != 50 {
		t.Errorf("current quote not replaced")
	}
}

func TestCalculateBatch_MatchesSingleQuotes(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	s1 := exampleShipment()
	s2 := exampleShipment()
	s2.OriginZone, s2.DestZone = "ZONE-11-ALASKA", "ZONE-5-MIDWEST"
	s2.Service = tariff.ServiceExpedited
	s2.Residential = true

	batch := e.CalculateBatch([]Shipment{s1, s2})
	if len(batch) != 2 {
		t.Fatalf("batch len = %d", len(batch))
	}
	if batch[0] != e.CalculateQuote(s1) || batch[1] != e.CalculateQuote(s2) {
		t.Errorf("batch results differ from single quotes")
	}

	remembered := e.BatchResults()
	if len(remembered) != 2 || remembered[1] != batch[1] {
		t.Errorf("batch not remembered")
	}

	e.CalculateBatch([]Shipment{s2})
	if got := e.BatchResults(); len(got) != 1 || got[0].Shipment != s2 {
		t.Errorf("batch not replaced: %v", got)
	}
}

func TestCalculateBatch_Empty(t *testing.T) {
	e := NewEngine(testZones(), defaultTariff())
	e.CalculateBatch([]Shipment{exampleShipment()})
	if got := e.CalculateBatch(nil); len(got) != 0 {
		t.Errorf("expected empty batch, got %v", got)
	}
	if len(e.BatchResults()) != 0 {
		t.Error("empty batch should replace the previous one")
	}
}

func TestShipment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Shipment)
		wantErr error
	}{
		{"valid", func(*Shipment) {}, nil},
		{"bad service", func(s *Shipment) { s.Service = "overnight" }, ErrInvalidService},
		{"empty service", func(s *Shipment) { s.Service = "" }, ErrInvalidService},
		{"zero length", func(s *Shipment) { s.LengthIn = 0 }, ErrInvalidShipment},
		{"negative weight", func(s *Shipment) { s.WeightLb = -1 }, ErrInvalidShipment},
		{"NaN height", func(s *Shipment) { s.HeightIn = math.NaN() }, ErrInvalidShipment},
		{"negative declared value", func(s *Shipment) { s.DeclaredValue = -5 }, ErrInvalidShipment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := exampleShipment()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetCurrentQuote_NonFiniteKeepsPrevious(t *testing.T) {
	tf := defaultTariff()
	e := NewEngine(testZones(), tf)
	good := e.SetCurrentQuote(exampleShipment())

	tf.params.DimDivisor = 0
	if r := e.SetCurrentQuote(exampleShipment()); r.Finite() {
		t.Fatalf("expected a non-finite result, got %+v", r.Breakdown)
	}

	got, ok := e.CurrentQuote()
	if !ok || got != good {
		t.Errorf("current quote = %+v, %v; want the last finite quote", got, ok)
	}
}

func TestCalculateBatch_NonFiniteKeepsPrevious(t *testing.T) {
	tf := defaultTariff()
	e := NewEngine(testZones(), tf)
	good := e.CalculateBatch([]Shipment{exampleShipment()})

	tf.params.DimDivisor = 0
	results := e.CalculateBatch([]Shipment{exampleShipment(), exampleShipment()})
	if len(results) != 2 || AllFinite(results) {
		t.Fatalf("expected two non-finite results, got %+v", results)
	}

	got := e.BatchResults()
	if len(got) != 1 || got[0] != good[0] {
		t.Errorf("batch = %+v; want the last finite batch", got)
	}
}

// splitTariff flips between two consistent (params, confidence) pairs.
type splitTariff struct {
	mu   sync.Mutex
	flip bool
}

func (s *splitTariff) Snapshot() (tariff.Params, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flip = !s.flip
	p := tariff.DefaultParams()
	if s.flip {
		p.DimDivisor = 166
		return p, 5
	}
	return p, 8
}

func TestCalculateBatch_OneSnapshot(t *testing.T) {
	e := NewEngine(testZones(), &splitTariff{})
	results := e.CalculateBatch([]Shipment{exampleShipment(), exampleShipment(), exampleShipment()})
	for i, r := range results[1:] {
		if r != results[0] {
			t.Errorf("result %d priced with a different snapshot: %+v", i+1, r.Breakdown)
		}
	}
}
