// README: Shipment input and quote result types.
package quote

import (
	"errors"
	"fmt"
	"math"

	"shipquote/internal/modules/tariff"
)

var (
	ErrInvalidShipment = errors.New("invalid shipment")
	ErrInvalidService  = errors.New("invalid service level")
)

// Shipment is one quote request. Zone ids are not checked against the
// directory; unknown ids price with neutral defaults.
type Shipment struct {
	OriginZone    string              `json:"origin_zone"`
	DestZone      string              `json:"dest_zone"`
	LengthIn      float64             `json:"length_in"`
	WidthIn       float64             `json:"width_in"`
	HeightIn      float64             `json:"height_in"`
	WeightLb      float64             `json:"weight_lb"`
	Service       tariff.ServiceLevel `json:"service"`
	DeclaredValue float64             `json:"declared_value"`
	Residential   bool                `json:"residential,omitempty"`
}

// Validate checks the shipment at the request boundary. The engine itself
// prices any shipment it is given.
func (s Shipment) Validate() error {
	if !s.Service.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidService, s.Service)
	}
	dims := []struct {
		name string
		v    float64
	}{
		{"length_in", s.LengthIn},
		{"width_in", s.WidthIn},
		{"height_in", s.HeightIn},
		{"weight_lb", s.WeightLb},
	}
	for _, d := range dims {
		if !(d.v > 0) || math.IsInf(d.v, 0) {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidShipment, d.name)
		}
	}
	if !(s.DeclaredValue >= 0) || math.IsInf(s.DeclaredValue, 0) {
		return fmt.Errorf("%w: declared_value must not be negative", ErrInvalidShipment)
	}
	return nil
}

// Breakdown carries every intermediate quantity of a quote.
type Breakdown struct {
	DimWeight      float64 `json:"dim_weight"`
	BillableWeight float64 `json:"billable_weight"`
	Miles          float64 `json:"miles"`
	ZoneFactor     float64 `json:"zone_factor"`
	ServiceFactor  float64 `json:"service_factor"`
	VariableCost   float64 `json:"variable_cost"`
	Subtotal       float64 `json:"subtotal"`
	FuelSurcharge  float64 `json:"fuel_surcharge"`
	PeakSurcharge  float64 `json:"peak_surcharge"`
	FixedFees      float64 `json:"fixed_fees"`
	Insurance      float64 `json:"insurance"`
	Total          float64 `json:"total"`
	ConfidenceBand float64 `json:"confidence_band"`
}

type Result struct {
	Shipment  Shipment  `json:"shipment"`
	Breakdown Breakdown `json:"breakdown"`
	Total     float64   `json:"total"`
	Band      float64   `json:"band"`
}

// Finite reports whether every number in the result is finite. A zero
// dim_divisor, for one, yields an infinite total.
func (r Result) Finite() bool {
	b := r.Breakdown
	for _, v := range []float64{
		b.DimWeight, b.BillableWeight, b.Miles, b.ZoneFactor, b.ServiceFactor,
		b.VariableCost, b.Subtotal, b.FuelSurcharge, b.PeakSurcharge,
		b.FixedFees, b.Insurance, b.Total, b.ConfidenceBand,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AllFinite reports whether every result is finite.
func AllFinite(results []Result) bool {
	for _, r := range results {
		if !r.Finite() {
			return false
		}
	}
	return true
}
