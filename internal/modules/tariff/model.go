// README: Tariff parameters, service levels and pricing presets.
package tariff

import "errors"

var (
	ErrPresetNotFound  = errors.New("preset not found")
	ErrInvalidOverride = errors.New("invalid tariff override")
)

type ServiceLevel string

const (
	ServiceStandard  ServiceLevel = "standard"
	ServiceExpedited ServiceLevel = "expedited"
)

func (s ServiceLevel) Valid() bool {
	return s == ServiceStandard || s == ServiceExpedited
}

type ServiceMultiplier struct {
	Standard  float64 `json:"standard"`
	Expedited float64 `json:"expedited"`
}

// For returns the multiplier for s. Anything other than standard is priced as
// expedited; callers validate the service level before quoting.
func (m ServiceMultiplier) For(s ServiceLevel) float64 {
	if s == ServiceStandard {
		return m.Standard
	}
	return m.Expedited
}

// Params is the full set of live pricing knobs. Percentages are 0-100.
// DimDivisor is a divisor; keeping it positive is the editor's job.
type Params struct {
	BaseRate          float64           `json:"base_rate"`
	PerMile           float64           `json:"per_mile"`
	PerLb             float64           `json:"per_lb"`
	DimDivisor        float64           `json:"dim_divisor"`
	FuelPct           float64           `json:"fuel_pct"`
	PeakPct           float64           `json:"peak_pct"`
	ResidentialFee    float64           `json:"residential_fee"`
	ServiceMultiplier ServiceMultiplier `json:"service_multiplier"`
}

// DefaultParams are the live values before any preset is applied.
func DefaultParams() Params {
	return Params{
		BaseRate:       4.0,
		PerMile:        0.25,
		PerLb:          0.30,
		DimDivisor:     139,
		FuelPct:        12,
		PeakPct:        0,
		ResidentialFee: 3.5,
		ServiceMultiplier: ServiceMultiplier{
			Standard:  1.0,
			Expedited: 1.35,
		},
	}
}

// DefaultConfidencePct is the default half-width of the quote confidence band.
const DefaultConfidencePct = 8.0

// Preset is a named snapshot of Params. Presets are never modified after
// creation.
type Preset struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Params
	// ZoneMultiplierOverrides is carried with the preset but not read by the
	// quote formula.
	ZoneMultiplierOverrides map[string]float64 `json:"zone_multiplier_overrides"`
}

func (p Preset) clone() Preset {
	out := p
	out.ZoneMultiplierOverrides = make(map[string]float64, len(p.ZoneMultiplierOverrides))
	for k, v := range p.ZoneMultiplierOverrides {
		out.ZoneMultiplierOverrides[k] = v
	}
	return out
}

// Patch edits a subset of the live fields; nil fields are left alone.
type Patch struct {
	BaseRate         *float64 `json:"base_rate,omitempty"`
	PerMile          *float64 `json:"per_mile,omitempty"`
	PerLb            *float64 `json:"per_lb,omitempty"`
	DimDivisor       *float64 `json:"dim_divisor,omitempty"`
	FuelPct          *float64 `json:"fuel_pct,omitempty"`
	PeakPct          *float64 `json:"peak_pct,omitempty"`
	ResidentialFee   *float64 `json:"residential_fee,omitempty"`
	ServiceStandard  *float64 `json:"service_multiplier_standard,omitempty"`
	ServiceExpedited *float64 `json:"service_multiplier_expedited,omitempty"`
	ConfidencePct    *float64 `json:"confidence_pct,omitempty"`
}

func (p Patch) apply(dst *Params) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&dst.BaseRate, p.BaseRate)
	set(&dst.PerMile, p.PerMile)
	set(&dst.PerLb, p.PerLb)
	set(&dst.DimDivisor, p.DimDivisor)
	set(&dst.FuelPct, p.FuelPct)
	set(&dst.PeakPct, p.PeakPct)
	set(&dst.ResidentialFee, p.ResidentialFee)
	set(&dst.ServiceMultiplier.Standard, p.ServiceStandard)
	set(&dst.ServiceMultiplier.Expedited, p.ServiceExpedited)
}
