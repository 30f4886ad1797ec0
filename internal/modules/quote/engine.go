// README: Quote engine: the pricing formula plus last-quote/last-batch state.
package quote

import (
	"math"
	"sync"

	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
	"shipquote/internal/types"
)

const (
	// insuranceThreshold is the declared value covered at no charge.
	insuranceThreshold = 100.0
	insuranceRate      = 0.01
)

// ZoneLookup supplies zone and distance facts.
type ZoneLookup interface {
	GetZone(id string) (zone.Zone, bool)
	GetDistance(origin, dest string) float64
}

// TariffSource supplies the live tariff parameters and confidence percentage
// as one consistent snapshot.
type TariffSource interface {
	Snapshot() (tariff.Params, float64)
}

// Engine prices shipments. CalculateQuote has no side effects; SetCurrentQuote
// and CalculateBatch additionally remember their results for presentation.
type Engine struct {
	zones  ZoneLookup
	tariff TariffSource

	mu      sync.RWMutex
	current *Result
	batch   []Result
}

func NewEngine(zones ZoneLookup, tariff TariffSource) *Engine {
	return &Engine{zones: zones, tariff: tariff}
}

// CalculateQuote prices s against the current zone data and a snapshot of the
// tariff parameters.
func (e *Engine) CalculateQuote(s Shipment) Result {
	p, confidencePct := e.tariff.Snapshot()
	return e.calculate(s, p, confidencePct)
}

func (e *Engine) calculate(s Shipment, p tariff.Params, confidencePct float64) Result {
	dimWeight := (s.LengthIn * s.WidthIn * s.HeightIn) / p.DimDivisor
	billable := math.Max(s.WeightLb, dimWeight)

	miles := e.zones.GetDistance(s.OriginZone, s.DestZone)

	origin, originOK := e.zones.GetZone(s.OriginZone)
	dest, destOK := e.zones.GetZone(s.DestZone)
	originMult, destMult := 1.0, 1.0
	if originOK {
		originMult = origin.Multiplier
	}
	if destOK {
		destMult = dest.Multiplier
	}
	zoneFactor := (originMult + destMult) / 2

	serviceFactor := p.ServiceMultiplier.For(s.Service)

	variableCost := p.PerMile*miles + p.PerLb*billable
	subtotal := (p.BaseRate + variableCost) * zoneFactor * serviceFactor

	fuel := subtotal * p.FuelPct / 100
	peak := subtotal * p.PeakPct / 100

	var fixedFees float64
	if s.Residential {
		fixedFees += p.ResidentialFee
	}
	if originOK {
		fixedFees += origin.RemoteFee
	}
	if destOK {
		fixedFees += dest.RemoteFee
	}

	insurance := math.Max(0, s.DeclaredValue-insuranceThreshold) * insuranceRate

	total := types.RoundCents(subtotal + fuel + peak + fixedFees + insurance)
	band := types.RoundCents(total * confidencePct / 100)

	return Result{
		Shipment: s,
		Breakdown: Breakdown{
			DimWeight:      dimWeight,
			BillableWeight: billable,
			Miles:          miles,
			ZoneFactor:     zoneFactor,
			ServiceFactor:  serviceFactor,
			VariableCost:   variableCost,
			Subtotal:       subtotal,
			FuelSurcharge:  fuel,
			PeakSurcharge:  peak,
			FixedFees:      fixedFees,
			Insurance:      insurance,
			Total:          total,
			ConfidenceBand: band,
		},
		Total: total,
		Band:  band,
	}
}

// SetCurrentQuote prices s and remembers it as the current quote. A result
// that is not finite is returned but not remembered.
func (e *Engine) SetCurrentQuote(s Shipment) Result {
	r := e.CalculateQuote(s)
	if !r.Finite() {
		return r
	}
	e.mu.Lock()
	e.current = &r
	e.mu.Unlock()
	return r
}

// CalculateBatch prices each shipment independently, in order, against one
// tariff snapshot, and replaces the remembered batch. A batch holding any
// non-finite result leaves the remembered batch alone.
func (e *Engine) CalculateBatch(shipments []Shipment) []Result {
	p, confidencePct := e.tariff.Snapshot()

	results := make([]Result, len(shipments))
	for i, s := range shipments {
		results[i] = e.calculate(s, p, confidencePct)
	}
	if !AllFinite(results) {
		return results
	}

	e.mu.Lock()
	e.batch = results
	e.mu.Unlock()
	return append([]Result(nil), results...)
}

// CurrentQuote returns the last quote stored by SetCurrentQuote.
func (e *Engine) CurrentQuote() (Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return Result{}, false
	}
	return *e.current, true
}

// BatchResults returns the last batch computed by CalculateBatch.
func (e *Engine) BatchResults() []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Result(nil), e.batch...)
}
