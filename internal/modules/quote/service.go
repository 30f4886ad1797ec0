// README: Quote service wires the engine to the optional Redis mirror.
package quote

import (
	"context"
	"log"
)

// Mirror shares presentation state between API instances.
type Mirror interface {
	SaveCurrent(ctx context.Context, r Result) error
	SaveBatch(ctx context.Context, results []Result) error
	Current(ctx context.Context) (Result, bool, error)
	Batch(ctx context.Context) ([]Result, bool, error)
}

type Service struct {
	engine *Engine
	mirror Mirror
}

// NewService returns a Service. mirror may be nil.
func NewService(engine *Engine, mirror Mirror) *Service {
	return &Service{engine: engine, mirror: mirror}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Quote prices a shipment and makes it the current quote.
func (s *Service) Quote(ctx context.Context, sh Shipment) Result {
	r := s.engine.SetCurrentQuote(sh)
	if s.mirror != nil && r.Finite() {
		if err := s.mirror.SaveCurrent(ctx, r); err != nil {
			log.Printf("quote: failed to mirror current quote: %v", err)
		}
	}
	return r
}

// Batch prices shipments and makes them the current batch.
func (s *Service) Batch(ctx context.Context, shipments []Shipment) []Result {
	results := s.engine.CalculateBatch(shipments)
	if s.mirror != nil && AllFinite(results) {
		if err := s.mirror.SaveBatch(ctx, results); err != nil {
			log.Printf("quote: failed to mirror batch: %v", err)
		}
	}
	return results
}

// Current returns this instance's current quote, falling back to the mirror.
func (s *Service) Current(ctx context.Context) (Result, bool) {
	if r, ok := s.engine.CurrentQuote(); ok {
		return r, true
	}
	if s.mirror == nil {
		return Result{}, false
	}
	r, ok, err := s.mirror.Current(ctx)
	if err != nil {
		log.Printf("quote: failed to read mirrored quote: %v", err)
		return Result{}, false
	}
	return r, ok
}

// LastBatch returns this instance's last batch, falling back to the mirror.
func (s *Service) LastBatch(ctx context.Context) []Result {
	if results := s.engine.BatchResults(); len(results) > 0 {
		return results
	}
	if s.mirror == nil {
		return nil
	}
	results, _, err := s.mirror.Batch(ctx)
	if err != nil {
		log.Printf("quote: failed to read mirrored batch: %v", err)
		return nil
	}
	return results
}
