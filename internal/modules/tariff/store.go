// README: Preset store backed by PostgreSQL.
package tariff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists presets saved from the tariff editor.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// List returns stored presets oldest first.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, label, base_rate, per_mile, per_lb, dim_divisor,
		       fuel_pct, peak_pct, residential_fee,
		       service_standard, service_expedited, zone_multiplier_overrides
		FROM pricing_presets
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var overrides []byte
		err := rows.Scan(
			&p.ID, &p.Label, &p.BaseRate, &p.PerMile, &p.PerLb, &p.DimDivisor,
			&p.FuelPct, &p.PeakPct, &p.ResidentialFee,
			&p.ServiceMultiplier.Standard, &p.ServiceMultiplier.Expedited, &overrides,
		)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.ZoneMultiplierOverrides = map[string]float64{}
		if len(overrides) > 0 {
			if err := json.Unmarshal(overrides, &p.ZoneMultiplierOverrides); err != nil {
				return nil, fmt.Errorf("decode overrides for preset %s: %w", p.ID, err)
			}
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Insert stores p. Presets are immutable, so an existing id is left as is.
func (s *Store) Insert(ctx context.Context, p Preset) error {
	overrides := p.ZoneMultiplierOverrides
	if overrides == nil {
		overrides = map[string]float64{}
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO pricing_presets (
			id, label, base_rate, per_mile, per_lb, dim_divisor,
			fuel_pct, peak_pct, residential_fee,
			service_standard, service_expedited, zone_multiplier_overrides
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12::jsonb
		)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Label, p.BaseRate, p.PerMile, p.PerLb, p.DimDivisor,
		p.FuelPct, p.PeakPct, p.ResidentialFee,
		p.ServiceMultiplier.Standard, p.ServiceMultiplier.Expedited, string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert preset %s: %w", p.ID, err)
	}
	return nil
}
