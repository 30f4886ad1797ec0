// README: Tariff model: live editable parameters plus append-only presets.
package tariff

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"shipquote/internal/types"
)

// Fetcher reads the raw bytes of a static source.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// PresetStore persists presets saved at runtime. It is optional.
type PresetStore interface {
	List(ctx context.Context) ([]Preset, error)
	Insert(ctx context.Context, p Preset) error
}

// Model owns the live tariff parameters and the preset list. Live values are
// edited in place; presets are immutable once appended.
type Model struct {
	fetcher Fetcher
	store   PresetStore

	mu            sync.RWMutex
	live          Params
	confidencePct float64
	presets       []Preset
	current       *Preset
	presetLoad    types.LoadResult
}

// NewModel returns a Model seeded with DefaultParams. store may be nil.
func NewModel(fetcher Fetcher, store PresetStore) *Model {
	return &Model{
		fetcher:       fetcher,
		store:         store,
		live:          DefaultParams(),
		confidencePct: DefaultConfidencePct,
	}
}

// LoadPresets replaces the preset list from location and applies the first
// preset. On failure the list and live values are left untouched.
func (m *Model) LoadPresets(ctx context.Context, location string) types.LoadResult {
	res := m.loadPresets(ctx, location)
	m.mu.Lock()
	m.presetLoad = res
	m.mu.Unlock()
	return res
}

func (m *Model) loadPresets(ctx context.Context, location string) types.LoadResult {
	data, err := m.fetcher.Fetch(ctx, location)
	if err != nil {
		log.Printf("tariff: failed to load presets from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}
	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		err = fmt.Errorf("decode presets: %w", err)
		log.Printf("tariff: failed to load presets from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}

	m.mu.Lock()
	m.presets = make([]Preset, 0, len(presets))
	for _, p := range presets {
		m.presets = append(m.presets, p.clone())
	}
	if len(m.presets) > 0 {
		m.applyLocked(m.presets[0])
	}
	m.mu.Unlock()
	return types.Loaded(location, len(presets))
}

// LoadStoredPresets appends presets previously saved through the PresetStore.
// Ids already in the list are skipped.
func (m *Model) LoadStoredPresets(ctx context.Context) types.LoadResult {
	const source = "preset store"
	if m.store == nil {
		return types.Loaded(source, 0)
	}
	stored, err := m.store.List(ctx)
	if err != nil {
		log.Printf("tariff: failed to list stored presets: %v", err)
		return types.LoadFailed(source, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(m.presets))
	for _, p := range m.presets {
		seen[p.ID] = true
	}
	added := 0
	for _, p := range stored {
		if seen[p.ID] {
			continue
		}
		m.presets = append(m.presets, p.clone())
		seen[p.ID] = true
		added++
	}
	return types.Loaded(source, added)
}

// ApplyPreset overwrites every live field from p and records p as current.
func (m *Model) ApplyPreset(p Preset) {
	m.mu.Lock()
	m.applyLocked(p)
	m.mu.Unlock()
}

func (m *Model) applyLocked(p Preset) {
	m.live = p.Params
	cp := p.clone()
	m.current = &cp
}

// ApplyPresetByID applies the preset with the given id.
func (m *Model) ApplyPresetByID(id string) (Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.presets {
		if p.ID == id {
			m.applyLocked(p)
			return p.clone(), nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
}

// SaveAsPreset snapshots the live values (including edits made since the last
// apply) into a new preset, appends it and makes it current. A PresetStore
// failure is logged; the in-memory preset is kept either way.
func (m *Model) SaveAsPreset(ctx context.Context, label string) Preset {
	m.mu.Lock()
	p := Preset{
		ID:                      newPresetID(),
		Label:                   label,
		Params:                  m.live,
		ZoneMultiplierOverrides: map[string]float64{},
	}
	m.presets = append(m.presets, p)
	cp := p.clone()
	m.current = &cp
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Insert(ctx, p); err != nil {
			log.Printf("tariff: failed to persist preset %s: %v", p.ID, err)
		}
	}
	return p.clone()
}

// CurrentParams returns a copy of the live values as of this call.
func (m *Model) CurrentParams() Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

// Snapshot returns the live values and the confidence percentage read under
// one lock, so a concurrent Update never shows half of its edit.
func (m *Model) Snapshot() (Params, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live, m.confidencePct
}

// Update edits the live values. The current preset reference is unchanged.
func (m *Model) Update(p Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.apply(&m.live)
	if p.ConfidencePct != nil {
		m.confidencePct = *p.ConfidencePct
	}
}

var overrideKeys = []string{
	"base_rate", "per_mile", "per_lb", "dim_divisor", "fuel_pct", "peak_pct", "residential_fee",
}

// ApplyOverrides seeds live values from query-string style key/value pairs.
// Either every present key parses and is applied, or nothing changes.
func (m *Model) ApplyOverrides(values url.Values) error {
	var patch Patch
	targets := map[string]**float64{
		"base_rate":       &patch.BaseRate,
		"per_mile":        &patch.PerMile,
		"per_lb":          &patch.PerLb,
		"dim_divisor":     &patch.DimDivisor,
		"fuel_pct":        &patch.FuelPct,
		"peak_pct":        &patch.PeakPct,
		"residential_fee": &patch.ResidentialFee,
	}
	for _, key := range overrideKeys {
		if !values.Has(key) {
			continue
		}
		v, err := strconv.ParseFloat(values.Get(key), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOverride, key, values.Get(key))
		}
		*targets[key] = &v
	}
	m.Update(patch)
	return nil
}

// Presets returns a copy of the preset list in insertion order.
func (m *Model) Presets() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Preset, len(m.presets))
	for i, p := range m.presets {
		out[i] = p.clone()
	}
	return out
}

// CurrentPreset returns the preset most recently applied or saved.
func (m *Model) CurrentPreset() (Preset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Preset{}, false
	}
	return m.current.clone(), true
}

func (m *Model) ConfidencePct() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.confidencePct
}

func (m *Model) SetConfidencePct(pct float64) {
	m.mu.Lock()
	m.confidencePct = pct
	m.mu.Unlock()
}

// Status returns the most recent preset load result.
func (m *Model) Status() types.LoadResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.presetLoad
}

func newPresetID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "custom-" + uuid.NewString()
	}
	return "custom-" + id.String()
}
