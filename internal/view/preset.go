package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/veillard/tabulaire/internal/idgen"
	"github.com/veillard/tabulaire/internal/kvstore"
	"github.com/veillard/tabulaire/internal/model"
)

// StorageKey is the local-storage key the preset list persists under.
const StorageKey = "filter_presets"

// MaxPresets bounds the stored preset list.
const MaxPresets = 50

var (
	// ErrNoActiveFilter rejects preset saves when no filter carries a value.
	ErrNoActiveFilter = errors.New("view: no active filter to save")
	// ErrPresetNotFound is returned when deleting an unknown preset id.
	ErrPresetNotFound = errors.New("view: preset not found")
)

// PresetStore keeps named view-state snapshots in memory and mirrors them
// to the local key-value store.
type PresetStore struct {
	kv  *kvstore.Store
	mu  sync.Mutex
	all []model.Preset
	now func() time.Time
}

// NewPresetStore returns a preset store over the given local storage.
func NewPresetStore(kv *kvstore.Store) *PresetStore {
	return &PresetStore{kv: kv, now: time.Now}
}

// Save appends a preset capturing the given state and persists the list.
func (p *PresetStore) Save(name, description string, filters []model.Filter, sorts []model.SortKey, columns []string) (model.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Preset{}, fmt.Errorf("view: preset name is required")
	}
	if len([]rune(name)) > model.PresetNameMaxLen {
		return model.Preset{}, fmt.Errorf("view: preset name must be %d characters or fewer", model.PresetNameMaxLen)
	}

	id, err := idgen.GenerateWithPrefix("pre-")
	if err != nil {
		return model.Preset{}, err
	}
	preset := model.Preset{
		ID:          id,
		Name:        name,
		Description: description,
		Filters:     append([]model.Filter(nil), filters...),
		SortKeys:    append([]model.SortKey(nil), sorts...),
		Columns:     append([]string(nil), columns...),
		CreatedAt:   p.now().UTC(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.all) >= MaxPresets {
		return model.Preset{}, fmt.Errorf("view: preset limit of %d reached", MaxPresets)
	}
	p.all = append(p.all, preset)
	if err := p.persistLocked(); err != nil {
		p.all = p.all[:len(p.all)-1]
		return model.Preset{}, err
	}
	return preset, nil
}

// Delete removes the preset with the given id and persists the list.
func (p *PresetStore) Delete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.all {
		if p.all[i].ID == id {
			p.all = append(p.all[:i], p.all[i+1:]...)
			return p.persistLocked()
		}
	}
	return ErrPresetNotFound
}

// Load rehydrates the in-memory list from local storage and returns it.
// A corrupt stored list is removed and treated as empty.
func (p *PresetStore) Load() ([]model.Preset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok, err := p.kv.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.all = nil
		return nil, nil
	}

	var presets []model.Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		slog.Warn("removing corrupt preset list", "error", err)
		if delErr := p.kv.Delete(StorageKey); delErr != nil {
			return nil, delErr
		}
		p.all = nil
		return nil, nil
	}

	// Filter values come back JSON-typed; restore the per-type payloads so
	// predicates and structural comparisons behave.
	for i := range presets {
		for j := range presets[i].Filters {
			f := &presets[i].Filters[j]
			f.Value = model.NormalizeValue(f.Type, f.Value)
		}
	}
	p.all = presets
	return append([]model.Preset(nil), p.all...), nil
}

// All returns a copy of the in-memory preset list.
func (p *PresetStore) All() []model.Preset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Preset(nil), p.all...)
}

// ByName returns the first preset with the given name.
func (p *PresetStore) ByName(name string) (model.Preset, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.all {
		if p.all[i].Name == name {
			return p.all[i], true
		}
	}
	return model.Preset{}, false
}

func (p *PresetStore) persistLocked() error {
	data, err := json.Marshal(p.all)
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return p.kv.Put(StorageKey, data, 0)
}
