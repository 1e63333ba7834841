package form

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/veillard/tabulaire/internal/kvstore"
)

const (
	// SaveDebounce is the quiet period before a pending snapshot is written.
	SaveDebounce = time.Second

	// SnapshotTTL bounds how long a snapshot stays restorable.
	SnapshotTTL = 24 * time.Hour

	// savedAtKey carries the snapshot timestamp inside the stored object.
	savedAtKey = "_savedAt"
)

// Persistor snapshots in-progress form entries into local storage so a
// reload does not lose them. Saves are debounced per key; snapshots older
// than SnapshotTTL are treated as absent and removed.
type Persistor struct {
	kv       *kvstore.Store
	debounce time.Duration
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	timer *time.Timer
	data  map[string]any
}

// NewPersistor returns a persistor over the given store with the stock
// debounce and TTL.
func NewPersistor(kv *kvstore.Store) *Persistor {
	return &Persistor{
		kv:       kv,
		debounce: SaveDebounce,
		ttl:      SnapshotTTL,
		now:      time.Now,
		pending:  make(map[string]*pendingSave),
	}
}

// Save schedules a snapshot of data under key, skipping excluded fields and
// empty values. Repeated calls within the debounce window replace the
// pending snapshot and restart the quiet period.
func (p *Persistor) Save(key string, data map[string]any, excluded ...string) {
	skip := make(map[string]struct{}, len(excluded))
	for _, f := range excluded {
		skip[f] = struct{}{}
	}
	snapshot := make(map[string]any, len(data))
	for k, v := range data {
		if _, drop := skip[k]; drop {
			continue
		}
		if v == nil || v == "" {
			continue
		}
		snapshot[k] = v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.pending[key]; ok {
		prev.timer.Stop()
	}
	save := &pendingSave{data: snapshot}
	save.timer = time.AfterFunc(p.debounce, func() { p.flush(key, save) })
	p.pending[key] = save
}

// Flush writes any pending snapshot for key immediately.
func (p *Persistor) Flush(key string) {
	p.mu.Lock()
	save, ok := p.pending[key]
	p.mu.Unlock()
	if ok {
		save.timer.Stop()
		p.flush(key, save)
	}
}

func (p *Persistor) flush(key string, save *pendingSave) {
	p.mu.Lock()
	if p.pending[key] != save {
		p.mu.Unlock()
		return
	}
	delete(p.pending, key)
	p.mu.Unlock()

	out := make(map[string]any, len(save.data)+1)
	for k, v := range save.data {
		out[k] = v
	}
	out[savedAtKey] = p.now().UnixMilli()

	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	p.kv.Put(key, raw, p.ttl)
}

// Restore merges a fresh snapshot of key into current and reports whether
// one was applied. Fields already set to a non-empty value in current are
// kept; stale or corrupt snapshots are removed and reported absent.
func (p *Persistor) Restore(key string, current map[string]any) bool {
	snapshot, ok := p.load(key)
	if !ok {
		return false
	}
	for k, v := range snapshot {
		if cur, set := current[k]; set && cur != nil && cur != "" {
			continue
		}
		current[k] = v
	}
	return true
}

// HasSavedData reports whether a fresh snapshot exists for key.
func (p *Persistor) HasSavedData(key string) bool {
	_, ok := p.load(key)
	return ok
}

// Clear drops any pending save and the stored snapshot for key.
func (p *Persistor) Clear(key string) {
	p.mu.Lock()
	if save, ok := p.pending[key]; ok {
		save.timer.Stop()
		delete(p.pending, key)
	}
	p.mu.Unlock()
	p.kv.Delete(key)
}

// load reads and validates the snapshot for key. Stale and corrupt entries
// are removed and reported absent.
func (p *Persistor) load(key string) (map[string]any, bool) {
	raw, ok, err := p.kv.Get(key)
	if err != nil || !ok {
		return nil, false
	}

	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		p.kv.Delete(key)
		return nil, false
	}
	savedAt, ok := snapshot[savedAtKey].(float64)
	if !ok {
		p.kv.Delete(key)
		return nil, false
	}
	if p.now().Sub(time.UnixMilli(int64(savedAt))) >= p.ttl {
		p.kv.Delete(key)
		return nil, false
	}
	delete(snapshot, savedAtKey)
	return snapshot, true
}

// SetDebounce overrides the quiet period. Tests only.
func (p *Persistor) SetDebounce(d time.Duration) { p.debounce = d }

// SetClock overrides the persistor's clock. Tests only.
func (p *Persistor) SetClock(now func() time.Time) { p.now = now }
