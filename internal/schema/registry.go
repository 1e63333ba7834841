// Package schema caches table descriptors fetched from the backend and
// keeps the cache coherent across schema mutations. The cache is the
// authoritative local view of the schema; every consumer reads through it.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
)

// ErrTableNotFound is returned when a lookup misses both the cache and the
// backend.
var ErrTableNotFound = errors.New("schema: table not found")

const listKey = "tables"

// Registry is a cache of table descriptors keyed by table id, plus a
// synthetic key for the table list. In-flight fetches may race with
// invalidations; a per-key monotonic counter makes sure the effect of the
// most recently started request wins and stale responses never land in
// the cache.
type Registry struct {
	client client.Client

	mu      sync.Mutex
	list    []*model.Table
	hasList bool
	tables  map[int64]*model.Table
	seq     map[string]uint64
}

// NewRegistry returns an empty registry over the given backend client.
func NewRegistry(c client.Client) *Registry {
	return &Registry{
		client: c,
		tables: make(map[int64]*model.Table),
		seq:    make(map[string]uint64),
	}
}

func tableKey(id int64) string {
	return fmt.Sprintf("table:%d", id)
}

// begin bumps the request counter for key and returns the ticket the
// caller must present to commit its response.
func (r *Registry) begin(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[key]++
	return r.seq[key]
}

// current reports whether ticket is still the latest request for key.
func (r *Registry) current(key string, ticket uint64) bool {
	return r.seq[key] == ticket
}

// ListTables returns the cached table list, fetching it on a miss.
func (r *Registry) ListTables(ctx context.Context) ([]*model.Table, error) {
	r.mu.Lock()
	if r.hasList {
		cached := r.list
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	ticket := r.begin(listKey)
	tables, err := r.client.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.current(listKey, ticket) {
		r.list = tables
		r.hasList = true
	}
	r.mu.Unlock()
	return tables, nil
}

// TableWithFields returns the cached descriptor for the table, fetching it
// (with its field list) on a miss.
func (r *Registry) TableWithFields(ctx context.Context, id int64) (*model.Table, error) {
	r.mu.Lock()
	if t, ok := r.tables[id]; ok {
		r.mu.Unlock()
		return t, nil
	}
	r.mu.Unlock()

	key := tableKey(id)
	ticket := r.begin(key)
	table, err := r.client.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.current(key, ticket) {
		r.tables[id] = table
	}
	r.mu.Unlock()
	return table, nil
}

// TableByName finds a table by exact name, falling back to a
// case-insensitive match, and returns its full descriptor.
// Returns ErrTableNotFound when no table matches.
func (r *Registry) TableByName(ctx context.Context, name string) (*model.Table, error) {
	tables, err := r.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	var fallback *model.Table
	for _, t := range tables {
		if t.Name == name {
			return r.TableWithFields(ctx, t.ID)
		}
		if fallback == nil && strings.EqualFold(t.Name, name) {
			fallback = t
		}
	}
	if fallback != nil {
		return r.TableWithFields(ctx, fallback.ID)
	}
	return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
}

// CreateTable creates a table and invalidates the table list.
func (r *Registry) CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error) {
	table, err := r.client.CreateTable(ctx, spec)
	if err != nil {
		return nil, err
	}
	r.InvalidateList()
	return table, nil
}

// UpdateTable patches a table and invalidates its descriptor and the list.
func (r *Registry) UpdateTable(ctx context.Context, id int64, patch client.TablePatch) (*model.Table, error) {
	table, err := r.client.UpdateTable(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.Invalidate(id)
	r.InvalidateList()
	return table, nil
}

// DeleteTable deletes a table and invalidates its descriptor and the list.
func (r *Registry) DeleteTable(ctx context.Context, id int64) error {
	if err := r.client.DeleteTable(ctx, id); err != nil {
		return err
	}
	r.Invalidate(id)
	r.InvalidateList()
	return nil
}

// AddField adds a field and invalidates the owning table's descriptor.
func (r *Registry) AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	field, err := r.client.AddField(ctx, tableID, spec)
	if err != nil {
		return nil, err
	}
	r.Invalidate(tableID)
	return field, nil
}

// UpdateField replaces a field definition and invalidates the owning
// table's descriptor.
func (r *Registry) UpdateField(ctx context.Context, tableID, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	field, err := r.client.UpdateField(ctx, fieldID, spec)
	if err != nil {
		return nil, err
	}
	r.Invalidate(tableID)
	return field, nil
}

// DeleteField deletes a field and invalidates the owning table's descriptor.
func (r *Registry) DeleteField(ctx context.Context, tableID, fieldID int64) error {
	if err := r.client.DeleteField(ctx, fieldID); err != nil {
		return err
	}
	r.Invalidate(tableID)
	return nil
}

// ReorderFields submits a new field order. The server is the source of
// truth: on success the local descriptor is dropped and refetched.
func (r *Registry) ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) (*model.Table, error) {
	if err := r.client.ReorderFields(ctx, tableID, orders); err != nil {
		return nil, err
	}
	r.Invalidate(tableID)
	return r.TableWithFields(ctx, tableID)
}

// Invalidate drops the cached descriptor for the table. Any fetch already
// in flight for it will be discarded when it lands.
func (r *Registry) Invalidate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, id)
	r.seq[tableKey(id)]++
}

// InvalidateList drops the cached table list.
func (r *Registry) InvalidateList() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = nil
	r.hasList = false
	r.seq[listKey]++
}
