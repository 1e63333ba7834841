package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/store"
)

// fakeStore is an in-memory store.Store for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	tables  map[int64]*model.Table
	records map[int64]*fakeRecord
	nextID  int64
}

type fakeRecord struct {
	id       int64
	tableID  int64
	customID string
	values   map[string]string
	links    map[string]int64
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:  make(map[int64]*model.Table),
		records: make(map[int64]*fakeRecord),
	}
}

func (f *fakeStore) nextIDLocked() int64 {
	f.nextID++
	return f.nextID
}

func fakeSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func (f *fakeStore) CreateTable(_ context.Context, spec model.TableSpec) (*model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slug := spec.Slug
	if slug == "" {
		slug = fakeSlug(spec.Name)
	}
	t := &model.Table{ID: f.nextIDLocked(), Name: spec.Name, Slug: slug}
	f.tables[t.ID] = t
	return copyTable(t), nil
}

func (f *fakeStore) GetTable(_ context.Context, id int64) (*model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyTable(t), nil
}

func (f *fakeStore) GetTableByName(_ context.Context, name string) (*model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tables {
		if strings.EqualFold(t.Name, name) {
			return copyTable(t), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListTables(_ context.Context) ([]*model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Table, 0, len(f.tables))
	for _, t := range f.tables {
		out = append(out, copyTable(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateTable(_ context.Context, id int64, name, slug *string) (*model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if slug != nil {
		t.Slug = *slug
	}
	return copyTable(t), nil
}

func (f *fakeStore) DeleteTable(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tables, id)
	return nil
}

func (f *fakeStore) AddField(_ context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableID]
	if !ok {
		return nil, store.ErrNotFound
	}
	slug := spec.Slug
	if slug == "" {
		slug = fakeSlug(spec.Name)
	}
	field := model.Field{
		ID:               f.nextIDLocked(),
		TableID:          tableID,
		Name:             spec.Name,
		Slug:             slug,
		FieldType:        spec.FieldType,
		Order:            len(t.Fields),
		IsRequired:       spec.IsRequired,
		Options:          spec.Options,
		RelatedTableID:   spec.RelatedTableID,
		RelatedFieldSlug: spec.RelatedFieldSlug,
	}
	t.Fields = append(t.Fields, field)
	return &field, nil
}

func (f *fakeStore) UpdateField(_ context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tables {
		for i := range t.Fields {
			if t.Fields[i].ID == fieldID {
				if spec.Name != "" {
					t.Fields[i].Name = spec.Name
				}
				if spec.FieldType != "" {
					t.Fields[i].FieldType = spec.FieldType
				}
				if spec.Options != nil {
					t.Fields[i].Options = spec.Options
				}
				field := t.Fields[i]
				return &field, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) DeleteField(_ context.Context, fieldID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tables {
		for i := range t.Fields {
			if t.Fields[i].ID == fieldID {
				t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
				return nil
			}
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ReorderFields(_ context.Context, tableID int64, orders []model.FieldOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableID]
	if !ok {
		return store.ErrNotFound
	}
	for _, o := range orders {
		for i := range t.Fields {
			if t.Fields[i].ID == o.ID {
				t.Fields[i].Order = o.Order
			}
		}
	}
	sort.Slice(t.Fields, func(i, j int) bool { return t.Fields[i].Order < t.Fields[j].Order })
	return nil
}

func (f *fakeStore) CreateRecord(_ context.Context, tableID int64, customID string, values map[string]string, links map[string]int64) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[tableID]; !ok {
		return nil, store.ErrNotFound
	}
	rec := &fakeRecord{
		id:       f.nextIDLocked(),
		tableID:  tableID,
		customID: customID,
		values:   make(map[string]string),
		links:    make(map[string]int64),
	}
	for k, v := range values {
		rec.values[k] = v
	}
	for k, v := range links {
		rec.links[k] = v
	}
	f.records[rec.id] = rec
	return rec.toModel(), nil
}

func (f *fakeStore) GetRecord(_ context.Context, id int64) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.toModel(), nil
}

func (f *fakeStore) GetRecordByCustomID(_ context.Context, tableID int64, customID string) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.tableID == tableID && rec.customID == customID {
			return rec.toModel(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListRecords(_ context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Record
	for _, rec := range f.records {
		if rec.tableID != tableID {
			continue
		}
		match := true
		for slug, want := range fieldFilters {
			if rec.values[slug] != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, rec.toModel())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateRecordValues(_ context.Context, recordID int64, values map[string]string, links map[string]int64) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range values {
		rec.values[k] = v
	}
	for k, v := range links {
		rec.links[k] = v
	}
	return rec.toModel(), nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(f)
}

func (f *fakeStore) Close() error { return nil }

func (r *fakeRecord) toModel() *model.Record {
	now := time.Now().UTC().Format(time.RFC3339)
	rec := &model.Record{
		ID:      r.id,
		TableID: r.tableID,
		Attrs: map[string]any{
			"id":         r.id,
			"table":      r.tableID,
			"is_active":  true,
			"created_at": now,
			"updated_at": now,
		},
	}
	if r.customID != "" {
		rec.Attrs["custom_id"] = r.customID
	}
	for k, v := range r.links {
		rec.Attrs[k] = v
	}
	slugs := make([]string, 0, len(r.values))
	for slug := range r.values {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		rec.Values = append(rec.Values, model.FieldValue{FieldSlug: slug, Value: r.values[slug]})
	}
	return rec
}

func copyTable(t *model.Table) *model.Table {
	out := *t
	out.Fields = append([]model.Field(nil), t.Fields...)
	return &out
}
