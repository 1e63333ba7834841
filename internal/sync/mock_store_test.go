package sync

import (
	"context"
	"sort"
	"strings"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	tables  map[int64]*model.Table
	records map[int64]*model.Record
	nextID  int64
}

func newMockStore() *mockStore {
	return &mockStore{
		tables:  make(map[int64]*model.Table),
		records: make(map[int64]*model.Record),
	}
}

// addTable seeds a table directly, bypassing the store API.
func (m *mockStore) addTable(t *model.Table) {
	m.tables[t.ID] = t
	if t.ID > m.nextID {
		m.nextID = t.ID
	}
}

// addRecord seeds a record directly, bypassing the store API.
func (m *mockStore) addRecord(r *model.Record) {
	m.records[r.ID] = r
	if r.ID > m.nextID {
		m.nextID = r.ID
	}
}

func (m *mockStore) CreateTable(_ context.Context, spec model.TableSpec) (*model.Table, error) {
	m.nextID++
	t := &model.Table{ID: m.nextID, Name: spec.Name, Slug: strings.ToLower(spec.Name)}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockStore) GetTable(_ context.Context, id int64) (*model.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (m *mockStore) GetTableByName(_ context.Context, name string) (*model.Table, error) {
	for _, t := range m.tables {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListTables(_ context.Context) ([]*model.Table, error) {
	var result []*model.Table
	for _, t := range m.tables {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateTable(_ context.Context, id int64, name, slug *string) (*model.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if slug != nil {
		t.Slug = *slug
	}
	return t, nil
}

func (m *mockStore) DeleteTable(_ context.Context, id int64) error {
	delete(m.tables, id)
	return nil
}

func (m *mockStore) AddField(_ context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	t, ok := m.tables[tableID]
	if !ok {
		return nil, store.ErrNotFound
	}
	m.nextID++
	f := model.Field{ID: m.nextID, TableID: tableID, Name: spec.Name, Slug: spec.Slug, FieldType: spec.FieldType}
	t.Fields = append(t.Fields, f)
	return &f, nil
}

func (m *mockStore) UpdateField(_ context.Context, _ int64, _ model.FieldSpec) (*model.Field, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteField(_ context.Context, _ int64) error {
	return nil
}

func (m *mockStore) ReorderFields(_ context.Context, _ int64, _ []model.FieldOrder) error {
	return nil
}

func (m *mockStore) CreateRecord(_ context.Context, tableID int64, customID string, values map[string]string, _ map[string]int64) (*model.Record, error) {
	m.nextID++
	rec := &model.Record{ID: m.nextID, TableID: tableID, Attrs: map[string]any{"custom_id": customID}}
	for slug, v := range values {
		rec.Values = append(rec.Values, model.FieldValue{FieldSlug: slug, Value: v})
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockStore) GetRecord(_ context.Context, id int64) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (m *mockStore) GetRecordByCustomID(_ context.Context, _ int64, _ string) (*model.Record, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) ListRecords(_ context.Context, tableID int64, _ map[string]string) ([]*model.Record, error) {
	var result []*model.Record
	for _, rec := range m.records {
		if rec.TableID == tableID {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateRecordValues(_ context.Context, id int64, _ map[string]string, _ map[string]int64) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (m *mockStore) DeleteRecord(_ context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
