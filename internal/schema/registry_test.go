package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/veillard/tabulaire/internal/client/clienttest"
	"github.com/veillard/tabulaire/internal/model"
)

func TestListTables_Caches(t *testing.T) {
	fake := &clienttest.Fake{
		ListTablesFunc: func(context.Context) ([]*model.Table, error) {
			return []*model.Table{{ID: 1, Name: "Projet"}}, nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	if _, err := r.ListTables(ctx); err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if _, err := r.ListTables(ctx); err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if n := fake.CallCount("ListTables"); n != 1 {
		t.Errorf("backend hit %d times, want 1", n)
	}
}

func TestTableWithFields_CachesPerID(t *testing.T) {
	fake := &clienttest.Fake{
		GetTableFunc: func(_ context.Context, id int64) (*model.Table, error) {
			return &model.Table{ID: id, Name: "T"}, nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	r.TableWithFields(ctx, 1)
	r.TableWithFields(ctx, 1)
	r.TableWithFields(ctx, 2)
	if n := fake.CallCount("GetTable"); n != 2 {
		t.Errorf("backend hit %d times, want 2", n)
	}
}

func TestCreateTable_InvalidatesList(t *testing.T) {
	fake := &clienttest.Fake{
		ListTablesFunc: func(context.Context) ([]*model.Table, error) {
			return []*model.Table{{ID: 1}}, nil
		},
		CreateTableFunc: func(_ context.Context, spec model.TableSpec) (*model.Table, error) {
			return &model.Table{ID: 2, Name: spec.Name}, nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	r.ListTables(ctx)
	if _, err := r.CreateTable(ctx, model.TableSpec{Name: "Choix"}); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	r.ListTables(ctx)
	if n := fake.CallCount("ListTables"); n != 2 {
		t.Errorf("list fetched %d times, want 2 (invalidated after create)", n)
	}
}

func TestFieldMutations_InvalidateTable(t *testing.T) {
	fake := &clienttest.Fake{
		GetTableFunc: func(_ context.Context, id int64) (*model.Table, error) {
			return &model.Table{ID: id}, nil
		},
		AddFieldFunc: func(_ context.Context, _ int64, spec model.FieldSpec) (*model.Field, error) {
			return &model.Field{ID: 9, Name: spec.Name}, nil
		},
		DeleteFieldFunc: func(context.Context, int64) error { return nil },
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	r.TableWithFields(ctx, 1)
	if _, err := r.AddField(ctx, 1, model.FieldSpec{Name: "Nom"}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	r.TableWithFields(ctx, 1)
	if n := fake.CallCount("GetTable"); n != 2 {
		t.Errorf("descriptor fetched %d times, want 2", n)
	}

	if err := r.DeleteField(ctx, 1, 9); err != nil {
		t.Fatalf("DeleteField: %v", err)
	}
	r.TableWithFields(ctx, 1)
	if n := fake.CallCount("GetTable"); n != 3 {
		t.Errorf("descriptor fetched %d times, want 3", n)
	}
}

func TestReorderFields_RefetchesDescriptor(t *testing.T) {
	order := []string{"a", "b"}
	fake := &clienttest.Fake{
		GetTableFunc: func(_ context.Context, id int64) (*model.Table, error) {
			fields := make([]model.Field, len(order))
			for i, slug := range order {
				fields[i] = model.Field{Slug: slug, Order: i}
			}
			return &model.Table{ID: id, Fields: fields}, nil
		},
		ReorderFieldsFunc: func(_ context.Context, _ int64, orders []model.FieldOrder) error {
			order = []string{"b", "a"}
			return nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	r.TableWithFields(ctx, 1)
	table, err := r.ReorderFields(ctx, 1, []model.FieldOrder{{ID: 2, Order: 0}, {ID: 1, Order: 1}})
	if err != nil {
		t.Fatalf("ReorderFields: %v", err)
	}
	if table.Fields[0].Slug != "b" {
		t.Errorf("fields[0] = %q, want b (server order)", table.Fields[0].Slug)
	}
}

func TestTableByName(t *testing.T) {
	fake := &clienttest.Fake{
		ListTablesFunc: func(context.Context) ([]*model.Table, error) {
			return []*model.Table{
				{ID: 1, Name: "Projet"},
				{ID: 2, Name: "PrestationDetails"},
			}, nil
		},
		GetTableFunc: func(_ context.Context, id int64) (*model.Table, error) {
			return &model.Table{ID: id, Name: "PrestationDetails"}, nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	got, err := r.TableByName(ctx, "prestationdetails")
	if err != nil {
		t.Fatalf("TableByName: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("ID = %d, want 2 (case-insensitive fallback)", got.ID)
	}

	if _, err := r.TableByName(ctx, "Inconnue"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("TableByName(Inconnue) = %v, want ErrTableNotFound", err)
	}
}

func TestInvalidate_DiscardsInFlightFetch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := &clienttest.Fake{
		GetTableFunc: func(_ context.Context, id int64) (*model.Table, error) {
			close(entered)
			<-release
			return &model.Table{ID: id, Name: "stale"}, nil
		},
	}
	r := NewRegistry(fake)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		r.TableWithFields(ctx, 1)
		close(done)
	}()

	// Invalidate while the fetch is parked, then let it land: the stale
	// response must not populate the cache.
	<-entered
	r.Invalidate(1)
	close(release)
	<-done

	fake.GetTableFunc = func(_ context.Context, id int64) (*model.Table, error) {
		return &model.Table{ID: id, Name: "fresh"}, nil
	}
	got, err := r.TableWithFields(ctx, 1)
	if err != nil {
		t.Fatalf("TableWithFields: %v", err)
	}
	if got.Name != "fresh" {
		t.Errorf("Name = %q, want fresh (stale response cached)", got.Name)
	}
}
