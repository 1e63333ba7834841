// Package clienttest provides a configurable in-memory client.Client for
// tests of the components that sit on top of the backend client.
package clienttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
)

// Fake implements client.Client with per-method function hooks. Unset
// hooks fail the call, so a test only wires what it exercises. Every call
// is appended to Calls as "MethodName".
type Fake struct {
	mu    sync.Mutex
	Calls []string

	ListTablesFunc               func(ctx context.Context) ([]*model.Table, error)
	GetTableFunc                 func(ctx context.Context, id int64) (*model.Table, error)
	CreateTableFunc              func(ctx context.Context, spec model.TableSpec) (*model.Table, error)
	UpdateTableFunc              func(ctx context.Context, id int64, patch client.TablePatch) (*model.Table, error)
	DeleteTableFunc              func(ctx context.Context, id int64) error
	AddFieldFunc                 func(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error)
	UpdateFieldFunc              func(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error)
	DeleteFieldFunc              func(ctx context.Context, fieldID int64) error
	ReorderFieldsFunc            func(ctx context.Context, tableID int64, orders []model.FieldOrder) error
	ListRecordsFunc              func(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error)
	GetRecordFunc                func(ctx context.Context, id int64) (*model.Record, error)
	GetRecordByCustomIDFunc      func(ctx context.Context, tableID int64, customID string) (*model.Record, error)
	CreateRecordFunc             func(ctx context.Context, req *client.CreateRecordRequest) (*model.Record, error)
	UpdateRecordFunc             func(ctx context.Context, recordID int64, req *client.UpdateRecordRequest) (*model.Record, error)
	DeleteRecordFunc             func(ctx context.Context, id int64) error
	CreateNewTypeFunc            func(ctx context.Context, req *client.CreateTypeRequest) (*client.CreateTypeResponse, error)
	CreateProjectWithDetailsFunc func(ctx context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error)
	UpdateProjectWithDetailsFunc func(ctx context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error)
	HealthFunc                   func(ctx context.Context) (string, error)
}

var _ client.Client = (*Fake)(nil)

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, name)
	f.mu.Unlock()
}

// CallCount returns how many times the named method was invoked.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *Fake) ListTables(ctx context.Context) ([]*model.Table, error) {
	f.record("ListTables")
	if f.ListTablesFunc == nil {
		return nil, fmt.Errorf("clienttest: ListTables not wired")
	}
	return f.ListTablesFunc(ctx)
}

func (f *Fake) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	f.record("GetTable")
	if f.GetTableFunc == nil {
		return nil, fmt.Errorf("clienttest: GetTable not wired")
	}
	return f.GetTableFunc(ctx, id)
}

func (f *Fake) CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error) {
	f.record("CreateTable")
	if f.CreateTableFunc == nil {
		return nil, fmt.Errorf("clienttest: CreateTable not wired")
	}
	return f.CreateTableFunc(ctx, spec)
}

func (f *Fake) UpdateTable(ctx context.Context, id int64, patch client.TablePatch) (*model.Table, error) {
	f.record("UpdateTable")
	if f.UpdateTableFunc == nil {
		return nil, fmt.Errorf("clienttest: UpdateTable not wired")
	}
	return f.UpdateTableFunc(ctx, id, patch)
}

func (f *Fake) DeleteTable(ctx context.Context, id int64) error {
	f.record("DeleteTable")
	if f.DeleteTableFunc == nil {
		return fmt.Errorf("clienttest: DeleteTable not wired")
	}
	return f.DeleteTableFunc(ctx, id)
}

func (f *Fake) AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	f.record("AddField")
	if f.AddFieldFunc == nil {
		return nil, fmt.Errorf("clienttest: AddField not wired")
	}
	return f.AddFieldFunc(ctx, tableID, spec)
}

func (f *Fake) UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	f.record("UpdateField")
	if f.UpdateFieldFunc == nil {
		return nil, fmt.Errorf("clienttest: UpdateField not wired")
	}
	return f.UpdateFieldFunc(ctx, fieldID, spec)
}

func (f *Fake) DeleteField(ctx context.Context, fieldID int64) error {
	f.record("DeleteField")
	if f.DeleteFieldFunc == nil {
		return fmt.Errorf("clienttest: DeleteField not wired")
	}
	return f.DeleteFieldFunc(ctx, fieldID)
}

func (f *Fake) ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error {
	f.record("ReorderFields")
	if f.ReorderFieldsFunc == nil {
		return fmt.Errorf("clienttest: ReorderFields not wired")
	}
	return f.ReorderFieldsFunc(ctx, tableID, orders)
}

func (f *Fake) ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	f.record("ListRecords")
	if f.ListRecordsFunc == nil {
		return nil, fmt.Errorf("clienttest: ListRecords not wired")
	}
	return f.ListRecordsFunc(ctx, tableID, fieldFilters)
}

func (f *Fake) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	f.record("GetRecord")
	if f.GetRecordFunc == nil {
		return nil, fmt.Errorf("clienttest: GetRecord not wired")
	}
	return f.GetRecordFunc(ctx, id)
}

func (f *Fake) GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error) {
	f.record("GetRecordByCustomID")
	if f.GetRecordByCustomIDFunc == nil {
		return nil, fmt.Errorf("clienttest: GetRecordByCustomID not wired")
	}
	return f.GetRecordByCustomIDFunc(ctx, tableID, customID)
}

func (f *Fake) CreateRecord(ctx context.Context, req *client.CreateRecordRequest) (*model.Record, error) {
	f.record("CreateRecord")
	if f.CreateRecordFunc == nil {
		return nil, fmt.Errorf("clienttest: CreateRecord not wired")
	}
	return f.CreateRecordFunc(ctx, req)
}

func (f *Fake) UpdateRecord(ctx context.Context, recordID int64, req *client.UpdateRecordRequest) (*model.Record, error) {
	f.record("UpdateRecord")
	if f.UpdateRecordFunc == nil {
		return nil, fmt.Errorf("clienttest: UpdateRecord not wired")
	}
	return f.UpdateRecordFunc(ctx, recordID, req)
}

func (f *Fake) DeleteRecord(ctx context.Context, id int64) error {
	f.record("DeleteRecord")
	if f.DeleteRecordFunc == nil {
		return fmt.Errorf("clienttest: DeleteRecord not wired")
	}
	return f.DeleteRecordFunc(ctx, id)
}

func (f *Fake) CreateNewType(ctx context.Context, req *client.CreateTypeRequest) (*client.CreateTypeResponse, error) {
	f.record("CreateNewType")
	if f.CreateNewTypeFunc == nil {
		return nil, fmt.Errorf("clienttest: CreateNewType not wired")
	}
	return f.CreateNewTypeFunc(ctx, req)
}

func (f *Fake) CreateProjectWithDetails(ctx context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error) {
	f.record("CreateProjectWithDetails")
	if f.CreateProjectWithDetailsFunc == nil {
		return nil, fmt.Errorf("clienttest: CreateProjectWithDetails not wired")
	}
	return f.CreateProjectWithDetailsFunc(ctx, req)
}

func (f *Fake) UpdateProjectWithDetails(ctx context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error) {
	f.record("UpdateProjectWithDetails")
	if f.UpdateProjectWithDetailsFunc == nil {
		return nil, fmt.Errorf("clienttest: UpdateProjectWithDetails not wired")
	}
	return f.UpdateProjectWithDetailsFunc(ctx, req)
}

func (f *Fake) Health(ctx context.Context) (string, error) {
	f.record("Health")
	if f.HealthFunc == nil {
		return "", fmt.Errorf("clienttest: Health not wired")
	}
	return f.HealthFunc(ctx)
}

func (f *Fake) Close() error { return nil }
