package orchestrate

import (
	"context"
	"net/http"
	"testing"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/client/clienttest"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
)

func TestCreateNewType_InvalidatesSchemaList(t *testing.T) {
	fake := &clienttest.Fake{
		ListTablesFunc: func(context.Context) ([]*model.Table, error) {
			return []*model.Table{{ID: 1, Name: "Projet"}}, nil
		},
		CreateNewTypeFunc: func(_ context.Context, req *client.CreateTypeRequest) (*client.CreateTypeResponse, error) {
			return &client.CreateTypeResponse{
				TypeRecord:   &model.Record{ID: 12, TableID: 2},
				DetailsTable: &model.Table{ID: 30, Name: req.TypeName + "Details"},
			}, nil
		},
	}
	reg := schema.NewRegistry(fake)
	o := New(fake, reg, record.NewConduit(fake, reg))
	ctx := context.Background()

	reg.ListTables(ctx)
	res, err := o.CreateNewType(ctx, "Prestation", []model.FieldSpec{{Name: "Sous type", FieldType: model.FieldTypeChoice}})
	if err != nil {
		t.Fatalf("CreateNewType: %v", err)
	}
	if !res.Success || res.DetailsTable.Name != "PrestationDetails" {
		t.Errorf("res = %+v", res)
	}

	reg.ListTables(ctx)
	if n := fake.CallCount("ListTables"); n != 2 {
		t.Errorf("list fetched %d times, want 2 (invalidated after type creation)", n)
	}
}

func TestCreateProjectWithDetails_InvalidatesBothTables(t *testing.T) {
	fake := &clienttest.Fake{
		ListRecordsFunc: func(_ context.Context, tableID int64, _ map[string]string) ([]*model.Record, error) {
			return nil, nil
		},
		CreateProjectWithDetailsFunc: func(_ context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error) {
			return &client.ProjectDetailsResponse{
				Project: &model.Record{ID: 7, TableID: 1},
				Details: &model.Record{ID: 8, TableID: 30},
			}, nil
		},
	}
	rc := record.NewConduit(fake, nil)
	o := New(fake, nil, rc)
	ctx := context.Background()

	rc.FetchRecords(ctx, 1, nil)
	rc.FetchRecords(ctx, 30, nil)

	res, err := o.CreateProjectWithDetails(ctx, map[string]any{"nom": "X"}, map[string]any{"sous_type": "Forfait"}, 12)
	if err != nil {
		t.Fatalf("CreateProjectWithDetails: %v", err)
	}
	if !res.Success || res.Project.ID != 7 || res.Details.ID != 8 {
		t.Errorf("res = %+v", res)
	}

	rc.FetchRecords(ctx, 1, nil)
	rc.FetchRecords(ctx, 30, nil)
	if n := fake.CallCount("ListRecords"); n != 4 {
		t.Errorf("rows fetched %d times, want 4 (both caches dropped)", n)
	}
}

func TestUpdateProjectWithDetails_SendsProjectID(t *testing.T) {
	var got *client.ProjectDetailsRequest
	fake := &clienttest.Fake{
		UpdateProjectWithDetailsFunc: func(_ context.Context, req *client.ProjectDetailsRequest) (*client.ProjectDetailsResponse, error) {
			got = req
			return &client.ProjectDetailsResponse{Project: &model.Record{ID: req.ProjectID, TableID: 1}}, nil
		},
	}
	o := New(fake, nil, nil)

	if _, err := o.UpdateProjectWithDetails(context.Background(), 7, map[string]any{"nom": "Y"}, nil, 12); err != nil {
		t.Fatalf("UpdateProjectWithDetails: %v", err)
	}
	if got.ProjectID != 7 || got.ProjectTypeID != 12 {
		t.Errorf("req = %+v", got)
	}
}

func TestFailure_PreservesServerMessage(t *testing.T) {
	err := &client.APIError{StatusCode: http.StatusBadRequest, Message: "nom is required"}
	res := Failure(err)
	if res.Success || res.Error != "nom is required" {
		t.Errorf("res = %+v", res)
	}
}
