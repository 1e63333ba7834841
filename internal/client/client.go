// Package client provides a transport-agnostic interface for the tabulaire
// backend and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/veillard/tabulaire/internal/model"
)

// Client is the interface the schema registry, record conduit, and type
// orchestrator use to communicate with the backend. It is implemented by
// HTTPClient and can be backed by any transport.
type Client interface {
	// Tables
	ListTables(ctx context.Context) ([]*model.Table, error)
	GetTable(ctx context.Context, id int64) (*model.Table, error)
	CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error)
	UpdateTable(ctx context.Context, id int64, patch TablePatch) (*model.Table, error)
	DeleteTable(ctx context.Context, id int64) error

	// Fields
	AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error)
	UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error)
	DeleteField(ctx context.Context, fieldID int64) error
	ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error

	// Records
	ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error)
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error)
	CreateRecord(ctx context.Context, req *CreateRecordRequest) (*model.Record, error)
	UpdateRecord(ctx context.Context, recordID int64, req *UpdateRecordRequest) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error

	// Type orchestration — single calls that mutate several tables
	// atomically on the server.
	CreateNewType(ctx context.Context, req *CreateTypeRequest) (*CreateTypeResponse, error)
	CreateProjectWithDetails(ctx context.Context, req *ProjectDetailsRequest) (*ProjectDetailsResponse, error)
	UpdateProjectWithDetails(ctx context.Context, req *ProjectDetailsRequest) (*ProjectDetailsResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// TablePatch holds optional parameters for updating a table.
// Nil pointer fields mean "don't change".
type TablePatch struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}

// ReorderFieldsRequest is the body of a field reorder call. The server is
// the source of truth for the resulting order.
type ReorderFieldsRequest struct {
	TableID     int64              `json:"table_id"`
	FieldOrders []model.FieldOrder `json:"field_orders"`
}

// CreateRecordRequest is the body of a create_with_values call. Values
// arrive pre-coerced (see record.BuildPayload): booleans as "true"/"false",
// everything else as strings. Links are scalar linkage fields serialized at
// the top level of the body, next to table_id.
type CreateRecordRequest struct {
	TableID int64
	Values  map[string]string
	Links   map[string]int64
}

// MarshalJSON inlines the linkage fields at the top level.
func (r CreateRecordRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2+len(r.Links))
	out["table_id"] = r.TableID
	out["values"] = r.Values
	for k, v := range r.Links {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the linkage fields from the top level.
func (r *CreateRecordRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Links = nil
	for key, msg := range raw {
		switch key {
		case "table_id":
			if err := json.Unmarshal(msg, &r.TableID); err != nil {
				return err
			}
		case "values":
			if err := json.Unmarshal(msg, &r.Values); err != nil {
				return err
			}
		default:
			var id int64
			if err := json.Unmarshal(msg, &id); err != nil {
				return err
			}
			if r.Links == nil {
				r.Links = make(map[string]int64)
			}
			r.Links[key] = id
		}
	}
	return nil
}

// UpdateRecordRequest is the body of an update_with_values call.
type UpdateRecordRequest struct {
	Values map[string]string
	Links  map[string]int64
}

// MarshalJSON inlines the linkage fields at the top level.
func (r UpdateRecordRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 1+len(r.Links))
	out["values"] = r.Values
	for k, v := range r.Links {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the linkage fields from the top level.
func (r *UpdateRecordRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Links = nil
	for key, msg := range raw {
		if key == "values" {
			if err := json.Unmarshal(msg, &r.Values); err != nil {
				return err
			}
			continue
		}
		var id int64
		if err := json.Unmarshal(msg, &id); err != nil {
			return err
		}
		if r.Links == nil {
			r.Links = make(map[string]int64)
		}
		r.Links[key] = id
	}
	return nil
}

// CreateTypeRequest holds parameters for creating a project type: a
// TableNames record plus a matching "{Name}Details" table, in one call.
type CreateTypeRequest struct {
	TypeName string            `json:"type_name"`
	Columns  []model.FieldSpec `json:"columns"`
}

// CreateTypeResponse is the response from CreateNewType.
type CreateTypeResponse struct {
	TypeRecord   *model.Record `json:"type_record"`
	DetailsTable *model.Table  `json:"details_table"`
}

// ProjectDetailsRequest holds parameters for creating or updating a project
// together with its details row. ProjectID is zero on create.
type ProjectDetailsRequest struct {
	ProjectID         int64          `json:"project_id,omitempty"`
	ProjectData       map[string]any `json:"project_data"`
	ConditionalFields map[string]any `json:"conditional_fields"`
	ProjectTypeID     int64          `json:"project_type_id"`
}

// ProjectDetailsResponse is the response from the project+details calls.
type ProjectDetailsResponse struct {
	Project *model.Record `json:"project"`
	Details *model.Record `json:"details"`
}
