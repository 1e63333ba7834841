// Package orchestrate wraps the backend's transactional multi-table calls.
// These are the only operations that touch several tables per user action;
// callers must not simulate them with sequential record mutations, which
// would lose atomicity.
package orchestrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
)

// Result is the outcome shape shared by all orchestrated calls.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failure converts an error into a failed Result, preserving the
// server-supplied message when the error is an APIError.
func Failure(err error) Result {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return Result{Error: apiErr.Message}
	}
	return Result{Error: err.Error()}
}

// TypeResult is the outcome of CreateNewType.
type TypeResult struct {
	Result
	TypeRecord   *model.Record `json:"type_record,omitempty"`
	DetailsTable *model.Table  `json:"details_table,omitempty"`
}

// ProjectResult is the outcome of the project+details calls.
type ProjectResult struct {
	Result
	Project *model.Record `json:"project,omitempty"`
	Details *model.Record `json:"details,omitempty"`
}

// Orchestrator issues the transactional calls and keeps the local caches
// coherent after each success.
type Orchestrator struct {
	client  client.Client
	schema  *schema.Registry
	records *record.Conduit
}

// New returns an orchestrator over the given client and caches. Either
// cache may be nil.
func New(c client.Client, reg *schema.Registry, rc *record.Conduit) *Orchestrator {
	return &Orchestrator{client: c, schema: reg, records: rc}
}

// CreateNewType creates a type record and its matching "{Name}Details"
// table with the given columns in a single server transaction.
func (o *Orchestrator) CreateNewType(ctx context.Context, name string, columns []model.FieldSpec) (*TypeResult, error) {
	resp, err := o.client.CreateNewType(ctx, &client.CreateTypeRequest{
		TypeName: name,
		Columns:  columns,
	})
	if err != nil {
		return nil, fmt.Errorf("creating type %q: %w", name, err)
	}

	if o.schema != nil {
		o.schema.InvalidateList()
	}
	if o.records != nil && resp.TypeRecord != nil {
		o.records.Invalidate(resp.TypeRecord.TableID)
	}

	return &TypeResult{
		Result:       Result{Success: true, Message: fmt.Sprintf("type %q created", name)},
		TypeRecord:   resp.TypeRecord,
		DetailsTable: resp.DetailsTable,
	}, nil
}

// CreateProjectWithDetails creates the parent record and its linked details
// row in one server transaction; on success both are persisted, on failure
// neither is.
func (o *Orchestrator) CreateProjectWithDetails(ctx context.Context, projectData, conditionalFields map[string]any, typeID int64) (*ProjectResult, error) {
	resp, err := o.client.CreateProjectWithDetails(ctx, &client.ProjectDetailsRequest{
		ProjectData:       projectData,
		ConditionalFields: conditionalFields,
		ProjectTypeID:     typeID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	o.invalidateProject(resp)

	return &ProjectResult{
		Result:  Result{Success: true, Message: "project created"},
		Project: resp.Project,
		Details: resp.Details,
	}, nil
}

// UpdateProjectWithDetails updates the parent record and its details row in
// one server transaction. The server upserts the details row when an
// existing project does not have one yet.
func (o *Orchestrator) UpdateProjectWithDetails(ctx context.Context, projectID int64, projectData, conditionalFields map[string]any, typeID int64) (*ProjectResult, error) {
	resp, err := o.client.UpdateProjectWithDetails(ctx, &client.ProjectDetailsRequest{
		ProjectID:         projectID,
		ProjectData:       projectData,
		ConditionalFields: conditionalFields,
		ProjectTypeID:     typeID,
	})
	if err != nil {
		return nil, fmt.Errorf("updating project %d: %w", projectID, err)
	}
	o.invalidateProject(resp)

	return &ProjectResult{
		Result:  Result{Success: true, Message: "project updated"},
		Project: resp.Project,
		Details: resp.Details,
	}, nil
}

// invalidateProject drops the cached rows and descriptors of every table
// the transaction touched.
func (o *Orchestrator) invalidateProject(resp *client.ProjectDetailsResponse) {
	if o.records == nil {
		return
	}
	if resp.Project != nil {
		o.records.Invalidate(resp.Project.TableID)
	}
	if resp.Details != nil && (resp.Project == nil || resp.Details.TableID != resp.Project.TableID) {
		o.records.Invalidate(resp.Details.TableID)
	}
}
