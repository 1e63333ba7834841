package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/events"
	"github.com/veillard/tabulaire/internal/idgen"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/store"
)

// typeRegistryTable is the table whose rows name the project types. Each
// type row pairs with a "{Name}Details" table holding its conditional
// columns.
const typeRegistryTable = "TableNames"

// projectLinkSlug is the value slug on a details row that points back to
// its project. It lives in the typed values rather than the link attrs so
// ListRecords field filters can find the row for upserts.
const projectLinkSlug = "projet"

// typeNameKeys are the value slugs checked, in order, when resolving the
// display name of a type record.
var typeNameKeys = []string{"nom", "name", "title", "titre", "label"}

// handleCreateNewType handles POST /api/database/tables/create_new_type/.
// In one transaction it registers a type row in TableNames (creating the
// registry table on first use) and creates the matching details table with
// the requested columns.
func (s *Server) handleCreateNewType(w http.ResponseWriter, r *http.Request) {
	var req client.CreateTypeRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.TypeName == "" {
		writeError(w, http.StatusBadRequest, "type_name is required")
		return
	}
	for _, col := range req.Columns {
		if !col.FieldType.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown field_type "+string(col.FieldType))
			return
		}
	}

	var resp client.CreateTypeResponse
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		ctx := r.Context()

		registry, err := tx.GetTableByName(ctx, typeRegistryTable)
		if errors.Is(err, store.ErrNotFound) {
			registry, err = tx.CreateTable(ctx, model.TableSpec{Name: typeRegistryTable})
			if err != nil {
				return fmt.Errorf("create type registry: %w", err)
			}
			if _, err := tx.AddField(ctx, registry.ID, model.FieldSpec{
				Name:      "Nom",
				FieldType: model.FieldTypeText,
			}); err != nil {
				return fmt.Errorf("create type registry name field: %w", err)
			}
		} else if err != nil {
			return err
		}

		customID, err := idgen.Generate()
		if err != nil {
			return err
		}
		typeRecord, err := tx.CreateRecord(ctx, registry.ID, customID,
			map[string]string{"nom": req.TypeName}, nil)
		if err != nil {
			return fmt.Errorf("create type record: %w", err)
		}

		details, err := tx.CreateTable(ctx, model.TableSpec{
			Name: model.DetailsTableName(req.TypeName),
		})
		if err != nil {
			return fmt.Errorf("create details table: %w", err)
		}
		for _, col := range req.Columns {
			field, err := tx.AddField(ctx, details.ID, col)
			if err != nil {
				return fmt.Errorf("add details column %q: %w", col.Name, err)
			}
			details.Fields = append(details.Fields, *field)
		}

		resp = client.CreateTypeResponse{TypeRecord: typeRecord, DetailsTable: details}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicTypeCreated, events.TypeCreated{
		TypeRecord:   resp.TypeRecord,
		DetailsTable: resp.DetailsTable,
	})
	writeJSON(w, http.StatusCreated, resp)
}

// handleCreateProjectWithDetails handles
// POST /api/database/tables/create_project_with_details/.
func (s *Server) handleCreateProjectWithDetails(w http.ResponseWriter, r *http.Request) {
	var req client.ProjectDetailsRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.ProjectTypeID == 0 {
		writeError(w, http.StatusBadRequest, "project_type_id is required")
		return
	}

	var resp client.ProjectDetailsResponse
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		ctx := r.Context()

		parent, err := tx.GetTableByName(ctx, s.parentTable)
		if err != nil {
			return fmt.Errorf("project table %q: %w", s.parentTable, err)
		}

		payload := record.BuildPayload(parent.ID, req.ProjectData)
		links := payload.Links
		if links == nil {
			links = make(map[string]int64)
		}
		links["type_projet"] = req.ProjectTypeID

		customID, err := idgen.Generate()
		if err != nil {
			return err
		}
		project, err := tx.CreateRecord(ctx, parent.ID, customID, payload.Values, links)
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		details, err := s.upsertDetails(ctx, tx, req.ProjectTypeID, project.ID, req.ConditionalFields)
		if err != nil {
			return err
		}

		resp = client.ProjectDetailsResponse{Project: project, Details: details}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicProjectCreated, events.ProjectCreated{
		Project: resp.Project,
		Details: resp.Details,
	})
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdateProjectWithDetails handles
// PUT /api/database/tables/update_project_with_details/.
func (s *Server) handleUpdateProjectWithDetails(w http.ResponseWriter, r *http.Request) {
	var req client.ProjectDetailsRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.ProjectID == 0 {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if req.ProjectTypeID == 0 {
		writeError(w, http.StatusBadRequest, "project_type_id is required")
		return
	}

	var resp client.ProjectDetailsResponse
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		ctx := r.Context()

		payload := record.BuildUpdatePayload(req.ProjectData)
		links := payload.Links
		if links == nil {
			links = make(map[string]int64)
		}
		links["type_projet"] = req.ProjectTypeID

		project, err := tx.UpdateRecordValues(ctx, req.ProjectID, payload.Values, links)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}

		details, err := s.upsertDetails(ctx, tx, req.ProjectTypeID, project.ID, req.ConditionalFields)
		if err != nil {
			return err
		}

		resp = client.ProjectDetailsResponse{Project: project, Details: details}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicProjectUpdated, events.ProjectUpdated{
		Project: resp.Project,
		Details: resp.Details,
	})
	writeJSON(w, http.StatusOK, resp)
}

// upsertDetails writes the conditional fields of a project into its details
// row, creating the row when the project has none yet. The details table is
// resolved from the type record's name; a type with no details table yields
// a nil details row.
func (s *Server) upsertDetails(ctx context.Context, tx store.Store, typeID, projectID int64, conditional map[string]any) (*model.Record, error) {
	typeRecord, err := tx.GetRecord(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("project type %d: %w", typeID, err)
	}
	typeName := typeDisplayName(typeRecord)
	if typeName == "" {
		return nil, inputError(fmt.Sprintf("type record %d has no name", typeID))
	}

	detailsTable, err := tx.GetTableByName(ctx, model.DetailsTableName(typeName))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payload := record.BuildUpdatePayload(conditional)
	values := payload.Values
	if values == nil {
		values = make(map[string]string)
	}
	values[projectLinkSlug] = strconv.FormatInt(projectID, 10)

	existing, err := tx.ListRecords(ctx, detailsTable.ID, map[string]string{
		projectLinkSlug: values[projectLinkSlug],
	})
	if err != nil {
		return nil, fmt.Errorf("find details row: %w", err)
	}
	if len(existing) > 0 {
		return tx.UpdateRecordValues(ctx, existing[0].ID, values, payload.Links)
	}

	customID, err := idgen.Generate()
	if err != nil {
		return nil, err
	}
	return tx.CreateRecord(ctx, detailsTable.ID, customID, values, payload.Links)
}

// typeDisplayName resolves the human name of a type record.
func typeDisplayName(rec *model.Record) string {
	for _, key := range typeNameKeys {
		if v, ok := rec.Value(key); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
