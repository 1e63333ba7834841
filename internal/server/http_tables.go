package server

import (
	"net/http"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/events"
	"github.com/veillard/tabulaire/internal/model"
)

// handleListTables handles GET /api/database/tables/.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.ListTables(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if tables == nil {
		tables = []*model.Table{}
	}
	writeJSON(w, http.StatusOK, tables)
}

// handleCreateTable handles POST /api/database/tables/.
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var spec model.TableSpec
	if err := decodeBody(r, &spec); err != nil {
		writeStoreError(w, err)
		return
	}
	if spec.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	table, err := s.store.CreateTable(r.Context(), spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicTableCreated, events.TableCreated{Table: table})
	writeJSON(w, http.StatusCreated, table)
}

// handleGetTable handles GET /api/database/tables/{id}/.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	table, err := s.store.GetTable(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// handleUpdateTable handles PATCH /api/database/tables/{id}/.
func (s *Server) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var patch client.TablePatch
	if err := decodeBody(r, &patch); err != nil {
		writeStoreError(w, err)
		return
	}

	table, err := s.store.UpdateTable(r.Context(), id, patch.Name, patch.Slug)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicTableUpdated, events.TableUpdated{Table: table})
	writeJSON(w, http.StatusOK, table)
}

// handleDeleteTable handles DELETE /api/database/tables/{id}/.
func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.DeleteTable(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicTableDeleted, events.TableDeleted{TableID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleAddField handles POST /api/database/tables/{id}/add_field/.
func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var spec model.FieldSpec
	if err := decodeBody(r, &spec); err != nil {
		writeStoreError(w, err)
		return
	}
	if spec.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !spec.FieldType.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown field_type "+string(spec.FieldType))
		return
	}

	field, err := s.store.AddField(r.Context(), tableID, spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicFieldAdded, events.FieldAdded{TableID: tableID, Field: field})
	writeJSON(w, http.StatusCreated, field)
}

// handleUpdateField handles PUT /api/database/fields/{id}/.
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var spec model.FieldSpec
	if err := decodeBody(r, &spec); err != nil {
		writeStoreError(w, err)
		return
	}
	if spec.FieldType != "" && !spec.FieldType.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown field_type "+string(spec.FieldType))
		return
	}

	field, err := s.store.UpdateField(r.Context(), fieldID, spec)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicFieldUpdated, events.FieldUpdated{TableID: field.TableID, Field: field})
	writeJSON(w, http.StatusOK, field)
}

// handleDeleteField handles DELETE /api/database/fields/{id}/.
func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.DeleteField(r.Context(), fieldID); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicFieldDeleted, events.FieldDeleted{FieldID: fieldID})
	w.WriteHeader(http.StatusNoContent)
}

// handleReorderFields handles PATCH /api/database/fields/reorder_fields/.
func (s *Server) handleReorderFields(w http.ResponseWriter, r *http.Request) {
	var req client.ReorderFieldsRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.TableID == 0 {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}
	if len(req.FieldOrders) == 0 {
		writeError(w, http.StatusBadRequest, "field_orders is required")
		return
	}

	if err := s.store.ReorderFields(r.Context(), req.TableID, req.FieldOrders); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicFieldsReordered, events.FieldsReordered{
		TableID: req.TableID,
		Orders:  req.FieldOrders,
	})
	w.WriteHeader(http.StatusNoContent)
}
