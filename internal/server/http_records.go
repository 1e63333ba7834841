package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/events"
	"github.com/veillard/tabulaire/internal/idgen"
	"github.com/veillard/tabulaire/internal/model"
)

// fieldFilterPrefix marks query parameters that filter records by a typed
// field value ("field_statut=ouvert").
const fieldFilterPrefix = "field_"

// handleListRecords handles GET /api/database/records/by_table/.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tableID, err := strconv.ParseInt(q.Get("table_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}

	var filters map[string]string
	for key, vals := range q {
		if !strings.HasPrefix(key, fieldFilterPrefix) || len(vals) == 0 {
			continue
		}
		if filters == nil {
			filters = make(map[string]string)
		}
		filters[strings.TrimPrefix(key, fieldFilterPrefix)] = vals[0]
	}

	records, err := s.store.ListRecords(r.Context(), tableID, filters)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []*model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetRecord handles GET /api/database/records/{id}/.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	record, err := s.store.GetRecord(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleGetRecordByCustomID handles GET /api/database/records/by_custom_id/.
func (s *Server) handleGetRecordByCustomID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tableID, err := strconv.ParseInt(q.Get("table_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}
	customID := q.Get("custom_id")
	if customID == "" {
		writeError(w, http.StatusBadRequest, "custom_id is required")
		return
	}

	record, err := s.store.GetRecordByCustomID(r.Context(), tableID, customID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleCreateRecord handles POST /api/database/records/create_with_values/.
// The custom ID is generated server side.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req client.CreateRecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.TableID == 0 {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}

	customID, err := idgen.Generate()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	record, err := s.store.CreateRecord(r.Context(), req.TableID, customID, req.Values, req.Links)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicRecordCreated, events.RecordCreated{Record: record})
	writeJSON(w, http.StatusCreated, record)
}

// handleUpdateRecord handles PATCH /api/database/records/{id}/update_with_values/.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var req client.UpdateRecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeStoreError(w, err)
		return
	}
	if len(req.Values) == 0 && len(req.Links) == 0 {
		writeError(w, http.StatusBadRequest, "no values to update")
		return
	}

	record, err := s.store.UpdateRecordValues(r.Context(), id, req.Values, req.Links)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicRecordUpdated, events.RecordUpdated{Record: record, Values: req.Values})
	writeJSON(w, http.StatusOK, record)
}

// handleDeleteRecord handles DELETE /api/database/records/{id}/.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// Fetch first so the deletion event can carry the table ID.
	record, err := s.store.GetRecord(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.DeleteRecord(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), events.TopicRecordDeleted, events.RecordDeleted{
		RecordID: id,
		TableID:  record.TableID,
	})
	w.WriteHeader(http.StatusNoContent)
}
