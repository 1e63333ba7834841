package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/veillard/tabulaire/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /healthz) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()

	// Tables
	mux.HandleFunc("GET /api/database/tables/{$}", s.handleListTables)
	mux.HandleFunc("POST /api/database/tables/{$}", s.handleCreateTable)
	mux.HandleFunc("GET /api/database/tables/{id}/{$}", s.handleGetTable)
	mux.HandleFunc("PATCH /api/database/tables/{id}/{$}", s.handleUpdateTable)
	mux.HandleFunc("DELETE /api/database/tables/{id}/{$}", s.handleDeleteTable)

	// Fields
	mux.HandleFunc("POST /api/database/tables/{id}/add_field/{$}", s.handleAddField)
	mux.HandleFunc("PUT /api/database/fields/{id}/{$}", s.handleUpdateField)
	mux.HandleFunc("DELETE /api/database/fields/{id}/{$}", s.handleDeleteField)
	mux.HandleFunc("PATCH /api/database/fields/reorder_fields/{$}", s.handleReorderFields)

	// Records
	mux.HandleFunc("GET /api/database/records/by_table/{$}", s.handleListRecords)
	mux.HandleFunc("GET /api/database/records/by_custom_id/{$}", s.handleGetRecordByCustomID)
	mux.HandleFunc("GET /api/database/records/{id}/{$}", s.handleGetRecord)
	mux.HandleFunc("DELETE /api/database/records/{id}/{$}", s.handleDeleteRecord)
	mux.HandleFunc("POST /api/database/records/create_with_values/{$}", s.handleCreateRecord)
	mux.HandleFunc("PATCH /api/database/records/{id}/update_with_values/{$}", s.handleUpdateRecord)

	// Orchestrated multi-table mutations
	mux.HandleFunc("POST /api/database/tables/create_new_type/{$}", s.handleCreateNewType)
	mux.HandleFunc("POST /api/database/tables/create_project_with_details/{$}", s.handleCreateProjectWithDetails)
	mux.HandleFunc("PUT /api/database/tables/update_project_with_details/{$}", s.handleUpdateProjectWithDetails)

	mux.HandleFunc("GET /api/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, inputError("invalid id")
	}
	return id, nil
}

// decodeBody decodes the request body as JSON into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return inputError("invalid request body: " + err.Error())
	}
	return nil
}

// writeStoreError maps an error from a handler to an HTTP error response.
func writeStoreError(w http.ResponseWriter, err error) {
	var in inputError
	switch {
	case errors.As(err, &in):
		writeError(w, http.StatusBadRequest, in.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
