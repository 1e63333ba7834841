package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/veillard/tabulaire/internal/model"
)

// HTTPClient implements Client using the tabulaire HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Tables ---

func (c *HTTPClient) ListTables(ctx context.Context) ([]*model.Table, error) {
	var tables []*model.Table
	if err := c.doJSON(ctx, http.MethodGet, "/api/database/tables/", nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (c *HTTPClient) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	var table model.Table
	if err := c.doJSON(ctx, http.MethodGet, tablePath(id), nil, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *HTTPClient) CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error) {
	var table model.Table
	if err := c.doJSON(ctx, http.MethodPost, "/api/database/tables/", spec, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *HTTPClient) UpdateTable(ctx context.Context, id int64, patch TablePatch) (*model.Table, error) {
	var table model.Table
	if err := c.doJSON(ctx, http.MethodPatch, tablePath(id), patch, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *HTTPClient) DeleteTable(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, tablePath(id), nil, nil)
}

// --- Fields ---

func (c *HTTPClient) AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	var field model.Field
	path := tablePath(tableID) + "add_field/"
	if err := c.doJSON(ctx, http.MethodPost, path, spec, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

func (c *HTTPClient) UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	var field model.Field
	if err := c.doJSON(ctx, http.MethodPut, fieldPath(fieldID), spec, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

func (c *HTTPClient) DeleteField(ctx context.Context, fieldID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fieldPath(fieldID), nil, nil)
}

func (c *HTTPClient) ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error {
	req := ReorderFieldsRequest{TableID: tableID, FieldOrders: orders}
	return c.doJSON(ctx, http.MethodPatch, "/api/database/fields/reorder_fields/", req, nil)
}

// --- Records ---

func (c *HTTPClient) ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	q := url.Values{}
	q.Set("table_id", strconv.FormatInt(tableID, 10))
	for slug, value := range fieldFilters {
		q.Set("field_"+slug, value)
	}

	var records []*model.Record
	path := "/api/database/records/by_table/?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	var record model.Record
	if err := c.doJSON(ctx, http.MethodGet, recordPath(id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error) {
	q := url.Values{}
	q.Set("table_id", strconv.FormatInt(tableID, 10))
	q.Set("custom_id", customID)

	var record model.Record
	path := "/api/database/records/by_custom_id/?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*model.Record, error) {
	var record model.Record
	if err := c.doJSON(ctx, http.MethodPost, "/api/database/records/create_with_values/", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, recordID int64, req *UpdateRecordRequest) (*model.Record, error) {
	var record model.Record
	path := recordPath(recordID) + "update_with_values/"
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

// --- Type orchestration ---

func (c *HTTPClient) CreateNewType(ctx context.Context, req *CreateTypeRequest) (*CreateTypeResponse, error) {
	var resp CreateTypeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/database/tables/create_new_type/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateProjectWithDetails(ctx context.Context, req *ProjectDetailsRequest) (*ProjectDetailsResponse, error) {
	var resp ProjectDetailsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/database/tables/create_project_with_details/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProjectWithDetails(ctx context.Context, req *ProjectDetailsRequest) (*ProjectDetailsResponse, error) {
	var resp ProjectDetailsResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/database/tables/update_project_with_details/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

func tablePath(id int64) string {
	return "/api/database/tables/" + strconv.FormatInt(id, 10) + "/"
}

func fieldPath(id int64) string {
	return "/api/database/fields/" + strconv.FormatInt(id, 10) + "/"
}

func recordPath(id int64) string {
	return "/api/database/records/" + strconv.FormatInt(id, 10) + "/"
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
