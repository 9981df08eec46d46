package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrRemoteRecordNotFound is returned by FindByLocalID when no mirror
// record carries the requested local_id.
var ErrRemoteRecordNotFound = errors.New("pocketbase: record not found")

// Remote mirror collections. "receipts" carries sales; the names match the
// hosted PocketBase schema this backend mirrors into.
const (
	CollectionProducts = "products"
	CollectionReceipts = "receipts"
	CollectionExpenses = "expenses"
)

// PocketBaseClient talks to a PocketBase-style document store over its REST
// API. The mirror is write-mostly: the outbox worker pushes mutations, and
// the pull loop periodically lists collections for the union merge.
type PocketBaseClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewPocketBaseClient(baseURL, token string) *PocketBaseClient {
	return &PocketBaseClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// pbListResponse is one page of a records listing.
type pbListResponse struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// ListAll fetches every record in a collection, following pagination.
func (c *PocketBaseClient) ListAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/api/collections/%s/records?page=%d&perPage=200", c.baseURL, collection, page)
		var resp pbListResponse
		if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)
		if page >= resp.TotalPages || len(resp.Items) == 0 {
			break
		}
	}
	return all, nil
}

// FindByLocalID resolves the PocketBase record id for a record mirrored
// with the given local_id. PocketBase assigns its own short ids, so every
// update or delete goes through this lookup first.
func (c *PocketBaseClient) FindByLocalID(ctx context.Context, collection, localID string) (string, error) {
	filter := url.QueryEscape(fmt.Sprintf("local_id='%s'", localID))
	reqURL := fmt.Sprintf("%s/api/collections/%s/records?filter=%s&perPage=1", c.baseURL, collection, filter)

	var resp pbListResponse
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", ErrRemoteRecordNotFound
	}
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Items[0], &rec); err != nil {
		return "", fmt.Errorf("pocketbase: decode record id: %w", err)
	}
	return rec.ID, nil
}

// Create inserts a record into a collection.
func (c *PocketBaseClient) Create(ctx context.Context, collection string, record interface{}) error {
	url := fmt.Sprintf("%s/api/collections/%s/records", c.baseURL, collection)
	return c.do(ctx, http.MethodPost, url, record, nil)
}

// Update patches an existing record by id.
func (c *PocketBaseClient) Update(ctx context.Context, collection, id string, record interface{}) error {
	url := fmt.Sprintf("%s/api/collections/%s/records/%s", c.baseURL, collection, id)
	return c.do(ctx, http.MethodPatch, url, record, nil)
}

// Delete removes a record by id. A 404 is treated as success: the record is
// already gone, which is the state we wanted.
func (c *PocketBaseClient) Delete(ctx context.Context, collection, id string) error {
	url := fmt.Sprintf("%s/api/collections/%s/records/%s", c.baseURL, collection, id)
	err := c.do(ctx, http.MethodDelete, url, nil, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("pocketbase: status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*httpStatusError)
	return ok && se.status == http.StatusNotFound
}

func (c *PocketBaseClient) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pocketbase: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("pocketbase: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pocketbase: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{status: resp.StatusCode, body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("pocketbase: decode response: %w", err)
		}
	}
	return nil
}
