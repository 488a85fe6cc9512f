// Package storeclient is the typed HTTP client for the rolo record store:
// CRUD access to the contact collection and append/list access to the
// activity log. It performs no retries; retry policy belongs to the caller.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/rolo/internal/models"
)

// ErrStoreUnavailable is matched (errors.Is) by every failure this client
// returns, whether the transport failed or the store answered with a
// non-success status.
var ErrStoreUnavailable = errors.New("store unavailable")

// DefaultTimeout is the transport timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// StoreError describes a failed store call.
type StoreError struct {
	Op      string // e.g. "create contact"
	Status  int    // HTTP status, 0 on transport failure
	Code    string // structured error code from the store, if any
	Message string
	Err     error // underlying transport error, if any
}

func (e *StoreError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, ErrStoreUnavailable, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %v: HTTP %d: %s", e.Op, ErrStoreUnavailable, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %v: HTTP %d", e.Op, ErrStoreUnavailable, e.Status)
	}
}

func (e *StoreError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStoreUnavailable, e.Err}
	}
	return []error{ErrStoreUnavailable}
}

// IsConflict reports whether err is a store-side uniqueness rejection.
func IsConflict(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Status == http.StatusConflict
}

// IsNotFound reports whether err is a store-side 404.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Client is an HTTP client for the rolo-store server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a new store client. A zero timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck hits the /healthz endpoint to verify store reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "health check", http.MethodGet, "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Contacts ---

// ListContacts returns the full contact collection in store order.
func (c *Client) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var resp []models.Contact
	if err := c.do(ctx, "list contacts", http.MethodGet, "/contacts", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateContact creates a contact; the store assigns ID and CreatedAt.
func (c *Client) CreateContact(ctx context.Context, draft models.ContactDraft) (models.Contact, error) {
	var resp models.Contact
	err := c.do(ctx, "create contact", http.MethodPost, "/contacts", draft, &resp)
	return resp, err
}

// UpdateContact replaces a contact's fields.
func (c *Client) UpdateContact(ctx context.Context, id string, full models.Contact) (models.Contact, error) {
	var resp models.Contact
	err := c.do(ctx, "update contact", http.MethodPut, "/contacts/"+url.PathEscape(id), full, &resp)
	return resp, err
}

// PatchContact applies a partial update.
func (c *Client) PatchContact(ctx context.Context, id string, patch models.ContactPatch) (models.Contact, error) {
	var resp models.Contact
	err := c.do(ctx, "patch contact", http.MethodPatch, "/contacts/"+url.PathEscape(id), patch, &resp)
	return resp, err
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, "delete contact", http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil)
}

// --- Activity log ---

// AppendActivity appends an entry to the activity log.
func (c *Client) AppendActivity(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	var resp models.ActivityLogEntry
	err := c.do(ctx, "append activity", http.MethodPost, "/activityLogs", entry, &resp)
	return resp, err
}

// ListRecentActivity returns at most limit entries, newest first.
func (c *Client) ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	params := url.Values{}
	params.Set("_sort", "timestamp")
	params.Set("_order", "desc")
	if limit > 0 {
		params.Set("_limit", strconv.Itoa(limit))
	}

	var resp []models.ActivityLogEntry
	if err := c.do(ctx, "list activity", http.MethodGet, "/activityLogs?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- HTTP helpers ---

// apiError is the standard error body from the store.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return &StoreError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StoreError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StoreError{Op: op, Status: resp.StatusCode}
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Code != "" {
			se.Code = apiErr.Error.Code
			se.Message = apiErr.Error.Message
		} else if msg := strings.TrimSpace(string(respBody)); msg != "" && len(msg) < 200 {
			se.Message = msg
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &StoreError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
	}

	return nil
}
