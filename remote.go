package camperpack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPRemote implements RemoteClient against the remote sync endpoint
// over HTTP.
type HTTPRemote struct {
	baseURL    string
	apiKey     string
	sourceID   string
	httpClient *http.Client
}

// NewHTTPRemote creates a remote sync client. apiKey and sourceID are
// optional; when set they are sent as Authorization and
// X-CamperPack-Source-ID headers.
func NewHTTPRemote(baseURL, apiKey, sourceID string) *HTTPRemote {
	return &HTTPRemote{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		sourceID: sourceID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *HTTPRemote) WithHTTPClient(client *http.Client) *HTTPRemote {
	c.httpClient = client
	return c
}

func (c *HTTPRemote) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if strings.TrimSpace(c.sourceID) != "" {
		req.Header.Set("X-CamperPack-Source-ID", c.sourceID)
	}
	req.Header.Set("User-Agent", "camperpack-client/1.0")
}

func newSyncError(op string, statusCode int, body []byte) *SyncError {
	msg := ""
	if len(body) > 0 && statusCode >= 400 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}
	return &SyncError{
		Operation:  op,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, msg),
	}
}

// PushChanges transmits a batch of queued mutations via POST /api/sync.
func (c *HTTPRemote) PushChanges(ctx context.Context, changes []Change) (*PushResponse, error) {
	body, err := json.Marshal(PushRequest{Changes: changes})
	if err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync", bytes.NewReader(body))
	if err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, newSyncError("push", resp.StatusCode, respBody)
	}

	var result PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &SyncError{Operation: "push", Err: err}
	}
	if !result.Success {
		return nil, &SyncError{Operation: "push", StatusCode: resp.StatusCode, Err: fmt.Errorf("remote rejected batch: %s", result.Error)}
	}

	return &result, nil
}

// FetchDataset retrieves the full authoritative dataset via GET /api/sync.
func (c *HTTPRemote) FetchDataset(ctx context.Context) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sync", nil)
	if err != nil {
		return nil, &SyncError{Operation: "pull", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Operation: "pull", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, newSyncError("pull", resp.StatusCode, respBody)
	}

	var dataset Dataset
	if err := json.NewDecoder(resp.Body).Decode(&dataset); err != nil {
		return nil, &SyncError{Operation: "pull", Err: err}
	}

	return &dataset, nil
}

// FetchChangesSince retrieves remote change-log entries appended after
// the given watermark via GET /api/sync/changes.
func (c *HTTPRemote) FetchChangesSince(ctx context.Context, since time.Time) ([]ChangeLogEntry, error) {
	url := fmt.Sprintf("%s/api/sync/changes?lastSync=%s", c.baseURL, since.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &SyncError{Operation: "changes", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Operation: "changes", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, newSyncError("changes", resp.StatusCode, respBody)
	}

	var result struct {
		Changes []ChangeLogEntry `json:"changes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &SyncError{Operation: "changes", Err: err}
	}

	return result.Changes, nil
}

// Health validates connectivity via GET /api/health.
func (c *HTTPRemote) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, &SyncError{Operation: "health", Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SyncError{Operation: "health", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, newSyncError("health", resp.StatusCode, respBody)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, &SyncError{Operation: "health", Err: err}
	}

	return &health, nil
}
