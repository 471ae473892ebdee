package camperpack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPRemotePushChanges(t *testing.T) {
	var gotAuth, gotSource string
	var gotReq PushRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sync" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotSource = r.Header.Get("X-CamperPack-Source-ID")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(PushResponse{Success: true, Processed: len(gotReq.Changes)})
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, "secret", "trailer-laptop")
	resp, err := remote.PushChanges(context.Background(), []Change{
		{TableName: "items", RecordID: "abc", Action: ActionUpsert, Data: `{"id":"abc"}`},
	})
	if err != nil {
		t.Fatalf("PushChanges: %v", err)
	}

	if resp.Processed != 1 {
		t.Errorf("processed = %d, want 1", resp.Processed)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotSource != "trailer-laptop" {
		t.Errorf("source header = %q", gotSource)
	}
	if len(gotReq.Changes) != 1 || gotReq.Changes[0].RecordID != "abc" {
		t.Errorf("request body = %+v", gotReq)
	}
}

func TestHTTPRemotePushErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, "", "")
	_, err := remote.PushChanges(context.Background(), nil)

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("err = %v, want *SyncError", err)
	}
	if syncErr.Operation != "push" {
		t.Errorf("operation = %s, want push", syncErr.Operation)
	}
	if syncErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", syncErr.StatusCode)
	}
}

func TestHTTPRemotePushRejectedBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PushResponse{Success: false, Error: "bad batch"})
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, "", "")
	if _, err := remote.PushChanges(context.Background(), nil); err == nil {
		t.Error("expected error for rejected batch")
	}
}

func TestHTTPRemoteFetchDataset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/sync" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Dataset{
			Items: []Record{{"id": "abc", "name": "Lantern"}},
		})
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, "", "")
	dataset, err := remote.FetchDataset(context.Background())
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if dataset.Total() != 1 {
		t.Errorf("total = %d, want 1", dataset.Total())
	}
	if dataset.Items[0].ID() != "abc" {
		t.Errorf("item id = %s, want abc", dataset.Items[0].ID())
	}
}

func TestHTTPRemoteFetchChangesSince(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sync/changes" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("lastSync") == "" {
			t.Error("missing lastSync query parameter")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"changes": []ChangeLogEntry{{ID: 1, TableName: "items", RecordID: "abc", Action: ActionUpsert}},
		})
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL, "", "")
	changes, err := remote.FetchChangesSince(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("FetchChangesSince: %v", err)
	}
	if len(changes) != 1 || changes[0].RecordID != "abc" {
		t.Errorf("changes = %+v", changes)
	}
}

func TestHTTPRemoteTrimsTrailingSlash(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s, want /api/health", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}))
	defer ts.Close()

	remote := NewHTTPRemote(ts.URL+"/", "", "")
	health, err := remote.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
