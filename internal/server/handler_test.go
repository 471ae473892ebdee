package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/camperpack/camperpack"
)

func newTestEndpoint(t *testing.T, apiKey string) (*httptest.Server, *MemoryRepository) {
	t.Helper()

	repo := NewMemoryRepository()
	ts := httptest.NewServer(New(repo, apiKey))
	t.Cleanup(ts.Close)
	return ts, repo
}

func TestPushUpsertAndPull(t *testing.T) {
	ts, _ := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	resp, err := remote.PushChanges(context.Background(), []camperpack.Change{
		{TableName: "items", RecordID: "lantern", Action: camperpack.ActionUpsert,
			Data: `{"id":"lantern","name":"Lantern","category":"tools"}`},
	})
	if err != nil {
		t.Fatalf("PushChanges: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("processed = %d, want 1", resp.Processed)
	}

	dataset, err := remote.FetchDataset(context.Background())
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if len(dataset.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(dataset.Items))
	}
	if dataset.Items[0]["name"] != "Lantern" {
		t.Errorf("name = %v", dataset.Items[0]["name"])
	}
}

func TestPushDeleteRemovesRecord(t *testing.T) {
	ts, repo := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	changes := []camperpack.Change{
		{TableName: "items", RecordID: "axe", Action: camperpack.ActionUpsert,
			Data: `{"id":"axe","name":"Axe"}`},
		{TableName: "items", RecordID: "axe", Action: camperpack.ActionDelete},
	}
	if _, err := remote.PushChanges(context.Background(), changes); err != nil {
		t.Fatalf("PushChanges: %v", err)
	}

	if _, ok := repo.Record(camperpack.KindItems, "axe"); ok {
		t.Error("delete after upsert in the same batch must leave no record")
	}
}

func TestPushReplayIsIdempotent(t *testing.T) {
	ts, repo := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	batch := []camperpack.Change{
		{TableName: "items", RecordID: "stove", Action: camperpack.ActionUpsert,
			Data: `{"id":"stove","name":"Stove"}`},
	}

	// At-least-once delivery means the same batch can arrive twice.
	for i := 0; i < 2; i++ {
		if _, err := remote.PushChanges(context.Background(), batch); err != nil {
			t.Fatalf("PushChanges replay %d: %v", i, err)
		}
	}

	dataset, err := repo.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if len(dataset.Items) != 1 {
		t.Errorf("items = %d, replay must converge to 1", len(dataset.Items))
	}
}

func TestPushSkipsUnknownTables(t *testing.T) {
	ts, _ := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	resp, err := remote.PushChanges(context.Background(), []camperpack.Change{
		{TableName: "bogus", RecordID: "x", Action: camperpack.ActionUpsert, Data: `{"id":"x"}`},
		{TableName: "items", RecordID: "mug", Action: camperpack.ActionUpsert, Data: `{"id":"mug","name":"Mug"}`},
	})
	if err != nil {
		t.Fatalf("PushChanges: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("processed = %d, unknown tables must be skipped not counted", resp.Processed)
	}
}

func TestPushFiltersUnknownColumns(t *testing.T) {
	ts, repo := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	if _, err := remote.PushChanges(context.Background(), []camperpack.Change{
		{TableName: "items", RecordID: "mug", Action: camperpack.ActionUpsert,
			Data: `{"id":"mug","name":"Mug","evil_column":"x"}`},
	}); err != nil {
		t.Fatalf("PushChanges: %v", err)
	}

	rec, ok := repo.Record(camperpack.KindItems, "mug")
	if !ok {
		t.Fatal("record missing")
	}
	if _, present := rec["evil_column"]; present {
		t.Error("unknown column survived the allowlist")
	}
}

func TestChangesSinceReturnsLog(t *testing.T) {
	ts, _ := newTestEndpoint(t, "")
	remote := camperpack.NewHTTPRemote(ts.URL, "", "test")

	if _, err := remote.PushChanges(context.Background(), []camperpack.Change{
		{TableName: "items", RecordID: "rope", Action: camperpack.ActionUpsert,
			Data: `{"id":"rope","name":"Rope"}`},
	}); err != nil {
		t.Fatalf("PushChanges: %v", err)
	}

	changes, err := remote.FetchChangesSince(context.Background(), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("FetchChangesSince: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].RecordID != "rope" || changes[0].Action != camperpack.ActionUpsert {
		t.Errorf("entry = %+v", changes[0])
	}
}

func TestAPIKeyRequired(t *testing.T) {
	ts, _ := newTestEndpoint(t, "secret")

	unauthorized := camperpack.NewHTTPRemote(ts.URL, "wrong", "test")
	if _, err := unauthorized.Health(context.Background()); err == nil {
		t.Error("expected auth failure with wrong key")
	}

	authorized := camperpack.NewHTTPRemote(ts.URL, "secret", "test")
	health, err := authorized.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %s", health.Status)
	}
}
