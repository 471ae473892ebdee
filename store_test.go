package camperpack

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "camperpack.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAssignsIDAndTimestamps(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Put(KindItems, Record{"name": "Lantern"}, true)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if rec.ID() == "" {
		t.Error("expected generated id")
	}
	if rec["created_at"] == nil || rec["created_at"] == "" {
		t.Error("expected created_at to be stamped")
	}
	if rec["updated_at"] == nil || rec["updated_at"] == "" {
		t.Error("expected updated_at to be stamped")
	}
}

func TestPutPreservesCallerID(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Put(KindTemplates, Record{"id": "weekend", "name": "Weekend Trip"}, false)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID() != "weekend" {
		t.Errorf("id = %q, want weekend", rec.ID())
	}
}

func TestPutDoesNotMutateInput(t *testing.T) {
	store := newTestStore(t)

	in := Record{"name": "Axe"}
	if _, err := store.Put(KindItems, in, false); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := in["id"]; ok {
		t.Error("Put mutated the caller's record")
	}
}

func TestPutUpsertsByID(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Put(KindItems, Record{"name": "Stove"}, false)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	first["name"] = "Camp Stove"
	if _, err := store.Put(KindItems, first, false); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	all, err := store.GetAll(KindItems)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0]["name"] != "Camp Stove" {
		t.Errorf("name = %v, want Camp Stove", all[0]["name"])
	}
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(KindItems, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByField(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"Plates", "Cups"} {
		if _, err := store.Put(KindItems, Record{"name": name, "category": "kitchen"}, false); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if _, err := store.Put(KindItems, Record{"name": "Pillow", "category": "bedding"}, false); err != nil {
		t.Fatalf("Put: %v", err)
	}

	kitchen, err := store.GetByField(KindItems, "category", "kitchen")
	if err != nil {
		t.Fatalf("GetByField: %v", err)
	}
	if len(kitchen) != 2 {
		t.Errorf("got %d kitchen items, want 2", len(kitchen))
	}
}

func TestGetByFieldRejectsBadFieldName(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetByField(KindItems, "name'; DROP TABLE items;--", "x"); err == nil {
		t.Error("expected error for invalid field name")
	}
}

func TestDeleteAbsentIDIsNoError(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete(KindItems, "missing", true); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestInvalidKind(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetAll(Kind("bogus")); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("GetAll err = %v, want ErrInvalidKind", err)
	}
	if _, err := store.Put(Kind("bogus"), Record{"name": "x"}, false); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Put err = %v, want ErrInvalidKind", err)
	}
}

func TestTrackedPutQueuesSnapshot(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Put(KindItems, Record{"name": "Hatchet"}, true)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending entries, want 1", len(pending))
	}

	entry := pending[0]
	if entry.TableName != KindItems {
		t.Errorf("table = %s, want items", entry.TableName)
	}
	if entry.RecordID != rec.ID() {
		t.Errorf("record id = %s, want %s", entry.RecordID, rec.ID())
	}
	if entry.Action != ActionUpsert {
		t.Errorf("action = %s, want upsert", entry.Action)
	}
	if entry.Data == "" {
		t.Error("expected full snapshot in queue entry")
	}
}

func TestUntrackedPutBypassesQueue(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Put(KindItems, Record{"name": "Tarp"}, false); err != nil {
		t.Fatalf("Put: %v", err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending entries, want 0", len(pending))
	}
}

func TestQueuePreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Put(KindItems, Record{"name": "Cooler"}, true)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec["name"] = "Big Cooler"
	if _, err := store.Put(KindItems, rec, true); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	if err := store.Delete(KindItems, rec.ID(), true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("got %d pending entries, want 3", len(pending))
	}

	wantActions := []Action{ActionUpsert, ActionUpsert, ActionDelete}
	for i, entry := range pending {
		if entry.Action != wantActions[i] {
			t.Errorf("entry %d action = %s, want %s", i, entry.Action, wantActions[i])
		}
		if i > 0 && pending[i].ID <= pending[i-1].ID {
			t.Errorf("queue ids not ascending: %d then %d", pending[i-1].ID, pending[i].ID)
		}
	}
	if pending[2].Data != "" {
		t.Error("delete entry should carry no snapshot")
	}
}

func TestMarkSyncedAndPurge(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Put(KindItems, Record{"name": "Rope"}, true); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Put(KindItems, Record{"name": "Stakes"}, true); err != nil {
		t.Fatalf("Put: %v", err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if err := store.MarkSynced(pending[0].ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := store.PurgeSynced(); err != nil {
		t.Fatalf("PurgeSynced: %v", err)
	}

	remaining, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("got %d pending entries, want 1", len(remaining))
	}
	if remaining[0].ID != pending[1].ID {
		t.Errorf("wrong entry survived: %d, want %d", remaining[0].ID, pending[1].ID)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)

	value, err := store.GetMetadata("missing")
	if err != nil || value != "" {
		t.Errorf("GetMetadata missing = (%q, %v), want empty", value, err)
	}

	if err := store.SetMetadata("device", "trailer-laptop"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	value, err = store.GetMetadata("device")
	if err != nil || value != "trailer-laptop" {
		t.Errorf("GetMetadata = (%q, %v)", value, err)
	}
}

func TestLastSyncWatermark(t *testing.T) {
	store := newTestStore(t)

	last, err := store.LastSync()
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("fresh store last sync = %v, want zero", last)
	}

	now := time.Now().Truncate(time.Second)
	if err := store.SetLastSync(now); err != nil {
		t.Fatalf("SetLastSync: %v", err)
	}

	last, err = store.LastSync()
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.Equal(now.UTC()) {
		t.Errorf("last sync = %v, want %v", last, now.UTC())
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Put(KindItems, Record{"name": "Mallet"}, true); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Put(KindLocations, Record{"name": "Pantry", "area": "trailer"}, false); err != nil {
		t.Fatalf("Put: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.RecordCounts[KindItems] != 1 {
		t.Errorf("items = %d, want 1", stats.RecordCounts[KindItems])
	}
	if stats.RecordCounts[KindLocations] != 1 {
		t.Errorf("locations = %d, want 1", stats.RecordCounts[KindLocations])
	}
	if stats.PendingSync != 1 {
		t.Errorf("pending = %d, want 1", stats.PendingSync)
	}
}

func TestClosedStore(t *testing.T) {
	store := newTestStore(t)
	store.Close()

	if _, err := store.GetAll(KindItems); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("GetAll err = %v, want ErrStoreClosed", err)
	}
	if _, err := store.Put(KindItems, Record{"name": "x"}, false); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Put err = %v, want ErrStoreClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
