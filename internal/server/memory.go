package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/camperpack/camperpack"
)

// MemoryRepository is an in-memory Repository, used in tests and for
// running the server without a database.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[camperpack.Kind]map[string]camperpack.Record
	log    []camperpack.ChangeLogEntry
	nextID int64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	tables := make(map[camperpack.Kind]map[string]camperpack.Record)
	for _, kind := range camperpack.ValidKinds() {
		tables[kind] = make(map[string]camperpack.Record)
	}
	return &MemoryRepository{tables: tables, nextID: 1}
}

// ApplyChanges applies pushed mutations in order. Unknown tables are
// skipped like the database-backed implementation skips them.
func (r *MemoryRepository) ApplyChanges(ctx context.Context, sourceID string, changes []camperpack.Change) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	applied := 0
	for _, change := range changes {
		kind := camperpack.Kind(change.TableName)
		cols, known := allowedColumns[kind]
		if !known {
			continue
		}

		switch change.Action {
		case camperpack.ActionDelete:
			delete(r.tables[kind], change.RecordID)
		case camperpack.ActionUpsert:
			if change.Data == "" {
				continue
			}
			row, _, err := snapshotToRow(change.Data, cols)
			if err != nil {
				return 0, fmt.Errorf("decode %s/%s: %w", change.TableName, change.RecordID, err)
			}
			id, _ := row["id"].(string)
			if id == "" {
				return 0, fmt.Errorf("upsert %s: snapshot has no id", change.TableName)
			}
			r.tables[kind][id] = camperpack.Record(row)
		default:
			continue
		}

		r.log = append(r.log, camperpack.ChangeLogEntry{
			ID:        r.nextID,
			TableName: change.TableName,
			RecordID:  change.RecordID,
			Action:    change.Action,
			Data:      change.Data,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		})
		r.nextID++
		applied++
	}
	return applied, nil
}

// Dataset returns every stored record, ordered by id within each kind.
func (r *MemoryRepository) Dataset(ctx context.Context) (*camperpack.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dataset := &camperpack.Dataset{}
	for _, kind := range camperpack.ValidKinds() {
		records := make([]camperpack.Record, 0, len(r.tables[kind]))
		for _, rec := range r.tables[kind] {
			records = append(records, rec.Clone())
		}
		sort.Slice(records, func(i, j int) bool { return records[i].ID() < records[j].ID() })
		dataset.SetRecords(kind, records)
	}
	return dataset, nil
}

// ChangesSince returns log entries newer than the watermark.
func (r *MemoryRepository) ChangesSince(ctx context.Context, since time.Time) ([]camperpack.ChangeLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := since.UTC().Format(time.RFC3339Nano)
	var out []camperpack.ChangeLogEntry
	for _, entry := range r.log {
		if entry.CreatedAt > cutoff {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Record returns one stored record, for test assertions.
func (r *MemoryRepository) Record(kind camperpack.Kind, id string) (camperpack.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tables[kind][id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put stores a record directly, for seeding test fixtures.
func (r *MemoryRepository) Put(kind camperpack.Kind, rec camperpack.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID() == "" {
		return fmt.Errorf("record has no id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	row, _, err := snapshotToRow(string(raw), allowedColumns[kind])
	if err != nil {
		return err
	}
	r.tables[kind][rec.ID()] = camperpack.Record(row)
	return nil
}
