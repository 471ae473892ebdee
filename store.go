package camperpack

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/camperpack/camperpack/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const metaKeyLastSync = "last_sync"

// Store manages the local SQLite database: one table per entity kind,
// the change queue, and the metadata table. A record write and its
// queue append happen in one transaction, so a mutation is either
// fully committed and queued or not committed at all.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates the local store.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// NewID generates a record ID: a ULID, i.e. millisecond timestamp plus
// random suffix, unique and sortable by creation time.
func NewID() string {
	return ulid.Make().String()
}

// GetAll returns every record of the given kind.
func (s *Store) GetAll(kind Kind) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, kind))
	if err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", kind, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get retrieves one record by kind and id. Returns ErrNotFound when absent.
func (s *Store) Get(kind Kind, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}

	var data string
	err := s.db.QueryRow(fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, kind), id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", kind, id, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s/%s: %w", kind, id, err)
	}
	return rec, nil
}

var fieldNameRx = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// GetByField returns records whose named field equals the given value.
// This is a read-only projection over the JSON payload, backed by
// SQLite's json_extract.
func (s *Store) GetByField(kind Kind, field string, value any) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	if !fieldNameRx.MatchString(field) {
		return nil, fmt.Errorf("store: invalid field name %q", field)
	}

	query := fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') = ? ORDER BY id`, kind, field)
	rows, err := s.db.Query(query, value)
	if err != nil {
		return nil, fmt.Errorf("store: scan %s by %s: %w", kind, field, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Put upserts a record. A missing id is assigned (with created_at), and
// updated_at is always restamped. When track is true a full snapshot of
// the record is appended to the change queue in the same transaction;
// track=false is the remote-merge path and bypasses the queue so pulled
// data is never re-queued.
func (s *Store) Put(kind Kind, rec Record, track bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}

	rec = rec.Clone()
	now := time.Now().UTC().Format(time.RFC3339)
	if rec.ID() == "" {
		rec["id"] = NewID()
		if _, ok := rec["created_at"]; !ok {
			rec["created_at"] = now
		}
	}
	rec["updated_at"] = now

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s record: %w", kind, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	_, err = tx.Exec(fmt.Sprintf(`
		INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, kind), rec.ID(), string(data), now)
	if err != nil {
		return nil, fmt.Errorf("store: upsert %s/%s: %w", kind, rec.ID(), err)
	}

	if track {
		if err := enqueue(tx, kind, rec.ID(), ActionUpsert, string(data)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit %s/%s: %w", kind, rec.ID(), err)
	}
	return rec, nil
}

// Delete removes a record. Deleting an absent id is not an error. When
// track is true a delete entry is queued in the same transaction.
func (s *Store) Delete(kind Kind, id string, track bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind), id); err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", kind, id, err)
	}

	if track {
		if err := enqueue(tx, kind, id, ActionDelete, ""); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete %s/%s: %w", kind, id, err)
	}
	return nil
}

func enqueue(tx *sql.Tx, kind Kind, recordID string, action Action, data string) error {
	var payload any
	if data != "" {
		payload = data
	}
	_, err := tx.Exec(`
		INSERT INTO change_queue (table_name, record_id, action, data, created_at, synced)
		VALUES (?, ?, ?, ?, ?, 0)
	`, string(kind), recordID, string(action), payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: enqueue %s %s/%s: %w", action, kind, recordID, err)
	}
	return nil
}

// Pending returns unsynced change queue entries in insertion order.
// That order is the sole replay-ordering guarantee for the remote side.
func (s *Store) Pending() ([]QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, table_name, record_id, action, data, created_at, synced
		FROM change_queue WHERE synced = 0 ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: scan change queue: %w", err)
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		var (
			e         QueueEntry
			table     string
			action    string
			data      sql.NullString
			createdAt string
			synced    int
		)
		if err := rows.Scan(&e.ID, &table, &e.RecordID, &action, &data, &createdAt, &synced); err != nil {
			return nil, err
		}
		e.TableName = Kind(table)
		e.Action = Action(action)
		if data.Valid {
			e.Data = data.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		e.Synced = synced != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkSynced flags one queue entry as delivered to the remote store.
func (s *Store) MarkSynced(entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`UPDATE change_queue SET synced = 1 WHERE id = ?`, entryID)
	if err != nil {
		return fmt.Errorf("store: mark synced %d: %w", entryID, err)
	}
	return nil
}

// PurgeSynced removes all entries flagged synced. Safe to call at any
// time; synced entries carry no further obligation.
func (s *Store) PurgeSynced() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM change_queue WHERE synced = 1`); err != nil {
		return fmt.Errorf("store: purge synced: %w", err)
	}
	return nil
}

// GetMetadata returns the value for a metadata key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: set metadata %s: %w", key, err)
	}
	return nil
}

// LastSync returns the watermark of the last fully successful sync
// cycle, or the zero time if no cycle has completed. Display only.
func (s *Store) LastSync() (time.Time, error) {
	value, err := s.GetMetadata(metaKeyLastSync)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse last sync: %w", err)
	}
	return t, nil
}

// SetLastSync persists the last-sync watermark.
func (s *Store) SetLastSync(t time.Time) error {
	return s.SetMetadata(metaKeyLastSync, t.UTC().Format(time.RFC3339))
}

// Stats returns store statistics.
func (s *Store) Stats() (*StoreStats, error) {
	s.mu.RLock()

	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}

	stats := &StoreStats{RecordCounts: make(map[Kind]int, len(ValidKinds()))}
	for _, kind := range ValidKinds() {
		var count int
		if err := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind)).Scan(&count); err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("store: count %s: %w", kind, err)
		}
		stats.RecordCounts[kind] = count
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM change_queue WHERE synced = 0`).Scan(&stats.PendingSync); err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("store: count pending: %w", err)
	}
	s.mu.RUnlock()

	lastSync, err := s.LastSync()
	if err != nil {
		return nil, err
	}
	stats.LastSync = lastSync

	return stats, nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("store: decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
