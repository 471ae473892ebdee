package camperpack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportFormat is the top-level structure for JSON exports: one full
// dataset snapshot plus provenance metadata.
type ExportFormat struct {
	Version    string  `json:"version"`
	ExportedAt string  `json:"exported_at"`
	SourceID   string  `json:"source_id,omitempty"`
	Dataset    Dataset `json:"dataset"`
}

// MergeStrategy defines how to handle records that already exist
// locally during import.
type MergeStrategy string

const (
	// MergeStrategySkip keeps the local record when ids collide.
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace overwrites local records with imported ones (default).
	MergeStrategyReplace MergeStrategy = "replace"
)

// ImportResult summarizes an import operation.
type ImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportJSON writes the full local dataset as JSON to the writer.
func (s *Store) ExportJSON(ctx context.Context, sourceID string, w io.Writer) error {
	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		SourceID:   sourceID,
	}

	for _, kind := range ValidKinds() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		records, err := s.GetAll(kind)
		if err != nil {
			return fmt.Errorf("export %s: %w", kind, err)
		}
		export.Dataset.SetRecords(kind, records)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ImportJSON reads an export and writes its records into the store.
// Imported records bypass the change queue; an import is a local
// restore, not a batch of fresh edits to re-announce to the remote.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, strategy MergeStrategy) (*ImportResult, error) {
	if strategy == "" {
		strategy = MergeStrategyReplace
	}

	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	result := &ImportResult{}
	for _, kind := range ValidKinds() {
		for _, rec := range export.Dataset.Records(kind) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			result.Total++
			id := rec.ID()
			if id == "" {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: record without id", kind))
				continue
			}

			if strategy == MergeStrategySkip {
				if _, err := s.Get(kind, id); err == nil {
					result.Skipped++
					continue
				}
			}

			if _, err := s.Put(kind, rec, false); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", kind, id, err))
				continue
			}
			result.Imported++
		}
	}

	return result, nil
}

// ExportSQLite copies the store to a SQLite database file. A WAL
// checkpoint runs first so the copy is consistent.
func (s *Store) ExportSQLite(ctx context.Context, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}

	srcFile, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("copy database: %w", err)
	}

	return destFile.Sync()
}
