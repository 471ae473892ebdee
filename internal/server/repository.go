package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camperpack/camperpack"
)

// Repository is the storage backend for the sync endpoint.
type Repository interface {
	// ApplyChanges applies pushed mutations in the given order and
	// returns how many were applied. Changes naming unknown tables are
	// skipped, not rejected; re-applying the same batch converges to
	// the same state.
	ApplyChanges(ctx context.Context, sourceID string, changes []camperpack.Change) (int, error)

	// Dataset returns the full authoritative dataset.
	Dataset(ctx context.Context) (*camperpack.Dataset, error)

	// ChangesSince returns change-log entries appended after the given
	// watermark, ordered ascending.
	ChangesSince(ctx context.Context, since time.Time) ([]camperpack.ChangeLogEntry, error)
}

// GormRepository implements Repository on a gorm-managed database.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository wraps a gorm DB and migrates the schema.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// ApplyChanges applies one pushed batch inside a single transaction, in
// transmitted order, and appends each applied change to the sync log.
func (r *GormRepository) ApplyChanges(ctx context.Context, sourceID string, changes []camperpack.Change) (int, error) {
	applied := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			kind := camperpack.Kind(change.TableName)
			cols, known := allowedColumns[kind]
			if !known {
				continue
			}

			switch change.Action {
			case camperpack.ActionDelete:
				// Table name is allowlisted above, so interpolating it is safe.
				if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", change.TableName), change.RecordID).Error; err != nil {
					return fmt.Errorf("delete %s/%s: %w", change.TableName, change.RecordID, err)
				}
			case camperpack.ActionUpsert:
				if change.Data == "" {
					continue
				}
				row, updatable, err := snapshotToRow(change.Data, cols)
				if err != nil {
					return fmt.Errorf("decode %s/%s: %w", change.TableName, change.RecordID, err)
				}
				if err := tx.Table(change.TableName).Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns(updatable),
				}).Create(row).Error; err != nil {
					return fmt.Errorf("upsert %s/%s: %w", change.TableName, change.RecordID, err)
				}
			default:
				continue
			}

			entry := syncLogRow{
				Table:     change.TableName,
				RecordID:  change.RecordID,
				Action:    string(change.Action),
				Data:      change.Data,
				SourceID:  sourceID,
				CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("append sync log: %w", err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// snapshotToRow decodes a record snapshot and filters it to the
// allowed columns for its table. Returns the row map and the list of
// columns to overwrite on conflict (everything present except id).
func snapshotToRow(data string, cols []string) (map[string]any, []string, error) {
	var rec map[string]any
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, nil, err
	}

	allowed := make(map[string]bool, len(cols))
	for _, c := range cols {
		allowed[c] = true
	}

	row := make(map[string]any, len(rec))
	var updatable []string
	for k, v := range rec {
		if !allowed[k] || v == nil {
			continue
		}
		row[k] = v
		if k != "id" {
			updatable = append(updatable, k)
		}
	}

	if _, ok := row["id"]; !ok {
		return nil, nil, fmt.Errorf("snapshot has no id")
	}
	return row, updatable, nil
}

// Dataset returns every row of every entity table, as generic records.
func (r *GormRepository) Dataset(ctx context.Context) (*camperpack.Dataset, error) {
	dataset := &camperpack.Dataset{}
	for _, kind := range camperpack.ValidKinds() {
		var rows []map[string]interface{}
		if err := r.db.WithContext(ctx).Table(string(kind)).Order("id").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		records := make([]camperpack.Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, camperpack.Record(row))
		}
		dataset.SetRecords(kind, records)
	}
	return dataset, nil
}

// ChangesSince returns sync-log entries newer than the watermark.
func (r *GormRepository) ChangesSince(ctx context.Context, since time.Time) ([]camperpack.ChangeLogEntry, error) {
	var rows []syncLogRow
	err := r.db.WithContext(ctx).
		Where("created_at > ?", since.UTC().Format(time.RFC3339Nano)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("scan sync log: %w", err)
	}

	entries := make([]camperpack.ChangeLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, camperpack.ChangeLogEntry{
			ID:        row.ID,
			TableName: row.Table,
			RecordID:  row.RecordID,
			Action:    camperpack.Action(row.Action),
			Data:      row.Data,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}
