package server

import (
	"github.com/camperpack/camperpack"
)

// Gorm models for the authoritative cloud schema. Column names match
// the JSON field names the clients produce, so record snapshots map
// onto rows without a translation layer.

type itemRow struct {
	ID              string  `gorm:"column:id;primaryKey"`
	Name            string  `gorm:"column:name"`
	Icon            string  `gorm:"column:icon"`
	Category        string  `gorm:"column:category"`
	StorageLocation string  `gorm:"column:storage_location"`
	Quantity        int     `gorm:"column:quantity"`
	Notes           string  `gorm:"column:notes"`
	IsCritical      bool    `gorm:"column:is_critical"`
	IsPermanent     bool    `gorm:"column:is_permanent"`
	CreatedAt       string  `gorm:"column:created_at"`
	UpdatedAt       string  `gorm:"column:updated_at"`
}

func (itemRow) TableName() string { return "items" }

type templateRow struct {
	ID                 string  `gorm:"column:id;primaryKey"`
	Name               string  `gorm:"column:name"`
	TripType           string  `gorm:"column:trip_type"`
	DurationDays       int     `gorm:"column:duration_days"`
	ClothingMultiplier float64 `gorm:"column:clothing_multiplier"`
	Notes              string  `gorm:"column:notes"`
	CreatedAt          string  `gorm:"column:created_at"`
	UpdatedAt          string  `gorm:"column:updated_at"`
}

func (templateRow) TableName() string { return "templates" }

type tripRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Destination string `gorm:"column:destination"`
	TemplateID  string `gorm:"column:template_id"`
	StartDate   string `gorm:"column:start_date"`
	EndDate     string `gorm:"column:end_date"`
	Status      string `gorm:"column:status"`
	CreatedAt   string `gorm:"column:created_at"`
	UpdatedAt   string `gorm:"column:updated_at"`
}

func (tripRow) TableName() string { return "trips" }

type tripItemRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	TripID    string `gorm:"column:trip_id"`
	ItemID    string `gorm:"column:item_id"`
	Quantity  int    `gorm:"column:quantity"`
	Packed    int    `gorm:"column:packed"`
	PackedAt  string `gorm:"column:packed_at"`
	CreatedAt string `gorm:"column:created_at"`
	UpdatedAt string `gorm:"column:updated_at"`
}

func (tripItemRow) TableName() string { return "trip_items" }

type templateItemRow struct {
	ID         string `gorm:"column:id;primaryKey"`
	TemplateID string `gorm:"column:template_id"`
	ItemID     string `gorm:"column:item_id"`
	CreatedAt  string `gorm:"column:created_at"`
	UpdatedAt  string `gorm:"column:updated_at"`
}

func (templateItemRow) TableName() string { return "template_items" }

type locationRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	Area      string `gorm:"column:area"`
	SortOrder int    `gorm:"column:sort_order"`
	CreatedAt string `gorm:"column:created_at"`
	UpdatedAt string `gorm:"column:updated_at"`
}

func (locationRow) TableName() string { return "locations" }

type travelerRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	SortOrder int    `gorm:"column:sort_order"`
	CreatedAt string `gorm:"column:created_at"`
	UpdatedAt string `gorm:"column:updated_at"`
}

func (travelerRow) TableName() string { return "travelers" }

// syncLogRow is the append-only change log backing the incremental
// pull endpoint.
type syncLogRow struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Table     string `gorm:"column:table_name"`
	RecordID  string `gorm:"column:record_id"`
	Action    string `gorm:"column:action"`
	Data      string `gorm:"column:data"`
	SourceID  string `gorm:"column:source_id"`
	CreatedAt string `gorm:"column:created_at;index"`
}

func (syncLogRow) TableName() string { return "sync_log" }

// allowedColumns lists, per table, the columns a pushed snapshot may
// set. Snapshots are client-supplied JSON; anything outside this list
// is dropped before it reaches SQL.
var allowedColumns = map[camperpack.Kind][]string{
	camperpack.KindItems:         {"id", "name", "icon", "category", "storage_location", "quantity", "notes", "is_critical", "is_permanent", "created_at", "updated_at"},
	camperpack.KindTemplates:     {"id", "name", "trip_type", "duration_days", "clothing_multiplier", "notes", "created_at", "updated_at"},
	camperpack.KindTrips:         {"id", "name", "destination", "template_id", "start_date", "end_date", "status", "created_at", "updated_at"},
	camperpack.KindTripItems:     {"id", "trip_id", "item_id", "quantity", "packed", "packed_at", "created_at", "updated_at"},
	camperpack.KindTemplateItems: {"id", "template_id", "item_id", "created_at", "updated_at"},
	camperpack.KindLocations:     {"id", "name", "area", "sort_order", "created_at", "updated_at"},
	camperpack.KindTravelers:     {"id", "name", "sort_order", "created_at", "updated_at"},
}

func allModels() []any {
	return []any{
		&itemRow{},
		&templateRow{},
		&tripRow{},
		&tripItemRow{},
		&templateItemRow{},
		&locationRow{},
		&travelerRow{},
		&syncLogRow{},
	}
}
