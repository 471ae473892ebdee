package camperpack

import (
	"encoding/json"
	"time"
)

// Record is one persisted entity instance, keyed by its "id" field.
// Records are schemaless maps so the store and sync engine can move
// them between devices without knowing every field.
type Record map[string]any

// ID returns the record's "id" field, or "" when absent or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Kind identifies one of the entity tables.
type Kind string

const (
	KindItems         Kind = "items"
	KindTemplates     Kind = "templates"
	KindTrips         Kind = "trips"
	KindTripItems     Kind = "trip_items"
	KindTemplateItems Kind = "template_items"
	KindLocations     Kind = "locations"
	KindTravelers     Kind = "travelers"
)

// ValidKinds returns all entity kinds in merge order.
func ValidKinds() []Kind {
	return []Kind{
		KindItems,
		KindTemplates,
		KindTrips,
		KindTripItems,
		KindTemplateItems,
		KindLocations,
		KindTravelers,
	}
}

// IsValid checks if the kind names a known entity table.
func (k Kind) IsValid() bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// Action classifies a queued mutation.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// QueueEntry is one pending local mutation awaiting transmission to the
// remote store. Data holds a full JSON snapshot of the record at enqueue
// time (empty for deletes), so replay never depends on later local edits.
type QueueEntry struct {
	ID        int64     `json:"id"`
	TableName Kind      `json:"table_name"`
	RecordID  string    `json:"record_id"`
	Action    Action    `json:"action"`
	Data      string    `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Synced    bool      `json:"synced"`
}

// Item is an inventory item.
type Item struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Icon            string `json:"icon,omitempty"`
	Category        string `json:"category,omitempty"`
	StorageLocation string `json:"storage_location,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	Notes           string `json:"notes,omitempty"`
	IsCritical      bool   `json:"is_critical,omitempty"`
	IsPermanent     bool   `json:"is_permanent,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// Template is a reusable packing template for one trip type.
type Template struct {
	ID                 string  `json:"id,omitempty"`
	Name               string  `json:"name"`
	TripType           string  `json:"trip_type,omitempty"`
	DurationDays       int     `json:"duration_days,omitempty"`
	ClothingMultiplier float64 `json:"clothing_multiplier,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	CreatedAt          string  `json:"created_at,omitempty"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
}

// Trip statuses, in lifecycle order.
const (
	TripStatusPlanning  = "planning"
	TripStatusPacking   = "packing"
	TripStatusTraveling = "traveling"
	TripStatusCompleted = "completed"
)

// Trip is one planned or past journey.
type Trip struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	TemplateID  string `json:"template_id,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Status      string `json:"status,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// TripItem is one checklist line on a trip.
type TripItem struct {
	ID        string `json:"id,omitempty"`
	TripID    string `json:"trip_id"`
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity,omitempty"`
	Packed    int    `json:"packed"`
	PackedAt  string `json:"packed_at,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TemplateItem associates an item with a template. Its ID is the
// composite "{template_id}-{item_id}", so each (template, item) pair
// appears at most once.
type TemplateItem struct {
	ID         string `json:"id,omitempty"`
	TemplateID string `json:"template_id"`
	ItemID     string `json:"item_id"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Location is a storage location in the trailer, truck, or house.
type Location struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Area      string `json:"area,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Traveler is a person items can be packed for.
type Traveler struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ToRecord converts a typed entity into a Record via its JSON form.
func ToRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromRecord converts a Record back into a typed entity.
func FromRecord(rec Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// SyncStage names the step of a sync cycle where a failure occurred.
type SyncStage string

const (
	StageGuard SyncStage = "guard"
	StagePush  SyncStage = "push"
	StagePull  SyncStage = "pull"
	StageMerge SyncStage = "merge"
)

// Well-known failure reasons surfaced in SyncResult.Reason.
const (
	ReasonOffline = "offline"
	ReasonBusy    = "sync already in progress"
)

// SyncResult is the outcome of one sync cycle. Failures are reported
// here as values so callers can always render a human-readable outcome.
type SyncResult struct {
	Success bool          `json:"success"`
	Pushed  int           `json:"pushed"`
	Pulled  int           `json:"pulled"`
	Skipped int           `json:"skipped,omitempty"`
	Stage   SyncStage     `json:"stage,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// PartialPush reports whether local changes reached the remote store
// even though the cycle as a whole failed (push ok, pull failed).
func (r SyncResult) PartialPush() bool {
	return !r.Success && r.Pushed > 0 && r.Stage == StagePull
}

// StoreStats contains statistics about the local store.
type StoreStats struct {
	RecordCounts map[Kind]int `json:"record_counts"`
	PendingSync  int          `json:"pending_sync"`
	LastSync     time.Time    `json:"last_sync"`
}

// ItemGuess is one item identified by the vision service.
type ItemGuess struct {
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category,omitempty"`
}

// VisionMode selects what the vision service should identify.
type VisionMode string

const (
	// VisionModeInventory detects every inventory-worthy item in a photo.
	VisionModeInventory VisionMode = "inventory"
	// VisionModeIcon suggests an icon for a photo of a single item.
	VisionModeIcon VisionMode = "icon"
)
