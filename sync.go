package camperpack

import (
	"context"
	"time"
)

// Change is one queued mutation in the shape the remote sync endpoint
// accepts. Data carries a complete JSON snapshot of the record for
// upserts and is empty for deletes.
type Change struct {
	TableName string `json:"table_name"`
	RecordID  string `json:"record_id"`
	Action    Action `json:"action"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ChangeFromEntry converts a local queue entry into its wire form.
func ChangeFromEntry(e QueueEntry) Change {
	return Change{
		TableName: string(e.TableName),
		RecordID:  e.RecordID,
		Action:    e.Action,
		Data:      e.Data,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// PushRequest is the batch body for POST /api/sync.
type PushRequest struct {
	Changes []Change `json:"changes"`
}

// PushResponse is the remote endpoint's reply to a push.
type PushResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Error     string `json:"error,omitempty"`
}

// Dataset is the full authoritative state returned by GET /api/sync,
// keyed by plural entity kind. A missing kind means zero records of
// that kind, never an error.
type Dataset struct {
	Items         []Record `json:"items,omitempty"`
	Templates     []Record `json:"templates,omitempty"`
	Trips         []Record `json:"trips,omitempty"`
	TripItems     []Record `json:"trip_items,omitempty"`
	TemplateItems []Record `json:"template_items,omitempty"`
	Locations     []Record `json:"locations,omitempty"`
	Travelers     []Record `json:"travelers,omitempty"`
}

// Records returns the dataset slice for one entity kind.
func (d *Dataset) Records(kind Kind) []Record {
	switch kind {
	case KindItems:
		return d.Items
	case KindTemplates:
		return d.Templates
	case KindTrips:
		return d.Trips
	case KindTripItems:
		return d.TripItems
	case KindTemplateItems:
		return d.TemplateItems
	case KindLocations:
		return d.Locations
	case KindTravelers:
		return d.Travelers
	}
	return nil
}

// SetRecords replaces the dataset slice for one entity kind.
func (d *Dataset) SetRecords(kind Kind, records []Record) {
	switch kind {
	case KindItems:
		d.Items = records
	case KindTemplates:
		d.Templates = records
	case KindTrips:
		d.Trips = records
	case KindTripItems:
		d.TripItems = records
	case KindTemplateItems:
		d.TemplateItems = records
	case KindLocations:
		d.Locations = records
	case KindTravelers:
		d.Travelers = records
	}
}

// Total returns the number of records across all kinds.
func (d *Dataset) Total() int {
	n := 0
	for _, kind := range ValidKinds() {
		n += len(d.Records(kind))
	}
	return n
}

// ChangeLogEntry is one row of the remote change log, used by the
// incremental pull form. Not required for correctness; the engine
// always pulls the full dataset.
type ChangeLogEntry struct {
	ID        int64  `json:"id"`
	TableName string `json:"table_name"`
	RecordID  string `json:"record_id"`
	Action    Action `json:"action"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the remote endpoint's health reply.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// RemoteClient abstracts communication with the remote sync endpoint.
// Implementations must be safe for concurrent use.
type RemoteClient interface {
	// PushChanges transmits queued mutations as a single batch. The
	// remote applies them in transmitted order (last-write-wins per
	// record by enqueue order).
	PushChanges(ctx context.Context, changes []Change) (*PushResponse, error)

	// FetchDataset returns the full authoritative dataset.
	FetchDataset(ctx context.Context) (*Dataset, error)

	// FetchChangesSince returns remote change-log entries appended
	// after the given watermark, ordered ascending.
	FetchChangesSince(ctx context.Context, since time.Time) ([]ChangeLogEntry, error)

	// Health validates connectivity.
	Health(ctx context.Context) (*HealthResponse, error)
}
