package camperpack

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"
)

// Client is the high-level entry point: it owns the local store, the
// sync engine, and the optional background sync loop, and exposes the
// entity-level operations the CLI and MCP server are built on.
type Client struct {
	store  *Store
	engine *Engine
	vision *VisionClient
	config Config
	logger *log.Logger

	connCh   chan bool
	stopSync chan struct{}
	syncDone chan struct{}
}

// NewClient creates a client from the given config. When the config
// names a remote URL an HTTP sync client is wired in; otherwise the
// client runs offline-only and every sync request reports that.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "[camperpack] ", log.LstdFlags)

	var remote RemoteClient
	if !cfg.IsOffline() {
		remote = NewHTTPRemote(cfg.RemoteURL, cfg.APIKey, cfg.SourceID)
	}

	c := &Client{
		store:  store,
		engine: NewEngine(store, remote, logger),
		config: cfg,
		logger: logger,
		connCh: make(chan bool, 1),
	}

	if cfg.VisionAPIKey != "" {
		c.vision = NewVisionClient(cfg.VisionAPIKey)
	}

	if cfg.AutoSync && remote != nil {
		c.startBackgroundSync()
	}

	return c, nil
}

// Store exposes the underlying record store.
func (c *Client) Store() *Store {
	return c.store
}

// Engine exposes the sync engine.
func (c *Client) Engine() *Engine {
	return c.engine
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Sync runs one sync cycle and reports the outcome.
func (c *Client) Sync(ctx context.Context) SyncResult {
	return c.engine.Sync(ctx)
}

// NotifyConnectivity reports a connectivity change, e.g. from a network
// watcher. An offline→online transition triggers a sync cycle: either
// via the background loop when it is running, or inline otherwise.
func (c *Client) NotifyConnectivity(online bool) {
	transition := c.engine.SetOnline(online)
	if !transition {
		return
	}
	if c.stopSync != nil {
		select {
		case c.connCh <- true:
		default:
		}
		return
	}
	go c.engine.Sync(context.Background())
}

func (c *Client) startBackgroundSync() {
	c.stopSync = make(chan struct{})
	c.syncDone = make(chan struct{})

	go func() {
		defer close(c.syncDone)

		ticker := time.NewTicker(c.config.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopSync:
				return
			case <-ticker.C:
				c.engine.Sync(context.Background())
			case <-c.connCh:
				c.engine.Sync(context.Background())
			}
		}
	}()
}

// Close stops the background sync loop and closes the store. A final
// sync is attempted first when anything is pending and we are online.
func (c *Client) Close() error {
	if c.stopSync != nil {
		close(c.stopSync)
		<-c.syncDone
		c.stopSync = nil
	}

	if c.engine.Online() {
		if pending, err := c.store.Pending(); err == nil && len(pending) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			c.engine.Sync(ctx)
			cancel()
		}
	}

	return c.store.Close()
}

// Items

// SaveItem upserts an inventory item and queues it for sync.
func (c *Client) SaveItem(item *Item) (*Item, error) {
	if item.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "item name is required"}
	}
	rec, err := ToRecord(item)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindItems, rec, true)
	if err != nil {
		return nil, err
	}
	var out Item
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem retrieves one item by id.
func (c *Client) GetItem(id string) (*Item, error) {
	rec, err := c.store.Get(KindItems, id)
	if err != nil {
		return nil, err
	}
	var item Item
	if err := FromRecord(rec, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Items returns every inventory item, sorted by name.
func (c *Client) Items() ([]Item, error) {
	records, err := c.store.GetAll(KindItems)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(records)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// ItemsByCategory returns items in one category.
func (c *Client) ItemsByCategory(category string) ([]Item, error) {
	records, err := c.store.GetByField(KindItems, "category", category)
	if err != nil {
		return nil, err
	}
	return decodeItems(records)
}

// ItemsByLocation returns items stored at one location.
func (c *Client) ItemsByLocation(location string) ([]Item, error) {
	records, err := c.store.GetByField(KindItems, "storage_location", location)
	if err != nil {
		return nil, err
	}
	return decodeItems(records)
}

// CriticalItems returns items flagged critical.
func (c *Client) CriticalItems() ([]Item, error) {
	records, err := c.store.GetByField(KindItems, "is_critical", true)
	if err != nil {
		return nil, err
	}
	return decodeItems(records)
}

// DeleteItem removes an item together with every trip_item and
// template_item that references it. Orphaned references would otherwise
// survive locally and on the remote, so the cascade is queued too.
func (c *Client) DeleteItem(id string) error {
	for _, dep := range []Kind{KindTripItems, KindTemplateItems} {
		refs, err := c.store.GetByField(dep, "item_id", id)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if err := c.store.Delete(dep, ref.ID(), true); err != nil {
				return err
			}
		}
	}
	return c.store.Delete(KindItems, id, true)
}

func decodeItems(records []Record) ([]Item, error) {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		var item Item
		if err := FromRecord(rec, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Locations

// SaveLocation upserts a storage location.
func (c *Client) SaveLocation(loc *Location) (*Location, error) {
	if loc.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "location name is required"}
	}
	rec, err := ToRecord(loc)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindLocations, rec, true)
	if err != nil {
		return nil, err
	}
	var out Location
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Locations returns all storage locations ordered by area, then sort order.
func (c *Client) Locations() ([]Location, error) {
	records, err := c.store.GetAll(KindLocations)
	if err != nil {
		return nil, err
	}
	locs := make([]Location, 0, len(records))
	for _, rec := range records {
		var loc Location
		if err := FromRecord(rec, &loc); err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Area != locs[j].Area {
			return locs[i].Area < locs[j].Area
		}
		return locs[i].SortOrder < locs[j].SortOrder
	})
	return locs, nil
}

// DeleteLocation removes a storage location. Items that referenced it
// keep their storage_location string; it just no longer resolves.
func (c *Client) DeleteLocation(id string) error {
	return c.store.Delete(KindLocations, id, true)
}

// Templates

// SaveTemplate upserts a packing template.
func (c *Client) SaveTemplate(tpl *Template) (*Template, error) {
	if tpl.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "template name is required"}
	}
	rec, err := ToRecord(tpl)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindTemplates, rec, true)
	if err != nil {
		return nil, err
	}
	var out Template
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Templates returns all packing templates sorted by name.
func (c *Client) Templates() ([]Template, error) {
	records, err := c.store.GetAll(KindTemplates)
	if err != nil {
		return nil, err
	}
	tpls := make([]Template, 0, len(records))
	for _, rec := range records {
		var tpl Template
		if err := FromRecord(rec, &tpl); err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	sort.Slice(tpls, func(i, j int) bool { return tpls[i].Name < tpls[j].Name })
	return tpls, nil
}

// DeleteTemplate removes a template and its template_items.
func (c *Client) DeleteTemplate(id string) error {
	refs, err := c.store.GetByField(KindTemplateItems, "template_id", id)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := c.store.Delete(KindTemplateItems, ref.ID(), true); err != nil {
			return err
		}
	}
	return c.store.Delete(KindTemplates, id, true)
}

// TemplateItems returns the items associated with a template.
func (c *Client) TemplateItems(templateID string) ([]TemplateItem, error) {
	records, err := c.store.GetByField(KindTemplateItems, "template_id", templateID)
	if err != nil {
		return nil, err
	}
	items := make([]TemplateItem, 0, len(records))
	for _, rec := range records {
		var ti TemplateItem
		if err := FromRecord(rec, &ti); err != nil {
			return nil, err
		}
		items = append(items, ti)
	}
	return items, nil
}

// SetTemplateItems replaces a template's item associations. Each
// association gets the composite id "{template_id}-{item_id}", so a
// replayed set converges instead of duplicating rows.
func (c *Client) SetTemplateItems(templateID string, itemIDs []string) error {
	existing, err := c.store.GetByField(KindTemplateItems, "template_id", templateID)
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if err := c.store.Delete(KindTemplateItems, rec.ID(), true); err != nil {
			return err
		}
	}
	for _, itemID := range itemIDs {
		ti := TemplateItem{
			ID:         fmt.Sprintf("%s-%s", templateID, itemID),
			TemplateID: templateID,
			ItemID:     itemID,
		}
		rec, err := ToRecord(&ti)
		if err != nil {
			return err
		}
		if _, err := c.store.Put(KindTemplateItems, rec, true); err != nil {
			return err
		}
	}
	return nil
}

// Trips

// SaveTrip upserts a trip. A new trip without a status starts in planning.
func (c *Client) SaveTrip(trip *Trip) (*Trip, error) {
	if trip.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "trip name is required"}
	}
	if trip.Status == "" {
		trip.Status = TripStatusPlanning
	}
	rec, err := ToRecord(trip)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindTrips, rec, true)
	if err != nil {
		return nil, err
	}
	var out Trip
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTrip retrieves one trip by id.
func (c *Client) GetTrip(id string) (*Trip, error) {
	rec, err := c.store.Get(KindTrips, id)
	if err != nil {
		return nil, err
	}
	var trip Trip
	if err := FromRecord(rec, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// Trips returns all trips, most recently created first.
func (c *Client) Trips() ([]Trip, error) {
	records, err := c.store.GetAll(KindTrips)
	if err != nil {
		return nil, err
	}
	trips := make([]Trip, 0, len(records))
	for _, rec := range records {
		var trip Trip
		if err := FromRecord(rec, &trip); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt > trips[j].CreatedAt })
	return trips, nil
}

// CurrentTrip returns the active trip: the most recent one still in
// planning, packing, or traveling. Returns ErrNotFound when none is.
func (c *Client) CurrentTrip() (*Trip, error) {
	trips, err := c.Trips()
	if err != nil {
		return nil, err
	}
	for _, trip := range trips {
		switch trip.Status {
		case TripStatusPlanning, TripStatusPacking, TripStatusTraveling:
			t := trip
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteTrip removes a trip together with its trip_items. The cascade
// is queued as explicit deletes so the remote store converges too.
func (c *Client) DeleteTrip(id string) error {
	refs, err := c.store.GetByField(KindTripItems, "trip_id", id)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := c.store.Delete(KindTripItems, ref.ID(), true); err != nil {
			return err
		}
	}
	return c.store.Delete(KindTrips, id, true)
}

// CreateTripFromTemplate creates a trip and materializes one unpacked
// trip_item per template item. The trip keeps a template_id reference
// but the checklist is a snapshot; later template edits don't touch it.
func (c *Client) CreateTripFromTemplate(trip *Trip, templateID string) (*Trip, error) {
	trip.TemplateID = templateID

	saved, err := c.SaveTrip(trip)
	if err != nil {
		return nil, err
	}

	tplItems, err := c.TemplateItems(templateID)
	if err != nil {
		return nil, err
	}
	for _, ti := range tplItems {
		quantity := 1
		if item, err := c.GetItem(ti.ItemID); err == nil && item.Quantity > 0 {
			quantity = item.Quantity
		}
		tripItem := TripItem{
			TripID:   saved.ID,
			ItemID:   ti.ItemID,
			Quantity: quantity,
			Packed:   0,
		}
		rec, err := ToRecord(&tripItem)
		if err != nil {
			return nil, err
		}
		if _, err := c.store.Put(KindTripItems, rec, true); err != nil {
			return nil, err
		}
	}

	return saved, nil
}

// TripItems returns a trip's checklist entries.
func (c *Client) TripItems(tripID string) ([]TripItem, error) {
	records, err := c.store.GetByField(KindTripItems, "trip_id", tripID)
	if err != nil {
		return nil, err
	}
	items := make([]TripItem, 0, len(records))
	for _, rec := range records {
		var ti TripItem
		if err := FromRecord(rec, &ti); err != nil {
			return nil, err
		}
		items = append(items, ti)
	}
	return items, nil
}

// AddTripItem adds an item to a trip's checklist.
func (c *Client) AddTripItem(tripID, itemID string, quantity int) (*TripItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	ti := TripItem{TripID: tripID, ItemID: itemID, Quantity: quantity, Packed: 0}
	rec, err := ToRecord(&ti)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindTripItems, rec, true)
	if err != nil {
		return nil, err
	}
	var out TripItem
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveTripItem removes one checklist entry.
func (c *Client) RemoveTripItem(id string) error {
	return c.store.Delete(KindTripItems, id, true)
}

// ToggleTripItemPacked flips a checklist entry between packed and
// unpacked, stamping packed_at on pack and clearing it on unpack.
func (c *Client) ToggleTripItemPacked(id string) (*TripItem, error) {
	rec, err := c.store.Get(KindTripItems, id)
	if err != nil {
		return nil, err
	}
	var ti TripItem
	if err := FromRecord(rec, &ti); err != nil {
		return nil, err
	}

	if ti.Packed == 0 {
		ti.Packed = 1
		ti.PackedAt = time.Now().UTC().Format(time.RFC3339)
	} else {
		ti.Packed = 0
		ti.PackedAt = ""
	}

	updated, err := ToRecord(&ti)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindTripItems, updated, true)
	if err != nil {
		return nil, err
	}
	var out TripItem
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Travelers

// SaveTraveler upserts a traveler. New travelers are appended to the
// end of the sort order.
func (c *Client) SaveTraveler(t *Traveler) (*Traveler, error) {
	if t.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "traveler name is required"}
	}
	if t.ID == "" && t.SortOrder == 0 {
		existing, err := c.store.GetAll(KindTravelers)
		if err != nil {
			return nil, err
		}
		t.SortOrder = len(existing)
	}
	rec, err := ToRecord(t)
	if err != nil {
		return nil, err
	}
	saved, err := c.store.Put(KindTravelers, rec, true)
	if err != nil {
		return nil, err
	}
	var out Traveler
	if err := FromRecord(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Travelers returns all travelers in sort order.
func (c *Client) Travelers() ([]Traveler, error) {
	records, err := c.store.GetAll(KindTravelers)
	if err != nil {
		return nil, err
	}
	travelers := make([]Traveler, 0, len(records))
	for _, rec := range records {
		var t Traveler
		if err := FromRecord(rec, &t); err != nil {
			return nil, err
		}
		travelers = append(travelers, t)
	}
	sort.Slice(travelers, func(i, j int) bool { return travelers[i].SortOrder < travelers[j].SortOrder })
	return travelers, nil
}

// DeleteTraveler removes a traveler.
func (c *Client) DeleteTraveler(id string) error {
	return c.store.Delete(KindTravelers, id, true)
}

// Vision

// IdentifyItems sends a photo to the vision service. mediaType is the
// image MIME type, e.g. "image/jpeg". Returns ErrVisionUnavailable when
// no vision API key is configured.
func (c *Client) IdentifyItems(ctx context.Context, image []byte, mediaType string, mode VisionMode) ([]ItemGuess, error) {
	if c.vision == nil {
		return nil, ErrVisionUnavailable
	}
	return c.vision.Identify(ctx, image, mediaType, mode)
}

// Stats returns local store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}
