// Package mcp provides MCP (Model Context Protocol) tool adapters for
// CamperPack, so agent frameworks can manage inventory and trip
// checklists over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camperpack/camperpack"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with CamperPack tools.
type Server struct {
	client    *camperpack.Client
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with CamperPack tools registered.
func NewServer(client *camperpack.Client) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"camperpack",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "camperpack_add_item", Description: "Add an item to the camping inventory"},
		{Name: "camperpack_find_items", Description: "Find inventory items by category, storage location, or critical flag"},
		{Name: "camperpack_trip_status", Description: "Show packing progress for the current or a named trip"},
		{Name: "camperpack_toggle_packed", Description: "Toggle a trip checklist entry between packed and unpacked"},
		{Name: "camperpack_sync", Description: "Run one sync cycle against the cloud store"},
		{Name: "camperpack_stats", Description: "Show local store statistics"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "camperpack_add_item":
		return s.handleAddItem(ctx, args)
	case "camperpack_find_items":
		return s.handleFindItems(ctx, args)
	case "camperpack_trip_status":
		return s.handleTripStatus(ctx, args)
	case "camperpack_toggle_packed":
		return s.handleTogglePacked(ctx, args)
	case "camperpack_sync":
		return s.handleSync(ctx, args)
	case "camperpack_stats":
		return s.handleStats(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	// camperpack_add_item
	s.mcpServer.AddTool(mcp.NewTool("camperpack_add_item",
		mcp.WithDescription("Add an item to the camping inventory. The item is stored locally and queued for cloud sync."),
		mcp.WithString("name",
			mcp.Description("Item name"),
			mcp.Required(),
		),
		mcp.WithString("icon",
			mcp.Description("A single emoji representing the item"),
		),
		mcp.WithString("category",
			mcp.Description("Category: clothing, kitchen, bedding, tools, electronics, toiletries, food, recreation, safety, other"),
		),
		mcp.WithString("storage_location",
			mcp.Description("Where the item is stored, e.g. 'pantry' or 'truck_bed'"),
		),
		mcp.WithNumber("quantity",
			mcp.Description("How many to pack (default: 1)"),
		),
		mcp.WithBoolean("is_critical",
			mcp.Description("Whether the trip cannot happen without this item"),
		),
	), s.mcpHandleAddItem)

	// camperpack_find_items
	s.mcpServer.AddTool(mcp.NewTool("camperpack_find_items",
		mcp.WithDescription("Find inventory items. With no filters, lists the whole inventory."),
		mcp.WithString("category",
			mcp.Description("Filter by category"),
		),
		mcp.WithString("storage_location",
			mcp.Description("Filter by storage location"),
		),
		mcp.WithBoolean("critical_only",
			mcp.Description("Only return items flagged critical"),
		),
	), s.mcpHandleFindItems)

	// camperpack_trip_status
	s.mcpServer.AddTool(mcp.NewTool("camperpack_trip_status",
		mcp.WithDescription("Show packing progress for a trip: packed count, total count, and what is still unpacked. Defaults to the current active trip."),
		mcp.WithString("trip_id",
			mcp.Description("Trip ID (default: the current active trip)"),
		),
	), s.mcpHandleTripStatus)

	// camperpack_toggle_packed
	s.mcpServer.AddTool(mcp.NewTool("camperpack_toggle_packed",
		mcp.WithDescription("Toggle a trip checklist entry between packed and unpacked."),
		mcp.WithString("trip_item_id",
			mcp.Description("Checklist entry ID, as shown by camperpack_trip_status"),
			mcp.Required(),
		),
	), s.mcpHandleTogglePacked)

	// camperpack_sync
	s.mcpServer.AddTool(mcp.NewTool("camperpack_sync",
		mcp.WithDescription("Run one sync cycle: push queued local changes to the cloud store, then pull and merge the full dataset. Requires CAMPERPACK_REMOTE_URL to be configured."),
	), s.mcpHandleSync)

	// camperpack_stats
	s.mcpServer.AddTool(mcp.NewTool("camperpack_stats",
		mcp.WithDescription("Show local store statistics: record counts per table, pending sync queue depth, and last sync time."),
	), s.mcpHandleStats)
}

// MCP handlers that wrap internal handlers

func (s *Server) mcpHandleAddItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleAddItem(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleFindItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleFindItems(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleTripStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleTripStatus(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleTogglePacked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleTogglePacked(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleSync(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleStats(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

// Internal handlers

func (s *Server) handleAddItem(ctx context.Context, args map[string]any) (*ToolResult, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return &ToolResult{Content: "name is required", IsError: true}, nil
	}

	item := &camperpack.Item{Name: name, Quantity: 1}
	if icon, ok := args["icon"].(string); ok {
		item.Icon = icon
	}
	if category, ok := args["category"].(string); ok {
		item.Category = category
	}
	if location, ok := args["storage_location"].(string); ok {
		item.StorageLocation = location
	}
	if quantity, ok := args["quantity"].(float64); ok && quantity > 0 {
		item.Quantity = int(quantity)
	}
	if critical, ok := args["is_critical"].(bool); ok {
		item.IsCritical = critical
	}

	saved, err := s.client.SaveItem(item)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("add item failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: fmt.Sprintf("Added %s %s [%s]", saved.Icon, saved.Name, saved.ID)}, nil
}

func (s *Server) handleFindItems(ctx context.Context, args map[string]any) (*ToolResult, error) {
	var (
		items []camperpack.Item
		err   error
	)

	switch {
	case boolArg(args, "critical_only"):
		items, err = s.client.CriticalItems()
	case stringArg(args, "category") != "":
		items, err = s.client.ItemsByCategory(stringArg(args, "category"))
	case stringArg(args, "storage_location") != "":
		items, err = s.client.ItemsByLocation(stringArg(args, "storage_location"))
	default:
		items, err = s.client.Items()
	}
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("find items failed: %v", err), IsError: true}, nil
	}

	if len(items) == 0 {
		return &ToolResult{Content: "No matching items found."}, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d items:\n\n", len(items)))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("[%s] %s %s", item.ID, item.Icon, item.Name))
		if item.Category != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", item.Category))
		}
		if item.StorageLocation != "" {
			sb.WriteString(fmt.Sprintf(" @ %s", item.StorageLocation))
		}
		if item.IsCritical {
			sb.WriteString(" [critical]")
		}
		sb.WriteString("\n")
	}
	return &ToolResult{Content: sb.String()}, nil
}

func (s *Server) handleTripStatus(ctx context.Context, args map[string]any) (*ToolResult, error) {
	var (
		trip *camperpack.Trip
		err  error
	)
	if tripID := stringArg(args, "trip_id"); tripID != "" {
		trip, err = s.client.GetTrip(tripID)
	} else {
		trip, err = s.client.CurrentTrip()
	}
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("no trip found: %v", err), IsError: true}, nil
	}

	tripItems, err := s.client.TripItems(trip.ID)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("load checklist failed: %v", err), IsError: true}, nil
	}

	packed := 0
	var unpacked []camperpack.TripItem
	for _, ti := range tripItems {
		if ti.Packed != 0 {
			packed++
		} else {
			unpacked = append(unpacked, ti)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s): %d/%d packed\n", trip.Name, trip.Status, packed, len(tripItems)))
	if len(unpacked) > 0 {
		sb.WriteString("\nStill unpacked:\n")
		for _, ti := range unpacked {
			name := ti.ItemID
			if item, err := s.client.GetItem(ti.ItemID); err == nil {
				name = item.Name
			}
			sb.WriteString(fmt.Sprintf("[%s] %s x%d\n", ti.ID, name, ti.Quantity))
		}
	}
	return &ToolResult{Content: sb.String()}, nil
}

func (s *Server) handleTogglePacked(ctx context.Context, args map[string]any) (*ToolResult, error) {
	id := stringArg(args, "trip_item_id")
	if id == "" {
		return &ToolResult{Content: "trip_item_id is required", IsError: true}, nil
	}

	ti, err := s.client.ToggleTripItemPacked(id)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("toggle failed: %v", err), IsError: true}, nil
	}

	state := "unpacked"
	if ti.Packed != 0 {
		state = "packed"
	}
	return &ToolResult{Content: fmt.Sprintf("Marked %s as %s", ti.ID, state)}, nil
}

func (s *Server) handleSync(ctx context.Context, args map[string]any) (*ToolResult, error) {
	result := s.client.Sync(ctx)
	if !result.Success {
		msg := fmt.Sprintf("Sync failed at %s: %s", result.Stage, result.Reason)
		if result.PartialPush() {
			msg += fmt.Sprintf(" (pushed %d changes before the failure)", result.Pushed)
		}
		return &ToolResult{Content: msg, IsError: true}, nil
	}
	return &ToolResult{Content: fmt.Sprintf("Sync complete: pushed %d, pulled %d", result.Pushed, result.Pulled)}, nil
}

func (s *Server) handleStats(ctx context.Context, args map[string]any) (*ToolResult, error) {
	stats, err := s.client.Stats()
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("stats failed: %v", err), IsError: true}, nil
	}

	var sb strings.Builder
	sb.WriteString("Local store:\n")
	for _, kind := range camperpack.ValidKinds() {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", kind, stats.RecordCounts[kind]))
	}
	sb.WriteString(fmt.Sprintf("  pending sync: %d\n", stats.PendingSync))
	if stats.LastSync.IsZero() {
		sb.WriteString("  last sync: never\n")
	} else {
		sb.WriteString(fmt.Sprintf("  last sync: %s\n", stats.LastSync.Format("2006-01-02 15:04:05")))
	}
	return &ToolResult{Content: sb.String()}, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
