package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camperpack/camperpack"
)

func newTestServer(t *testing.T) (*Server, *camperpack.Client) {
	t.Helper()

	client, err := camperpack.NewClient(camperpack.Config{
		LocalPath: filepath.Join(t.TempDir(), "camperpack.db"),
		SourceID:  "test",
		AutoSync:  false,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return NewServer(client), client
}

func TestListTools(t *testing.T) {
	server, _ := newTestServer(t)

	tools := server.ListTools()
	if len(tools) != 6 {
		t.Errorf("got %d tools, want 6", len(tools))
	}
	for _, tool := range tools {
		if !strings.HasPrefix(tool.Name, "camperpack_") {
			t.Errorf("tool %s missing camperpack_ prefix", tool.Name)
		}
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
	}
}

func TestCallToolUnknown(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "bogus", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Error("unknown tool should report an error result")
	}
}

func TestAddItemTool(t *testing.T) {
	server, client := newTestServer(t)

	result, err := server.CallTool(context.Background(), "camperpack_add_item", map[string]any{
		"name":        "Lantern",
		"icon":        "🏮",
		"category":    "tools",
		"quantity":    float64(2),
		"is_critical": true,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", result.Content)
	}

	items, err := client.Items()
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Quantity != 2 || !items[0].IsCritical {
		t.Errorf("item = %+v", items[0])
	}
}

func TestAddItemToolRequiresName(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "camperpack_add_item", map[string]any{})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Error("missing name should report an error result")
	}
}

func TestFindItemsTool(t *testing.T) {
	server, client := newTestServer(t)

	if _, err := client.SaveItem(&camperpack.Item{Name: "Plates", Category: "kitchen"}); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if _, err := client.SaveItem(&camperpack.Item{Name: "Pillow", Category: "bedding"}); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}

	result, err := server.CallTool(context.Background(), "camperpack_find_items", map[string]any{
		"category": "kitchen",
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "Plates") || strings.Contains(result.Content, "Pillow") {
		t.Errorf("unexpected output:\n%s", result.Content)
	}
}

func TestTripStatusTool(t *testing.T) {
	server, client := newTestServer(t)

	item, _ := client.SaveItem(&camperpack.Item{Name: "Tent"})
	trip, _ := client.SaveTrip(&camperpack.Trip{Name: "River weekend"})
	ti, err := client.AddTripItem(trip.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("AddTripItem: %v", err)
	}

	result, err := server.CallTool(context.Background(), "camperpack_trip_status", map[string]any{})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "0/1 packed") {
		t.Errorf("unexpected output:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "Tent") {
		t.Errorf("unpacked item not listed:\n%s", result.Content)
	}

	toggle, err := server.CallTool(context.Background(), "camperpack_toggle_packed", map[string]any{
		"trip_item_id": ti.ID,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if toggle.IsError {
		t.Fatalf("tool error: %s", toggle.Content)
	}

	result, err = server.CallTool(context.Background(), "camperpack_trip_status", map[string]any{})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !strings.Contains(result.Content, "1/1 packed") {
		t.Errorf("unexpected output after packing:\n%s", result.Content)
	}
}

func TestSyncToolOffline(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.CallTool(context.Background(), "camperpack_sync", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Error("offline sync should report an error result")
	}
	if !strings.Contains(result.Content, "offline") {
		t.Errorf("unexpected output: %s", result.Content)
	}
}

func TestStatsTool(t *testing.T) {
	server, client := newTestServer(t)

	if _, err := client.SaveItem(&camperpack.Item{Name: "Rope"}); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}

	result, err := server.CallTool(context.Background(), "camperpack_stats", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "items: 1") {
		t.Errorf("unexpected output:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "pending sync: 1") {
		t.Errorf("unexpected output:\n%s", result.Content)
	}
}
