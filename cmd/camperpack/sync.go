package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize with the cloud store",
	Long: `Run one sync cycle: push queued local changes, then pull the full
cloud dataset and merge it (cloud wins on conflict).

Example:
  camperpack sync             # One full cycle
  camperpack sync --status    # Show queue depth and last sync time`,
	RunE: runSync,
}

var syncStatus bool

func init() {
	syncCmd.Flags().BoolVar(&syncStatus, "status", false, "Show sync status without syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := newClient()
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	if syncStatus {
		stats, err := client.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Pending changes: %d\n", stats.PendingSync)
		if stats.LastSync.IsZero() {
			fmt.Println("Last sync: never")
		} else {
			fmt.Printf("Last sync: %s\n", stats.LastSync.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	if cfg.IsOffline() {
		return fmt.Errorf("CAMPERPACK_REMOTE_URL not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Synchronizing with cloud store...")
	result := client.Sync(ctx)

	if !result.Success {
		if result.PartialPush() {
			fmt.Printf("Pushed %d changes, but pull failed: %s\n", result.Pushed, result.Reason)
		}
		return fmt.Errorf("sync failed at %s: %s", result.Stage, result.Reason)
	}

	fmt.Printf("Sync complete: pushed %d, pulled %d (took %s)\n",
		result.Pushed, result.Pulled, result.Elapsed.Round(time.Millisecond))
	return nil
}
