package main

import (
	"fmt"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.Stats()
	if err != nil {
		return err
	}

	fmt.Println("Local store:")
	for _, kind := range camperpack.ValidKinds() {
		fmt.Printf("  %-15s %d\n", kind, stats.RecordCounts[kind])
	}
	fmt.Printf("  %-15s %d\n", "pending sync", stats.PendingSync)
	if stats.LastSync.IsZero() {
		fmt.Printf("  %-15s never\n", "last sync")
	} else {
		fmt.Printf("  %-15s %s\n", "last sync", stats.LastSync.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
