package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the local store",
	Long: `Export the local store to a file. The format is chosen by
extension: .json for a JSON snapshot, .db for a SQLite copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON export into the local store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var importSkipExisting bool

func init() {
	importCmd.Flags().BoolVar(&importSkipExisting, "skip-existing", false, "Keep local records when ids collide")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dest := args[0]
	if strings.HasSuffix(dest, ".db") || strings.HasSuffix(dest, ".sqlite") {
		if err := client.Store().ExportSQLite(ctx, dest); err != nil {
			return err
		}
		fmt.Printf("Exported database to %s\n", dest)
		return nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := client.Store().ExportJSON(ctx, cfg.SourceID, f); err != nil {
		return err
	}

	fmt.Printf("Exported store to %s\n", dest)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	strategy := camperpack.MergeStrategyReplace
	if importSkipExisting {
		strategy = camperpack.MergeStrategySkip
	}

	result, err := client.Store().ImportJSON(ctx, f, strategy)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d records (%d skipped)\n", result.Imported, result.Total, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Printf("  warning: %s\n", msg)
	}
	return nil
}
