package main

import (
	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath    string
	cfgRemoteURL string
	cfgAPIKey    string
)

var rootCmd = &cobra.Command{
	Use:   "camperpack",
	Short: "CamperPack - Camping trip packing organizer",
	Long: `CamperPack keeps a camping inventory and per-trip packing
checklists in a local database, and syncs them with a cloud store when
one is configured. Everything works offline; changes queue up and sync
later.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db", "", "Path to local database (default: ~/.camperpack/camperpack.db)")
	rootCmd.PersistentFlags().StringVar(&cfgRemoteURL, "remote-url", "", "URL of the cloud sync endpoint")
	rootCmd.PersistentFlags().StringVar(&cfgAPIKey, "api-key", "", "API key for the cloud sync endpoint")

	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(tripsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig resolves configuration: flags override environment
// variables, environment variables override defaults. CLI invocations
// are one-shot, so the background sync loop stays off.
func loadConfig() camperpack.Config {
	cfg := camperpack.ConfigFromEnv()

	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgRemoteURL != "" {
		cfg.RemoteURL = cfgRemoteURL
	}
	if cfgAPIKey != "" {
		cfg.APIKey = cfgAPIKey
	}

	cfg.AutoSync = false
	return cfg.WithDefaults()
}

func newClient() (*camperpack.Client, error) {
	return camperpack.NewClient(loadConfig())
}
