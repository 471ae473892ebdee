package camperpack

import (
	"os"
	"time"

	"github.com/camperpack/camperpack/internal/store"
)

// Config configures the CamperPack client.
type Config struct {
	// LocalPath is the path to the local SQLite database.
	LocalPath string

	// RemoteURL is the base URL of the remote sync endpoint.
	// If empty, the client operates in offline-only mode.
	RemoteURL string

	// APIKey authenticates with the remote sync endpoint.
	APIKey string

	// VisionAPIKey authenticates with the Anthropic vision model.
	// If empty, photo identification is unavailable.
	VisionAPIKey string

	// SourceID identifies this device. Defaults to hostname.
	SourceID string

	// SyncInterval is how often background sync runs.
	// Defaults to 5 minutes.
	SyncInterval time.Duration

	// AutoSync enables the background sync loop.
	AutoSync bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()
	return Config{
		LocalPath:    store.DefaultDBPath(),
		SyncInterval: 5 * time.Minute,
		AutoSync:     true,
		SourceID:     hostname,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	CAMPERPACK_DB_PATH     → LocalPath
//	CAMPERPACK_REMOTE_URL  → RemoteURL
//	CAMPERPACK_API_KEY     → APIKey
//	CAMPERPACK_SOURCE_ID   → SourceID
//	ANTHROPIC_API_KEY      → VisionAPIKey
func ConfigFromEnv() Config {
	return Config{
		LocalPath:    os.Getenv("CAMPERPACK_DB_PATH"),
		RemoteURL:    os.Getenv("CAMPERPACK_REMOTE_URL"),
		APIKey:       os.Getenv("CAMPERPACK_API_KEY"),
		SourceID:     os.Getenv("CAMPERPACK_SOURCE_ID"),
		VisionAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}
	if c.SyncInterval < 0 {
		return &ValidationError{Field: "SyncInterval", Message: "must be non-negative"}
	}
	return nil
}

// IsOffline returns true if the client operates in offline-only mode.
func (c *Config) IsOffline() bool {
	return c.RemoteURL == ""
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.LocalPath == "" {
		c.LocalPath = defaults.LocalPath
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = defaults.SyncInterval
	}
	if c.SourceID == "" {
		c.SourceID = defaults.SourceID
	}

	return c
}
