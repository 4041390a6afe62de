package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int `toml:"port"`

	// DatabasePath is the path to the SQLite database file.
	DatabasePath string `toml:"database_path"`

	// FeedURL is the websocket endpoint delivering channel posts.
	FeedURL string `toml:"feed_url"`

	// NotifyURL is the operator notification webhook. Empty disables
	// notifications.
	NotifyURL string `toml:"notify_url"`

	// NotifyToken is an optional bearer token for the notification webhook.
	NotifyToken string `toml:"notify_token"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Lookup tunes code resolution and browsing behavior.
	Lookup Lookup `toml:"lookup"`
}

// Lookup holds the resolution and browsing policy knobs.
type Lookup struct {
	// PrefixFallback is the ordered list of single-letter prefixes tried
	// when a short numeric code has no exact match.
	PrefixFallback []string `toml:"prefix_fallback"`

	// SeedCategories are offered during curation before any entries exist.
	SeedCategories []string `toml:"seed_categories"`

	// PageSize is the number of entries per category page.
	PageSize int `toml:"page_size"`

	// DraftListLimit caps how many pending drafts a curation listing shows.
	DraftListLimit int `toml:"draft_list_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         3000,
		DatabasePath: "kinokod.db",
		FeedURL:      "ws://localhost:8900/subscribe",
		LogLevel:     "info",
		Lookup: Lookup{
			PrefixFallback: []string{"M", "A", "C", "D", "H", "S", "F", "T"},
			SeedCategories: []string{"Hind kinolar"},
			PageSize:       8,
			DraftListLimit: 10,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file at path,
// and environment variable overrides, in that order. An empty path falls back
// to KINOKOD_CONFIG; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("KINOKOD_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("KINOKOD_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("KINOKOD_FEED_URL"); v != "" {
		cfg.FeedURL = v
	}
	if v := os.Getenv("KINOKOD_NOTIFY_URL"); v != "" {
		cfg.NotifyURL = v
	}
	if v := os.Getenv("KINOKOD_NOTIFY_TOKEN"); v != "" {
		cfg.NotifyToken = v
	}
	if v := os.Getenv("KINOKOD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.Lookup.PageSize < 1 {
		return fmt.Errorf("lookup.page_size must be positive, got %d", c.Lookup.PageSize)
	}
	if c.Lookup.DraftListLimit < 1 {
		return fmt.Errorf("lookup.draft_list_limit must be positive, got %d", c.Lookup.DraftListLimit)
	}
	for _, p := range c.Lookup.PrefixFallback {
		if len(p) != 1 {
			return fmt.Errorf("lookup.prefix_fallback entries must be single letters, got %q", p)
		}
	}
	return nil
}
