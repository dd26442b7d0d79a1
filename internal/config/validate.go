package config

import (
	"fmt"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Lists.Dir == "" && c.Lists.BaseURL == "" {
		return fmt.Errorf("lists: one of dir or base_url must be set")
	}
	if c.Lists.CacheSize < 0 {
		return fmt.Errorf("lists: cache_size must be >= 0 (got %d)", c.Lists.CacheSize)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database: path must be set")
	}
	if c.History.BatchSize <= 0 {
		return fmt.Errorf("history: batch_size must be > 0 (got %d)", c.History.BatchSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port out of range (got %d)", c.Server.Port)
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch: max_body_bytes must be > 0 (got %d)", c.Fetch.MaxBodyBytes)
	}
	if c.Fetch.Workers <= 0 {
		return fmt.Errorf("fetch: workers must be > 0 (got %d)", c.Fetch.Workers)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log: level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log: format must be one of %v (got %q)", logFormats, c.Log.Format)
	}
	return nil
}
