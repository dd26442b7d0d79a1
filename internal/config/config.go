package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Lists    ListsConfig    `yaml:"lists"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	Server   ServerConfig   `yaml:"server"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Log      LogConfig      `yaml:"log"`
}

// EngineConfig holds annotation settings.
type EngineConfig struct {
	MaxAnnotations int      `yaml:"max_annotations" env:"ENGINE_MAX_ANNOTATIONS" env-default:"50"`
	Probability    float64  `yaml:"probability"     env:"ENGINE_PROBABILITY"     env-default:"0.25"`
	// PrimaryOnly disables context scoring.
	PrimaryOnly    bool     `yaml:"primary_only"    env:"ENGINE_PRIMARY_ONLY"`
	BlockedDomains []string `yaml:"blocked_domains" env:"ENGINE_BLOCKED_DOMAINS" env-default:"google.,bing.com,duckduckgo.com,yahoo.com" env-separator:","`
}

// ListsConfig says where vocabulary lists come from. BaseURL, when set, is
// used instead of Dir.
type ListsConfig struct {
	Dir       string `yaml:"dir"        env:"LISTS_DIR"        env-default:"./lists"`
	BaseURL   string `yaml:"base_url"   env:"LISTS_BASE_URL"`
	CacheSize int    `yaml:"cache_size" env:"LISTS_CACHE_SIZE" env-default:"16"`
	Watch     bool   `yaml:"watch"      env:"LISTS_WATCH"`
}

// DatabaseConfig holds the SQLite location for settings and history.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"wordweave.db"`
}

// HistoryConfig controls exposure recording.
//
// cleanenv applies env-default to zero-valued fields, so a YAML "false" could
// never override a "true" default; booleans here all default to false.
type HistoryConfig struct {
	Disabled      bool          `yaml:"disabled"       env:"HISTORY_DISABLED"`
	BatchSize     int           `yaml:"batch_size"     env:"HISTORY_BATCH_SIZE"     env-default:"50"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"HISTORY_FLUSH_INTERVAL" env-default:"2s"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// FetchConfig holds page download settings.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"        env:"FETCH_TIMEOUT"        env-default:"30s"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"FETCH_MAX_BODY_BYTES" env-default:"10485760"`
	UserAgent    string        `yaml:"user_agent"     env:"FETCH_USER_AGENT"`
	Workers      int           `yaml:"workers"        env:"FETCH_WORKERS"        env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

func (e EngineConfig) validate() error {
	if e.MaxAnnotations <= 0 {
		return fmt.Errorf("max_annotations must be > 0 (got %d)", e.MaxAnnotations)
	}
	if e.Probability <= 0 || e.Probability > 1 {
		return fmt.Errorf("probability must be in (0, 1] (got %v)", e.Probability)
	}
	return nil
}
