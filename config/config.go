package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Killboard     KillboardConfig     `yaml:"killboard"`
	Sync          SyncConfig          `yaml:"sync"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the admin HTTP server configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// KillboardConfig holds configuration for the external killboard API.
type KillboardConfig struct {
	BaseURL      string        `yaml:"base_url"`
	PageSize     int           `yaml:"page_size"`
	RequestDelay time.Duration `yaml:"request_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SyncConfig holds tuning knobs for the battle sync engine.
type SyncConfig struct {
	StrictWindow          time.Duration `yaml:"strict_window"`
	LooseWindow           time.Duration `yaml:"loose_window"`
	StrictThreshold       float64       `yaml:"strict_threshold"`
	LooseThreshold        float64       `yaml:"loose_threshold"`
	MinOverlap            float64       `yaml:"min_overlap"`
	MaxPlayerDiff         float64       `yaml:"max_player_diff"`
	MinTrackedPlayers     int           `yaml:"min_tracked_players"`
	SignificanceThreshold int           `yaml:"significance_threshold"`
	LookbackDays          int           `yaml:"lookback_days"`
	SyncInterval          time.Duration `yaml:"sync_interval"`
	ReconcileInterval     time.Duration `yaml:"reconcile_interval"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("KILLBOARD_BASE_URL"); v != "" {
		cfg.Killboard.BaseURL = v
	}
	if v := os.Getenv("KILLBOARD_REQUEST_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Killboard.RequestDelay = d
		}
	}
	if v := os.Getenv("SYNC_LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.LookbackDays = n
		}
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	cfg.HTTP.Addr = os.Getenv("HTTP_ADDR")
	cfg.Killboard.BaseURL = os.Getenv("KILLBOARD_BASE_URL")
	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS")
	cfg.Observability.Environment = os.Getenv("ENV")

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in zero-valued tuning knobs.
func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Killboard.PageSize == 0 {
		cfg.Killboard.PageSize = 20
	}
	if cfg.Killboard.RequestDelay == 0 {
		cfg.Killboard.RequestDelay = time.Second
	}
	if cfg.Killboard.Timeout == 0 {
		cfg.Killboard.Timeout = 30 * time.Second
	}
	if cfg.Sync.StrictWindow == 0 {
		cfg.Sync.StrictWindow = 30 * time.Minute
	}
	if cfg.Sync.LooseWindow == 0 {
		cfg.Sync.LooseWindow = 60 * time.Minute
	}
	if cfg.Sync.StrictThreshold == 0 {
		cfg.Sync.StrictThreshold = 0.8
	}
	if cfg.Sync.LooseThreshold == 0 {
		cfg.Sync.LooseThreshold = 0.6
	}
	if cfg.Sync.MinOverlap == 0 {
		cfg.Sync.MinOverlap = 0.5
	}
	if cfg.Sync.MaxPlayerDiff == 0 {
		cfg.Sync.MaxPlayerDiff = 0.3
	}
	if cfg.Sync.MinTrackedPlayers == 0 {
		cfg.Sync.MinTrackedPlayers = 10
	}
	if cfg.Sync.SignificanceThreshold == 0 {
		cfg.Sync.SignificanceThreshold = 4
	}
	if cfg.Sync.LookbackDays == 0 {
		cfg.Sync.LookbackDays = 7
	}
	if cfg.Sync.SyncInterval == 0 {
		cfg.Sync.SyncInterval = time.Hour
	}
	if cfg.Sync.ReconcileInterval == 0 {
		cfg.Sync.ReconcileInterval = 6 * time.Hour
	}
}
