package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	obs "github.com/wellplay/wellplay-backend/app/shared/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	League        LeagueConfig        `yaml:"league"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url"`
	NKeySeed   string `yaml:"nkey_seed"`
	QueueGroup string `yaml:"queue_group"`
}

// LeagueConfig tunes the league lifecycle engine.
type LeagueConfig struct {
	AdmissionThreshold int64         `yaml:"admission_threshold"`
	DefaultCapacity    int           `yaml:"default_capacity"`
	DemotionCapacity   int           `yaml:"demotion_capacity"`
	Window             time.Duration `yaml:"window"`

	BroadcastCoalesce  time.Duration `yaml:"broadcast_coalesce"`
	BroadcastQueueSize int           `yaml:"broadcast_queue_size"`
	BroadcastRate      float64       `yaml:"broadcast_rate"`
	BroadcastSubject   string        `yaml:"broadcast_subject"`

	ResolutionInterval time.Duration `yaml:"resolution_interval"`
	ResolutionWorkers  int           `yaml:"resolution_workers"`
	ResolutionTimeout  time.Duration `yaml:"resolution_timeout"`
	ClaimLease         time.Duration `yaml:"claim_lease"`
	ExpiredBatchSize   int           `yaml:"expired_batch_size"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
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
	applyEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
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
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	applyEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LEAGUE_ADMISSION_THRESHOLD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.League.AdmissionThreshold = n
		}
	}
	if v := os.Getenv("LEAGUE_RESOLUTION_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.League.ResolutionWorkers = n
		}
	}
	if v := os.Getenv("LEAGUE_RESOLUTION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.League.ResolutionInterval = d
		}
	}
	if v := os.Getenv("LEAGUE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.League.Window = d
		}
	}
}

func (c *Config) applyDefaults() {
	l := &c.League
	if l.AdmissionThreshold == 0 {
		l.AdmissionThreshold = 65
	}
	if l.DefaultCapacity == 0 {
		l.DefaultCapacity = 30
	}
	if l.DemotionCapacity == 0 {
		l.DemotionCapacity = 5
	}
	if l.Window == 0 {
		l.Window = 7 * 24 * time.Hour
	}
	if l.BroadcastCoalesce == 0 {
		l.BroadcastCoalesce = 200 * time.Millisecond
	}
	if l.BroadcastQueueSize == 0 {
		l.BroadcastQueueSize = 1024
	}
	if l.BroadcastRate == 0 {
		l.BroadcastRate = 500
	}
	if l.BroadcastSubject == "" {
		l.BroadcastSubject = "league.live"
	}
	if l.ResolutionInterval == 0 {
		l.ResolutionInterval = time.Minute
	}
	if l.ResolutionWorkers == 0 {
		l.ResolutionWorkers = 4
	}
	if l.ResolutionTimeout == 0 {
		l.ResolutionTimeout = 30 * time.Second
	}
	if l.ClaimLease == 0 {
		l.ClaimLease = 5 * time.Minute
	}
	if l.ExpiredBatchSize == 0 {
		l.ExpiredBatchSize = 100
	}
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "league"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate rejects settings the league engine cannot run with.
func (c *Config) Validate() error {
	l := c.League
	switch {
	case l.AdmissionThreshold < 0:
		return fmt.Errorf("league.admission_threshold must not be negative")
	case l.DefaultCapacity < 1:
		return fmt.Errorf("league.default_capacity must be at least 1")
	case l.DemotionCapacity < 1 || l.DemotionCapacity > l.DefaultCapacity:
		return fmt.Errorf("league.demotion_capacity must be between 1 and default_capacity")
	case l.Window <= 0:
		return fmt.Errorf("league.window must be positive")
	case l.ResolutionWorkers < 1:
		return fmt.Errorf("league.resolution_workers must be at least 1")
	case l.ClaimLease <= l.ResolutionTimeout:
		return fmt.Errorf("league.claim_lease must exceed league.resolution_timeout")
	}
	return nil
}

func ToObsConfig(appCfg *Config) obs.Config {
	return obs.Config{
		ServiceName:    "wellplay-league",
		Environment:    appCfg.Observability.Environment,
		Version:        "1.0.0", // Could inject via `ldflags`
		LogLevel:       appCfg.Observability.LogLevel,
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}
