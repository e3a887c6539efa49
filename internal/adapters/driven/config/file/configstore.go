package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// Config is the typed application configuration, stored as a TOML file
// in the tenderwatch config directory.
type Config struct {
	API       APIConfig       `toml:"api"`
	Ingest    IngestConfig    `toml:"ingest"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Storage   StorageConfig   `toml:"storage"`
	Rules     RulesConfig     `toml:"rules"`

	path string
}

// APIConfig configures the upstream procurement API client.
type APIConfig struct {
	// Ticket is the API access token. Required for any ingestion.
	Ticket string `toml:"ticket"`

	// MinRequestIntervalMS spaces consecutive requests, in milliseconds.
	MinRequestIntervalMS int `toml:"min_request_interval_ms"`

	// MaxAttempts bounds retries for a single detail fetch.
	MaxAttempts int `toml:"max_attempts"`

	// RequestTimeoutS is the per-request HTTP timeout in seconds.
	RequestTimeoutS int `toml:"request_timeout_s"`
}

// IngestConfig configures the scoring pipeline.
type IngestConfig struct {
	// ScoreThreshold is the minimum combined score a tender must exceed
	// to become a candidate.
	ScoreThreshold int `toml:"score_threshold"`

	// DayPauseS is the pause between days of a range run, in seconds.
	DayPauseS int `toml:"day_pause_s"`
}

// SchedulerConfig configures the daily run.
type SchedulerConfig struct {
	// Time is the daily trigger in "HH:MM" 24-hour form.
	Time string `toml:"time"`

	// MaxRetries bounds backoff retries after a failed scheduled run.
	MaxRetries int `toml:"max_retries"`

	// BackoffBaseMin is the first retry delay in minutes; each retry
	// doubles it.
	BackoffBaseMin int `toml:"backoff_base_min"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	// DataDir overrides the default ~/.tenderwatch/data directory.
	DataDir string `toml:"data_dir"`
}

// RulesConfig locates the keyword rule file watched for hot reloads.
type RulesConfig struct {
	// Path points at the TOML rule file. Empty disables the watcher.
	Path string `toml:"path"`
}

// LoadConfig reads the configuration file, applying defaults for every
// absent field. If configDir is empty, defaults to ~/.tenderwatch.
// A missing file is not an error; defaults apply.
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".tenderwatch")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	cfg := defaultConfig()
	cfg.path = filepath.Join(configDir, "config.toml")

	data, err := os.ReadFile(cfg.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.API.MinRequestIntervalMS <= 0 {
		c.API.MinRequestIntervalMS = 2000
	}
	if c.API.MaxAttempts <= 0 {
		c.API.MaxAttempts = 4
	}
	if c.API.RequestTimeoutS <= 0 {
		c.API.RequestTimeoutS = 15
	}
	if c.Ingest.DayPauseS <= 0 {
		c.Ingest.DayPauseS = 5
	}
	if c.Scheduler.Time == "" {
		c.Scheduler.Time = "20:30"
	}
	if c.Scheduler.MaxRetries <= 0 {
		c.Scheduler.MaxRetries = 3
	}
	if c.Scheduler.BackoffBaseMin <= 0 {
		c.Scheduler.BackoffBaseMin = 5
	}
}

// Validate checks the fields a typo would silently break.
func (c *Config) Validate() error {
	if _, _, err := domain.ParseScheduleTime(c.Scheduler.Time); err != nil {
		return fmt.Errorf("scheduler.time: %w", err)
	}
	return nil
}

// Save persists the configuration to disk with restricted permissions.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// MinRequestInterval returns the API spacing as a duration.
func (c *Config) MinRequestInterval() time.Duration {
	return time.Duration(c.API.MinRequestIntervalMS) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutS) * time.Second
}

// DayPause returns the inter-day pause as a duration.
func (c *Config) DayPause() time.Duration {
	return time.Duration(c.Ingest.DayPauseS) * time.Second
}

// ScheduleConfig converts the scheduler section into the domain form.
func (c *Config) ScheduleConfig() (domain.ScheduleConfig, error) {
	hour, minute, err := domain.ParseScheduleTime(c.Scheduler.Time)
	if err != nil {
		return domain.ScheduleConfig{}, err
	}
	return domain.ScheduleConfig{
		Hour:        hour,
		Minute:      minute,
		MaxRetries:  c.Scheduler.MaxRetries,
		BackoffBase: time.Duration(c.Scheduler.BackoffBaseMin) * time.Minute,
	}, nil
}
