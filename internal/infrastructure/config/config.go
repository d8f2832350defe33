package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn error"`

	Warehouse    WarehouseConfig    `koanf:"warehouse"`
	Redis        RedisConfig        `koanf:"redis"`
	Notification NotificationConfig `koanf:"notification"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Ops          OpsConfig          `koanf:"ops"`
	Judgment     JudgmentConfig     `koanf:"judgment"`
}

// WarehouseConfig selects and tunes the daily-performance source
type WarehouseConfig struct {
	Driver          string        `koanf:"driver" validate:"oneof=postgres snowflake"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	// FetchRatePerSecond caps warehouse queries across the batch
	FetchRatePerSecond float64 `koanf:"fetch_rate_per_second" validate:"gt=0"`
}

type RedisConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type NotificationConfig struct {
	Enabled    bool          `koanf:"enabled"`
	WebhookURL string        `koanf:"webhook_url"`
	Channel    string        `koanf:"channel"`
	Timeout    time.Duration `koanf:"timeout"`
	// RatePerMinute caps outbound alerts
	RatePerMinute float64 `koanf:"rate_per_minute" validate:"gt=0"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SamplingRate  float64       `koanf:"sampling_rate" validate:"min=0,max=1"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
}

type OpsConfig struct {
	Addr string `koanf:"addr"`
}

// JudgmentConfig carries the engine tuning and the batch of entities to judge
type JudgmentConfig struct {
	RecentDays    int           `koanf:"recent_days" validate:"min=1"`
	TotalDays     int           `koanf:"total_days" validate:"min=2"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	MaxConcurrent int           `koanf:"max_concurrent" validate:"min=1"`

	Thresholds defense.DefenseThresholdConfig `koanf:"thresholds"`
	UpGuard    defense.StableRatioThresholds  `koanf:"up_guard"`

	// DefaultLifecycleState applies to ASINs missing from LifecycleStates
	DefaultLifecycleState string            `koanf:"default_lifecycle_state"`
	LifecycleStates       map[string]string `koanf:"lifecycle_states"`

	Entities []EntityConfig `koanf:"entities" validate:"dive"`
}

// EntityConfig is one keyword or search-term cluster to judge
type EntityConfig struct {
	ASIN       string  `koanf:"asin" validate:"required"`
	EntityID   string  `koanf:"entity_id" validate:"required"`
	EntityType string  `koanf:"entity_type" validate:"oneof=keyword search_term_cluster"`
	TargetACOS float64 `koanf:"target_acos" validate:"gt=0"`
	TargetCPA  float64 `koanf:"target_cpa" validate:"gte=0"`
}

// Load reads defaults, then the optional YAML file, then BIDJUDGE_ env
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Warehouse: WarehouseConfig{
			Driver:             "postgres",
			MaxOpenConns:       10,
			MaxIdleConns:       2,
			ConnMaxLifetime:    5 * time.Minute,
			QueryTimeout:       30 * time.Second,
			FetchRatePerSecond: 20,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Notification: NotificationConfig{
			Timeout:       10 * time.Second,
			RatePerMinute: 30,
		},
		Telemetry: TelemetryConfig{
			SamplingRate:  0.1,
			ExportTimeout: 30 * time.Second,
		},
		Ops: OpsConfig{
			Addr: ":9090",
		},
		Judgment: JudgmentConfig{
			RecentDays:            performance.DefaultWindowConfig.RecentDays,
			TotalDays:             performance.DefaultWindowConfig.TotalDays,
			CacheTTL:              6 * time.Hour,
			MaxConcurrent:         8,
			Thresholds:            defense.DefaultThresholds,
			UpGuard:               defense.DefaultStableRatioThresholds,
			DefaultLifecycleState: "STEADY",
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading configs/config.yaml: %w", err)
		}
	}

	if err := k.Load(env.Provider("BIDJUDGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "BIDJUDGE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags plus the cross-field invariants the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Judgment.RecentDays >= c.Judgment.TotalDays {
		return fmt.Errorf("judgment.recent_days (%d) must be less than judgment.total_days (%d)",
			c.Judgment.RecentDays, c.Judgment.TotalDays)
	}
	if err := c.Judgment.Thresholds.Validate(); err != nil {
		return fmt.Errorf("judgment.thresholds: %w", err)
	}
	if c.Notification.Enabled && c.Notification.WebhookURL == "" {
		return fmt.Errorf("notification.webhook_url is required when notifications are enabled")
	}
	if c.Warehouse.DSN == "" && c.Environment != "development" {
		return fmt.Errorf("warehouse.dsn is required outside development")
	}
	return nil
}

// Window returns the engine window configuration
func (c *Config) Window() performance.WindowConfig {
	return performance.WindowConfig{
		RecentDays: c.Judgment.RecentDays,
		TotalDays:  c.Judgment.TotalDays,
	}
}
