// Package config loads host configuration from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
)

// EnvPrefix prefixes every environment override, e.g. QUIZBOARD_STORAGE_DRIVER.
const EnvPrefix = "QUIZBOARD"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the full host configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Board   BoardConfig   `mapstructure:"board"`
	Events  EventsConfig  `mapstructure:"events"`
	Storage StorageConfig `mapstructure:"storage"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BoardConfig sizes the board a fresh session starts with.
type BoardConfig struct {
	Categories int `mapstructure:"categories"`
	Rows       int `mapstructure:"rows"`
}

// EventsConfig tunes the special-event draw.
type EventsConfig struct {
	TriggerInterval   uint32         `mapstructure:"trigger_interval"`
	Enabled           []string       `mapstructure:"enabled"`
	Weights           map[string]int `mapstructure:"weights"`
	AnimationDuration time.Duration  `mapstructure:"animation_duration"`
}

// StorageConfig picks the snapshot backend.
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"`
	DSN           string        `mapstructure:"dsn"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	MaxConns      int32         `mapstructure:"max_conns"`
}

// ReplayConfig controls replay recording.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("board.categories", domain.DefaultCategories)
	v.SetDefault("board.rows", domain.DefaultRows)

	def := events.DefaultConfig()
	enabled := make([]string, 0, len(def.Enabled))
	for _, k := range def.Enabled {
		enabled = append(enabled, string(k))
	}
	weights := make(map[string]int, len(def.Weights))
	for k, w := range def.Weights {
		weights[string(k)] = w
	}
	v.SetDefault("events.trigger_interval", def.TriggerInterval)
	v.SetDefault("events.enabled", enabled)
	v.SetDefault("events.weights", weights)
	v.SetDefault("events.animation_duration", def.AnimationDuration)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.ttl", 24*time.Hour)
	v.SetDefault("storage.max_conns", 4)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")
}

// Load reads path (if it exists) over the defaults, then applies QUIZBOARD_*
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}

	if c.Board.Categories < 1 || c.Board.Categories > domain.MaxCategories {
		return fmt.Errorf("board.categories must be between 1 and %d, got %d", domain.MaxCategories, c.Board.Categories)
	}
	if c.Board.Rows < 1 || c.Board.Rows > domain.MaxRows {
		return fmt.Errorf("board.rows must be between 1 and %d, got %d", domain.MaxRows, c.Board.Rows)
	}

	if _, err := c.EventConfig(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis driver")
		}
		if c.Storage.TTL < 0 {
			return errors.New("storage.ttl must not be negative")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Replay.Enabled && c.Replay.Dir == "" {
		return errors.New("replay.dir is required when replay is enabled")
	}
	return nil
}

// EventConfig converts the events section into the engine's event config.
func (c *Config) EventConfig() (events.Config, error) {
	cfg := events.Config{
		TriggerInterval:   c.Events.TriggerInterval,
		Weights:           make(map[events.Kind]int, len(c.Events.Weights)),
		AnimationDuration: c.Events.AnimationDuration,
	}
	for _, name := range c.Events.Enabled {
		k, err := events.ParseKind(name)
		if err != nil {
			return events.Config{}, fmt.Errorf("events.enabled: %w", err)
		}
		cfg.Enabled = append(cfg.Enabled, k)
	}
	for name, w := range c.Events.Weights {
		k, err := events.ParseKind(name)
		if err != nil {
			return events.Config{}, fmt.Errorf("events.weights: %w", err)
		}
		cfg.Weights[k] = w
	}
	if err := cfg.Validate(); err != nil {
		return events.Config{}, fmt.Errorf("events: %w", err)
	}
	return cfg, nil
}

// NewBoard builds an empty board of the configured size.
func (c *Config) NewBoard() domain.Board {
	return domain.NewBoard(c.Board.Categories, c.Board.Rows)
}
