package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
	StorageDriverMemory   = "memory"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Timeouts    TimeoutsConfig    `mapstructure:"timeouts"`
	WeeklyReset WeeklyResetConfig `mapstructure:"weekly_reset"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	InternalPort string        `mapstructure:"internal_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	URL               string        `mapstructure:"url"`
	MaxConnections    int           `mapstructure:"max_connections"`
	MaxIdleTime       time.Duration `mapstructure:"max_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	PingTimeout       time.Duration `mapstructure:"ping_timeout"`
}

// MongoConfig contains MongoDB connection configuration
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// RedisConfig contains Redis connection configuration. Empty URL disables Redis.
type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimeoutsConfig contains various timeout configurations
type TimeoutsConfig struct {
	HTTPMiddleware   time.Duration `mapstructure:"http_middleware"`
	GracefulShutdown time.Duration `mapstructure:"graceful_shutdown"`
	DatabaseHealth   time.Duration `mapstructure:"database_health"`
	RedisHealth      time.Duration `mapstructure:"redis_health"`
}

// WeeklyResetConfig contains configuration for the weekly competitive reset
type WeeklyResetConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	RunTimeout    time.Duration `mapstructure:"run_timeout"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	Timezone      string        `mapstructure:"timezone"`
	TopRanks      int           `mapstructure:"top_ranks"`
	CatchUpMissed bool          `mapstructure:"catch_up_missed"`
}

// MetricsConfig contains metrics collection configuration
type MetricsConfig struct {
	UpdateInterval time.Duration `mapstructure:"update_interval"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/progression-service")

	// Set environment variable prefix and key replacement
	v.SetEnvPrefix("PROGRESSION_SVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for keys without defaults
	v.BindEnv("database.url", "PROGRESSION_SVC_DATABASE_URL")
	v.BindEnv("mongo.uri", "PROGRESSION_SVC_MONGO_URI")
	v.BindEnv("redis.url", "PROGRESSION_SVC_REDIS_URL")
	v.BindEnv("server.internal_port", "PROGRESSION_SVC_SERVER_INTERNAL_PORT")

	setDefaults(v)

	// Try to read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("storage.driver", StorageDriverPostgres)

	// Database defaults (conservative values, no unsafe defaults)
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "5m")
	v.SetDefault("database.health_check_period", "1m")
	v.SetDefault("database.ping_timeout", "5s")

	// Mongo defaults
	v.SetDefault("mongo.database", "college_hub")
	v.SetDefault("mongo.max_pool_size", 50)
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.ping_timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.max_connections", 10)
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.ping_timeout", "5s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Timeout defaults
	v.SetDefault("timeouts.http_middleware", "60s")
	v.SetDefault("timeouts.graceful_shutdown", "30s")
	v.SetDefault("timeouts.database_health", "2s")
	v.SetDefault("timeouts.redis_health", "2s")

	// Weekly reset defaults
	v.SetDefault("weekly_reset.enabled", true)
	v.SetDefault("weekly_reset.check_interval", "5m")
	v.SetDefault("weekly_reset.run_timeout", "10m")
	v.SetDefault("weekly_reset.lock_ttl", "1h")
	v.SetDefault("weekly_reset.timezone", "Local")
	v.SetDefault("weekly_reset.top_ranks", 3)
	v.SetDefault("weekly_reset.catch_up_missed", false)

	// Metrics defaults
	v.SetDefault("metrics.update_interval", "10s")
}

// Validate validates the configuration and ensures required fields are present
func (c *Config) Validate() error {
	if c.Server.InternalPort == "" {
		return fmt.Errorf("required configuration field 'server.internal_port' is not set (use environment variable PROGRESSION_SVC_SERVER_INTERNAL_PORT)")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("required configuration field 'database.url' is not set (use environment variable PROGRESSION_SVC_DATABASE_URL)")
		}
		if c.Database.MaxConnections <= 0 {
			return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
		}
	case StorageDriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("required configuration field 'mongo.uri' is not set (use environment variable PROGRESSION_SVC_MONGO_URI)")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo.database cannot be empty")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported storage.driver %q (expected %s, %s or %s)",
			c.Storage.Driver, StorageDriverPostgres, StorageDriverMongo, StorageDriverMemory)
	}

	// Validate timeout values are reasonable
	timeouts := map[string]time.Duration{
		"server.read_timeout":         c.Server.ReadTimeout,
		"server.write_timeout":        c.Server.WriteTimeout,
		"database.ping_timeout":       c.Database.PingTimeout,
		"redis.ping_timeout":          c.Redis.PingTimeout,
		"weekly_reset.check_interval": c.WeeklyReset.CheckInterval,
		"weekly_reset.run_timeout":    c.WeeklyReset.RunTimeout,
	}

	for name, timeout := range timeouts {
		if timeout <= 0 {
			return fmt.Errorf("timeout '%s' must be positive, got %v", name, timeout)
		}
		if timeout > time.Hour {
			return fmt.Errorf("timeout '%s' seems too large, got %v", name, timeout)
		}
	}

	// The check interval must fit into the one hour Monday window
	if c.WeeklyReset.CheckInterval >= time.Hour {
		return fmt.Errorf("weekly_reset.check_interval must be shorter than one hour, got %v", c.WeeklyReset.CheckInterval)
	}
	if c.WeeklyReset.LockTTL <= 0 {
		return fmt.Errorf("weekly_reset.lock_ttl must be positive, got %v", c.WeeklyReset.LockTTL)
	}
	// The lock must outlive a run, otherwise a second instance can start mid-run
	if c.WeeklyReset.LockTTL <= c.WeeklyReset.RunTimeout {
		return fmt.Errorf("weekly_reset.lock_ttl (%v) must be longer than weekly_reset.run_timeout (%v)",
			c.WeeklyReset.LockTTL, c.WeeklyReset.RunTimeout)
	}
	if c.WeeklyReset.TopRanks < 1 || c.WeeklyReset.TopRanks > 3 {
		return fmt.Errorf("weekly_reset.top_ranks must be between 1 and 3, got %d", c.WeeklyReset.TopRanks)
	}
	if _, err := time.LoadLocation(c.WeeklyReset.Timezone); err != nil {
		return fmt.Errorf("weekly_reset.timezone is invalid: %w", err)
	}

	if c.Redis.URL != "" {
		if c.Redis.MaxConnections <= 0 {
			return fmt.Errorf("redis.max_connections must be positive, got %d", c.Redis.MaxConnections)
		}
		if c.Redis.MaxRetries < 0 {
			return fmt.Errorf("redis.max_retries cannot be negative, got %d", c.Redis.MaxRetries)
		}
	}

	return nil
}
