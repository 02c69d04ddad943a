package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
)

type Config struct {
	Environment string `toml:"-"`

	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsHost string `toml:"metrics_host"`
	MetricsPort string `toml:"metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// workouts storage
	StorageBackend string `toml:"storage_backend"`
	StoragePath    string `toml:"storage_path"`
	WorkoutsKey    string `toml:"workouts_key"`
	Timezone       string `toml:"timezone"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// exercises catalog
	ExercisesApiUrl     string   `toml:"exercises_api_url"`
	ExercisesApiTimeout Duration `toml:"exercises_api_timeout"`
	// http
	CorsAllowedOrigins          []string `toml:"cors_allowed_origins"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	SessionTTL                  Duration `toml:"session_ttl"`
}

// Duration allows durations like "10s" in the toml file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("env %s not present in config", env)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}

	return cfg, nil
}

// Load reads the toml config file and returns the config for the given env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.MetricsPort == "" {
		c.MetricsPort = "9091"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageMemory
	}
	if c.WorkoutsKey == "" {
		c.WorkoutsKey = "fittrack_workouts"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.ExercisesApiUrl == "" {
		c.ExercisesApiUrl = "https://api.api-ninjas.com/v1/exercises"
	}
	if c.ExercisesApiTimeout.Duration == 0 {
		c.ExercisesApiTimeout.Duration = 10 * time.Second
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 5
	}
	if c.SessionTTL.Duration == 0 {
		c.SessionTTL.Duration = 30 * 24 * time.Hour
	}
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageRedis, StoragePostgres:
	case StorageFile, StorageBadger:
		if c.StoragePath == "" {
			return fmt.Errorf("storage_path required for %s backend", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location returns the time zone used to bucket workouts into calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}
