package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	HTTP    HTTPConfig
	GRPC    GRPCConfig
	Catalog CatalogConfig
	Storage StorageConfig
	Log     LogConfig
	Reset   ResetConfig
	Locale  string
}

// HTTPConfig holds the HTTP listener settings; empty Addr disables it.
type HTTPConfig struct {
	Addr string
}

// GRPCConfig holds the gRPC listener settings; empty Addr disables it.
type GRPCConfig struct {
	Addr string
}

// CatalogConfig selects the prize catalog. Empty Dir means the built-in files.
type CatalogConfig struct {
	Dir           string
	Campaign      string
	Variant       string
	WatchInterval time.Duration `mapstructure:"watch_interval"`
}

// StorageConfig selects the persistence backend: memory, file or sqlite.
type StorageConfig struct {
	Driver string
	Path   string
}

type LogConfig struct {
	Mode string
}

// ResetConfig schedules automatic inventory resets; empty Cron disables them.
type ResetConfig struct {
	Cron string
}

// Load loads configuration from .env, config files and GACHA_* environment variables.
func Load(paths ...string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("GACHA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("grpc.addr", "")
	v.SetDefault("catalog.dir", "")
	v.SetDefault("catalog.campaign", "default")
	v.SetDefault("catalog.variant", "")
	v.SetDefault("catalog.watch_interval", 2*time.Second)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("locale", "")
	v.SetDefault("reset.cron", "")
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	default:
		return errors.New("storage.driver must be one of: memory, file, sqlite")
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return errors.New("storage.path is required for file and sqlite storage")
	}
	if c.HTTP.Addr == "" && c.GRPC.Addr == "" {
		return errors.New("at least one of http.addr or grpc.addr must be set")
	}
	return nil
}
