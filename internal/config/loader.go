package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
)

// EnvPrefix prefixes environment overrides, e.g. DATAVIEW_DATABASE_HOST.
const EnvPrefix = "DATAVIEW"

// Config is the full service configuration.
type Config struct {
	Database    db.Config                       `mapstructure:"database"`
	Server      ServerConfig                    `mapstructure:"server"`
	Cache       CacheConfig                     `mapstructure:"cache"`
	Log         LogConfig                       `mapstructure:"log"`
	Filters     []datafilter.Definition         `mapstructure:"filters"`
	Attributes  []domain.AttributeDefinition    `mapstructure:"attributes"`
	ListSources map[string]fieldtype.ListSource `mapstructure:"listSources"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Cache: CacheConfig{Size: 1024, TTL: 5 * time.Minute},
		Log:   LogConfig{Level: "info"},
	}
}

// envKeys are bound explicitly so env overrides also reach Unmarshal.
var envKeys = []string{
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.dbname",
	"database.sslmode",
	"database.maxconns",
	"server.address",
	"cache.size",
	"cache.ttl",
	"log.level",
}

// Load reads config.yaml from configPath, applies DATAVIEW_* environment
// overrides and fills anything unset from Default. A missing file is not an
// error.
func Load(configPath string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.host", def.Database.Host)
	v.SetDefault("database.port", def.Database.Port)
	v.SetDefault("database.user", def.Database.User)
	v.SetDefault("database.password", def.Database.Password)
	v.SetDefault("database.dbname", def.Database.DBName)
	v.SetDefault("database.sslmode", def.Database.SSLMode)
	v.SetDefault("database.maxConns", def.Database.MaxConns)
	v.SetDefault("server.address", def.Server.Address)
	v.SetDefault("server.allowedOrigins", def.Server.AllowedOrigins)
	v.SetDefault("cache.size", def.Cache.Size)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("log.level", def.Log.Level)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, errors.Wrapf(err, "bind env for %s", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config file")
		}
		logrus.WithField("path", configPath).Info("No config.yaml found, using defaults and env vars")
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Info("Loaded config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if cfg.Cache.Size <= 0 {
		return Config{}, errors.Errorf("cache.size must be positive, got %d", cfg.Cache.Size)
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return Config{}, errors.Wrap(err, "log.level")
	}
	return cfg, nil
}

// LoadDBConfig returns only the database section.
func LoadDBConfig(configPath string) (db.Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return db.Config{}, err
	}
	return cfg.Database, nil
}

// ConfigureLogging applies the log section to the standard logrus logger.
func ConfigureLogging(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
