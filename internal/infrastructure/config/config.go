package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Prefix is prepended to every variable name, e.g. WORKLOG_STORE.
const Prefix = "WORKLOG_"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Env              string        `env:"ENV,               default=development"`
	LogLevel         string        `env:"LOG_LEVEL,         default=info"`
	Store            string        `env:"STORE,             default=file"`
	DataDir          string        `env:"DATA_DIR"`
	Timezone         string        `env:"TIMEZONE,          default=UTC"`
	BcryptCost       int           `env:"BCRYPT_COST,       default=10"`
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY, default=0s"`
	MetricsFile      string        `env:"METRICS_FILE"`

	Redis    RedisConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=worklog:"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=worklog"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

type SQLiteConfig struct {
	// Path defaults to <DataDir>/worklog.db.
	Path string `env:"SQLITE_PATH"`
}

// Load reads WORKLOG_* variables from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l, which sees names without the
// WORKLOG_ prefix stripped. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(Prefix, l),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(cfg.DataDir, "worklog.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreMongo, StoreSQLite:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: %sPOSTGRES_DSN is required for the postgres store", Prefix)
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: %sBCRYPT_COST must be between 4 and 31, got %d", Prefix, c.BcryptCost)
	}
	if c.SimulatedLatency < 0 {
		return fmt.Errorf("config: %sSIMULATED_LATENCY must not be negative", Prefix)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "Local" uses the host zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "worklog")
	}
	return ".worklog"
}
