package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"WORKLOG_DATA_DIR": "/tmp/wl",
	}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Zero(t, cfg.SimulatedLatency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "worklog:", cfg.Redis.Prefix)
	assert.Equal(t, "worklog", cfg.Mongo.Database)
	assert.Equal(t, filepath.Join("/tmp/wl", "worklog.db"), cfg.SQLite.Path)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"WORKLOG_ENV":               "production",
		"WORKLOG_STORE":             " Redis ",
		"WORKLOG_TIMEZONE":          "America/Mexico_City",
		"WORKLOG_BCRYPT_COST":       "4",
		"WORKLOG_SIMULATED_LATENCY": "800ms",
		"WORKLOG_REDIS_ADDR":        "cache:6380",
		"WORKLOG_REDIS_DB":          "3",
		"STORE":                     "memory",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store, "unprefixed variables are ignored")
	assert.Equal(t, 800*time.Millisecond, cfg.SimulatedLatency)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.IsDevelopment())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":        {"WORKLOG_STORE": "dynamo"},
		"postgres without dsn": {"WORKLOG_STORE": "postgres"},
		"bcrypt cost too low":  {"WORKLOG_BCRYPT_COST": "2"},
		"bad timezone":         {"WORKLOG_TIMEZONE": "Mars/Olympus"},
		"negative latency":     {"WORKLOG_SIMULATED_LATENCY": "-1s"},
		"unparsable bcrypt":    {"WORKLOG_BCRYPT_COST": "ten"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
