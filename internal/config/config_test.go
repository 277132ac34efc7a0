package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/data.csv", cfg.Data.EventsPath)
	assert.Equal(t, "utf-8", cfg.Data.Encoding)
	assert.Equal(t, "@every 10m", cfg.Reload.Schedule)
	assert.Equal(t, "./data/climate-risk.db", cfg.DB.Path)
	assert.Equal(t, 3, cfg.Loader.Workers)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownGrace)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("EVENTS_PATH", "/srv/emdat.xlsx")
	t.Setenv("INPUT_ENCODING", "windows-1252")
	t.Setenv("RELOAD_SCHEDULE", "0 */6 * * *")
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/emdat.xlsx", cfg.Data.EventsPath)
	assert.Equal(t, "windows-1252", cfg.Data.Encoding)
	assert.Equal(t, "0 */6 * * *", cfg.Reload.Schedule)
	assert.Equal(t, "", cfg.DB.Path, "an explicitly empty DB_PATH disables the snapshot store")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "SERVER_PORT", "70000"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"encoding", "INPUT_ENCODING", "klingon"},
		{"schedule", "RELOAD_SCHEDULE", "every now and then"},
		{"workers", "LOADER_WORKERS", "0"},
		{"rate limit", "RATE_LIMIT_RPS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DisabledReloadSkipsScheduleCheck(t *testing.T) {
	t.Setenv("RELOAD_ENABLED", "false")
	t.Setenv("RELOAD_SCHEDULE", "nonsense")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Reload.Enabled)
}
