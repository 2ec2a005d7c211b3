package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[schedule]
time_zone = "Europe/Madrid"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/appointments.db", cfg.Database.DSN())
	assert.True(t, cfg.Database.AutoMigrate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.RateLimit.TrustProxyHeaders)
	assert.Equal(t, 15, cfg.Calendar.Timeout)
	assert.Equal(t, "@every 1m", cfg.Reminders.Schedule)
	assert.Equal(t, uint64(100), cfg.Reminders.BatchSize)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())

	offsets, err := cfg.Reminders.OffsetDurations()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{24 * time.Hour, 2 * time.Hour}, offsets)
}

func TestLoad_Postgres(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "postgres"
host = "db"
user = "app"
password = "secret"
dbname = "appointments"

[metrics]
enabled = false

[reminders]
enabled = false
offsets = ["1h", "15m"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=appointments sslmode=disable", cfg.Database.DSN())
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Reminders.Enabled)

	offsets, err := cfg.Reminders.OffsetDurations()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Hour, 15 * time.Minute}, offsets)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown driver", content: "[database]\ndriver = \"mysql\"\n"},
		{name: "postgres without host", content: "[database]\ndriver = \"postgres\"\n"},
		{name: "port out of range", content: "[server]\nhttp_port = 70000\n"},
		{name: "negative timeout", content: "[calendar]\ntimeout = -1\n"},
		{name: "unknown zone", content: "[schedule]\ntime_zone = \"Mars/Olympus\"\n"},
		{name: "bad offset", content: "[reminders]\noffsets = [\"tomorrow\"]\n"},
		{name: "negative offset", content: "[reminders]\noffsets = [\"-1h\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_ReadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)

	_, err = Load(writeConfig(t, "[server\nhttp_port = "))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, Seconds(cfg.Notifier.Timeout))
}
