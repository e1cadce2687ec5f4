package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 9090

[database]
host = "db"
port = 5432
user = "slots"
password = "secret"
dbname = "court_slots"

[facility_service]
url = "http://facility:8080"

[abuse_guard]
store = "redis"
window_minutes = 10
limit = 5

[booking]
timezone = "America/Argentina/Buenos_Aires"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, AbuseStoreRedis, cfg.AbuseGuard.Store)

	// значения по умолчанию для незаданных полей
	assert.Equal(t, 3, cfg.Booking.MaxActiveSlots)
	assert.Equal(t, 30, cfg.Booking.MaterializationHorizonDays)
	assert.Equal(t, "@every 5m", cfg.Jobs.ExpirationSpec)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeout)

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SLOTS_SERVER_HTTP_PORT", "7000")
	t.Setenv("SLOTS_DATABASE_PASSWORD", "from-env")
	t.Setenv("SLOTS_ABUSE_GUARD_LIMIT", "9")
	t.Setenv("SLOTS_JOBS_ADMIN_USER_IDS", "1,2")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.HTTPPort)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 9, cfg.AbuseGuard.Limit)
	assert.Equal(t, []int64{1, 2}, cfg.Jobs.AdminUserIDs)
	assert.Equal(t, "db", cfg.Database.Host)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)

	_, err = Load(writeConfig(t, "[server\nhttp_port = "))
	assert.ErrorIs(t, err, ErrReadConfig)

	_, err = Load(writeConfig(t, sampleConfig+"\n[rabbitmq]\nenabled = true\nurl = \"\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"missing facility url", func(c *Config) { c.FacilityService.URL = "" }},
		{"unknown store", func(c *Config) { c.AbuseGuard.Store = "memcached" }},
		{"zero limit", func(c *Config) { c.AbuseGuard.Limit = 0 }},
		{"horizon over cap", func(c *Config) { c.Booking.GenerationMaxHorizonDays = 120 }},
		{"bad timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.User = "u"
			cfg.Database.DBName = "d"
			cfg.FacilityService.URL = "http://facility"
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
