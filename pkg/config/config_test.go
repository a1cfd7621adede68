package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PERSISTENCE_BACKEND", "")
	t.Setenv("MATCH_EMERGENCY_RADIUS_KM", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, PersistenceNone, cfg.Persistence.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Matching.DefaultRadiusKm)
	assert.Equal(t, 25.0, cfg.Matching.EmergencyRadiusKm)
	assert.Equal(t, 5, cfg.Matching.NearbyLimit)
	assert.Equal(t, 3, cfg.Matching.EmergencyLimit)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PERSISTENCE_BACKEND", "Redis")
	t.Setenv("MATCH_DEFAULT_RADIUS_KM", "12.5")
	t.Setenv("PERSISTENCE_FLUSH_INTERVAL", "2s")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, PersistenceRedis, cfg.Persistence.Backend)
	assert.Equal(t, 12.5, cfg.Matching.DefaultRadiusKm)
	assert.Equal(t, 2*time.Second, cfg.Persistence.FlushInterval)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALIDATION_PHONE=918910662391\nFACILITY_DIRECTORY_PATH=/etc/donorconnect/directory.yaml\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("VALIDATION_PHONE")
		os.Unsetenv("FACILITY_DIRECTORY_PATH")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "918910662391", cfg.ValidationPhone)
	assert.Equal(t, "/etc/donorconnect/directory.yaml", cfg.Directory.Path)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("PERSISTENCE_BACKEND", "cassandra")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "unsupported PERSISTENCE_BACKEND")
}

func TestValidate_Limits(t *testing.T) {
	cfg := &Config{
		Persistence: PersistenceConfig{Backend: PersistenceNone, QueueSize: 1},
		Matching:    MatchingConfig{DefaultRadiusKm: 10, EmergencyRadiusKm: 25, NearbyLimit: 0, EmergencyLimit: 3},
	}
	assert.Error(t, cfg.Validate())

	cfg.Matching.NearbyLimit = 5
	assert.NoError(t, cfg.Validate())

	cfg.Persistence.Backend = PersistencePostgres
	assert.Error(t, cfg.Validate(), "postgres needs a connection pool")
	cfg.Database.MaxOpenConns = 4
	assert.NoError(t, cfg.Validate())

	cfg.Matching.EmergencyRadiusKm = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_NeedsRedis(t *testing.T) {
	cfg := &Config{Persistence: PersistenceConfig{Backend: PersistenceNone}}
	assert.False(t, cfg.NeedsRedis())

	cfg.Redis.Enabled = true
	assert.True(t, cfg.NeedsRedis())

	cfg = &Config{Persistence: PersistenceConfig{Backend: PersistenceRedis}}
	assert.True(t, cfg.NeedsRedis())
}
