package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
port = 8080
log_level = "debug"
storage_backend = "file"
storage_path = "/tmp/fittrack"
exercises_api_timeout = "3s"
cors_allowed_origins = ["http://localhost:3000"]

[production]
host = "0.0.0.0"
storage_backend = "badger"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Development(t *testing.T) {
	path := writeConfig(t, testConfigToml)

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/fittrack", cfg.StoragePath)
	assert.Equal(t, "fittrack_workouts", cfg.WorkoutsKey)
	assert.Equal(t, 3*time.Second, cfg.ExercisesApiTimeout.Duration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CorsAllowedOrigins)
	assert.Equal(t, 5, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL.Duration)
}

func TestLoad_InvalidProduction(t *testing.T) {
	path := writeConfig(t, testConfigToml)

	// badger backend without storage_path
	cfg, err := Load("production", path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "storage_path required")
}

func TestLoad_UnknownEnv(t *testing.T) {
	path := writeConfig(t, testConfigToml)

	cfg, err := Load("staging", path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("dev", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestToml_Get_Defaults(t *testing.T) {
	tml := &Toml{Development: &Config{}}
	cfg, err := tml.Get("development")
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://api.api-ninjas.com/v1/exercises", cfg.ExercisesApiUrl)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = tml.Get("prod")
	require.Error(t, err)
}

func TestToml_Get_InvalidTimezone(t *testing.T) {
	tml := &Toml{Development: &Config{Timezone: "Mars/Olympus"}}
	cfg, err := tml.Get("dev")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
