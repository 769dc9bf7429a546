package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 5, cfg.Global.ShutdownTimeoutInSeconds)

	assert.Equal(t, "https://api.jsonbin.io/v3/b", cfg.Store.BaseURL)
	assert.Empty(t, cfg.Store.BinID)
	assert.Empty(t, cfg.Store.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Store.Timeout)

	assert.Equal(t, "https://openlibrary.org", cfg.OpenLibrary.BaseURL)
	assert.Equal(t, "https://covers.openlibrary.org", cfg.OpenLibrary.CoversBaseURL)
	assert.Equal(t, 10*time.Second, cfg.OpenLibrary.Timeout)
	assert.Equal(t, 1, cfg.OpenLibrary.RatePerSecond)

	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, "./data/tasks.db", cfg.Tasks.DBPath)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.Tasks.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.Tasks.RetentionDuration)

	assert.False(t, cfg.MetadataSync.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.MetadataSync.Schedule)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JSONBIN_BIN_ID", "abc123")
	t.Setenv("TASK_WORKERS", "4")
	t.Setenv("METADATA_SYNC_ENABLED", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, "abc123", cfg.Store.BinID)
	assert.Equal(t, 4, cfg.Tasks.Workers)
	assert.True(t, cfg.MetadataSync.Enabled)
}
