package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notesink.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Queue.Concurrency)
	assert.Equal(t, 3, cfg.Queue.MaxRetries)
	assert.Equal(t, "1s", cfg.Queue.RetryBaseDelay)
	assert.Equal(t, "8s", cfg.Queue.RetryMaxDelay)
	assert.Equal(t, 0, cfg.Queue.MaxFrontier)
	assert.False(t, cfg.Janitor.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromFilesLayering(t *testing.T) {
	base := writeConfigFile(t, `
[server]
port = 9000

[queue]
concurrency = 4
`)
	override := writeConfigFile(t, `
[queue]
concurrency = 8
`)

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	// Later file wins; untouched values keep earlier layers.
	assert.Equal(t, 8, cfg.Queue.Concurrency)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Queue.MaxRetries) // default survives
}

func TestLoadFromFilesEnvOverrides(t *testing.T) {
	t.Setenv("NOTESINK_SERVER_PORT", "9191")
	t.Setenv("NOTESINK_QUEUE_CONCURRENCY", "5")
	t.Setenv("NOTESINK_BACKEND_URL", "http://backend.test:9999")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Queue.Concurrency)
	assert.Equal(t, "http://backend.test:9999", cfg.Backend.BaseURL)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/notesink.toml")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Queue.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Queue.RetryBaseDelay = "not-a-duration"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Backend.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Janitor.Enabled = true
	cfg.Janitor.Schedule = "every day at noon"
	assert.Error(t, cfg.Validate())
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7777, "0.0.0.0")
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Zero values leave the config untouched.
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestDurationHelper(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration("5s", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("garbage", time.Minute))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 10m"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule(""))
	assert.Error(t, ValidateSchedule("nonsense"))
}
