package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), cfg.Path())
	assert.Equal(t, 2*time.Second, cfg.MinRequestInterval())
	assert.Equal(t, 4, cfg.API.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.DayPause())
	assert.Equal(t, "20:30", cfg.Scheduler.Time)
	assert.Empty(t, cfg.API.Ticket)
}

func TestLoadConfig_ReadsValues(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
[api]
ticket = "ABC-123"
min_request_interval_ms = 3000
max_attempts = 2

[ingest]
score_threshold = 10
day_pause_s = 1

[scheduler]
time = "07:15"
max_retries = 5
backoff_base_min = 2

[rules]
path = "/etc/tenderwatch/rules.toml"
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ABC-123", cfg.API.Ticket)
	assert.Equal(t, 3*time.Second, cfg.MinRequestInterval())
	assert.Equal(t, 2, cfg.API.MaxAttempts)
	assert.Equal(t, 10, cfg.Ingest.ScoreThreshold)
	assert.Equal(t, time.Second, cfg.DayPause())
	assert.Equal(t, "/etc/tenderwatch/rules.toml", cfg.Rules.Path)

	sched, err := cfg.ScheduleConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, sched.Hour)
	assert.Equal(t, 15, sched.Minute)
	assert.Equal(t, 5, sched.MaxRetries)
	assert.Equal(t, 2*time.Minute, sched.BackoffBase)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
[api]
ticket = "ABC-123"
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", cfg.API.Ticket)
	assert.Equal(t, 4, cfg.API.MaxAttempts)
	assert.Equal(t, "20:30", cfg.Scheduler.Time)
}

func TestLoadConfig_RejectsBadScheduleTime(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
[scheduler]
time = "25:99"
`)

	_, err := LoadConfig(tmpDir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadConfig_RejectsMalformedTOML(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `this is not toml = [`)

	_, err := LoadConfig(tmpDir)
	assert.Error(t, err)
}

func TestConfigSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	cfg.API.Ticket = "saved-ticket"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "saved-ticket", reloaded.API.Ticket)
}
