package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTEPS_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "data.sqlite"), cfg.DBFile)
	assert.Equal(t, "mpv", cfg.MPVPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "vidsteps.log"), cfg.LogFile)
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTEPS_DATA_DIR", dir)

	settings := `
mpv:
  path: /opt/mpv/bin/mpv
  extra_args: ["--fullscreen"]
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte(settings), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/mpv/bin/mpv", cfg.MPVPath)
	assert.Equal(t, []string{"--fullscreen"}, cfg.MPVArgs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTEPS_DATA_DIR", dir)
	t.Setenv("VIDSTEPS_MPV_PATH", "/usr/local/bin/mpv")
	t.Setenv("VIDSTEPS_LOG_LEVEL", "warn")

	settings := "mpv:\n  path: /opt/mpv/bin/mpv\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte(settings), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/mpv", cfg.MPVPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadBadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTEPS_DATA_DIR", dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte("mpv: ["), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestDefaultDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	assert.Equal(t, filepath.Join("/xdg/data", "vidsteps"), defaultDataDir())
}
