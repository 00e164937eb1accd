package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso/config"
)

func TestDefaults(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 1024, c.Int("tsar", "capacity", 0))
	assert.Equal(t, 20*time.Millisecond, c.Duration("tsar", "drain_interval", 0))
	assert.Equal(t, 33*time.Millisecond, c.Duration("input", "jog_update_interval", 0))
	assert.Equal(t, 5*time.Minute, c.Duration("peaks", "cache_ttl", 0))
	assert.Equal(t, "Untitled", c.String("session", "title", ""))
	assert.Equal(t, 7, c.Int("nosuch", "key", 7))
	assert.Equal(t, 0.5, c.Float("nosuch", "key", 0.5))
	assert.True(t, c.Bool("nosuch", "key", true))
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("tsar:\n  capacity: 64\nhistory:\n  limit: 10\n"), 0o644))
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRAVERSO_AUDIO_BUFFER_FRAMES=256\n"), 0o644))
	t.Setenv("TRAVERSO_HISTORY_LIMIT", "20")
	t.Cleanup(func() { os.Unsetenv("TRAVERSO_AUDIO_BUFFER_FRAMES") })

	c, err := config.New(config.Options{File: file, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, file, c.File())
	assert.Equal(t, 64, c.Int("tsar", "capacity", 0), "file overrides defaults")
	assert.Equal(t, 20, c.Int("history", "limit", 0), "environment overrides file")
	assert.Equal(t, 256, c.Int("audio", "buffer_frames", 0), ".env is loaded")
	assert.Equal(t, 44100, c.Int("audio", "sample_rate", 0))

	c.Set("history", "limit", 30)
	assert.Equal(t, 30, c.Int("history", "limit", 0))
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("midi:\n  input: Launch\n"), 0o644))
	c, err := config.New(config.Options{File: file, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "Launch", c.String("midi", "input", ""))
}

func TestBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("tsar: [unclosed\n"), 0o644))
	_, err := config.New(config.Options{File: file, EnvFile: filepath.Join(dir, "none")})
	assert.Error(t, err)
}
