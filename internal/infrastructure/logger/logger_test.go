package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}
}

func TestNew(t *testing.T) {
	t.Run("info logger drops debug entries", func(t *testing.T) {
		log, err := New(testConfig())
		require.NoError(t, err)

		assert.False(t, log.Core().Enabled(-1)) // debug
		assert.True(t, log.Core().Enabled(0))   // info
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		cfg := testConfig()
		cfg.Level = "loud"

		log, err := New(cfg)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(0))
		assert.False(t, log.Core().Enabled(-1))
	})

	t.Run("console format", func(t *testing.T) {
		cfg := testConfig()
		cfg.Format = "console"

		log, err := New(cfg)
		require.NoError(t, err)
		log.Info("boot")
	})

	t.Run("file output writes entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bridge.log")
		cfg := testConfig()
		cfg.Output = path

		log, err := New(cfg)
		require.NoError(t, err)

		log.Info("package forecast accepted")
		require.NoError(t, Sync(log))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "package forecast accepted")
	})

	t.Run("unwritable file falls back without error", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output = filepath.Join(t.TempDir(), "missing", "dir", "bridge.log")

		log, err := New(cfg)
		require.NoError(t, err)
		log.Info("still alive")
	})
}
