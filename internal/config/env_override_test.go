package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("VSR_DB sets database path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VSR_DB", "/tmp/golden.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/tmp/golden.db", cfg.Transcript.DatabasePath)
	})

	t.Run("VSR_LOG_LEVEL enables debug mode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VSR_LOG_LEVEL", "DEBUG")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("VSR_DEBUGGER_URL sets remote browser", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VSR_DEBUGGER_URL", "ws://127.0.0.1:9222/devtools/browser/x")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/x", cfg.Browser.DebuggerURL)
	})

	t.Run("VSR_HEADLESS parses booleans", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VSR_HEADLESS", "false")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.False(t, cfg.Browser.Headless)
	})

	t.Run("VSR_HEADLESS ignores garbage", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VSR_HEADLESS", "maybe")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Browser.Headless)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultConfig(), cfg)
	})
}
