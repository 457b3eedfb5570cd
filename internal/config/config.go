package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vsr/internal/browser"
)

// Config holds all vsr configuration.
type Config struct {
	// Virtual cursor settings
	Reader ReaderConfig `yaml:"reader"`

	// Chrome connection used by browse and record
	Browser browser.Config `yaml:"browser"`

	// Golden transcript storage
	Transcript TranscriptConfig `yaml:"transcript"`

	// Fixture watching
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ReaderConfig bounds a full read of a document.
type ReaderConfig struct {
	MaxSteps int `yaml:"max_steps"`
	// StopPhrase ends a read. Empty means the end of the container.
	StopPhrase string `yaml:"stop_phrase"`
	// ContainerID names the element the cursor is confined to. Empty means body.
	ContainerID string `yaml:"container_id"`
}

// TranscriptConfig configures the transcript store.
type TranscriptConfig struct {
	DatabasePath string `yaml:"database_path"`
	DiffContext  int    `yaml:"diff_context"`
}

// WatchConfig configures the fixture watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Reader: ReaderConfig{
			MaxSteps: 500,
		},
		Browser: defaultBrowser(),
		Transcript: TranscriptConfig{
			DatabasePath: filepath.Join(".vsr", "transcripts.db"),
			DiffContext:  3,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultBrowser() browser.Config {
	bc := browser.DefaultConfig()
	bc.SessionStore = filepath.Join(".vsr", "sessions.json")
	return bc
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("VSR_DB"); path != "" {
		c.Transcript.DatabasePath = path
	}
	if lvl := os.Getenv("VSR_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = strings.ToLower(lvl)
		c.Logging.DebugMode = true
	}
	if url := os.Getenv("VSR_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if v := os.Getenv("VSR_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = headless
		}
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Reader.MaxSteps < 0 {
		return fmt.Errorf("reader.max_steps must not be negative: %d", c.Reader.MaxSteps)
	}
	if c.Logging.Level != "" {
		valid := false
		for _, l := range validLevels {
			if c.Logging.Level == l {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, validLevels)
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch.debounce: %w", err)
		}
	}
	return nil
}

// GetDebounce returns the watcher debounce window.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// GetDiffContext returns the number of context phrases shown around changes.
func (c *Config) GetDiffContext() int {
	if c.Transcript.DiffContext < 0 {
		return 0
	}
	return c.Transcript.DiffContext
}
