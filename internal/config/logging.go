package config

import "vsr/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`                // debug, info, warn, error
	Format     string          `yaml:"format"`               // json, text
	Dir        string          `yaml:"dir"`                  // per-category log files; empty logs to stderr
	DebugMode  bool            `yaml:"debug_mode"`           // master toggle; false writes nothing
	Categories map[string]bool `yaml:"categories,omitempty"` // per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled while debug mode is on.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	return !exists || enabled
}

// ToLogging converts c into the logging package's configuration.
func (c *LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		Categories: c.Categories,
		JSONFormat: c.Format == "json",
		Dir:        c.Dir,
	}
}
