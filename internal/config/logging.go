package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"` // debug, info, warn, error
	Format     string          `yaml:"format" validate:"omitempty,oneof=json text"`                    // json, text
	Dir        string          `yaml:"dir"`                                                            // relative to base_path
	DebugMode  bool            `yaml:"debug_mode"`                                                     // Master toggle - false = no log files
	Categories map[string]bool `yaml:"categories"`                                                     // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
func (c LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}
