package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all owldlv configuration. It is built once at startup and
// passed by value to every component; nothing mutates it afterwards.
type Config struct {
	// BasePath anchors every relative path below. Defaults to the directory
	// holding the executable.
	BasePath string `yaml:"base_path" validate:"required"`

	Workspace  WorkspaceConfig  `yaml:"workspace"`
	Solver     SolverConfig     `yaml:"solver"`
	Relevance  RelevanceConfig  `yaml:"relevance"`
	Converters ConvertersConfig `yaml:"converters"`
	Results    ResultsConfig    `yaml:"results"`
	Journal    JournalConfig    `yaml:"journal"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   defaultBasePath(),
		Workspace:  DefaultWorkspaceConfig(),
		Solver:     DefaultSolverConfig(),
		Relevance:  DefaultRelevanceConfig(),
		Converters: DefaultConvertersConfig(),
		Results: ResultsConfig{
			Path:   filepath.Join("solvers", "tmp", "result.txt"),
			Viewer: "gedit",
		},
		Journal: JournalConfig{
			Enabled: true,
			File:    "runs.db",
		},
		Metrics: MetricsConfig{
			Textfile: "metrics.prom",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Dir:    "logs",
		},
	}
}

// defaultBasePath mirrors the classic layout where solvers/ and tmp/ sit
// next to the executable.
func defaultBasePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c Config) Save(path string) error {
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
	if base := os.Getenv("OWLDLV_BASE"); base != "" {
		c.BasePath = base
	}
	if solver := os.Getenv("OWLDLV_SOLVER"); solver != "" {
		c.Solver.DLV = solver
	}
	if java := os.Getenv("OWLDLV_JAVA"); java != "" {
		c.Converters.Java = java
	}
	if engine := os.Getenv("OWLDLV_RELEVANCE_ENGINE"); engine != "" {
		c.Relevance.Engine = engine
	}
	switch strings.ToLower(os.Getenv("OWLDLV_DEBUG")) {
	case "1", "true", "yes":
		c.Logging.DebugMode = true
	case "0", "false", "no":
		c.Logging.DebugMode = false
	}
}

var validate = validator.New()

// Validate validates the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Solver.GetTimeout(); err != nil {
		return fmt.Errorf("invalid configuration: solver.timeout: %w", err)
	}
	return nil
}

// Resolve anchors a relative path at BasePath. Absolute paths are returned cleaned.
func (c Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.BasePath, p)
}

// WorkspaceRoot returns the directory holding every workspace.
func (c Config) WorkspaceRoot() string {
	return c.Resolve(c.Workspace.Dir)
}

// SolverPath returns the path of a binary inside the solvers folder.
func (c Config) SolverPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Resolve(c.Solver.Dir), name)
}

// ResultPath returns the well-known result artifact path.
func (c Config) ResultPath() string {
	return c.Resolve(c.Results.Path)
}

// JournalPath returns the run journal database path, or "" when disabled.
func (c Config) JournalPath() string {
	if !c.Journal.Enabled || c.Journal.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Journal.File) {
		return c.Journal.File
	}
	return filepath.Join(c.WorkspaceRoot(), c.Journal.File)
}

// MetricsPath returns the Prometheus textfile path, or "" when disabled.
func (c Config) MetricsPath() string {
	if c.Metrics.Textfile == "" {
		return ""
	}
	if filepath.IsAbs(c.Metrics.Textfile) {
		return c.Metrics.Textfile
	}
	return filepath.Join(c.WorkspaceRoot(), c.Metrics.Textfile)
}

// LogsDir returns the directory for categorized log files.
func (c Config) LogsDir() string {
	return c.Resolve(c.Logging.Dir)
}

// ResultsConfig configures the result artifact and its viewer.
type ResultsConfig struct {
	// Path of the single result artifact, overwritten by every completed run.
	Path string `yaml:"path" validate:"required"`

	// Viewer is launched by load-results mode. Empty prints to stdout.
	Viewer string `yaml:"viewer"`
}

// JournalConfig configures the SQLite run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// MetricsConfig configures the Prometheus textfile written after each run.
type MetricsConfig struct {
	// Textfile is relative to the workspace root. Empty disables metrics.
	Textfile string `yaml:"textfile"`
}

// getDuration parses a duration string; empty means zero (no limit).
func getDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
