// Package logging provides config-driven categorized file-based logging for owldlv.
// Logs are written to <base>/logs/ with one file per category.
// Logging is controlled by logging.debug_mode - when false, no logs are written.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"owldlv/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config
	CategoryWorkspace Category = "workspace" // Workspace staging, clean/reuse
	CategoryImport    Category = "import"    // tbox/abox converters
	CategorySkolem    Category = "skolem"    // Rule skolemization
	CategoryRelevance Category = "relevance" // Relevant predicate computation
	CategoryFilter    Category = "filter"    // Fact folder filtering
	CategoryPipeline  Category = "pipeline"  // Run state machine, strategies
	CategorySolver    Category = "solver"    // External process execution
	CategoryJournal   Category = "journal"   // Run journal persistence
	CategoryResults   Category = "results"   // Result viewer, follow mode
)

// StructuredLogEntry represents a JSON log entry.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"`  // Unix milliseconds
	Category  string                 `json:"cat"` // Log category
	Level     string                 `json:"lvl"` // debug/info/warn/error
	Message   string                 `json:"msg"`
	RunID     string                 `json:"run,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	cfg       config.LoggingConfig
	configMu  sync.RWMutex
	logLevel  int // 0=debug, 1=info, 2=warn, 3=error
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory from the logging config.
// Should be called once at startup.
func Initialize(dir string, lc config.LoggingConfig) error {
	if dir == "" {
		return fmt.Errorf("logs directory required")
	}

	configMu.Lock()
	cfg = lc
	logLevel = parseLevel(lc.Level)
	configMu.Unlock()

	logsDir = dir

	if !lc.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== owldlv logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", lc.Level)
	if len(lc.Categories) > 0 {
		enabled := 0
		for cat, on := range lc.Categories {
			if on {
				enabled++
			}
			boot.Debug("Category '%s': %v", cat, on)
		}
		boot.Info("Enabled categories: %d/%d", enabled, len(lc.Categories))
	} else {
		boot.Info("All categories enabled (no category filter)")
	}
	return nil
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

func isJSON() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.Format == "json"
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) write(level string, minLevel int, format string, args ...interface{}) {
	if l.logger == nil || logLevel > minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if isJSON() {
		l.logJSON(level, msg, "", nil)
		return
	}
	l.logger.Printf("[%s] %s", levelTag(level), msg)
}

func levelTag(level string) string {
	switch level {
	case "debug":
		return "DEBUG"
	case "warn":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// logJSON writes a structured JSON log entry
func (l *Logger) logJSON(level, msg, runID string, fields map[string]interface{}) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
		RunID:     runID,
		Fields:    fields,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", levelTag(level), msg)
		return
	}
	l.logger.Printf("%s", data)
}

// Debug logs a debug message (only if level <= debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write("debug", LevelDebug, format, args...)
}

// Info logs an informational message (only if level <= info)
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("info", LevelInfo, format, args...)
}

// Warn logs a warning message (only if level <= warn)
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write("warn", LevelWarn, format, args...)
}

// Error logs an error message (always logged if logger exists)
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("error", LevelError, format, args...)
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

func Boot(format string, args ...interface{})       { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})  { Get(CategoryBoot).Debug(format, args...) }
func Workspace(format string, args ...interface{})  { Get(CategoryWorkspace).Info(format, args...) }
func WorkspaceDebug(format string, args ...interface{}) {
	Get(CategoryWorkspace).Debug(format, args...)
}
func Import(format string, args ...interface{})      { Get(CategoryImport).Info(format, args...) }
func ImportDebug(format string, args ...interface{}) { Get(CategoryImport).Debug(format, args...) }
func ImportError(format string, args ...interface{}) { Get(CategoryImport).Error(format, args...) }
func Skolem(format string, args ...interface{})      { Get(CategorySkolem).Info(format, args...) }
func SkolemDebug(format string, args ...interface{}) { Get(CategorySkolem).Debug(format, args...) }
func Relevance(format string, args ...interface{})   { Get(CategoryRelevance).Info(format, args...) }
func RelevanceDebug(format string, args ...interface{}) {
	Get(CategoryRelevance).Debug(format, args...)
}
func Filter(format string, args ...interface{})        { Get(CategoryFilter).Info(format, args...) }
func FilterDebug(format string, args ...interface{})   { Get(CategoryFilter).Debug(format, args...) }
func Pipeline(format string, args ...interface{})      { Get(CategoryPipeline).Info(format, args...) }
func PipelineDebug(format string, args ...interface{}) { Get(CategoryPipeline).Debug(format, args...) }
func PipelineWarn(format string, args ...interface{})  { Get(CategoryPipeline).Warn(format, args...) }
func PipelineError(format string, args ...interface{}) {
	Get(CategoryPipeline).Error(format, args...)
}
func Solver(format string, args ...interface{})      { Get(CategorySolver).Info(format, args...) }
func SolverDebug(format string, args ...interface{}) { Get(CategorySolver).Debug(format, args...) }
func SolverWarn(format string, args ...interface{})  { Get(CategorySolver).Warn(format, args...) }
func SolverError(format string, args ...interface{}) { Get(CategorySolver).Error(format, args...) }
func Journal(format string, args ...interface{})     { Get(CategoryJournal).Info(format, args...) }
func JournalWarn(format string, args ...interface{}) { Get(CategoryJournal).Warn(format, args...) }
func Results(format string, args ...interface{})     { Get(CategoryResults).Info(format, args...) }
func ResultsDebug(format string, args ...interface{}) {
	Get(CategoryResults).Debug(format, args...)
}

// =============================================================================
// RUN-SCOPED LOGGING
// =============================================================================

// RunLogger tags every line with a pipeline run id.
type RunLogger struct {
	logger *Logger
	runID  string
	fields map[string]interface{}
}

// WithRun creates a run-scoped logger.
func WithRun(category Category, runID string) *RunLogger {
	return &RunLogger{
		logger: Get(category),
		runID:  runID,
		fields: make(map[string]interface{}),
	}
}

// WithField adds a field to the run logger
func (r *RunLogger) WithField(key string, value interface{}) *RunLogger {
	r.fields[key] = value
	return r
}

func (r *RunLogger) log(level string, minLevel int, format string, args ...interface{}) {
	if r.logger.logger == nil || logLevel > minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if isJSON() {
		r.logger.logJSON(level, msg, r.runID, r.fields)
		return
	}
	if len(r.fields) > 0 {
		r.logger.logger.Printf("[%s] [run:%s] %s | %v", levelTag(level), r.runID, msg, r.fields)
		return
	}
	r.logger.logger.Printf("[%s] [run:%s] %s", levelTag(level), r.runID, msg)
}

func (r *RunLogger) Debug(format string, args ...interface{}) {
	r.log("debug", LevelDebug, format, args...)
}

func (r *RunLogger) Info(format string, args ...interface{}) {
	r.log("info", LevelInfo, format, args...)
}

func (r *RunLogger) Warn(format string, args ...interface{}) {
	r.log("warn", LevelWarn, format, args...)
}

func (r *RunLogger) Error(format string, args ...interface{}) {
	r.log("error", LevelError, format, args...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
