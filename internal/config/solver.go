package config

import "time"

// SolverConfig configures the reasoning engine binaries and the fixed
// reasoning policy used by the obqa strategies.
type SolverConfig struct {
	// Dir holds the solver binaries and converter jars, relative to BasePath.
	Dir string `yaml:"dir" validate:"required"`

	// DLV is the plain solver, used by skdlv, asp and pass-through.
	DLV string `yaml:"dlv" validate:"required"`

	// DLVEx is the existential-rule solver, used by pchase and datarewclip.
	DLVEx string `yaml:"dlv_ex" validate:"required"`

	// PolicyFlags is the fixed obqa policy: cautious semantics, no
	// finite-domain check, quiet output, fixed model-search mode.
	PolicyFlags []string `yaml:"policy_flags"`

	// CautiousFlag and BraveFlag select the asp-mode reasoning policy.
	CautiousFlag string `yaml:"cautious_flag" validate:"required"`
	BraveFlag    string `yaml:"brave_flag" validate:"required"`

	// QuietFlag is prepended to pass-through and asp invocations.
	QuietFlag string `yaml:"quiet_flag"`

	// Timeout bounds a single solver process. Empty means unbounded.
	Timeout string `yaml:"timeout"`

	// MaxOutputBytes caps captured stderr. Stdout is streamed to the
	// result artifact and never truncated.
	MaxOutputBytes int64 `yaml:"max_output_bytes" validate:"gte=0"`
}

// DefaultSolverConfig returns the DLV defaults.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Dir:            "solvers",
		DLV:            "dlv",
		DLVEx:          "dlvEx",
		PolicyFlags:    []string{"-cautious", "-nofinitecheck", "-silent", "-ODMS"},
		CautiousFlag:   "-cautious",
		BraveFlag:      "-brave",
		QuietFlag:      "-silent",
		MaxOutputBytes: 10 * 1024 * 1024,
	}
}

// GetTimeout returns the solver timeout; zero means none.
func (s SolverConfig) GetTimeout() (time.Duration, error) {
	return getDuration(s.Timeout)
}
