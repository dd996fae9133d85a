// Package solver runs the external reasoning engines.
//
// The execution layer is deliberately thin: an Executor starts one process,
// streams its standard output wherever the caller points it, captures a
// bounded amount of standard error and reports how the process ended. The
// Invoker on top of it turns a non-zero exit into an External failure and
// makes sure a failed run never leaves a result artifact behind.
package solver

import (
	"io"
	"strings"
	"time"
)

// Command describes one process to run.
type Command struct {
	// Binary is the executable (absolute path or PATH lookup).
	Binary string

	// Arguments are the command-line arguments, passed verbatim.
	Arguments []string

	// WorkingDirectory is the process cwd. Empty inherits ours.
	WorkingDirectory string

	// Environment entries (KEY=VALUE) are appended to the inherited environment.
	Environment []string

	// Stdout receives standard output as it is produced. When nil, output
	// is captured into ExecutionResult.Stdout up to the size limit.
	Stdout io.Writer

	// Stderr receives standard error in addition to the bounded capture.
	Stderr io.Writer

	// Timeout bounds the run. Zero uses the executor default.
	Timeout time.Duration
}

// CommandString returns the full command line for display and logging.
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// ExecutionResult is the outcome of running a Command.
type ExecutionResult struct {
	// Success is false when the process could not be run at all
	// (missing binary, permission denied). A process that ran and exited
	// non-zero is still a success at this level.
	Success bool

	// ExitCode is the process exit status, -1 if it never exited normally.
	ExitCode int

	// Stdout is the captured standard output (empty when streamed).
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// Error describes an infrastructure failure when Success is false.
	Error string

	// Killed is set when the timeout or a cancelled context stopped the process.
	Killed     bool
	KillReason string

	// Truncated reports that captured output hit the size limit.
	Truncated      bool
	TruncatedBytes int64

	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration

	Command *Command
}

// Ok reports whether the process ran to completion with exit status zero.
func (r *ExecutionResult) Ok() bool {
	return r != nil && r.Success && !r.Killed && r.ExitCode == 0
}
