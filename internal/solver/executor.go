package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"owldlv/internal/config"
	"owldlv/internal/logging"
)

// Executor runs a command and reports how it ended.
type Executor interface {
	// Execute runs cmd to completion. The returned error is reserved for
	// invalid commands; process failures are described by the result.
	Execute(ctx context.Context, cmd Command) (*ExecutionResult, error)
}

// ExecutorConfig holds DirectExecutor defaults.
type ExecutorConfig struct {
	// DefaultTimeout applies when a Command sets none. Zero means unbounded.
	DefaultTimeout time.Duration

	// MaxOutputBytes caps each captured stream.
	MaxOutputBytes int64
}

// DefaultExecutorConfig returns an unbounded executor with a 10MB capture cap.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{MaxOutputBytes: 10 * 1024 * 1024}
}

// ExecutorConfigFrom derives executor defaults from the solver configuration.
func ExecutorConfigFrom(sc config.SolverConfig) (ExecutorConfig, error) {
	cfg := DefaultExecutorConfig()
	timeout, err := sc.GetTimeout()
	if err != nil {
		return cfg, err
	}
	cfg.DefaultTimeout = timeout
	if sc.MaxOutputBytes > 0 {
		cfg.MaxOutputBytes = sc.MaxOutputBytes
	}
	return cfg, nil
}

// DirectExecutor runs commands on the host with os/exec.
type DirectExecutor struct {
	config ExecutorConfig
}

// NewDirectExecutor creates a DirectExecutor with default config.
func NewDirectExecutor() *DirectExecutor {
	return NewDirectExecutorWithConfig(DefaultExecutorConfig())
}

// NewDirectExecutorWithConfig creates a DirectExecutor with custom config.
func NewDirectExecutorWithConfig(config ExecutorConfig) *DirectExecutor {
	logging.SolverDebug("Creating DirectExecutor: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &DirectExecutor{config: config}
}

// ErrNoBinary is returned for a Command without a binary.
var ErrNoBinary = errors.New("binary is required")

// Execute runs a command directly on the host.
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	if cmd.Binary == "" {
		return nil, ErrNoBinary
	}

	timer := logging.StartTimer(logging.CategorySolver, "Process "+cmd.Binary)
	defer timer.Stop()

	logging.Solver("Executing: %s", cmd.CommandString())

	result := &ExecutionResult{
		ExitCode: -1,
		Command:  &cmd,
	}

	timeout := e.config.DefaultTimeout
	if cmd.Timeout > 0 {
		timeout = cmd.Timeout
	}
	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	if len(cmd.Environment) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Environment...)
	}

	maxOutput := e.config.MaxOutputBytes
	if maxOutput <= 0 {
		maxOutput = DefaultExecutorConfig().MaxOutputBytes
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: maxOutput}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: maxOutput}

	if cmd.Stdout != nil {
		execCmd.Stdout = cmd.Stdout
	} else {
		execCmd.Stdout = stdoutLimited
	}
	if cmd.Stderr != nil {
		execCmd.Stderr = io.MultiWriter(stderrLimited, cmd.Stderr)
	} else {
		execCmd.Stderr = stderrLimited
	}

	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.SolverWarn("Output truncated: %d bytes discarded", result.TruncatedBytes)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		result.Success = true
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", timeout)
		logging.SolverWarn("Process killed (timeout): %s after %s", cmd.Binary, timeout)
	case errors.Is(execCtx.Err(), context.Canceled):
		result.Success = true
		result.Killed = true
		result.KillReason = "context canceled"
		logging.SolverDebug("Process canceled: %s", cmd.Binary)
	case errors.As(err, &exitErr):
		result.Success = true
		result.ExitCode = exitErr.ExitCode()
		logging.SolverDebug("Process exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
	default:
		result.Success = false
		result.Error = err.Error()
		logging.SolverError("Process failed to run: %s - %v", cmd.Binary, err)
		return result, nil
	}

	logging.Solver("Process completed: %s -> exit=%d, duration=%s",
		cmd.Binary, result.ExitCode, result.Duration)
	return result, nil
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // full length, or exec reports a short write
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
