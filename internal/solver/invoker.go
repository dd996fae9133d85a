package solver

import (
	"context"
	"fmt"
	"strings"

	"owldlv/internal/failure"
	"owldlv/internal/logging"
)

// ExitError reports a solver that ran and failed.
type ExitError struct {
	Binary string
	Code   int
	Reason string // kill reason or last stderr line
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.Code)
	if e.Code < 0 {
		msg = fmt.Sprintf("%s did not complete", e.Binary)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Invoker runs solver invocations and routes their output to a Sink.
type Invoker struct {
	exec Executor
}

// NewInvoker creates an Invoker backed by exec.
func NewInvoker(exec Executor) *Invoker {
	return &Invoker{exec: exec}
}

// Solve runs the invocation synchronously. Standard output goes to sink;
// on any failure the sink is aborted so no result artifact remains, and the
// returned error is a failure.KindExternal carrying an *ExitError.
func (i *Invoker) Solve(ctx context.Context, inv Invocation, sink Sink) (*ExecutionResult, error) {
	const op = "solve"

	w, err := sink.Open()
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}

	cmd := inv.Command()
	cmd.Stdout = w
	result, err := i.exec.Execute(ctx, cmd)
	if err != nil {
		sink.Abort()
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}

	if !result.Ok() {
		if abortErr := sink.Abort(); abortErr != nil {
			logging.SolverWarn("Abort result sink: %v", abortErr)
		}
		exitErr := &ExitError{Binary: inv.Solver, Code: result.ExitCode}
		switch {
		case !result.Success:
			exitErr.Reason = result.Error
		case result.Killed:
			exitErr.Code = -1
			exitErr.Reason = result.KillReason
		default:
			exitErr.Reason = lastLine(result.Stderr)
		}
		logging.SolverError("%v", exitErr)
		return result, failure.Wrap(failure.KindExternal, op, exitErr)
	}

	if err := sink.Commit(); err != nil {
		return result, failure.Wrap(failure.KindInternal, op, err)
	}
	return result, nil
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n ")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
