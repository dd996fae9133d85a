// Package results shows the result artifact of the last solver run.
package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/solver"
)

// Show opens the result artifact at path. With a viewer configured the
// viewer is launched on the file and waited for; without one the file is
// copied to out.
func Show(ctx context.Context, exec solver.Executor, viewer, path string, out io.Writer) error {
	const op = "load-results"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return failure.New(failure.KindInput, op, "%s does not exist", path)
		}
		return failure.Wrap(failure.KindInternal, op, err)
	}

	if viewer == "" {
		return printFile(path, out)
	}

	cmd := solver.Command{Binary: viewer, Arguments: []string{path}}
	logging.Results("Launching viewer: %s", cmd.CommandString())
	result, err := exec.Execute(ctx, cmd)
	if err != nil {
		return failure.Wrap(failure.KindInternal, op, err)
	}
	if !result.Ok() {
		reason := strings.TrimSpace(result.Stderr)
		if !result.Success {
			reason = result.Error
		}
		return failure.Wrap(failure.KindExternal, op,
			&solver.ExitError{Binary: viewer, Code: result.ExitCode, Reason: reason})
	}
	return nil
}

func printFile(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "load-results", err)
	}
	defer f.Close()
	if _, err := io.Copy(out, f); err != nil {
		return failure.Wrap(failure.KindInternal, "load-results", fmt.Errorf("print %s: %w", path, err))
	}
	return nil
}
