// Package importer stages tbox and abox sources into a workspace, running
// the OWL converters when the input is OWL and copying verbatim when it is
// already in rule/fact form.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/solver"
	"owldlv/internal/workspace"
)

// Formalism is the input format of an import.
type Formalism int

const (
	// OWL sources go through owl2dpm (tbox) and tstore2facts (abox).
	OWL Formalism = iota + 1

	// DPM sources are already rules and facts and are copied verbatim.
	DPM
)

func (f Formalism) String() string {
	switch f {
	case OWL:
		return "owl"
	case DPM:
		return "dpm"
	default:
		return "unknown"
	}
}

// ParseFormalism maps a command-line value to a Formalism.
func ParseFormalism(s string) (Formalism, error) {
	switch s {
	case "owl":
		return OWL, nil
	case "dpm":
		return DPM, nil
	default:
		return 0, failure.New(failure.KindConfig, "import", "input formalism not known")
	}
}

// KBFolders returns the tbox and abox folders of a knowledge-base folder.
func KBFolders(kb string) (tbox, abox string) {
	return filepath.Join(kb, "tbox"), filepath.Join(kb, "abox")
}

// Importer stages sources into workspaces.
type Importer struct {
	cfg  config.Config
	ws   *workspace.Manager
	exec solver.Executor
}

// New creates an Importer. exec runs the converter JVMs.
func New(cfg config.Config, ws *workspace.Manager, exec solver.Executor) *Importer {
	return &Importer{cfg: cfg, ws: ws, exec: exec}
}

// TBox re-stages src into the workspace tbox folder and returns that folder.
func (im *Importer) TBox(ctx context.Context, key workspace.Key, src string, f Formalism) (string, error) {
	timer := logging.StartTimer(logging.CategoryImport, "TBox import")
	defer timer.Stop()

	if err := requireFolder(src); err != nil {
		return "", err
	}
	dst, err := im.ws.EnsureClean(key, im.ws.Layout().TBoxFolder)
	if err != nil {
		return "", failure.Wrap(failure.KindInternal, "import tbox", err)
	}

	switch f {
	case DPM:
		n, err := workspace.CopyFiles(src, dst)
		if err != nil {
			return "", failure.Wrap(failure.KindInternal, "import tbox", err)
		}
		logging.Import("Copied %d tbox files from %s", n, src)
	case OWL:
		names, err := regularFiles(src)
		if err != nil {
			return "", failure.Wrap(failure.KindInternal, "import tbox", err)
		}
		jar := im.cfg.SolverPath(im.cfg.Converters.OWL2DPM)
		for _, name := range names {
			target := filepath.Join(dst, RuleFileName(name, im.cfg.Converters.RuleExt))
			args := []string{"-jar", jar, filepath.Join(src, name), target}
			if err := im.convert(ctx, args); err != nil {
				return "", err
			}
		}
		logging.Import("Converted %d OWL tbox files from %s", len(names), src)
	default:
		return "", failure.New(failure.KindConfig, "import tbox", "input formalism not known")
	}
	return dst, nil
}

// ABox re-stages src into the workspace abox folder and returns that folder.
func (im *Importer) ABox(ctx context.Context, key workspace.Key, src string, f Formalism) (string, error) {
	timer := logging.StartTimer(logging.CategoryImport, "ABox import")
	defer timer.Stop()

	if err := requireFolder(src); err != nil {
		return "", err
	}
	dst, err := im.ws.EnsureClean(key, im.ws.Layout().ABoxFolder)
	if err != nil {
		return "", failure.Wrap(failure.KindInternal, "import abox", err)
	}

	switch f {
	case DPM:
		n, err := workspace.CopyFiles(src, dst)
		if err != nil {
			return "", failure.Wrap(failure.KindInternal, "import abox", err)
		}
		logging.Import("Copied %d abox files from %s", n, src)
	case OWL:
		abs, err := filepath.Abs(src)
		if err != nil {
			return "", failure.Wrap(failure.KindInternal, "import abox", err)
		}
		args := append([]string{}, im.cfg.Converters.ABoxJVMFlags...)
		args = append(args, "-jar", im.cfg.SolverPath(im.cfg.Converters.TStore2Facts), abs, dst+string(filepath.Separator))
		if err := im.convert(ctx, args); err != nil {
			return "", err
		}
		logging.Import("Converted abox %s", src)
	default:
		return "", failure.New(failure.KindConfig, "import abox", "input formalism not known")
	}
	return dst, nil
}

func (im *Importer) convert(ctx context.Context, args []string) error {
	cmd := solver.Command{Binary: im.cfg.Converters.Java, Arguments: args}
	logging.ImportDebug("converter: %s", cmd.CommandString())

	result, err := im.exec.Execute(ctx, cmd)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "convert", err)
	}
	if !result.Ok() {
		reason := strings.TrimSpace(result.Stderr)
		if !result.Success {
			reason = result.Error
		} else if result.Killed {
			reason = result.KillReason
		}
		logging.ImportError("converter failed: %s: %s", cmd.CommandString(), reason)
		return failure.Wrap(failure.KindExternal, "convert",
			&solver.ExitError{Binary: cmd.Binary, Code: result.ExitCode, Reason: reason})
	}
	return nil
}

// RuleFileName names the converted rule file of an OWL source: every ".owl"
// becomes "_owl" and ext is appended.
func RuleFileName(name, ext string) string {
	return strings.ReplaceAll(name, ".owl", "_owl") + ext
}

func requireFolder(path string) error {
	if !workspace.IsDir(path) {
		return failure.New(failure.KindInput, "import", "%s is not a valid folder", path)
	}
	return nil
}

func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
