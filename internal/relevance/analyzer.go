package relevance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/solver"
)

// Analyzer computes the predicates relevant to a query under a rule set.
type Analyzer interface {
	Relevant(ctx context.Context, ruleFiles []string, queryFile string) (PredicateSet, error)
}

// New returns the analyzer selected by cfg.Relevance.Engine. The external
// analyzer writes its diagnostic stream into scratchDir.
func New(cfg config.Config, exec solver.Executor, scratchDir string) (Analyzer, error) {
	switch cfg.Relevance.Engine {
	case config.RelevanceMangle:
		return NewMangleAnalyzer(), nil
	case config.RelevanceExternal, "":
		return &ExternalAnalyzer{
			Exec:        exec,
			Binary:      cfg.SolverPath(cfg.Relevance.Binary),
			Args:        cfg.Relevance.Args,
			ScratchPath: filepath.Join(scratchDir, cfg.Relevance.ScratchFile),
		}, nil
	default:
		return nil, failure.New(failure.KindConfig, "relevance", "unknown relevance engine %q", cfg.Relevance.Engine)
	}
}

// ExternalAnalyzer runs a relevance tool that prints the relevant predicates,
// one per line, on its diagnostic stream.
type ExternalAnalyzer struct {
	Exec   solver.Executor
	Binary string

	// Args follow the rule files and the query.
	Args []string

	// ScratchPath receives the diagnostic stream. The caller owns its cleanup.
	ScratchPath string
}

// Relevant runs the tool and parses its diagnostic stream.
func (a *ExternalAnalyzer) Relevant(ctx context.Context, ruleFiles []string, queryFile string) (PredicateSet, error) {
	const op = "relevance"

	timer := logging.StartTimer(logging.CategoryRelevance, "ExternalAnalyzer.Relevant")
	defer timer.Stop()

	scratch, err := os.Create(a.ScratchPath)
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}

	args := make([]string, 0, len(ruleFiles)+len(a.Args)+1)
	args = append(args, ruleFiles...)
	args = append(args, queryFile)
	args = append(args, a.Args...)

	result, err := a.Exec.Execute(ctx, solver.Command{
		Binary:    a.Binary,
		Arguments: args,
		Stderr:    scratch,
	})
	closeErr := scratch.Close()
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}
	if !result.Ok() {
		reason := result.KillReason
		if !result.Success {
			reason = result.Error
		}
		exitErr := &solver.ExitError{Binary: a.Binary, Code: result.ExitCode, Reason: reason}
		return nil, failure.Wrap(failure.KindExternal, op, exitErr)
	}
	if closeErr != nil {
		return nil, failure.Wrap(failure.KindInternal, op, closeErr)
	}

	f, err := os.Open(a.ScratchPath)
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}
	defer f.Close()

	set, err := ReadPredicateSet(f)
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}
	logging.Relevance("External tool found %d relevant predicates", set.Len())
	logging.RelevanceDebug("relevant=%s", set)
	return set, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", failure.New(failure.KindInput, "relevance", "%s does not exist", path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
