// Package pipeline sequences staging, rule rewriting, relevance pruning and
// solving for one query-answering run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/importer"
	"owldlv/internal/journal"
	"owldlv/internal/logging"
	"owldlv/internal/metrics"
	"owldlv/internal/relevance"
	"owldlv/internal/solver"
	"owldlv/internal/workspace"
)

// Orchestrator runs pipelines. It is not safe for concurrent use.
type Orchestrator struct {
	cfg      config.Config
	ws       *workspace.Manager
	exec     solver.Executor
	importer *importer.Importer
	invoker  *solver.Invoker
	journal  journal.Recorder
	metrics  *metrics.Recorder
	analyzer relevance.Analyzer
	rewriter Rewriter
	progress io.Writer
	stdout   io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRewriter registers the datarewclip transformation.
func WithRewriter(r Rewriter) Option {
	return func(o *Orchestrator) { o.rewriter = r }
}

// WithJournal records runs in j.
func WithJournal(j journal.Recorder) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithMetrics records run metrics in m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithAnalyzer fixes the relevance analyzer instead of choosing one from
// the configuration.
func WithAnalyzer(a relevance.Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithProgress sets where phase progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// WithStdout sets where asp and pass-through solver output is mirrored.
func WithStdout(w io.Writer) Option {
	return func(o *Orchestrator) { o.stdout = w }
}

// New creates an Orchestrator over cfg, running processes through exec.
func New(cfg config.Config, exec solver.Executor, opts ...Option) *Orchestrator {
	ws := workspace.NewManager(cfg)
	o := &Orchestrator{
		cfg:      cfg,
		ws:       ws,
		exec:     exec,
		importer: importer.New(cfg, ws, exec),
		invoker:  solver.NewInvoker(exec),
		journal:  journal.Discard,
		metrics:  metrics.New(),
		progress: io.Discard,
		stdout:   io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Workspace exposes the workspace manager.
func (o *Orchestrator) Workspace() *workspace.Manager { return o.ws }

// Metrics exposes the metrics recorder.
func (o *Orchestrator) Metrics() *metrics.Recorder { return o.metrics }

// tracker drives one run through its state machine, mirroring every
// transition to the log and the journal.
type tracker struct {
	o     *Orchestrator
	out   *Outcome
	log   *logging.RunLogger
	mode  Mode
	strat Strategy
}

func (o *Orchestrator) begin(mode Mode, strat Strategy, rec journal.Record) *tracker {
	id := journal.NewRunID()
	t := &tracker{
		o:     o,
		out:   &Outcome{RunID: id, State: Idle, States: []State{Idle}, Started: time.Now()},
		log:   logging.WithRun(logging.CategoryPipeline, id),
		mode:  mode,
		strat: strat,
	}
	rec.ID = id
	rec.Mode = mode.String()
	rec.Strategy = strat.String()
	rec.State = Idle.String()
	rec.StartedAt = t.out.Started
	if err := o.journal.Begin(rec); err != nil {
		logging.JournalWarn("begin %s: %v", id, err)
	}
	t.log.Info("run started: mode=%s strategy=%s", mode, strat)
	return t
}

func (t *tracker) to(s State) error {
	if !CanTransition(t.out.State, s) {
		return failure.New(failure.KindInternal, "pipeline", "illegal transition %s -> %s", t.out.State, s)
	}
	t.log.Debug("%s -> %s", t.out.State, s)
	t.out.State = s
	t.out.States = append(t.out.States, s)
	if s.Terminal() {
		return nil
	}
	if err := t.o.journal.Transition(t.out.RunID, s.String()); err != nil {
		logging.JournalWarn("transition %s: %v", t.out.RunID, err)
	}
	return nil
}

// finish moves the run to its terminal state from err and records it.
func (t *tracker) finish(err error) (*Outcome, error) {
	t.out.Finished = time.Now()

	final, kind, msg, outcome := Completed, "", "", "completed"
	if err != nil {
		final, kind, msg, outcome = Failed, failure.KindOf(err).String(), err.Error(), "failed"
	}
	if terr := t.to(final); terr != nil && err == nil {
		err = terr
		final, kind, msg, outcome = Failed, failure.KindInternal.String(), terr.Error(), "failed"
		t.out.State = Failed
	}

	if jerr := t.o.journal.Finish(t.out.RunID, final.String(), kind, msg); jerr != nil {
		logging.JournalWarn("finish %s: %v", t.out.RunID, jerr)
	}
	t.o.metrics.RunFinished(t.mode.String(), t.strat.String(), outcome)
	if merr := t.o.metrics.WriteTextfile(t.o.cfg.MetricsPath()); merr != nil {
		logging.PipelineWarn("metrics: %v", merr)
	}

	if err != nil {
		t.log.Error("run failed after %s: %v", t.out.Duration(), err)
		return t.out, err
	}
	t.log.Info("run completed in %s", t.out.Duration())
	return t.out, nil
}

func (o *Orchestrator) progressf(format string, args ...any) {
	fmt.Fprintf(o.progress, format, args...)
}

func (o *Orchestrator) progressDone(start time.Time) {
	o.progressf("Completed in %.3f secs\n", time.Since(start).Seconds())
}

// Run executes an obqa run. Flag combinations, strategy prerequisites and
// the input query and folders are checked before the filesystem is touched;
// the returned Outcome is nil only for those.
func (o *Orchestrator) Run(ctx context.Context, r Run) (*Outcome, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Strategy == DataRewClip && o.rewriter == nil {
		return nil, errNoRewriter()
	}

	tbox, abox := r.sources()
	key, err := workspace.Resolve(tbox)
	if err != nil {
		return nil, failure.Wrap(failure.KindConfig, "obqa", err)
	}
	query := ""
	if r.Strategy != 0 {
		if query, err = absQuery(r.Query); err != nil {
			return nil, err
		}
	}
	for _, dir := range []string{tbox, abox} {
		if !workspace.IsDir(dir) {
			return nil, failure.New(failure.KindInput, "obqa", "%s is not a valid folder", dir)
		}
	}

	t := o.begin(OBQA, r.Strategy, journal.Record{
		TBox: tbox, ABox: abox, Query: query, ResultPath: o.cfg.ResultPath(),
	})
	t.out.Key = key
	o.progressf("Started...\n")

	if err := o.stage(ctx, t, r, key, tbox, abox); err != nil {
		return t.finish(err)
	}

	o.progressf("Running... ")
	if r.Strategy == 0 {
		o.progressf("Not required\n")
		return t.finish(nil)
	}
	if err := t.to(Running); err != nil {
		return t.finish(err)
	}

	start := time.Now()
	switch r.Strategy {
	case PChase:
		err = o.runPChase(ctx, t, key, query)
	case SkDLV:
		err = o.runSkDLV(ctx, t, key, query)
	case DataRewClip:
		err = o.runDataRewClip(ctx, t, key, query)
	default:
		err = failure.New(failure.KindConfig, "run", "approach not known")
	}
	if err == nil {
		o.progressDone(start)
	} else {
		o.progressf("Failed\n")
	}
	return t.finish(err)
}

// stage imports or reuses the tbox and abox folders.
func (o *Orchestrator) stage(ctx context.Context, t *tracker, r Run, key workspace.Key, tbox, abox string) error {
	layout := o.ws.Layout()
	o.progressf("Input preprocessing... ")
	start := time.Now()
	defer o.metrics.StageTimer("import")()

	switch {
	case r.Import != 0:
		if err := t.to(Importing); err != nil {
			return err
		}
		if _, err := o.importer.TBox(ctx, key, tbox, r.Import); err != nil {
			return err
		}
		if _, err := o.importer.ABox(ctx, key, abox, r.Import); err != nil {
			return err
		}
		o.progressDone(start)

	case !o.ws.HasStaged(key, layout.TBoxFolder, layout.ABoxFolder):
		if err := t.to(Importing); err != nil {
			return err
		}
		if _, _, err := o.ws.EnsureExists(key, layout.TBoxFolder, tbox); err != nil {
			return err
		}
		if _, _, err := o.ws.EnsureExists(key, layout.ABoxFolder, abox); err != nil {
			return err
		}
		o.progressDone(start)

	default:
		t.out.Reused = true
		o.progressf("Not required\n")
	}
	return t.to(Staged)
}

// ClearWorkspace deletes the whole workspace root.
func (o *Orchestrator) ClearWorkspace() error {
	if err := o.ws.Clear(); err != nil {
		return failure.Wrap(failure.KindInternal, "clear-workspace", err)
	}
	return nil
}

// ASP runs the plain solver on files under the given policy, writing the
// result artifact and mirroring it to stdout.
func (o *Orchestrator) ASP(ctx context.Context, files []string, policy Policy) (*Outcome, error) {
	flag := o.cfg.Solver.CautiousFlag
	switch policy {
	case Cautious:
	case Brave:
		flag = o.cfg.Solver.BraveFlag
	default:
		return nil, failure.New(failure.KindConfig, "asp", "no reasoning strategy (neither brave nor cautious)")
	}

	t := o.begin(ASP, 0, journal.Record{ResultPath: o.cfg.ResultPath()})
	if err := t.to(Staged); err != nil {
		return t.finish(err)
	}
	if err := t.to(Running); err != nil {
		return t.finish(err)
	}

	inv := solver.Invocation{
		Solver: o.cfg.SolverPath(o.cfg.Solver.DLV),
		Rules:  files,
		Flags:  []string{flag},
	}
	if o.cfg.Solver.QuietFlag != "" {
		inv.Leading = []string{o.cfg.Solver.QuietFlag}
	}
	o.progressf("Running... ")
	start := time.Now()
	err := o.solve(ctx, t, inv, solver.NewFileSink(o.cfg.ResultPath(), o.stdout))
	if err == nil {
		o.progressDone(start)
	}
	return t.finish(err)
}

// PassThrough runs the plain solver quietly on args, streaming its output
// to stdout. It is not journaled.
func (o *Orchestrator) PassThrough(ctx context.Context, args []string) error {
	inv := solver.Invocation{Solver: o.cfg.SolverPath(o.cfg.Solver.DLV), Rules: args}
	if o.cfg.Solver.QuietFlag != "" {
		inv.Leading = []string{o.cfg.Solver.QuietFlag}
	}
	o.progressf("Running... ")
	start := time.Now()
	if _, err := o.invoker.Solve(ctx, inv, solver.StreamSink{W: o.stdout}); err != nil {
		return err
	}
	o.progressDone(start)
	return nil
}

// solve runs inv into sink and records the exit status.
func (o *Orchestrator) solve(ctx context.Context, t *tracker, inv solver.Invocation, sink solver.Sink) error {
	defer o.metrics.StageTimer("solve")()

	t.log.Info("solver: %s", inv.Command().CommandString())
	result, err := o.invoker.Solve(ctx, inv, sink)
	if result != nil {
		o.metrics.SolverExit(result.ExitCode)
	}
	if err != nil {
		var exitErr *solver.ExitError
		if errors.As(err, &exitErr) {
			t.log.WithField("exit_code", exitErr.Code).Error("solver failed: %s", exitErr.Reason)
		}
		return err
	}
	t.out.ResultPath = o.cfg.ResultPath()
	return nil
}
