package pipeline

import (
	"context"

	"owldlv/internal/facts"
	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/relevance"
	"owldlv/internal/rules"
	"owldlv/internal/solver"
	"owldlv/internal/workspace"
)

// stagedInputs lists the staged rule and fact files of a workspace.
func (o *Orchestrator) stagedInputs(key workspace.Key) (ruleFiles, factFiles []string, err error) {
	if ruleFiles, err = facts.List(o.ws.TBox(key)); err != nil {
		return nil, nil, failure.Wrap(failure.KindInternal, "staged rules", err)
	}
	if factFiles, err = facts.List(o.ws.ABox(key)); err != nil {
		return nil, nil, failure.Wrap(failure.KindInternal, "staged facts", err)
	}
	return ruleFiles, factFiles, nil
}

func (o *Orchestrator) policyInvocation(solverName string, ruleFiles, factFiles []string, query string) solver.Invocation {
	return solver.Invocation{
		Solver: o.cfg.SolverPath(solverName),
		Rules:  ruleFiles,
		Facts:  factFiles,
		Query:  query,
		Flags:  o.cfg.Solver.PolicyFlags,
	}
}

// runPChase solves the full staged rules and facts with the existential solver.
func (o *Orchestrator) runPChase(ctx context.Context, t *tracker, key workspace.Key, query string) error {
	ruleFiles, factFiles, err := o.stagedInputs(key)
	if err != nil {
		return err
	}
	inv := o.policyInvocation(o.cfg.Solver.DLVEx, ruleFiles, factFiles, query)
	return o.solve(ctx, t, inv, solver.NewFileSink(o.cfg.ResultPath(), nil))
}

// runSkDLV skolemizes, prunes facts to the relevant predicates and solves
// with the plain solver. Every derived file lives in scratch, which is
// released whatever happens.
func (o *Orchestrator) runSkDLV(ctx context.Context, t *tracker, key workspace.Key, query string) error {
	scratch, err := acquireScratch(o.ws, key)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "scratch", err)
	}
	defer scratch.Release()

	stop := o.metrics.StageTimer("skolemize")
	skolemized, err := rules.SkolemizeDir(o.ws.TBox(key), scratch.Rules())
	stop()
	if err != nil {
		return err
	}
	t.log.Debug("skolemized %d rule files", len(skolemized))

	analyzer, err := o.analyzerFor(scratch.Dir())
	if err != nil {
		return err
	}
	stop = o.metrics.StageTimer("relevance")
	relevant, err := analyzer.Relevant(ctx, skolemized, query)
	stop()
	if err != nil {
		return err
	}
	t.out.Relevant = relevant.Len()
	o.metrics.RelevantPredicates(relevant.Len())

	stop = o.metrics.StageTimer("filter")
	all, err := facts.List(o.ws.ABox(key))
	if err != nil {
		stop()
		return failure.Wrap(failure.KindInternal, "filter", err)
	}
	kept, err := facts.Filter(o.ws.ABox(key), scratch.Facts(), relevant)
	stop()
	if err != nil {
		return failure.Wrap(failure.KindInternal, "filter", err)
	}
	t.out.KeptFacts = len(kept)
	o.metrics.FilteredFiles(len(kept), len(all)-len(kept))
	t.log.Info("relevance kept %d of %d fact files (%d predicates)", len(kept), len(all), relevant.Len())

	inv := o.policyInvocation(o.cfg.Solver.DLV, skolemized, kept, query)
	return o.solve(ctx, t, inv, solver.NewFileSink(o.cfg.ResultPath(), nil))
}

// runDataRewClip hands the staged inputs to the registered Rewriter and
// solves what it returns with the existential solver.
func (o *Orchestrator) runDataRewClip(ctx context.Context, t *tracker, key workspace.Key, query string) error {
	if o.rewriter == nil {
		return errNoRewriter()
	}
	scratch, err := acquireScratch(o.ws, key)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "scratch", err)
	}
	defer scratch.Release()

	ruleFiles, factFiles, err := o.stagedInputs(key)
	if err != nil {
		return err
	}

	stop := o.metrics.StageTimer("rewrite")
	rewritten, err := o.rewriter.Rewrite(ctx, RewriteRequest{
		Rules:   ruleFiles,
		Facts:   factFiles,
		Query:   query,
		Scratch: scratch.Dir(),
	})
	stop()
	if err != nil {
		if failure.KindOf(err) == failure.KindInternal {
			return failure.Wrap(failure.KindExternal, "datarewclip", err)
		}
		return err
	}
	if rewritten.Query == "" {
		rewritten.Query = query
	}

	inv := o.policyInvocation(o.cfg.Solver.DLVEx, rewritten.Rules, rewritten.Facts, rewritten.Query)
	return o.solve(ctx, t, inv, solver.NewFileSink(o.cfg.ResultPath(), nil))
}

func (o *Orchestrator) analyzerFor(scratchDir string) (relevance.Analyzer, error) {
	if o.analyzer != nil {
		return o.analyzer, nil
	}
	a, err := relevance.New(o.cfg, o.exec, scratchDir)
	if err != nil {
		return nil, err
	}
	logging.RelevanceDebug("using %T", a)
	return a, nil
}
