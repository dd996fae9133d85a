package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"owldlv/internal/failure"
	"owldlv/internal/journal"
	"owldlv/internal/metrics"
	"owldlv/internal/pipeline"
	"owldlv/internal/results"
)

// runMode validates the flag combination for the selected mode and runs it.
func runMode(cmd *cobra.Command, opts *options, args []string) error {
	if opts.mode == "" {
		return failure.New(failure.KindConfig, "flags", "execution mode not set")
	}
	mode, err := pipeline.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	if mode != pipeline.ASP && len(args) > 0 {
		return failure.New(failure.KindConfig, "flags", "commands not found (%v)", args)
	}
	if opts.follow && mode != pipeline.LoadResults {
		return failure.New(failure.KindConfig, "flags", "--follow is valid only in 'load-results' mode")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch mode {
	case pipeline.OBQA:
		return runOBQA(ctx, opts, out)
	case pipeline.ClearWorkspace:
		return runClearWorkspace(out)
	case pipeline.ASP:
		return runASP(ctx, opts, args, out)
	default:
		return runLoadResults(ctx, opts, out)
	}
}

// obqaRun turns the obqa flags into a pipeline run.
func obqaRun(opts *options) (pipeline.Run, error) {
	if opts.cautious || opts.brave {
		return pipeline.Run{}, failure.New(failure.KindConfig, "obqa", "reasoning policy (brave or cautious) can be specified only in 'asp' mode")
	}
	r := pipeline.Run{TBox: opts.tbox, ABox: opts.abox, KB: opts.kb, Query: opts.query}
	var err error
	if opts.format != "" {
		if r.Import, err = pipeline.ParseFormalism(opts.format); err != nil {
			return r, err
		}
	}
	if opts.run != "" {
		if r.Strategy, err = pipeline.ParseStrategy(opts.run); err != nil {
			return r, err
		}
	}
	return r, r.Validate()
}

func runOBQA(ctx context.Context, opts *options, out io.Writer) error {
	r, err := obqaRun(opts)
	if err != nil {
		return err
	}

	exec, err := newExecutor(cfg)
	if err != nil {
		return failure.Wrap(failure.KindConfig, "solver", err)
	}

	var recorder journal.Recorder = journal.Discard
	if path := cfg.JournalPath(); path != "" {
		lazy := journal.NewLazy(path)
		defer func() {
			if err := lazy.Close(); err != nil {
				logger.Warn("journal close failed", zap.Error(err))
			}
		}()
		recorder = lazy
	}

	o := pipeline.New(cfg, exec,
		pipeline.WithJournal(recorder),
		pipeline.WithMetrics(metrics.New()),
		pipeline.WithProgress(out),
		pipeline.WithStdout(out),
	)
	outcome, err := o.Run(ctx, r)
	if outcome != nil {
		logger.Debug("obqa run finished",
			zap.String("run_id", outcome.RunID),
			zap.Stringer("state", outcome.State),
			zap.Bool("reused", outcome.Reused),
			zap.Int("relevant_predicates", outcome.Relevant),
			zap.Int("kept_fact_files", outcome.KeptFacts),
			zap.Duration("duration", outcome.Duration()))
	}
	return err
}

func runClearWorkspace(out io.Writer) error {
	exec, err := newExecutor(cfg)
	if err != nil {
		return failure.Wrap(failure.KindConfig, "solver", err)
	}
	fmt.Fprintln(out, "Started...")
	o := pipeline.New(cfg, exec)
	if err := o.ClearWorkspace(); err != nil {
		return err
	}
	logger.Debug("workspace cleared", zap.String("root", o.Workspace().Root()))
	return nil
}

func runASP(ctx context.Context, opts *options, args []string, out io.Writer) error {
	policy, err := pipeline.PolicyFrom(opts.cautious, opts.brave)
	if err != nil {
		return err
	}
	if opts.format != "" || opts.tbox != "" || opts.abox != "" || opts.kb != "" || opts.run != "" || opts.query != "" {
		return failure.New(failure.KindConfig, "asp", "options not valid")
	}

	exec, err := newExecutor(cfg)
	if err != nil {
		return failure.Wrap(failure.KindConfig, "solver", err)
	}
	var recorder journal.Recorder = journal.Discard
	if path := cfg.JournalPath(); path != "" {
		lazy := journal.NewLazy(path)
		defer lazy.Close()
		recorder = lazy
	}

	fmt.Fprintln(out, "Started...")
	o := pipeline.New(cfg, exec,
		pipeline.WithJournal(recorder),
		pipeline.WithProgress(out),
		pipeline.WithStdout(out),
	)
	_, err = o.ASP(ctx, args, policy)
	return err
}

func runLoadResults(ctx context.Context, opts *options, out io.Writer) error {
	path := cfg.ResultPath()
	if !opts.follow {
		exec, err := newExecutor(cfg)
		if err != nil {
			return failure.Wrap(failure.KindConfig, "solver", err)
		}
		return results.Show(ctx, exec, cfg.Results.Viewer, path, out)
	}

	f, err := results.NewFollower(path, out)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "load-results", err)
	}
	logger.Debug("following result", zap.String("path", path))
	if err := f.Follow(ctx); err != nil && ctx.Err() == nil {
		return failure.Wrap(failure.KindInternal, "load-results", err)
	}
	return nil
}

// runPassThrough hands args to the plain solver unchanged.
func runPassThrough(cmd *cobra.Command, args []string) error {
	exec, err := newExecutor(cfg)
	if err != nil {
		return failure.Wrap(failure.KindConfig, "solver", err)
	}
	out := cmd.OutOrStdout()
	o := pipeline.New(cfg, exec, pipeline.WithProgress(out), pipeline.WithStdout(out))
	return o.PassThrough(cmd.Context(), args)
}
