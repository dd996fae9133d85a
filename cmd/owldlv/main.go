// Command owldlv answers queries over ontological knowledge bases by staging
// them into workspaces and running the DLV family of solvers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/solver"
)

const configFileName = "owldlv.yaml"

var (
	// Logger
	logger *zap.Logger

	// cfg is loaded once in PersistentPreRunE.
	cfg config.Config

	// newExecutor builds the process executor; replaced in tests.
	newExecutor = func(c config.Config) (solver.Executor, error) {
		ec, err := solver.ExecutorConfigFrom(c.Solver)
		if err != nil {
			return nil, err
		}
		return solver.NewDirectExecutorWithConfig(ec), nil
	}
)

// options holds the parsed command line.
type options struct {
	configPath string
	verbose    bool

	mode     string
	format   string
	run      string
	tbox     string
	abox     string
	kb       string
	query    string
	cautious bool
	brave    bool
	follow   bool
}

// modeFlags are the flags whose presence turns off pass-through.
var modeFlags = []string{"mode", "import", "run", "tbox", "abox", "kb", "query", "cautious", "brave", "follow"}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "owldlv [flags] [files...]",
		Short: "Ontology-based query answering over DLV",
		Long: `owldlv stages a knowledge base (tbox rules, abox facts) into a workspace
and answers a query over it with one of three strategies:

  pchase       existential solver on the full rule set
  skdlv        skolemized rules, facts pruned to the query's relevant predicates
  datarewclip  data rewriting before the existential solver

Without mode flags the arguments are passed to dlv as-is (with -silent).`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.CloseAll()
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !anyChanged(cmd, modeFlags) {
				return runPassThrough(cmd, args)
			}
			return runMode(cmd, opts, args)
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return failure.Wrap(failure.KindConfig, "flags", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default <base>/"+configFileName+")")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose console logging")

	f := root.Flags()
	f.StringVar(&opts.mode, "mode", "", "execution mode (obqa, clear-workspace, asp, load-results)")
	f.StringVar(&opts.format, "import", "", "import the knowledge base from a formalism (owl, dpm); obqa only")
	f.StringVar(&opts.run, "run", "", "answer the query with an approach (pchase, datarewclip, skdlv); obqa only")
	f.StringVar(&opts.tbox, "tbox", "", "tbox folder")
	f.StringVar(&opts.abox, "abox", "", "abox folder")
	f.StringVar(&opts.kb, "kb", "", "knowledge base folder with tbox/ and abox/ subfolders")
	f.StringVar(&opts.query, "query", "", "query file")
	f.BoolVar(&opts.cautious, "cautious", false, "cautious reasoning; asp only")
	f.BoolVar(&opts.brave, "brave", false, "brave reasoning; asp only")
	f.BoolVar(&opts.follow, "follow", false, "keep printing the result as new runs replace it; load-results only")

	root.AddCommand(newRunsCmd())
	return root
}

// setup loads the configuration and builds both loggers.
func setup(opts *options) error {
	path := opts.configPath
	if path == "" {
		path = filepath.Join(config.DefaultConfig().BasePath, configFileName)
	}
	loaded, err := config.Load(path)
	if err != nil {
		return failure.Wrap(failure.KindConfig, "config", err)
	}
	cfg = loaded

	zc := zap.NewProductionConfig()
	if opts.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := logging.Initialize(cfg.LogsDir(), cfg.Logging); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}
	logging.Boot("owldlv starting: base=%s config=%s", cfg.BasePath, path)
	logger.Debug("configuration loaded",
		zap.String("base", cfg.BasePath),
		zap.String("workspace", cfg.WorkspaceRoot()),
		zap.String("result", cfg.ResultPath()))
	return nil
}

func anyChanged(cmd *cobra.Command, names []string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(report(err))
	}
}

// report prints err the way every owldlv failure is shown and returns the
// exit status for its kind.
func report(err error) int {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error: interrupted")
		return failure.ExitCode(failure.KindExternal)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return failure.ExitCode(failure.KindOf(err))
}
