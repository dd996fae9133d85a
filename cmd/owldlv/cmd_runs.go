package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"owldlv/internal/failure"
	"owldlv/internal/journal"
)

func newRunsCmd() *cobra.Command {
	var limit int
	var id string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled runs, newest first",
		Long: `Lists the runs recorded in the run journal. With --id, prints the state
transitions of a single run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.JournalPath()
			if path == "" {
				return failure.New(failure.KindConfig, "runs", "run journal is disabled")
			}
			j, err := journal.Open(path)
			if err != nil {
				return failure.Wrap(failure.KindInternal, "runs", err)
			}
			defer j.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if id != "" {
				return printTransitions(w, j, id)
			}
			records, err := j.Recent(limit)
			if err != nil {
				return failure.Wrap(failure.KindInternal, "runs", err)
			}
			fmt.Fprintln(w, "ID\tSTARTED\tMODE\tSTRATEGY\tSTATE\tDURATION\tERROR")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode, dash(r.Strategy),
					r.State, runDuration(r), dash(r.Error))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().StringVar(&id, "id", "", "show the transitions of one run")
	return cmd
}

func printTransitions(w *tabwriter.Writer, j *journal.Journal, id string) error {
	if _, err := j.Get(id); err != nil {
		return failure.Wrap(failure.KindInput, "runs", err)
	}
	transitions, err := j.Transitions(id)
	if err != nil {
		return failure.Wrap(failure.KindInternal, "runs", err)
	}
	fmt.Fprintln(w, "STATE\tAT")
	for _, tr := range transitions {
		fmt.Fprintf(w, "%s\t%s\n", tr.State, tr.At.Local().Format(time.RFC3339Nano))
	}
	return nil
}

func runDuration(r journal.Record) string {
	if r.FinishedAt.IsZero() {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
