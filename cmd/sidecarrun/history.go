package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/sidecarrun"
)

func newHistoryCommand(s *settings, stdout io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent supervised runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := s.historyPath()
			if path == "" {
				return errors.New("run history is disabled")
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				_, err := fmt.Fprintln(stdout, "no runs recorded")
				return err
			}
			records, err := sidecarrun.ListHistory(cmd.Context(), path, limit)
			if err != nil {
				return err
			}
			return printHistory(stdout, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func printHistory(w io.Writer, records []sidecarrun.HistoryRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tCAUSE\tEXIT\tDETAIL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			r.Cause,
			r.ExitCode,
			r.Detail,
		)
	}
	return tw.Flush()
}
