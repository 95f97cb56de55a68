package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

func newStatsCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger-wide totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("stats does not accept positional arguments")
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				stats, err := l.stats.Compute(ctx)
				if err != nil {
					return err
				}
				view := toStatisticsView(stats)
				return emit(deps, view, func(w io.Writer) error { return writeStatistics(w, view) })
			})
		},
	}
}
