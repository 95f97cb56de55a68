package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newDemoCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Demonstration data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the demonstration accounts, user and history",
		Long:  "Creates any missing demo accounts and posts their history. Running it again on a complete ledger changes nothing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("demo seed does not accept positional arguments")
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				report, err := l.seeder.Run(ctx)
				if err != nil {
					return err
				}
				return emit(deps, report, func(w io.Writer) error {
					if report.Complete {
						_, err := fmt.Fprintln(w, "demo data already present")
						return err
					}
					if _, err := fmt.Fprintf(w, "accounts created: %d, transactions posted: %d\n",
						len(report.AccountsCreated), report.TransactionsPosted); err != nil {
						return err
					}
					for _, failure := range report.Failures {
						if _, err := fmt.Fprintf(w, "failed: %s\n", failure); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	})
	return cmd
}
