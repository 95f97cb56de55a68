package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newResetCommand(deps commandDeps) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every account, transaction, user and setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("reset does not accept positional arguments")
			}
			if !yes {
				return usageErrorf("reset is destructive; pass --yes to confirm")
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				if err := l.admin.ClearAll(ctx); err != nil {
					return err
				}
				return emit(deps, map[string]bool{"cleared": true}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, "ledger cleared")
					return err
				})
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
