package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSettingCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setting",
		Short: "Read and write stored settings",
	}
	cmd.AddCommand(newSettingGetCommand(deps), newSettingSetCommand(deps))
	return cmd
}

type settingView struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newSettingGetCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting value",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("setting get requires exactly one key")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				value, err := l.admin.GetSetting(ctx, args[0])
				if err != nil {
					return err
				}
				view := settingView{Key: args[0], Value: value}
				return emit(deps, view, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, value)
					return err
				})
			})
		},
	}
}

func newSettingSetCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting value",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErrorf("setting set requires a key and a value")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				if err := l.admin.PutSetting(ctx, args[0], args[1]); err != nil {
					return err
				}
				view := settingView{Key: args[0], Value: args[1]}
				return emit(deps, view, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s=%s\n", view.Key, view.Value)
					return err
				})
			})
		},
	}
}
