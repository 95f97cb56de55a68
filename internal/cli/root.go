package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type GlobalOptions struct {
	JSON       bool
	Quiet      bool
	StorePath  string
	ConfigPath string
	Timeout    time.Duration
}

type commandDeps struct {
	out     io.Writer
	globals *GlobalOptions
	build   BuildInfo
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &GlobalOptions{}
	deps := commandDeps{
		out:     out,
		globals: globals,
		build:   build,
	}

	cmd := &cobra.Command{
		Use:           "bamboo",
		Short:         "Bamboo ledger: accounts, transactions and statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.BoolVar(&globals.JSON, "json", false, "Print machine-readable JSON output")
	flags.BoolVar(&globals.Quiet, "quiet", false, "Suppress non-essential output")
	flags.StringVar(&globals.StorePath, "store", "", "Path to the ledger store file")
	flags.StringVar(&globals.ConfigPath, "config", "", "Path to config.toml")
	flags.DurationVar(&globals.Timeout, "timeout", defaultCommandTimeout, "Timeout for one command")

	cmd.AddCommand(
		newAccountCommand(deps),
		newTxCommand(deps),
		newUserCommand(deps),
		newStatsCommand(deps),
		newSettingCommand(deps),
		newResetCommand(deps),
		newDemoCommand(deps),
		newMetricsCommand(deps),
		newDebugCommand(deps),
		newDoctorCommand(deps),
		newVersionCommand(deps),
	)
	cmd.InitDefaultCompletionCmd()
	return cmd
}
