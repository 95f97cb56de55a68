package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bamboobank/bamboo/internal/config"
	debugpkg "github.com/bamboobank/bamboo/internal/debug"
	"github.com/spf13/cobra"
)

func newDebugCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "debug",
		Short:   "Diagnostics helpers",
		Example: "  bamboo debug bundle --output ./bamboo-debug.json",
	}
	cmd.AddCommand(newDebugBundleCommand(deps))
	return cmd
}

func newDebugBundleCommand(deps commandDeps) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Collect ledger diagnostics into a JSON bundle",
		Example: "  bamboo debug bundle --output ./bamboo-debug.json\n" +
			"  bamboo --json debug bundle --output ./bamboo-debug.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("debug bundle does not accept positional arguments")
			}
			if strings.TrimSpace(outputPath) == "" {
				return usageErrorf("debug bundle requires --output")
			}

			bundle := collectDiagnostics(cmd.Context(), deps)
			if err := debugpkg.WriteBundle(outputPath, bundle); err != nil {
				return mapCommandError(err)
			}
			if deps.globals.JSON {
				return printJSON(deps.out, map[string]any{"output": outputPath, "healthy": bundle.Healthy()})
			}
			if deps.globals.Quiet {
				return nil
			}
			_, err := fmt.Fprintf(deps.out, "debug bundle written: %s\n", outputPath)
			return mapCommandError(err)
		},
	}
	cmd.Flags().StringVar(&outputPath, "output", "", "Output JSON bundle path")
	return cmd
}

func newDoctorCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config and store health",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("doctor does not accept positional arguments")
			}

			bundle := collectDiagnostics(cmd.Context(), deps)
			if deps.globals.JSON {
				if err := printJSON(deps.out, map[string]any{"checks": bundle.Checks}); err != nil {
					return mapCommandError(err)
				}
			} else if !deps.globals.Quiet {
				for _, check := range bundle.Checks {
					state := "ok"
					if !check.OK {
						state = "fail"
					}
					if _, err := fmt.Fprintf(deps.out, "%s: %s (%s)\n", check.Name, state, check.Message); err != nil {
						return mapCommandError(err)
					}
				}
			}

			if !bundle.Healthy() {
				return asExitError(ExitCodeGeneric, fmt.Errorf("doctor: one or more checks failed"))
			}
			return nil
		},
	}
}

// collectDiagnostics never fails; each failure lands in the bundle as a check.
func collectDiagnostics(cmdCtx context.Context, deps commandDeps) debugpkg.Bundle {
	bundle := debugpkg.NewBundle(time.Now())
	bundle.Version = map[string]string{
		"version":    deps.build.Version,
		"commit":     deps.build.Commit,
		"build_time": deps.build.BuildTime,
	}

	loadOpts := config.LoadOptions{}
	if configPath := strings.TrimSpace(deps.globals.ConfigPath); configPath != "" {
		loadOpts.ConfigPath = configPath
	}
	if _, err := loadConfigFn(loadOpts); err != nil {
		bundle.AddCheck("config", err, "")
		return bundle
	}
	bundle.AddCheck("config", nil, "loaded")

	l, err := openLedger(deps, config.FlagOverrides{})
	if err != nil {
		bundle.AddCheck("store", err, "")
		return bundle
	}
	defer l.close()
	bundle.AddCheck("store", nil, l.store.Path())

	ctx, cancel := context.WithTimeout(cmdCtx, commandTimeout(deps))
	defer cancel()

	info := &debugpkg.StoreInfo{Path: l.store.Path()}
	info.SchemaVersion, err = l.store.SchemaVersion()
	bundle.AddCheck("schema", err, fmt.Sprintf("version %d", info.SchemaVersion))

	stats, err := l.stats.Compute(ctx)
	bundle.AddCheck("ledger", err, "readable")
	if err == nil {
		info.Accounts = stats.AccountCount
		info.Transactions = stats.TransactionCount
	}
	users, err := l.users.ListUsers(ctx)
	bundle.AddCheck("users", err, "readable")
	if err == nil {
		info.Users = len(users)
	}
	bundle.Store = info
	return bundle
}
