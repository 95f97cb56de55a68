package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bamboobank/bamboo/internal/config"
	"github.com/bamboobank/bamboo/internal/metrics"
	"github.com/spf13/cobra"
)

const (
	defaultBalanceRefresh = 15 * time.Second
	metricsShutdownGrace  = 5 * time.Second
)

func newMetricsCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Prometheus exposition",
	}
	cmd.AddCommand(newMetricsServeCommand(deps))
	return cmd
}

func newMetricsServeCommand(deps commandDeps) *cobra.Command {
	var (
		addr    string
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /metrics until interrupted",
		Long: "Serves the ledger metrics until interrupted. Balance and journal gauges are\n" +
			"re-read from the store every --refresh interval. Posting counters and latency\n" +
			"only cover postings made by this process; other bamboo invocations keep their own.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("metrics serve does not accept positional arguments")
			}
			if refresh <= 0 {
				return usageErrorf("--refresh must be positive")
			}

			flags := config.FlagOverrides{}
			if trimmed := strings.TrimSpace(addr); trimmed != "" {
				flags.MetricsAddr = &trimmed
			}
			l, err := openLedger(deps, flags)
			if err != nil {
				return mapCommandError(err)
			}
			defer l.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := refreshGauges(ctx, l); err != nil {
				return mapCommandError(err)
			}

			server := l.metrics.StartServer(l.cfg.Metrics.Addr)
			if !deps.globals.Quiet && !deps.globals.JSON {
				fmt.Fprintf(deps.out, "serving metrics on http://%s/metrics\n", l.cfg.Metrics.Addr)
			}

			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case <-ticker.C:
					if err := refreshGauges(ctx, l); err != nil {
						l.logger.Warn("refresh ledger gauges", slog.String("error", err.Error()))
					}
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownGrace)
			defer cancel()
			if err := metrics.Shutdown(shutdownCtx, server); err != nil {
				return mapCommandError(fmt.Errorf("shutdown metrics server: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to metrics.addr)")
	cmd.Flags().DurationVar(&refresh, "refresh", defaultBalanceRefresh, "Interval between gauge refreshes")
	return cmd
}

// refreshGauges re-reads balances and journal counts from the store. A
// cancelled context is not an error; the server is shutting down.
func refreshGauges(ctx context.Context, l *ledger) error {
	accounts, err := l.accounts.ListAccounts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	stats, err := l.stats.Compute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	l.metrics.ResetBalances()
	for _, account := range accounts {
		l.metrics.SetAccountBalance(account.Number, account.Currency, account.Balance)
	}
	counts := make(map[string]int, len(stats.CountByKind))
	for kind, n := range stats.CountByKind {
		counts[string(kind)] = n
	}
	l.metrics.SetJournalCounts(counts)
	return nil
}
