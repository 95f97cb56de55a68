package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/bamboobank/bamboo/internal/config"
	bamboolog "github.com/bamboobank/bamboo/internal/log"
	"github.com/bamboobank/bamboo/internal/metrics"
	"github.com/bamboobank/bamboo/internal/seed"
	"github.com/bamboobank/bamboo/internal/storage"
)

const defaultCommandTimeout = 30 * time.Second

var loadConfigFn = config.Load

// ledger is everything one command invocation needs, built from config and
// torn down by close.
type ledger struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	store    *storage.Store
	accounts *app.AccountService
	journal  *app.JournalService
	users    *app.UserService
	stats    *app.StatsService
	admin    *app.AdminService
	seeder   *seed.Seeder

	closers []io.Closer
}

func (l *ledger) close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		_ = l.closers[i].Close()
	}
}

func openLedger(deps commandDeps, flags config.FlagOverrides) (*ledger, error) {
	loadOpts := config.LoadOptions{Flags: flags}
	if deps.globals != nil {
		if configPath := strings.TrimSpace(deps.globals.ConfigPath); configPath != "" {
			loadOpts.ConfigPath = configPath
		}
		if storePath := strings.TrimSpace(deps.globals.StorePath); storePath != "" {
			loadOpts.Flags.StorePath = &storePath
		}
	}

	cfg, err := loadConfigFn(loadOpts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := bamboolog.New(bamboolog.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Compress:  cfg.Logging.Compress,
	}, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	l := &ledger{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(logger),
		closers: []io.Closer{logCloser},
	}

	store, err := storage.Open(cfg.Store.Path)
	if err != nil {
		l.close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	l.store = store
	l.closers = append(l.closers, store)

	opts := app.Options{
		Logger:          logger,
		Metrics:         l.metrics,
		DefaultCurrency: cfg.Ledger.DefaultCurrency,
		DefaultCountry:  cfg.Ledger.DefaultCountry,
		ReferencePrefix: cfg.Ledger.ReferencePrefix,
		ListLimit:       cfg.Ledger.ListLimit,
		NodeID:          cfg.Ledger.NodeID,
	}
	l.accounts = app.NewAccountService(store, opts)
	l.journal, err = app.NewJournalService(store, l.accounts, opts)
	if err != nil {
		l.close()
		return nil, err
	}
	l.users = app.NewUserService(store, opts)
	l.stats = app.NewStatsService(store, opts)
	l.admin = app.NewAdminService(store, opts)
	l.seeder = seed.New(l.accounts, l.journal, l.users, logger)
	return l, nil
}

func withLedger(cmdCtx context.Context, deps commandDeps, fn func(context.Context, *ledger) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx, commandTimeout(deps))
	defer cancel()

	l, err := openLedger(deps, config.FlagOverrides{})
	if err != nil {
		return mapCommandError(err)
	}
	defer l.close()

	return mapCommandError(fn(ctx, l))
}

func commandTimeout(deps commandDeps) time.Duration {
	if deps.globals != nil && deps.globals.Timeout > 0 {
		return deps.globals.Timeout
	}
	return defaultCommandTimeout
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// emit prints value as JSON under --json, nothing under --quiet, and the
// text form otherwise.
func emit(deps commandDeps, value any, text func(io.Writer) error) error {
	if deps.globals.JSON {
		return printJSON(deps.out, value)
	}
	if deps.globals.Quiet {
		return nil
	}
	return text(deps.out)
}
