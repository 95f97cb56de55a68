// Package metrics exposes ledger activity as Prometheus metrics on a private
// registry. A nil *Collector is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "bamboo"

type Collector struct {
	registry           *prometheus.Registry
	transactionsPosted *prometheus.CounterVec
	transactionsFailed prometheus.Counter
	postDuration       prometheus.Histogram
	accountBalance     *prometheus.GaugeVec
	journalSize        *prometheus.GaugeVec
	logger             *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		transactionsPosted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_posted_total",
			Help:      "Transactions admitted to the journal, by kind.",
		}, []string{"kind"}),
		transactionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_failed_total",
			Help:      "Transaction postings that were rolled back.",
		}),
		postDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_post_duration_seconds",
			Help:      "Time spent in one posting unit, commit included.",
			Buckets:   prometheus.DefBuckets,
		}),
		accountBalance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "account_balance",
			Help:      "Last known balance per account number.",
		}, []string{"account", "currency"}),
		journalSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "journal_transactions",
			Help:      "Transactions stored in the journal, by kind, as of the last refresh.",
		}, []string{"kind"}),
		logger: logger,
	}
}

// RecordPosting records the outcome of one PostTransaction call.
func (c *Collector) RecordPosting(kind string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.postDuration.Observe(duration.Seconds())
	if err != nil {
		c.transactionsFailed.Inc()
		return
	}
	c.transactionsPosted.WithLabelValues(kind).Inc()
}

func (c *Collector) SetAccountBalance(number, currency string, balance decimal.Decimal) {
	if c == nil {
		return
	}
	c.accountBalance.WithLabelValues(number, currency).Set(balance.InexactFloat64())
}

// ResetBalances drops every balance series, used after the store is wiped.
func (c *Collector) ResetBalances() {
	if c == nil {
		return
	}
	c.accountBalance.Reset()
}

// SetJournalCounts replaces the journal size series with counts, keyed by
// transaction kind. Unlike the posting counters it reflects the whole store,
// whichever process wrote it.
func (c *Collector) SetJournalCounts(counts map[string]int) {
	if c == nil {
		return
	}
	c.journalSize.Reset()
	for kind, n := range counts {
		c.journalSize.WithLabelValues(kind).Set(float64(n))
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr in the background. Stop it with
// Shutdown on the returned server.
func (c *Collector) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := slog.Default()
	if c != nil {
		logger = c.logger
	}
	go func() {
		logger.Info("metrics server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func Shutdown(ctx context.Context, server *http.Server) error {
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
