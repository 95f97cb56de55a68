package app

import (
	"context"

	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/shopspring/decimal"
)

type StatsService struct {
	store *storage.Store
	opts  Options
}

func NewStatsService(store *storage.Store, opts Options) *StatsService {
	return &StatsService{
		store: store,
		opts:  opts.withDefaults(),
	}
}

// Compute derives the summary from every account and every transaction.
// Nothing is cached.
func (s *StatsService) Compute(ctx context.Context) (Statistics, error) {
	accounts, err := s.store.Accounts.List(ctx)
	if err != nil {
		return Statistics{}, classify("compute statistics", err)
	}
	txns, err := s.store.Transactions.List(ctx, storage.TransactionQuery{})
	if err != nil {
		return Statistics{}, classify("compute statistics", err)
	}

	stats := Statistics{
		TotalBalance:     decimal.Zero,
		TransactionCount: len(txns),
		AccountCount:     len(accounts),
		CountByKind:      map[TransactionKind]int{},
		AmountByKind:     map[TransactionKind]decimal.Decimal{},
	}
	for _, account := range accounts {
		stats.TotalBalance = stats.TotalBalance.Add(account.Balance)
	}
	for i := range txns {
		kind := TransactionKind(txns[i].Kind)
		stats.CountByKind[kind]++
		stats.AmountByKind[kind] = stats.AmountByKind[kind].Add(txns[i].Amount)
		// strictly after: the earliest-stored of equal timestamps wins.
		if stats.LastTransaction == nil || txns[i].PostedAt.After(stats.LastTransaction.PostedAt) {
			last := txns[i]
			stats.LastTransaction = &last
		}
	}
	return stats, nil
}
