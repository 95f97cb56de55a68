package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/shopspring/decimal"
)

type JournalService struct {
	store    *storage.Store
	accounts *AccountService
	refs     *ReferenceGenerator
	opts     Options
}

func NewJournalService(store *storage.Store, accounts *AccountService, opts Options) (*JournalService, error) {
	opts = opts.withDefaults()
	refs, err := NewReferenceGenerator(opts.ReferencePrefix, opts.NodeID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = NewAccountService(store, opts)
	}
	return &JournalService{
		store:    store,
		accounts: accounts,
		refs:     refs,
		opts:     opts,
	}, nil
}

// PostTransaction admits one transaction and applies its balance effect in
// the same atomic unit. The account is confirmed before anything is written,
// so a missing account leaves the journal untouched.
func (s *JournalService) PostTransaction(ctx context.Context, req PostTransactionRequest) (_ *storage.Transaction, err error) {
	started := time.Now()
	defer func() {
		s.opts.Metrics.RecordPosting(string(req.Kind), time.Since(started), err)
	}()

	if req.AccountID == 0 {
		return nil, fmt.Errorf("post transaction: %w: account id is required", ErrConstraintViolation)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("post transaction: %w: amount must not be negative", ErrConstraintViolation)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = CategoryGeneral
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = s.refs.Next()
	}

	record := &storage.Transaction{
		AccountID:    req.AccountID,
		Kind:         string(req.Kind),
		Amount:       req.Amount,
		Currency:     currency,
		Description:  req.Description,
		Category:     category,
		Fee:          req.Fee,
		Counterparty: req.Counterparty,
		Reference:    reference,
		Status:       TransactionStatusCompleted,
		PostedAt:     s.opts.Clock(),
	}

	var account *storage.Account
	err = s.store.Update(ctx, func(tx *storage.Tx) error {
		loaded, err := tx.Accounts.Get(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if err := tx.Transactions.Create(ctx, record); err != nil {
			return err
		}
		if effect := signedEffect(req.Kind, req.Amount); !effect.IsZero() {
			if err := s.accounts.setBalanceTx(ctx, tx, loaded, loaded.Balance.Add(effect)); err != nil {
				return err
			}
		}
		account = loaded
		return nil
	})
	if err != nil {
		s.opts.Logger.Warn("transaction rejected",
			slog.Int64("account_id", req.AccountID),
			slog.String("kind", string(req.Kind)),
			slog.String("error", err.Error()),
		)
		return nil, classify("post transaction", err)
	}

	s.opts.Logger.Info("transaction posted",
		slog.Int64("transaction_id", record.ID),
		slog.Int64("account_id", record.AccountID),
		slog.String("kind", record.Kind),
		slog.String("amount", record.Amount.String()),
		slog.String("reference", record.Reference),
	)
	s.opts.Metrics.SetAccountBalance(account.Number, account.Currency, account.Balance)
	return record, nil
}

// signedEffect is the balance delta of a transaction kind. Kinds outside the
// four movement kinds, payment included, leave the balance unchanged.
func signedEffect(kind TransactionKind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case TransactionKindDeposit, TransactionKindTransferIn:
		return amount
	case TransactionKindWithdrawal, TransactionKindTransferOut:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

func (s *JournalService) ListTransactions(ctx context.Context, filter TransactionFilter) ([]storage.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = s.opts.ListLimit
	}

	txns, err := s.store.Transactions.List(ctx, storage.TransactionQuery{AccountID: filter.AccountID})
	if err != nil {
		return nil, classify("list transactions", err)
	}
	sortNewestFirst(txns)
	if len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

// ListTransactionsInRange returns every transaction posted within
// [start, end], newest first.
func (s *JournalService) ListTransactionsInRange(ctx context.Context, start, end time.Time) ([]storage.Transaction, error) {
	if end.Before(start) || start.After(latestPostingTime) || end.Before(earliestPostingTime) {
		return []storage.Transaction{}, nil
	}
	start, end = clampPostingTime(start), clampPostingTime(end)
	txns, err := s.store.Transactions.List(ctx, storage.TransactionQuery{Since: &start, Until: &end})
	if err != nil {
		return nil, classify("list transactions in range", err)
	}
	sortNewestFirst(txns)
	return txns, nil
}

func (s *JournalService) GetTransaction(ctx context.Context, id int64) (*storage.Transaction, error) {
	txn, err := s.store.Transactions.Get(ctx, id)
	if err != nil {
		return nil, classify("get transaction", err)
	}
	return txn, nil
}

// Stored timestamps carry a four-digit year, so bounds outside years
// 0001..9999 would not compare correctly against them.
var (
	earliestPostingTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	latestPostingTime   = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

func clampPostingTime(t time.Time) time.Time {
	switch {
	case t.Before(earliestPostingTime):
		return earliestPostingTime
	case t.After(latestPostingTime):
		return latestPostingTime
	default:
		return t
	}
}

// sortNewestFirst orders by PostedAt descending; equal timestamps keep
// storage order.
func sortNewestFirst(txns []storage.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].PostedAt.After(txns[j].PostedAt)
	})
}
