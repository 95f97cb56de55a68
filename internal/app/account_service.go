package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	store *storage.Store
	opts  Options
}

func NewAccountService(store *storage.Store, opts Options) *AccountService {
	return &AccountService{
		store: store,
		opts:  opts.withDefaults(),
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (int64, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return 0, fmt.Errorf("create account: %w: number is required", ErrConstraintViolation)
	}
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		return 0, fmt.Errorf("create account: %w: owner is required", ErrConstraintViolation)
	}

	kind := req.Kind
	if kind == "" {
		kind = AccountKindCurrent
	}
	if !kind.Known() {
		s.opts.Logger.Debug("account kind not in the known set", slog.String("kind", string(kind)))
	}
	currency := req.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	account := &storage.Account{
		Number:      number,
		Kind:        string(kind),
		Balance:     req.Balance,
		Currency:    currency,
		Owner:       owner,
		Status:      StatusActive,
		CreditLimit: req.CreditLimit,
		Description: req.Description,
		CreatedAt:   s.opts.Clock(),
	}
	if err := s.store.Accounts.Create(ctx, account); err != nil {
		return 0, classify("create account", err)
	}

	s.opts.Logger.Info("account created",
		slog.Int64("account_id", account.ID),
		slog.String("number", account.Number),
		slog.String("kind", account.Kind),
	)
	s.opts.Metrics.SetAccountBalance(account.Number, account.Currency, account.Balance)
	return account.ID, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]storage.Account, error) {
	accounts, err := s.store.Accounts.List(ctx)
	if err != nil {
		return nil, classify("list accounts", err)
	}
	return accounts, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*storage.Account, error) {
	account, err := s.store.Accounts.Get(ctx, id)
	if err != nil {
		return nil, classify("get account", err)
	}
	return account, nil
}

func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*storage.Account, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("get account by number: %w: number is required", ErrConstraintViolation)
	}
	account, err := s.store.Accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, classify("get account by number", err)
	}
	return account, nil
}

// SetBalance overwrites the balance of account id and returns the updated
// record.
func (s *AccountService) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*storage.Account, error) {
	var updated *storage.Account
	err := s.store.Update(ctx, func(tx *storage.Tx) error {
		account, err := tx.Accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.setBalanceTx(ctx, tx, account, balance); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, classify("set balance", err)
	}

	s.opts.Logger.Info("account balance set",
		slog.Int64("account_id", updated.ID),
		slog.String("balance", updated.Balance.String()),
	)
	s.opts.Metrics.SetAccountBalance(updated.Number, updated.Currency, updated.Balance)
	return updated, nil
}

// setBalanceTx is the single balance mutator. account must have been loaded
// through tx; it is updated in place.
func (s *AccountService) setBalanceTx(ctx context.Context, tx *storage.Tx, account *storage.Account, balance decimal.Decimal) error {
	modifiedAt := s.opts.Clock()
	if err := tx.Accounts.UpdateBalance(ctx, account.ID, balance, modifiedAt); err != nil {
		return err
	}
	account.Balance = balance
	account.ModifiedAt = &modifiedAt
	return nil
}
