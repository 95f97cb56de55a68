package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bamboobank/bamboo/internal/metrics"
	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("app: not found")
	ErrConstraintViolation = errors.New("app: constraint violation")
	ErrStorageFailure      = errors.New("app: storage failure")
)

type AccountKind string

const (
	AccountKindCurrent         AccountKind = "current"
	AccountKindSavings         AccountKind = "savings"
	AccountKindInterestAccrued AccountKind = "interest-accrued"
	AccountKindInterestPending AccountKind = "interest-pending"
	AccountKindBusiness        AccountKind = "business"
)

func (k AccountKind) Known() bool {
	switch k {
	case AccountKindCurrent, AccountKindSavings, AccountKindInterestAccrued, AccountKindInterestPending, AccountKindBusiness:
		return true
	default:
		return false
	}
}

type TransactionKind string

const (
	TransactionKindDeposit     TransactionKind = "deposit"
	TransactionKindWithdrawal  TransactionKind = "withdrawal"
	TransactionKindTransferIn  TransactionKind = "transfer-in"
	TransactionKindTransferOut TransactionKind = "transfer-out"
	TransactionKindPayment     TransactionKind = "payment"
)

const (
	StatusActive               = "active"
	TransactionStatusCompleted = "completed"
	RoleClient                 = "client"
	CategoryGeneral            = "general"
)

const (
	DefaultCurrency        = "FCFA"
	DefaultCountry         = "Côte d'Ivoire"
	DefaultReferencePrefix = "BAM"
	DefaultListLimit       = 50
	DefaultNodeID          = 1
)

type CreateAccountRequest struct {
	Number      string
	Kind        AccountKind
	Owner       string
	Balance     decimal.Decimal
	Currency    string
	CreditLimit decimal.Decimal
	Description string
}

type PostTransactionRequest struct {
	AccountID    int64
	Kind         TransactionKind
	Amount       decimal.Decimal
	Currency     string
	Description  string
	Category     string
	Fee          decimal.Decimal
	Counterparty *string
	Reference    string
}

// TransactionFilter narrows ListTransactions. A zero Limit means the
// configured default.
type TransactionFilter struct {
	AccountID *int64
	Limit     int
}

type CreateUserRequest struct {
	LastName  string
	FirstName string
	Email     string
	Phone     string
	Role      string
	Address   string
	City      string
	Country   string
}

type Statistics struct {
	TotalBalance     decimal.Decimal
	TransactionCount int
	AccountCount     int
	CountByKind      map[TransactionKind]int
	AmountByKind     map[TransactionKind]decimal.Decimal
	LastTransaction  *storage.Transaction
}

// Options carries the collaborators and defaults shared by every service.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Clock   func() time.Time

	DefaultCurrency string
	DefaultCountry  string
	ReferencePrefix string
	ListLimit       int
	NodeID          int64
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = func() time.Time { return time.Now().UTC() }
	}
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = DefaultCurrency
	}
	if o.DefaultCountry == "" {
		o.DefaultCountry = DefaultCountry
	}
	if o.ReferencePrefix == "" {
		o.ReferencePrefix = DefaultReferencePrefix
	}
	if o.ListLimit <= 0 {
		o.ListLimit = DefaultListLimit
	}
	// Zero is the unset value; configured node ids start at 1.
	if o.NodeID == 0 {
		o.NodeID = DefaultNodeID
	}
	return o
}

// classify maps storage failures onto the app taxonomy so callers only need
// errors.Is against the three app sentinels.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrStorageFailure):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	case errors.Is(err, storage.ErrConstraint):
		return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolation, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorageFailure, err)
	}
}
