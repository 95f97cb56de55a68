package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrConstraint   = errors.New("storage: constraint violated")
	ErrSchemaTooNew = errors.New("storage: schema version newer than code")
)

type Account struct {
	ID          int64
	Number      string
	Kind        string
	Balance     decimal.Decimal
	Currency    string
	Owner       string
	Status      string
	CreditLimit decimal.Decimal
	Description string
	CreatedAt   time.Time
	ModifiedAt  *time.Time
}

type Transaction struct {
	ID           int64
	AccountID    int64
	Kind         string
	Amount       decimal.Decimal
	Currency     string
	Description  string
	Category     string
	Fee          decimal.Decimal
	Counterparty *string
	Reference    string
	Status       string
	PostedAt     time.Time
}

// TransactionQuery selects journal rows. Zero values mean "no restriction".
// Rows always come back in storage (id) order; callers sort.
type TransactionQuery struct {
	AccountID *int64
	Since     *time.Time
	Until     *time.Time
}

type User struct {
	ID        int64
	LastName  string
	FirstName string
	Email     string
	Phone     string
	Role      string
	Address   string
	City      string
	Country   string
	Status    string
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Get(ctx context.Context, id int64) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, modifiedAt time.Time) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	Get(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, query TransactionQuery) ([]Transaction, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	List(ctx context.Context) ([]User, error)
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Put(ctx context.Context, setting Setting) error
}
