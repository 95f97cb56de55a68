package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRunSeedsEmptyStore(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	ctx := context.Background()

	report, err := env.seeder.Run(ctx)
	require.NoError(t, err)
	require.False(t, report.Complete)
	require.NotEmpty(t, report.RunID)
	require.Equal(t, []string{"5532763277827", "00325890101", "00325890102", "00325890103"}, report.AccountsCreated)
	require.True(t, report.UserCreated)
	require.Equal(t, 8, report.TransactionsPosted)
	require.Empty(t, report.Failures)

	savings, err := env.accounts.GetAccountByNumber(ctx, "00325890101")
	require.NoError(t, err)
	// 1990000 opening + 1500000 + 490000 + 150000 - 50000 + 500000; payments
	// do not move the balance.
	require.Equal(t, "4580000", savings.Balance.String())

	interest, err := env.accounts.GetAccountByNumber(ctx, "00325890102")
	require.NoError(t, err)
	require.Equal(t, "396000", interest.Balance.String())

	current, err := env.accounts.GetAccountByNumber(ctx, "5532763277827")
	require.NoError(t, err)
	require.Equal(t, "1950000", current.Balance.String())
	require.Equal(t, demoOwner, current.Owner)

	onSavings, err := env.journal.ListTransactions(ctx, app.TransactionFilter{AccountID: &savings.ID})
	require.NoError(t, err)
	require.Len(t, onSavings, 7)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "OTSIGroupe@gmail.com", users[0].Email)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	ctx := context.Background()

	_, err := env.seeder.Run(ctx)
	require.NoError(t, err)

	report, err := env.seeder.Run(ctx)
	require.NoError(t, err)
	require.True(t, report.Complete)
	require.Empty(t, report.AccountsCreated)
	require.Zero(t, report.TransactionsPosted)

	accounts, err := env.accounts.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 4)
}

func TestRunCreatesOnlyMissingKinds(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	ctx := context.Background()

	_, err := env.accounts.CreateAccount(ctx, app.CreateAccountRequest{
		Number:  "SAV-EXISTING",
		Kind:    app.AccountKindSavings,
		Owner:   "SOMEONE",
		Balance: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	report, err := env.seeder.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"5532763277827", "00325890102", "00325890103"}, report.AccountsCreated)
	// Savings history is only posted against a savings account this run created.
	require.Equal(t, 1, report.TransactionsPosted)

	existing, err := env.accounts.GetAccountByNumber(ctx, "SAV-EXISTING")
	require.NoError(t, err)
	require.Equal(t, "10", existing.Balance.String())
}

func TestRunSkipsExistingUser(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, demoUser)
	require.NoError(t, err)

	report, err := env.seeder.Run(ctx)
	require.NoError(t, err)
	require.False(t, report.UserCreated)
	require.Empty(t, report.Failures)
}

func TestRunLogsAndContinuesOnPostingFailure(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	ctx := context.Background()

	seeder := New(env.accounts, failingJournal{}, env.users, nil)
	report, err := seeder.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.AccountsCreated, 4)
	require.Zero(t, report.TransactionsPosted)
	require.Len(t, report.Failures, 8)
}

func TestRunFailsWhenAccountsCannotBeListed(t *testing.T) {
	t.Parallel()

	env := newSeedEnv(t)
	seeder := New(brokenLedger{}, env.journal, env.users, nil)

	_, err := seeder.Run(context.Background())
	require.Error(t, err)
}

type failingJournal struct{}

func (failingJournal) PostTransaction(context.Context, app.PostTransactionRequest) (*storage.Transaction, error) {
	return nil, errors.New("journal offline")
}

type brokenLedger struct{}

func (brokenLedger) ListAccounts(context.Context) ([]storage.Account, error) {
	return nil, app.ErrStorageFailure
}

func (brokenLedger) CreateAccount(context.Context, app.CreateAccountRequest) (int64, error) {
	return 0, app.ErrStorageFailure
}

func (brokenLedger) GetAccountByNumber(context.Context, string) (*storage.Account, error) {
	return nil, app.ErrStorageFailure
}

type seedEnv struct {
	accounts *app.AccountService
	journal  *app.JournalService
	users    *app.UserService
	seeder   *Seeder
}

func newSeedEnv(t *testing.T) *seedEnv {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "bamboo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	accounts := app.NewAccountService(store, app.Options{})
	journal, err := app.NewJournalService(store, accounts, app.Options{})
	require.NoError(t, err)
	users := app.NewUserService(store, app.Options{})

	return &seedEnv{
		accounts: accounts,
		journal:  journal,
		users:    users,
		seeder:   New(accounts, journal, users, nil),
	}
}
