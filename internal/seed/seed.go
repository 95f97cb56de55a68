// Package seed loads the demonstration ledger: four accounts for one
// customer, the customer record, and a short savings history.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const demoOwner = "EYENG ASSOUMOU"

type AccountLedger interface {
	ListAccounts(ctx context.Context) ([]storage.Account, error)
	CreateAccount(ctx context.Context, req app.CreateAccountRequest) (int64, error)
	GetAccountByNumber(ctx context.Context, number string) (*storage.Account, error)
}

type Journal interface {
	PostTransaction(ctx context.Context, req app.PostTransactionRequest) (*storage.Transaction, error)
}

type Directory interface {
	CreateUser(ctx context.Context, req app.CreateUserRequest) (int64, error)
}

type demoPosting struct {
	kind        app.TransactionKind
	amount      int64
	description string
	category    string
}

var demoAccounts = []app.CreateAccountRequest{
	{
		Number:      "5532763277827",
		Kind:        app.AccountKindCurrent,
		Balance:     decimal.NewFromInt(1950000),
		Description: "Compte Courant principal",
	},
	{
		Number:      "00325890101",
		Kind:        app.AccountKindSavings,
		Balance:     decimal.NewFromInt(1990000),
		Description: "Compte Épargne principal",
	},
	{
		Number:      "00325890102",
		Kind:        app.AccountKindInterestAccrued,
		Balance:     decimal.NewFromInt(198000),
		Description: "Intérêts Épargne acquis",
	},
	{
		Number:      "00325890103",
		Kind:        app.AccountKindInterestPending,
		Balance:     decimal.NewFromInt(160000),
		Description: "Intérêts à venir",
	},
}

var demoUser = app.CreateUserRequest{
	LastName:  "ASSOUMOU",
	FirstName: "EYENG",
	Email:     "OTSIGroupe@gmail.com",
	Phone:     "+241 01 23 45 67",
	Role:      app.RoleClient,
}

var savingsHistory = []demoPosting{
	{app.TransactionKindDeposit, 1500000, "Dépôt initial épargne", "epargne"},
	{app.TransactionKindDeposit, 490000, "Dépôt mensuel épargne", "epargne"},
	{app.TransactionKindTransferIn, 150000, "Virement reçu de MARTIN KOUAME", "virement"},
	{app.TransactionKindWithdrawal, 50000, "Retrait GAB Libreville Centre", "retrait"},
	{app.TransactionKindPayment, 25000, "Paiement carte SUPERMARCHÉ CARREFOUR", "paiement"},
	{app.TransactionKindPayment, 5000, "Recharge mobile Libreville Telecom", "telecom"},
	{app.TransactionKindTransferIn, 500000, "Virement reçu de SOCIÉTÉ ABC SARL", "virement"},
}

var interestHistory = []demoPosting{
	{app.TransactionKindDeposit, 198000, "Calcul intérêts mensuels", "interets"},
}

type Report struct {
	RunID              string   `json:"run_id"`
	Complete           bool     `json:"already_complete"`
	AccountsCreated    []string `json:"accounts_created"`
	UserCreated        bool     `json:"user_created"`
	TransactionsPosted int      `json:"transactions_posted"`
	Failures           []string `json:"failures"`
}

type Seeder struct {
	accounts AccountLedger
	journal  Journal
	users    Directory
	logger   *slog.Logger
}

func New(accounts AccountLedger, journal Journal, users Directory, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		accounts: accounts,
		journal:  journal,
		users:    users,
		logger:   logger,
	}
}

// Run creates whatever part of the demo data is missing. Account presence is
// decided by kind. Individual failures are logged and collected in the report;
// only a failure to read the existing accounts aborts the run.
func (s *Seeder) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:           uuid.NewString(),
		AccountsCreated: []string{},
		Failures:        []string{},
	}
	logger := s.logger.With(slog.String("seed_run", report.RunID))

	existing, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return report, fmt.Errorf("seed demo data: list accounts: %w", err)
	}
	present := map[string]bool{}
	for _, account := range existing {
		present[account.Kind] = true
	}

	missing := 0
	for _, req := range demoAccounts {
		if !present[string(req.Kind)] {
			missing++
		}
	}
	if missing == 0 {
		logger.Info("demo data already complete", slog.Int("accounts", len(existing)))
		report.Complete = true
		return report, nil
	}

	created := map[app.AccountKind]bool{}
	for _, req := range demoAccounts {
		if present[string(req.Kind)] {
			continue
		}
		req.Owner = demoOwner
		if _, err := s.accounts.CreateAccount(ctx, req); err != nil {
			s.fail(logger, &report, "create account "+req.Number, err)
			continue
		}
		created[req.Kind] = true
		report.AccountsCreated = append(report.AccountsCreated, req.Number)
		logger.Info("demo account created", slog.String("number", req.Number), slog.String("kind", string(req.Kind)))
	}

	if _, err := s.users.CreateUser(ctx, demoUser); err != nil {
		if errors.Is(err, app.ErrConstraintViolation) {
			logger.Info("demo user already present")
		} else {
			s.fail(logger, &report, "create user", err)
		}
	} else {
		report.UserCreated = true
	}

	if created[app.AccountKindSavings] {
		s.postHistory(ctx, logger, &report, "00325890101", savingsHistory)
	}
	if created[app.AccountKindInterestAccrued] {
		s.postHistory(ctx, logger, &report, "00325890102", interestHistory)
	}

	logger.Info("demo data seeded",
		slog.Int("accounts_created", len(report.AccountsCreated)),
		slog.Int("transactions_posted", report.TransactionsPosted),
		slog.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (s *Seeder) postHistory(ctx context.Context, logger *slog.Logger, report *Report, number string, history []demoPosting) {
	account, err := s.accounts.GetAccountByNumber(ctx, number)
	if err != nil {
		s.fail(logger, report, "look up account "+number, err)
		return
	}
	for _, p := range history {
		_, err := s.journal.PostTransaction(ctx, app.PostTransactionRequest{
			AccountID:   account.ID,
			Kind:        p.kind,
			Amount:      decimal.NewFromInt(p.amount),
			Description: p.description,
			Category:    p.category,
		})
		if err != nil {
			s.fail(logger, report, "post "+string(p.kind)+" on "+number, err)
			continue
		}
		report.TransactionsPosted++
	}
}

func (s *Seeder) fail(logger *slog.Logger, report *Report, step string, err error) {
	logger.Error("demo seed step failed", slog.String("step", step), slog.String("error", err.Error()))
	report.Failures = append(report.Failures, step+": "+err.Error())
}
