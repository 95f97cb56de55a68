package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAccountCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
	}
	cmd.AddCommand(
		newAccountAddCommand(deps),
		newAccountListCommand(deps),
		newAccountShowCommand(deps),
		newAccountSetBalanceCommand(deps),
	)
	return cmd
}

func newAccountAddCommand(deps commandDeps) *cobra.Command {
	var (
		number      string
		kind        string
		owner       string
		balance     string
		currency    string
		creditLimit string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open an account",
		Example: "  bamboo account add --number 00325890101 --kind savings --owner \"EYENG ASSOUMOU\" --balance 1990000\n" +
			"  bamboo --json account add --number 5532763277827 --owner \"EYENG ASSOUMOU\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("account add does not accept positional arguments")
			}
			if strings.TrimSpace(number) == "" {
				return usageErrorf("account add requires --number")
			}
			if strings.TrimSpace(owner) == "" {
				return usageErrorf("account add requires --owner")
			}
			opening, err := parseAmount("--balance", balance)
			if err != nil {
				return err
			}
			limit, err := parseAmount("--credit-limit", creditLimit)
			if err != nil {
				return err
			}

			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				id, err := l.accounts.CreateAccount(ctx, app.CreateAccountRequest{
					Number:      number,
					Kind:        app.AccountKind(kind),
					Owner:       owner,
					Balance:     opening,
					Currency:    currency,
					CreditLimit: limit,
					Description: description,
				})
				if err != nil {
					return err
				}
				account, err := l.accounts.GetAccount(ctx, id)
				if err != nil {
					return err
				}
				view := toAccountView(*account)
				return emit(deps, view, func(w io.Writer) error { return writeAccount(w, view) })
			})
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "Account number (unique)")
	cmd.Flags().StringVar(&kind, "kind", string(app.AccountKindCurrent), "Account kind: current, savings, interest-accrued, interest-pending, business")
	cmd.Flags().StringVar(&owner, "owner", "", "Account holder display name")
	cmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (defaults to ledger.default_currency)")
	cmd.Flags().StringVar(&creditLimit, "credit-limit", "0", "Credit limit")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description")
	return cmd
}

func newAccountListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("account ls does not accept positional arguments")
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				accounts, err := l.accounts.ListAccounts(ctx)
				if err != nil {
					return err
				}
				views := make([]accountView, 0, len(accounts))
				for _, account := range accounts {
					views = append(views, toAccountView(account))
				}
				return emit(deps, views, func(w io.Writer) error {
					for _, view := range views {
						if err := writeAccount(w, view); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}

func newAccountShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("account show requires exactly one account id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("account id", args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				account, err := l.accounts.GetAccount(ctx, id)
				if err != nil {
					return err
				}
				view := toAccountView(*account)
				return emit(deps, view, func(w io.Writer) error { return writeAccount(w, view) })
			})
		},
	}
}

func newAccountSetBalanceCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <id> <amount>",
		Short: "Overwrite an account balance",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageErrorf("account set-balance requires an account id and an amount")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("account id", args[0])
			if err != nil {
				return err
			}
			balance, err := parseSignedAmount("balance", args[1])
			if err != nil {
				return err
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				account, err := l.accounts.SetBalance(ctx, id, balance)
				if err != nil {
					return err
				}
				view := toAccountView(*account)
				return emit(deps, view, func(w io.Writer) error { return writeAccount(w, view) })
			})
		},
	}
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// parseAmount parses a non-negative decimal flag value.
func parseAmount(name, raw string) (decimal.Decimal, error) {
	value, err := parseSignedAmount(name, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, usageErrorf("%s must not be negative", name)
	}
	return value, nil
}

func parseSignedAmount(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, usageErrorf("%s: %q is not a decimal amount", name, raw)
	}
	return value, nil
}
