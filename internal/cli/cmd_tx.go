package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/spf13/cobra"
)

func newTxCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Post and inspect transactions",
	}
	cmd.AddCommand(
		newTxPostCommand(deps),
		newTxListCommand(deps),
		newTxRangeCommand(deps),
		newTxShowCommand(deps),
	)
	return cmd
}

func newTxPostCommand(deps commandDeps) *cobra.Command {
	var (
		accountID    int64
		kind         string
		amount       string
		currency     string
		description  string
		category     string
		fee          string
		counterparty string
		reference    string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a transaction against an account",
		Example: "  bamboo tx post --account 2 --kind deposit --amount 490000 --description \"Dépôt mensuel\"\n" +
			"  bamboo --json tx post --account 2 --kind transfer-in --amount 150000 --counterparty \"MARTIN KOUAME\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("tx post does not accept positional arguments")
			}
			if accountID <= 0 {
				return usageErrorf("tx post requires --account")
			}
			if strings.TrimSpace(kind) == "" {
				return usageErrorf("tx post requires --kind")
			}
			value, err := parseAmount("--amount", amount)
			if err != nil {
				return err
			}
			feeValue, err := parseAmount("--fee", fee)
			if err != nil {
				return err
			}

			req := app.PostTransactionRequest{
				AccountID:   accountID,
				Kind:        app.TransactionKind(kind),
				Amount:      value,
				Currency:    currency,
				Description: description,
				Category:    category,
				Fee:         feeValue,
				Reference:   reference,
			}
			if cmd.Flags().Changed("counterparty") {
				req.Counterparty = &counterparty
			}

			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				txn, err := l.journal.PostTransaction(ctx, req)
				if err != nil {
					return err
				}
				view := toTransactionView(*txn)
				return emit(deps, view, func(w io.Writer) error { return writeTransaction(w, view) })
			})
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Account id")
	cmd.Flags().StringVar(&kind, "kind", "", "Transaction kind: deposit, withdrawal, transfer-in, transfer-out, payment")
	cmd.Flags().StringVar(&amount, "amount", "0", "Amount")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (defaults to ledger.default_currency)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text description")
	cmd.Flags().StringVar(&category, "category", "", "Category (defaults to general)")
	cmd.Flags().StringVar(&fee, "fee", "0", "Fee charged")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "Counterparty name")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference (generated when empty)")
	return cmd
}

func newTxListCommand(deps commandDeps) *cobra.Command {
	var (
		accountID int64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List recent transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("tx ls does not accept positional arguments")
			}
			if limit < 0 {
				return usageErrorf("--limit must not be negative")
			}
			filter := app.TransactionFilter{Limit: limit}
			if cmd.Flags().Changed("account") {
				filter.AccountID = &accountID
			}

			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				txns, err := l.journal.ListTransactions(ctx, filter)
				if err != nil {
					return err
				}
				views := toTransactionViews(txns)
				return emit(deps, views, func(w io.Writer) error { return writeTransactions(w, views) })
			})
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Only transactions for this account id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 uses ledger.list_limit)")
	return cmd
}

func newTxRangeCommand(deps commandDeps) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "range",
		Short:   "List transactions posted within an inclusive time range",
		Example: "  bamboo tx range --from 2026-01-01T00:00:00Z --to 2026-01-31T23:59:59Z",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("tx range does not accept positional arguments")
			}
			start, err := parseTimestamp("--from", from)
			if err != nil {
				return err
			}
			end, err := parseTimestamp("--to", to)
			if err != nil {
				return err
			}

			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				txns, err := l.journal.ListTransactionsInRange(ctx, start, end)
				if err != nil {
					return err
				}
				views := toTransactionViews(txns)
				return emit(deps, views, func(w io.Writer) error { return writeTransactions(w, views) })
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (RFC3339)")
	return cmd
}

func newTxShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("tx show requires exactly one transaction id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("transaction id", args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				txn, err := l.journal.GetTransaction(ctx, id)
				if err != nil {
					return err
				}
				view := toTransactionView(*txn)
				return emit(deps, view, func(w io.Writer) error { return writeTransaction(w, view) })
			})
		},
	}
}

func toTransactionViews(txns []storage.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, toTransactionView(txn))
	}
	return views
}

func parseTimestamp(name, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, usageErrorf("%s is required", name)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, usageErrorf("%s: %q is not an RFC3339 timestamp", name, raw)
	}
	return ts.UTC(), nil
}
