package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/bamboobank/bamboo/internal/storage"
)

type accountView struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Kind        string `json:"kind"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
	Owner       string `json:"owner"`
	Status      string `json:"status"`
	CreditLimit string `json:"credit_limit"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	ModifiedAt  string `json:"modified_at,omitempty"`
}

type transactionView struct {
	ID           int64   `json:"id"`
	AccountID    int64   `json:"account_id"`
	Kind         string  `json:"kind"`
	Amount       string  `json:"amount"`
	Currency     string  `json:"currency"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Fee          string  `json:"fee"`
	Counterparty *string `json:"counterparty"`
	Reference    string  `json:"reference"`
	Status       string  `json:"status"`
	PostedAt     string  `json:"posted_at"`
}

type userView struct {
	ID        int64  `json:"id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type statisticsView struct {
	TotalBalance     string            `json:"total_balance"`
	TransactionCount int               `json:"transaction_count"`
	AccountCount     int               `json:"account_count"`
	CountByKind      map[string]int    `json:"count_by_kind"`
	AmountByKind     map[string]string `json:"amount_by_kind"`
	LastTransaction  *transactionView  `json:"last_transaction"`
}

func fmtTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toAccountView(account storage.Account) accountView {
	view := accountView{
		ID:          account.ID,
		Number:      account.Number,
		Kind:        account.Kind,
		Balance:     account.Balance.String(),
		Currency:    account.Currency,
		Owner:       account.Owner,
		Status:      account.Status,
		CreditLimit: account.CreditLimit.String(),
		Description: account.Description,
		CreatedAt:   fmtTimestamp(account.CreatedAt),
	}
	if account.ModifiedAt != nil {
		view.ModifiedAt = fmtTimestamp(*account.ModifiedAt)
	}
	return view
}

func toTransactionView(txn storage.Transaction) transactionView {
	return transactionView{
		ID:           txn.ID,
		AccountID:    txn.AccountID,
		Kind:         txn.Kind,
		Amount:       txn.Amount.String(),
		Currency:     txn.Currency,
		Description:  txn.Description,
		Category:     txn.Category,
		Fee:          txn.Fee.String(),
		Counterparty: txn.Counterparty,
		Reference:    txn.Reference,
		Status:       txn.Status,
		PostedAt:     fmtTimestamp(txn.PostedAt),
	}
}

func toUserView(user storage.User) userView {
	return userView{
		ID:        user.ID,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Address:   user.Address,
		City:      user.City,
		Country:   user.Country,
		Status:    user.Status,
		CreatedAt: fmtTimestamp(user.CreatedAt),
	}
}

func toStatisticsView(stats app.Statistics) statisticsView {
	view := statisticsView{
		TotalBalance:     stats.TotalBalance.String(),
		TransactionCount: stats.TransactionCount,
		AccountCount:     stats.AccountCount,
		CountByKind:      map[string]int{},
		AmountByKind:     map[string]string{},
	}
	for kind, count := range stats.CountByKind {
		view.CountByKind[string(kind)] = count
	}
	for kind, amount := range stats.AmountByKind {
		view.AmountByKind[string(kind)] = amount.String()
	}
	if stats.LastTransaction != nil {
		last := toTransactionView(*stats.LastTransaction)
		view.LastTransaction = &last
	}
	return view
}

func writeAccount(w io.Writer, account accountView) error {
	_, err := fmt.Fprintf(w, "id=%d number=%s kind=%s balance=%s %s owner=%q status=%s\n",
		account.ID, account.Number, account.Kind, account.Balance, account.Currency, account.Owner, account.Status)
	return err
}

func writeTransaction(w io.Writer, txn transactionView) error {
	_, err := fmt.Fprintf(w, "id=%d account=%d kind=%s amount=%s %s ref=%s posted_at=%s\n",
		txn.ID, txn.AccountID, txn.Kind, txn.Amount, txn.Currency, txn.Reference, txn.PostedAt)
	return err
}

func writeTransactions(w io.Writer, txns []transactionView) error {
	for _, txn := range txns {
		if err := writeTransaction(w, txn); err != nil {
			return err
		}
	}
	return nil
}

func writeStatistics(w io.Writer, stats statisticsView) error {
	if _, err := fmt.Fprintf(w, "accounts=%d transactions=%d total_balance=%s\n",
		stats.AccountCount, stats.TransactionCount, stats.TotalBalance); err != nil {
		return err
	}
	kinds := make([]string, 0, len(stats.CountByKind))
	for kind := range stats.CountByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if _, err := fmt.Fprintf(w, "kind=%s count=%d amount=%s\n", kind, stats.CountByKind[kind], stats.AmountByKind[kind]); err != nil {
			return err
		}
	}
	if stats.LastTransaction != nil {
		if _, err := fmt.Fprint(w, "last: "); err != nil {
			return err
		}
		return writeTransaction(w, *stats.LastTransaction)
	}
	return nil
}
