package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type transactionRepository struct {
	q querier
}

const transactionColumns = `id, account_id, kind, amount, currency, description, category, fee, counterparty, reference, status, posted_at`

func (r *transactionRepository) Create(ctx context.Context, txn *Transaction) error {
	if txn == nil {
		return fmt.Errorf("create transaction: transaction is nil")
	}
	if txn.AccountID == 0 {
		return fmt.Errorf("create transaction: %w: account id is required", ErrConstraint)
	}
	if txn.PostedAt.IsZero() {
		txn.PostedAt = nowUTC()
	}

	result, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions(account_id, kind, amount, currency, description, category, fee, counterparty, reference, status, posted_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.AccountID, txn.Kind, txn.Amount.String(), txn.Currency, txn.Description, txn.Category, txn.Fee.String(),
		nullableString(txn.Counterparty), txn.Reference, txn.Status, fmtTime(txn.PostedAt))
	if err != nil {
		return wrapWriteErr("create transaction: insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create transaction: last insert id: %w", err)
	}
	txn.ID = id
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

func (r *transactionRepository) List(ctx context.Context, query TransactionQuery) ([]Transaction, error) {
	stmt := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := make([]any, 0, 3)
	if query.AccountID != nil {
		stmt += ` AND account_id = ?`
		args = append(args, *query.AccountID)
	}
	if query.Since != nil {
		stmt += ` AND posted_at >= ?`
		args = append(args, fmtTime(*query.Since))
	}
	if query.Until != nil {
		stmt += ` AND posted_at <= ?`
		args = append(args, fmtTime(*query.Until))
	}
	stmt += ` ORDER BY id ASC`

	rows, err := r.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: iterate: %w", err)
	}
	return out, nil
}

func scanTransaction(scanner rowScanner) (*Transaction, error) {
	var (
		txn          Transaction
		amount       string
		fee          string
		counterparty sql.NullString
		postedAt     string
	)

	if err := scanner.Scan(&txn.ID, &txn.AccountID, &txn.Kind, &amount, &txn.Currency, &txn.Description, &txn.Category,
		&fee, &counterparty, &txn.Reference, &txn.Status, &postedAt); err != nil {
		return nil, err
	}

	var err error
	if txn.Amount, err = parseDecimal("amount", amount); err != nil {
		return nil, err
	}
	if txn.Fee, err = parseDecimal("fee", fee); err != nil {
		return nil, err
	}
	if txn.PostedAt, err = parseTime(postedAt); err != nil {
		return nil, err
	}
	txn.Counterparty = stringPtr(counterparty)
	return &txn, nil
}
