package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type accountRepository struct {
	q querier
}

const accountColumns = `id, number, kind, balance, currency, owner, status, credit_limit, description, created_at, modified_at`

func (r *accountRepository) Create(ctx context.Context, account *Account) error {
	if account == nil {
		return fmt.Errorf("create account: account is nil")
	}
	if account.Number == "" {
		return fmt.Errorf("create account: %w: number is required", ErrConstraint)
	}
	if account.Owner == "" {
		return fmt.Errorf("create account: %w: owner is required", ErrConstraint)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = nowUTC()
	}

	result, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts(number, kind, balance, currency, owner, status, credit_limit, description, created_at, modified_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, account.Number, account.Kind, account.Balance.String(), account.Currency, account.Owner, account.Status,
		account.CreditLimit.String(), account.Description, fmtTime(account.CreatedAt), nullableTime(account.ModifiedAt))
	if err != nil {
		return wrapWriteErr("create account: insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create account: last insert id: %w", err)
	}
	account.ID = id
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = ?`, number)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account number %q", ErrNotFound, number)
		}
		return nil, fmt.Errorf("get account by number: %w", err)
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out = append(out, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: iterate: %w", err)
	}
	return out, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, modifiedAt time.Time) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET balance = ?, modified_at = ?
		WHERE id = ?
	`, balance.String(), fmtTime(modifiedAt), id)
	if err != nil {
		return wrapWriteErr("update account balance", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account balance: rows affected: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	return nil
}

func scanAccount(scanner rowScanner) (*Account, error) {
	var (
		account     Account
		balance     string
		creditLimit string
		createdAt   string
		modifiedAt  sql.NullString
	)

	if err := scanner.Scan(&account.ID, &account.Number, &account.Kind, &balance, &account.Currency, &account.Owner,
		&account.Status, &creditLimit, &account.Description, &createdAt, &modifiedAt); err != nil {
		return nil, err
	}

	var err error
	if account.Balance, err = parseDecimal("balance", balance); err != nil {
		return nil, err
	}
	if account.CreditLimit, err = parseDecimal("credit_limit", creditLimit); err != nil {
		return nil, err
	}
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if account.ModifiedAt, err = parseNullableTime(modifiedAt); err != nil {
		return nil, err
	}
	return &account, nil
}
