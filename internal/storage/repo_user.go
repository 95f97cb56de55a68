package storage

import (
	"context"
	"fmt"
)

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("create user: user is nil")
	}
	if user.Email == "" {
		return fmt.Errorf("create user: %w: email is required", ErrConstraint)
	}
	if user.Phone == "" {
		return fmt.Errorf("create user: %w: phone is required", ErrConstraint)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = nowUTC()
	}

	result, err := r.q.ExecContext(ctx, `
		INSERT INTO users(last_name, first_name, email, phone, role, address, city, country, status, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.LastName, user.FirstName, user.Email, user.Phone, user.Role, user.Address, user.City, user.Country,
		user.Status, fmtTime(user.CreatedAt))
	if err != nil {
		return wrapWriteErr("create user: insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: last insert id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, last_name, first_name, email, phone, role, address, city, country, status, created_at
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var (
			user      User
			createdAt string
		)
		if err := rows.Scan(&user.ID, &user.LastName, &user.FirstName, &user.Email, &user.Phone, &user.Role,
			&user.Address, &user.City, &user.Country, &user.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("list users: scan: %w", err)
		}
		if user.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: iterate: %w", err)
	}
	return out, nil
}
