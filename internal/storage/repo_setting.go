package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type settingRepository struct {
	q querier
}

func (r *settingRepository) Get(ctx context.Context, key string) (*Setting, error) {
	setting := Setting{Key: key}
	err := r.q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&setting.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: setting %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &setting, nil
}

// Put inserts or replaces the value stored under setting.Key.
func (r *settingRepository) Put(ctx context.Context, setting Setting) error {
	if setting.Key == "" {
		return fmt.Errorf("put setting: %w: key is required", ErrConstraint)
	}
	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO settings(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, setting.Key, setting.Value); err != nil {
		return wrapWriteErr("put setting", err)
	}
	return nil
}
