package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Every pooled connection gets the same pragmas through the DSN. _txlock makes
// BeginTx issue BEGIN IMMEDIATE, so an atomic unit holds the write lock from
// its first read and concurrent read-modify-write cycles cannot lose updates.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

type Store struct {
	db   *sql.DB
	path string

	// writeMu queues this process's atomic units so they wait on a Go mutex
	// rather than on SQLite's busy handler.
	writeMu sync.Mutex

	Accounts     AccountRepository
	Transactions TransactionRepository
	Users        UserRepository
	Settings     SettingRepository
}

// Tx is one atomic unit spanning all four collections. Its repositories are
// only valid inside the Update callback that received it.
type Tx struct {
	Accounts     AccountRepository
	Transactions TransactionRepository
	Users        UserRepository
	Settings     SettingRepository

	q querier
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open storage: empty path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("open storage: create parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if err := RunMigrations(db, DefaultMigrations()); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureDBPermissions(path); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		db:   db,
		path: path,
	}
	store.Accounts = &accountRepository{q: db}
	store.Transactions = &transactionRepository{q: db}
	store.Users = &userRepository{q: db}
	store.Settings = &settingRepository{q: db}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SchemaVersion reports the migration version recorded in the store.
func (s *Store) SchemaVersion() (int, error) {
	return readSchemaVersion(s.db)
}

// Update runs fn as a single atomic unit. The unit commits only when fn
// returns nil; any error or panic rolls every write back.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) (err error) {
	if fn == nil {
		return fmt.Errorf("update: fn is nil")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update: begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err == nil {
			err = fmt.Errorf("update: rollback: %w", rbErr)
		}
	}()

	tx := &Tx{
		Accounts:     &accountRepository{q: sqlTx},
		Transactions: &transactionRepository{q: sqlTx},
		Users:        &userRepository{q: sqlTx},
		Settings:     &settingRepository{q: sqlTx},
		q:            sqlTx,
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("update: commit: %w", err)
	}
	committed = true
	return nil
}

// ClearAll empties accounts, transactions, users and settings in one unit.
// Identifier counters are left alone so ids are never reused.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.Update(ctx, func(tx *Tx) error {
		// transactions first: they reference accounts.
		for _, table := range []string{"transactions", "accounts", "users", "settings"} {
			if _, err := tx.q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear all: clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func dsn(path string) string {
	params := url.Values{}
	for _, pragma := range connPragmas {
		params.Add("_pragma", pragma)
	}
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

func ensureDBPermissions(path string) error {
	if err := os.Chmod(path, 0o600); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("set db file permissions: %w", err)
		}
	}

	walPath := path + "-wal"
	if err := os.Chmod(walPath, 0o600); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("set wal file permissions: %w", err)
		}
	}
	return nil
}
