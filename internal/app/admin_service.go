package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bamboobank/bamboo/internal/storage"
)

type AdminService struct {
	store *storage.Store
	opts  Options
}

func NewAdminService(store *storage.Store, opts Options) *AdminService {
	return &AdminService{
		store: store,
		opts:  opts.withDefaults(),
	}
}

// ClearAll removes every account, transaction, user and setting in one unit.
func (s *AdminService) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return classify("clear all", err)
	}
	s.opts.Logger.Warn("store cleared", slog.String("path", s.store.Path()))
	s.opts.Metrics.ResetBalances()
	return nil
}

func (s *AdminService) GetSetting(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("get setting: %w: key is required", ErrConstraintViolation)
	}
	setting, err := s.store.Settings.Get(ctx, key)
	if err != nil {
		return "", classify("get setting", err)
	}
	return setting.Value, nil
}

func (s *AdminService) PutSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("put setting: %w: key is required", ErrConstraintViolation)
	}
	if err := s.store.Settings.Put(ctx, storage.Setting{Key: key, Value: value}); err != nil {
		return classify("put setting", err)
	}
	s.opts.Logger.Debug("setting stored", slog.String("key", key))
	return nil
}
