package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bamboobank/bamboo/internal/storage"
)

type UserService struct {
	store *storage.Store
	opts  Options
}

func NewUserService(store *storage.Store, opts Options) *UserService {
	return &UserService{
		store: store,
		opts:  opts.withDefaults(),
	}
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (int64, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return 0, fmt.Errorf("create user: %w: email is required", ErrConstraintViolation)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return 0, fmt.Errorf("create user: %w: phone is required", ErrConstraintViolation)
	}

	role := req.Role
	if role == "" {
		role = RoleClient
	}
	country := req.Country
	if country == "" {
		country = s.opts.DefaultCountry
	}

	user := &storage.User{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Email:     email,
		Phone:     phone,
		Role:      role,
		Address:   req.Address,
		City:      req.City,
		Country:   country,
		Status:    StatusActive,
		CreatedAt: s.opts.Clock(),
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return 0, classify("create user", err)
	}

	s.opts.Logger.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)
	return user.ID, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]storage.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}
