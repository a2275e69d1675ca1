package service

import (
	"context"
	"errors"
	"strings"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

type AuthService struct {
	store  Store
	hasher *PasswordHasher
}

func NewAuthService(store Store, hasher *PasswordHasher) *AuthService {
	return &AuthService{store: store, hasher: hasher}
}

// Register creates a user. Email is stored lowercased; a taken username or
// email is a conflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, domain.Validationf("All fields required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Username: username, Email: email, PasswordHash: hash}
	err = s.store.InTx(ctx, func(q repository.Querier) error {
		return q.CreateUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login accepts a username or an email.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.Validationf("All fields required")
	}

	var u *domain.User
	err := s.store.View(ctx, func(q repository.Querier) error {
		var err error
		u, err = q.FindUser(ctx, login)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.Unauthenticated("Invalid credentials")
	}
	return u, nil
}

func (s *AuthService) User(ctx context.Context, id int64) (*domain.User, error) {
	var u *domain.User
	err := s.store.View(ctx, func(q repository.Querier) error {
		var err error
		u, err = q.GetUserByID(ctx, id)
		return err
	})
	return u, err
}
