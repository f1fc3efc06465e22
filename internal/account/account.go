// Package account manages shopper records. Authentication itself lives in the
// external auth collaborator; this feature only stores the records it reads.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

// User is a shopper record. The password is stored as a bcrypt hash and never
// serialized back out.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"-"`
}

// Store is the persistence seam for shopper records. Email is unique.
type Store interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

// Service validates and hashes before delegating to the store.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, u User) (User, error) {
	if strings.TrimSpace(u.Email) == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	if u.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, dErrors.Wrap(dErrors.CodeInternal, "hash password", err)
		}
		u.PasswordHash = string(hash)
		u.Password = ""
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return User{}, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return User{}, dErrors.Wrap(dErrors.CodeInternal, "create user", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, u User) (User, error) {
	if strings.TrimSpace(u.ID) == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if u.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, dErrors.Wrap(dErrors.CodeInternal, "hash password", err)
		}
		u.PasswordHash = string(hash)
		u.Password = ""
	}
	if err := s.store.Update(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return User{}, dErrors.Wrap(dErrors.CodeInternal, "update user", err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "delete user", err)
	}
	return nil
}
