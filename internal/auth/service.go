package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/security"
)

var (
	ErrEmailInUse   = errors.New("email in use")
	ErrUserNotFound = errors.New("user not found")
	ErrBadPassword  = errors.New("bad password")
)

// UserStore is the slice of repo.UserStore the service needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) ([]user.User, error)
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Signup registers a new account. The email check and the insert are not
// atomic, so two racing signups can both succeed.
func (s *Service) Signup(ctx context.Context, email, password string) (user.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)

	if err != nil {
		return user.User{}, fmt.Errorf("signup lookup: %w", err)
	}

	if len(existing) > 0 {
		return user.User{}, ErrEmailInUse
	}

	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, err
	}

	u, err := s.users.Create(ctx, email, hash)

	if err != nil {
		return user.User{}, fmt.Errorf("signup create: %w", err)
	}

	return u, nil
}

// Signin checks the password against the first account holding email.
func (s *Service) Signin(ctx context.Context, email, password string) (user.User, error) {
	found, err := s.users.FindByEmail(ctx, email)

	if err != nil {
		return user.User{}, fmt.Errorf("signin lookup: %w", err)
	}

	if len(found) == 0 {
		return user.User{}, ErrUserNotFound
	}

	u := found[0]

	ok, err := security.VerifyPassword(password, u.Password)

	if err != nil {
		slog.Default().WarnContext(ctx, "stored credential unreadable",
			"user_id", u.ID,
			"err", err,
		)
		return user.User{}, ErrBadPassword
	}

	if !ok {
		return user.User{}, ErrBadPassword
	}

	return u, nil
}
