package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventra/eventra/internal/domain"
	"github.com/eventra/eventra/internal/repository"
)

// UserStore is the credential persistence surface.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SessionStore issues and resolves opaque login tokens.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, bool, error)
	Delete(ctx context.Context, token string) error
}

type Service struct {
	users      UserStore
	sessions   SessionStore
	bcryptCost int
}

func New(users UserStore, sessions SessionStore) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a user with a bcrypt password hash.
//
// Returns ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	const op = "service.auth.Register"

	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// Login verifies the credentials and issues a session token.
//
// Returns ErrUserNotFound for an unknown email and ErrInvalidCredentials for
// a wrong password; the two are distinct statuses in the public contract.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	const op = "service.auth.Login"

	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.sessions.Create(ctx, u.ID.String())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return u, token, nil
}

// Profile resolves a session token to its user. An unknown or expired token
// yields (nil, nil): the profile route reports that as an anonymous client,
// not as an error.
func (s *Service) Profile(ctx context.Context, token string) (*domain.User, error) {
	const op = "service.auth.Profile"

	if token == "" {
		return nil, nil
	}

	userID, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// Logout revokes the session token, if any.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.auth.Logout"

	if token == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
