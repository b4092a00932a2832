package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/eventra/eventra/internal/domain"
)

const userColumns = `id, name, email, password_hash, created_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

// Create persists a user.
//
// Returns repository.ErrConflict when the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const op = "postgres.UserRepo.Create"

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	var created domain.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash,
	).Scan(&created.ID, &created.Name, &created.Email, &created.PasswordHash, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &created, nil
}

// GetByEmail retrieves a user by email.
//
// Returns repository.ErrNotFound if no user has the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}

// GetByID retrieves a user by id.
//
// Returns repository.ErrNotFound if no user has the given id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByID"

	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}
