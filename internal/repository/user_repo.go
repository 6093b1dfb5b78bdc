package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
)

type UserRepository struct {
	q DBTX
}

func NewUserRepository(q DBTX) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	var user db.User
	err := r.q.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	var user db.User
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("user %s not found", id))
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}
