package postgres

import (
	"context"
	"fmt"

	"github.com/example/staycal/internal/db"
	"github.com/example/staycal/internal/domain/user"
	"github.com/example/staycal/internal/internaltypes"
)

type UserRepo struct{ db db.Querier }

func NewUserRepo(q db.Querier) *UserRepo { return &UserRepo{db: q} }

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password_bcrypt) VALUES ($1,$2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("user %q already exists: %w", username, internaltypes.ErrInvalidInput)
	}
	if err != nil {
		return 0, db.WrapNotFound(err)
	}
	return id, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_bcrypt, created_at FROM users WHERE username=$1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return user.User{}, db.WrapNotFound(err)
	}
	return u, nil
}
