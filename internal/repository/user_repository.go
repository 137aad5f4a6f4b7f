package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexhub/identity-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, phone, passwordHash, role string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error)
	SetRefreshToken(ctx context.Context, userID int64, refreshToken string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, role, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(password_hash, ''), refresh_token, is_profile_complete, is_deleted, created_at, updated_at`

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Role, &u.Email, &u.Phone, &u.PasswordHash, &u.RefreshToken,
		&u.IsProfileComplete, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, email, phone, passwordHash, role string) (*domain.User, error) {
	const q = `
		INSERT INTO users (role, email, phone, password_hash, refresh_token)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), '')
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanUser(r.pool.QueryRow(ctx, q, role, email, phone, passwordHash))
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepository) FindByIdentifier(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	var q string
	switch ident.Kind {
	case domain.IdentifierPhone:
		q = `SELECT ` + userCols + ` FROM users WHERE phone = $1`
	case domain.IdentifierEmail:
		q = `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanUser(r.pool.QueryRow(ctx, q, ident.Value))
}

// SetRefreshToken overwrites the single valid refresh token for the user.
// An empty string means logged out.
func (r *userRepository) SetRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	const q = `UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, refreshToken)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
