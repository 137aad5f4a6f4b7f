package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexhub/identity-service/internal/domain"
)

type OtpRepository interface {
	Find(ctx context.Context, identifier string) (*domain.OtpChallenge, error)
	Upsert(ctx context.Context, challenge *domain.OtpChallenge) error
	Delete(ctx context.Context, identifier string) error
}

type otpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) OtpRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Find(ctx context.Context, identifier string) (*domain.OtpChallenge, error) {
	const q = `
		SELECT identifier, code, attempts, created_at
		FROM otp_challenges
		WHERE identifier = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.OtpChallenge
	err := r.pool.QueryRow(ctx, q, identifier).Scan(&c.Identifier, &c.Code, &c.Attempts, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert replaces the single active challenge for the identifier in one
// atomic statement so concurrent requests never leave a partial row.
func (r *otpRepository) Upsert(ctx context.Context, challenge *domain.OtpChallenge) error {
	const q = `
		INSERT INTO otp_challenges (identifier, code, attempts, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identifier) DO UPDATE SET
			code = EXCLUDED.code,
			attempts = EXCLUDED.attempts,
			created_at = EXCLUDED.created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, challenge.Identifier, challenge.Code, challenge.Attempts, challenge.CreatedAt)
	return err
}

func (r *otpRepository) Delete(ctx context.Context, identifier string) error {
	const q = `DELETE FROM otp_challenges WHERE identifier = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, identifier)
	return err
}
