package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexhub/identity-service/internal/domain"
)

type RateLimitRepository interface {
	Find(ctx context.Context, ip, purpose string) (*domain.RateLimitRecord, error)
	Upsert(ctx context.Context, record *domain.RateLimitRecord) error
}

type rateLimitRepository struct {
	pool *pgxpool.Pool
}

func NewRateLimitRepository(pool *pgxpool.Pool) RateLimitRepository {
	return &rateLimitRepository{pool: pool}
}

func (r *rateLimitRepository) Find(ctx context.Context, ip, purpose string) (*domain.RateLimitRecord, error) {
	const q = `
		SELECT ip, purpose, window_start, count, banned_until, last_attempt, COALESCE(reason, '')
		FROM rate_limits
		WHERE ip = $1 AND purpose = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rec domain.RateLimitRecord
	err := r.pool.QueryRow(ctx, q, ip, purpose).Scan(
		&rec.IP, &rec.Purpose, &rec.WindowStart, &rec.Count, &rec.BannedUntil, &rec.LastAttempt, &rec.Reason,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert writes the whole record in one atomic statement. Concurrent
// attempts may under-count but can never leave a partial row.
func (r *rateLimitRepository) Upsert(ctx context.Context, record *domain.RateLimitRecord) error {
	const q = `
		INSERT INTO rate_limits (ip, purpose, window_start, count, banned_until, last_attempt, reason)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		ON CONFLICT (ip, purpose) DO UPDATE SET
			window_start = EXCLUDED.window_start,
			count = EXCLUDED.count,
			banned_until = EXCLUDED.banned_until,
			last_attempt = EXCLUDED.last_attempt,
			reason = EXCLUDED.reason`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q,
		record.IP, record.Purpose, record.WindowStart, record.Count,
		record.BannedUntil, record.LastAttempt, record.Reason,
	)
	return err
}
