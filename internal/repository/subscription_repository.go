package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexhub/identity-service/internal/domain"
)

// SubscriptionRepository reads the billing subsystem's subscription history.
// This core never writes to it.
type SubscriptionRepository interface {
	MostRecentActive(ctx context.Context, userID int64) (*domain.Subscription, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) MostRecentActive(ctx context.Context, userID int64) (*domain.Subscription, error) {
	const q = `
		SELECT id, user_id, status, end_date
		FROM subscriptions
		WHERE user_id = $1 AND status = $2
		ORDER BY end_date DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Subscription
	err := r.pool.QueryRow(ctx, q, userID, domain.SubscriptionStatusActive).Scan(
		&s.ID, &s.UserID, &s.Status, &s.EndDate,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
