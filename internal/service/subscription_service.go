package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
)

// SubscriptionService derives the "has paid or trial access" snapshot that
// gets embedded into every issued token. The result is recomputed on each
// issuance and status check, never persisted.
type SubscriptionService interface {
	Calculate(ctx context.Context, userID int64, accountCreatedAt time.Time) (*domain.AccessSnapshot, error)
}

type subscriptionService struct {
	subRepo       repository.SubscriptionRepository
	trialDuration time.Duration
	now           func() time.Time
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, trialDuration time.Duration) SubscriptionService {
	return &subscriptionService{
		subRepo:       subRepo,
		trialDuration: trialDuration,
		now:           time.Now,
	}
}

func (s *subscriptionService) Calculate(ctx context.Context, userID int64, accountCreatedAt time.Time) (*domain.AccessSnapshot, error) {
	sub, err := s.subRepo.MostRecentActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription history: %w", err)
	}

	now := s.now()

	if sub != nil && sub.EndDate.After(now) {
		end := sub.EndDate
		return &domain.AccessSnapshot{HasAccess: true, ExpiresAt: &end}, nil
	}

	// First-party trial window anchored on account creation.
	if now.Sub(accountCreatedAt) < s.trialDuration {
		end := accountCreatedAt.Add(s.trialDuration)
		return &domain.AccessSnapshot{HasAccess: true, ExpiresAt: &end}, nil
	}

	return &domain.AccessSnapshot{HasAccess: false, ExpiresAt: nil}, nil
}
