package service

import (
	"context"
	"testing"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriptionService(repo *mockSubscriptionRepo) *subscriptionService {
	return NewSubscriptionService(repo, 7*24*time.Hour).(*subscriptionService)
}

func TestActiveSubscriptionWins(t *testing.T) {
	repo := newMockSubscriptionRepo()
	s := newTestSubscriptionService(repo)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	end := now.Add(30 * 24 * time.Hour)
	repo.subs[42] = &domain.Subscription{ID: 1, UserID: 42, Status: domain.SubscriptionStatusActive, EndDate: end}

	snapshot, err := s.Calculate(context.Background(), 42, now.Add(-365*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, snapshot.HasAccess)
	require.NotNil(t, snapshot.ExpiresAt)
	assert.Equal(t, end, *snapshot.ExpiresAt)
}

func TestTrialFallback(t *testing.T) {
	repo := newMockSubscriptionRepo()
	s := newTestSubscriptionService(repo)

	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt
	s.now = func() time.Time { return now }

	// Fresh account with no subscription history gets the trial window.
	snapshot, err := s.Calculate(context.Background(), 7, createdAt)
	require.NoError(t, err)
	assert.True(t, snapshot.HasAccess)
	require.NotNil(t, snapshot.ExpiresAt)
	assert.Equal(t, createdAt.Add(7*24*time.Hour), *snapshot.ExpiresAt)

	// Eight days in with still no subscription, access is gone and the
	// expiry is never a misleading future instant.
	now = createdAt.Add(8 * 24 * time.Hour)
	snapshot, err = s.Calculate(context.Background(), 7, createdAt)
	require.NoError(t, err)
	assert.False(t, snapshot.HasAccess)
	assert.Nil(t, snapshot.ExpiresAt)
}

func TestLapsedSubscriptionFallsBackToTrialWindow(t *testing.T) {
	repo := newMockSubscriptionRepo()
	s := newTestSubscriptionService(repo)

	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(3 * 24 * time.Hour)
	s.now = func() time.Time { return now }

	// The stored subscription already ended; the account is still inside
	// its trial window.
	repo.subs[9] = &domain.Subscription{ID: 2, UserID: 9, Status: domain.SubscriptionStatusActive, EndDate: createdAt.Add(24 * time.Hour)}

	snapshot, err := s.Calculate(context.Background(), 9, createdAt)
	require.NoError(t, err)
	assert.True(t, snapshot.HasAccess)
	assert.Equal(t, createdAt.Add(7*24*time.Hour), *snapshot.ExpiresAt)
}
