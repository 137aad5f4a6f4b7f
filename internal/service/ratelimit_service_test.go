package service

import (
	"context"
	"testing"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimitService(repo *mockRateLimitRepo) *rateLimitService {
	return NewRateLimitService(repo, &mockPublisher{}, 5*time.Minute, 10, 24*time.Hour).(*rateLimitService)
}

func TestBanEscalation(t *testing.T) {
	repo := newMockRateLimitRepo()
	s := newTestRateLimitService(repo)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	for i := 1; i <= 9; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		status, err := s.RecordAttempt(context.Background(), "203.0.113.7", domain.PurposeOtpRequest)
		require.NoError(t, err)
		assert.False(t, status.Banned, "attempt %d", i)
	}

	now = base.Add(10 * time.Second)
	status, err := s.RecordAttempt(context.Background(), "203.0.113.7", domain.PurposeOtpRequest)
	require.NoError(t, err)
	assert.True(t, status.Banned)
	require.NotNil(t, status.BannedUntil)
	assert.Equal(t, now.Add(24*time.Hour), *status.BannedUntil)

	checked, err := s.CheckBanned(context.Background(), "203.0.113.7", domain.PurposeOtpRequest)
	require.NoError(t, err)
	assert.True(t, checked.Banned)
}

func TestBanExpiryResetsWindow(t *testing.T) {
	repo := newMockRateLimitRepo()
	s := newTestRateLimitService(repo)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		_, err := s.RecordAttempt(context.Background(), "198.51.100.2", domain.PurposeOtpVerify)
		require.NoError(t, err)
	}

	// Attempts during the ban are rejected and do not extend it.
	now = base.Add(time.Hour)
	status, err := s.RecordAttempt(context.Background(), "198.51.100.2", domain.PurposeOtpVerify)
	require.NoError(t, err)
	assert.True(t, status.Banned)
	assert.Equal(t, base.Add(24*time.Hour), *status.BannedUntil)

	// Once the ban lapses the next attempt starts a fresh window.
	now = base.Add(24*time.Hour + time.Minute)
	status, err = s.RecordAttempt(context.Background(), "198.51.100.2", domain.PurposeOtpVerify)
	require.NoError(t, err)
	assert.False(t, status.Banned)

	rec, err := repo.Find(context.Background(), "198.51.100.2", domain.PurposeOtpVerify)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Nil(t, rec.BannedUntil)
	assert.Empty(t, rec.Reason)
}

func TestWindowRestartAfterGap(t *testing.T) {
	repo := newMockRateLimitRepo()
	s := newTestRateLimitService(repo)

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, err := s.RecordAttempt(context.Background(), "192.0.2.1", domain.PurposePasswordLogin)
		require.NoError(t, err)
	}

	now = base.Add(6 * time.Minute)
	_, err := s.RecordAttempt(context.Background(), "192.0.2.1", domain.PurposePasswordLogin)
	require.NoError(t, err)

	rec, err := repo.Find(context.Background(), "192.0.2.1", domain.PurposePasswordLogin)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, now, rec.WindowStart)
}

func TestPurposesAreIndependent(t *testing.T) {
	repo := newMockRateLimitRepo()
	s := newTestRateLimitService(repo)

	for i := 0; i < 9; i++ {
		_, err := s.RecordAttempt(context.Background(), "203.0.113.9", domain.PurposeOtpRequest)
		require.NoError(t, err)
	}

	status, err := s.RecordAttempt(context.Background(), "203.0.113.9", domain.PurposePasswordLogin)
	require.NoError(t, err)
	assert.False(t, status.Banned)
}

func TestMissingIPUsesSentinel(t *testing.T) {
	repo := newMockRateLimitRepo()
	s := newTestRateLimitService(repo)

	_, err := s.RecordAttempt(context.Background(), "", domain.PurposeOtpRequest)
	require.NoError(t, err)

	rec, err := repo.Find(context.Background(), domain.UnknownIP, domain.PurposeOtpRequest)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Count)
}
