package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/pkg/events"
	"github.com/lexhub/identity-service/pkg/logger"
)

// RateLimitService is the coarse per-(ip, purpose) abuse guard invoked by
// the route layer before OTP and password flows. It counts attempts, not
// failures.
type RateLimitService interface {
	CheckBanned(ctx context.Context, ip, purpose string) (*domain.BanStatus, error)
	RecordAttempt(ctx context.Context, ip, purpose string) (*domain.BanStatus, error)
}

type rateLimitService struct {
	repo         repository.RateLimitRepository
	eventBus     events.Publisher
	window       time.Duration
	banThreshold int
	banDuration  time.Duration
	now          func() time.Time
}

func NewRateLimitService(repo repository.RateLimitRepository, eventBus events.Publisher, window time.Duration, banThreshold int, banDuration time.Duration) RateLimitService {
	return &rateLimitService{
		repo:         repo,
		eventBus:     eventBus,
		window:       window,
		banThreshold: banThreshold,
		banDuration:  banDuration,
		now:          time.Now,
	}
}

func (s *rateLimitService) CheckBanned(ctx context.Context, ip, purpose string) (*domain.BanStatus, error) {
	if ip == "" {
		ip = domain.UnknownIP
	}

	rec, err := s.repo.Find(ctx, ip, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit record: %w", err)
	}

	if rec != nil && rec.BannedUntil != nil && rec.BannedUntil.After(s.now()) {
		return &domain.BanStatus{Banned: true, BannedUntil: rec.BannedUntil, Reason: rec.Reason}, nil
	}

	return &domain.BanStatus{Banned: false}, nil
}

func (s *rateLimitService) RecordAttempt(ctx context.Context, ip, purpose string) (*domain.BanStatus, error) {
	if ip == "" {
		ip = domain.UnknownIP
	}

	rec, err := s.repo.Find(ctx, ip, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit record: %w", err)
	}

	now := s.now()

	// Attempts during an active ban are rejected outright and do not touch
	// the record; once the ban lapses the next attempt restarts the window.
	if rec != nil && rec.BannedUntil != nil && rec.BannedUntil.After(now) {
		return &domain.BanStatus{Banned: true, BannedUntil: rec.BannedUntil, Reason: rec.Reason}, nil
	}

	// The window slides per attempt: any attempt landing within the window
	// extends the burst, anything later restarts the count.
	windowStart := now
	nextCount := 1
	if rec != nil && now.Sub(rec.WindowStart) < s.window {
		windowStart = rec.WindowStart
		nextCount = rec.Count + 1
	}

	next := &domain.RateLimitRecord{
		IP:          ip,
		Purpose:     purpose,
		WindowStart: windowStart,
		Count:       nextCount,
		LastAttempt: now,
	}

	if nextCount >= s.banThreshold {
		bannedUntil := now.Add(s.banDuration)
		next.BannedUntil = &bannedUntil
		next.Reason = fmt.Sprintf("too many %s attempts", purpose)

		if err := s.repo.Upsert(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to persist rate limit record: %w", err)
		}

		logger.WarnContext(ctx, "IP banned", "ip", ip, "purpose", purpose, "banned_until", bannedUntil)
		if err := s.eventBus.Publish(ctx, events.IPBanned, events.IPBannedEvent{
			IP:          ip,
			Purpose:     purpose,
			BannedUntil: bannedUntil,
			Reason:      next.Reason,
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish ip.banned event", "error", err)
		}

		return &domain.BanStatus{Banned: true, BannedUntil: &bannedUntil, Reason: next.Reason}, nil
	}

	// Below threshold: persist the counters and clear any stale ban flag.
	if err := s.repo.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist rate limit record: %w", err)
	}

	return &domain.BanStatus{Banned: false}, nil
}
