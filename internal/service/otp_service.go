package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/pkg/events"
	"github.com/lexhub/identity-service/pkg/logger"
)

// OtpSender dispatches a passcode over the channel matching the identifier.
type OtpSender interface {
	SendOtp(ident domain.Identifier, code string) error
}

type OtpService interface {
	Request(ctx context.Context, ident domain.Identifier) (*domain.OtpRequestResult, error)
	Verify(ctx context.Context, ident domain.Identifier, code string) error
}

type otpService struct {
	otpRepo  repository.OtpRepository
	sender   OtpSender
	eventBus events.Publisher
	dailyCap int
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewOtpService(otpRepo repository.OtpRepository, sender OtpSender, eventBus events.Publisher, dailyCap int, ttl time.Duration) OtpService {
	return &otpService{
		otpRepo:  otpRepo,
		sender:   sender,
		eventBus: eventBus,
		dailyCap: dailyCap,
		ttl:      ttl,
		now:      time.Now,
		generate: generateCode,
	}
}

// generateCode draws a uniform 6-digit passcode from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *otpService) Request(ctx context.Context, ident domain.Identifier) (*domain.OtpRequestResult, error) {
	existing, err := s.otpRepo.Find(ctx, ident.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}

	now := s.now()

	// The attempt counter resets at midnight, not on a rolling 24h window.
	nextAttempts := 1
	if existing != nil && domain.SameCalendarDay(existing.CreatedAt, now, time.Local) {
		nextAttempts = existing.Attempts + 1
	}

	if nextAttempts > s.dailyCap {
		return nil, domain.ErrDailyLimitExceeded
	}

	code, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate passcode: %w", err)
	}

	// Delivery failures abort before persistence so the stored challenge
	// always refers to a code that was actually sent.
	if err := s.sender.SendOtp(ident, code); err != nil {
		logger.ErrorContext(ctx, "Passcode delivery failed", "error", err, "identifier", ident.Value)
		return nil, fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	challenge := &domain.OtpChallenge{
		Identifier: ident.Value,
		Code:       code,
		Attempts:   nextAttempts,
		CreatedAt:  now,
	}
	if err := s.otpRepo.Upsert(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	attemptsLeft := s.dailyCap - nextAttempts
	if attemptsLeft < 0 {
		attemptsLeft = 0
	}

	channel := "email"
	if ident.IsPhone() {
		channel = "sms"
	}
	if err := s.eventBus.Publish(ctx, events.OtpRequested, events.OtpRequestedEvent{
		Identifier:   ident.Value,
		Channel:      channel,
		AttemptsLeft: attemptsLeft,
		RequestedAt:  now,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish otp.requested event", "error", err)
	}

	return &domain.OtpRequestResult{
		AttemptsLeft: attemptsLeft,
		ExpiresIn:    s.ttl,
	}, nil
}

func (s *otpService) Verify(ctx context.Context, ident domain.Identifier, code string) error {
	challenge, err := s.otpRepo.Find(ctx, ident.Value)
	if err != nil {
		return fmt.Errorf("failed to look up challenge: %w", err)
	}
	if challenge == nil {
		return domain.ErrOtpNotFound
	}

	// An expired challenge is indistinguishable from an absent one.
	if s.now().Sub(challenge.CreatedAt) > s.ttl {
		return domain.ErrOtpNotFound
	}

	if challenge.Code != code {
		return domain.ErrOtpMismatch
	}

	// Consume on success: the challenge is one-shot.
	if err := s.otpRepo.Delete(ctx, ident.Value); err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}

	return nil
}
