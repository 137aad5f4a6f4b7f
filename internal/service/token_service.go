package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/pkg/config"
	"github.com/lexhub/identity-service/pkg/events"
	"github.com/lexhub/identity-service/pkg/logger"
	"github.com/lexhub/identity-service/pkg/token"
)

var timeNow = time.Now

// TokenService mints and verifies signed session tokens and enforces the
// single-valid-refresh-token-per-user rule.
type TokenService interface {
	Verify(tokenString string) (*token.Claims, error)
	IssueSessionPair(ctx context.Context, user *domain.User) (*domain.SessionPair, error)
	Rotate(ctx context.Context, refreshToken string) (*domain.SessionPair, error)
	Revoke(ctx context.Context, userID int64) error
}

type tokenService struct {
	userRepo     repository.UserRepository
	subscription SubscriptionService
	eventBus     events.Publisher
	config       *config.Config
}

func NewTokenService(
	userRepo repository.UserRepository,
	subscription SubscriptionService,
	eventBus events.Publisher,
	config *config.Config,
) TokenService {
	return &tokenService{
		userRepo:     userRepo,
		subscription: subscription,
		eventBus:     eventBus,
		config:       config,
	}
}

// Verify is storage-free: a verified but superseded refresh token is only
// caught by the stored-token comparison in Rotate.
func (s *tokenService) Verify(tokenString string) (*token.Claims, error) {
	claims, err := token.Parse(tokenString, s.config.Auth.JWTSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidSignature
	}
	return claims, nil
}

func (s *tokenService) IssueSessionPair(ctx context.Context, user *domain.User) (*domain.SessionPair, error) {
	snapshot, err := s.subscription.Calculate(ctx, user.ID, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate subscription access: %w", err)
	}

	accessToken, err := token.Mint(
		user.ID, user.Role, user.IsProfileComplete,
		snapshot.HasAccess, snapshot.ExpiresAt,
		token.TypeAccess, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	refreshToken, err := token.Mint(
		user.ID, user.Role, user.IsProfileComplete,
		snapshot.HasAccess, snapshot.ExpiresAt,
		token.TypeRefresh, s.config.Auth.JWTSecret, s.config.Auth.RefreshTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mint refresh token: %w", err)
	}

	// The sole mutation: overwriting the stored value invalidates any prior
	// refresh token immediately. Last writer wins.
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.SessionIssued, events.SessionIssuedEvent{
		UserID:   user.ID,
		Role:     user.Role,
		IssuedAt: timeNow(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish session.issued event", "error", err)
	}

	return &domain.SessionPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *tokenService) Rotate(ctx context.Context, refreshToken string) (*domain.SessionPair, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, domain.ErrInvalidSignature
	}

	user, err := s.userRepo.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrAccountNotFound
	}
	if user.IsDeleted {
		return nil, domain.ErrAccountDeleted
	}

	// Byte-for-byte comparison against the stored value; mismatch means the
	// token was already rotated or another session was issued.
	if user.RefreshToken != refreshToken {
		return nil, domain.ErrRefreshTokenSuperseded
	}

	// Subscription state can change between issuances; the snapshot is
	// recomputed inside IssueSessionPair.
	pair, err := s.IssueSessionPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.SessionRotated, events.SessionRotatedEvent{
		UserID:    user.ID,
		RotatedAt: timeNow(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish session.rotated event", "error", err)
	}

	return pair, nil
}

// Revoke clears the stored refresh token, logging the user out everywhere.
func (s *tokenService) Revoke(ctx context.Context, userID int64) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.SessionRevoked, events.SessionRevokedEvent{
		UserID:    userID,
		RevokedAt: timeNow(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish session.revoked event", "error", err)
	}

	return nil
}
