package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/pkg/events"
	"github.com/lexhub/identity-service/pkg/logger"
)

// AuthService composes the OTP manager and the token service into the two
// login flows the route layer exposes.
type AuthService interface {
	LoginWithOtp(ctx context.Context, ident domain.Identifier, code string) (*domain.SessionPair, *domain.User, error)
	LoginWithPassword(ctx context.Context, ident domain.Identifier, password string) (*domain.SessionPair, *domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	otp      OtpService
	tokens   TokenService
	eventBus events.Publisher
}

func NewAuthService(
	userRepo repository.UserRepository,
	otp OtpService,
	tokens TokenService,
	eventBus events.Publisher,
) AuthService {
	return &authService{
		userRepo: userRepo,
		otp:      otp,
		tokens:   tokens,
		eventBus: eventBus,
	}
}

// LoginWithOtp verifies the presented passcode and issues a session. An
// unknown identifier becomes a fresh passwordless consumer account, which
// is how passwordless signup works.
func (s *authService) LoginWithOtp(ctx context.Context, ident domain.Identifier, code string) (*domain.SessionPair, *domain.User, error) {
	if err := s.otp.Verify(ctx, ident, code); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByIdentifier(ctx, ident)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil && user.IsDeleted {
		return nil, nil, domain.ErrAccountDeleted
	}

	if user == nil {
		email, phone := "", ""
		switch ident.Kind {
		case domain.IdentifierPhone:
			phone = ident.Value
		case domain.IdentifierEmail:
			email = ident.Value
		}
		user, err = s.userRepo.Create(ctx, email, phone, "", domain.RoleConsumer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		logger.InfoContext(ctx, "Passwordless account created", "user_id", user.ID)
	}

	if err := s.eventBus.Publish(ctx, events.OtpVerified, events.OtpVerifiedEvent{
		Identifier: ident.Value,
		UserID:     user.ID,
		VerifiedAt: timeNow(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish otp.verified event", "error", err)
	}

	pair, err := s.tokens.IssueSessionPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

func (s *authService) LoginWithPassword(ctx context.Context, ident domain.Identifier, password string) (*domain.SessionPair, *domain.User, error) {
	user, err := s.userRepo.FindByIdentifier(ctx, ident)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if user.IsDeleted {
		return nil, nil, domain.ErrAccountDeleted
	}
	if user.IsPasswordless() {
		return nil, nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssueSessionPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}
