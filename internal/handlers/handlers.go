package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/internal/service"
	"github.com/lexhub/identity-service/pkg/logger"
	"github.com/lexhub/identity-service/pkg/token"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService  service.AuthService
	otpService   service.OtpService
	tokenService service.TokenService
	subscription service.SubscriptionService
	rateLimiter  service.RateLimitService
	userRepo     repository.UserRepository
}

func New(
	authService service.AuthService,
	otpService service.OtpService,
	tokenService service.TokenService,
	subscription service.SubscriptionService,
	rateLimiter service.RateLimitService,
	userRepo repository.UserRepository,
) *Handlers {
	return &Handlers{
		authService:  authService,
		otpService:   otpService,
		tokenService: tokenService,
		subscription: subscription,
		rateLimiter:  rateLimiter,
		userRepo:     userRepo,
	}
}

// RequireJWT guards a route with access-token authentication.
func (h *Handlers) RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}

		claims, err := h.tokenService.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token has expired", "EXPIRED_TOKEN")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			return
		}
		if claims.TokenType != token.TypeAccess {
			writeError(w, http.StatusUnauthorized, "Invalid token type", "INVALID_TOKEN")
			return
		}

		ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guard applies the IP abuse limiter: reject early if banned, then count
// the attempt regardless of whether the underlying operation succeeds.
func (h *Handlers) guard(w http.ResponseWriter, r *http.Request, purpose string) bool {
	ip := getClientIP(r)

	status, err := h.rateLimiter.CheckBanned(r.Context(), ip, purpose)
	if err != nil {
		logger.ErrorContext(r.Context(), "Ban check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		return false
	}
	if !status.Banned {
		status, err = h.rateLimiter.RecordAttempt(r.Context(), ip, purpose)
		if err != nil {
			logger.ErrorContext(r.Context(), "Attempt recording failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
			return false
		}
	}

	if status.Banned {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":        "Too many attempts. Try again later.",
			"code":         "IP_BANNED",
			"banned_until": status.BannedUntil,
		})
		return false
	}

	return true
}

// Helper functions
func getClaims(r *http.Request) *token.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	response := map[string]string{
		"error": message,
		"code":  code,
	}
	writeJSON(w, statusCode, response)
}
