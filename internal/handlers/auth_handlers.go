package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lexhub/identity-service/internal/domain"
	"github.com/lexhub/identity-service/pkg/logger"
)

type otpRequestBody struct {
	Identifier string `json:"identifier"`
}

type otpVerifyBody struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type passwordLoginBody struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	*domain.SessionPair
	User *domain.UserInfo `json:"user"`
}

// OtpRequest handles POST /auth/otp/request.
func (h *Handlers) OtpRequest(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r, domain.PurposeOtpRequest) {
		return
	}

	var body otpRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_INPUT")
		return
	}

	ident, err := domain.ParseIdentifier(body.Identifier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}

	result, err := h.otpService.Request(r.Context(), ident)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDailyLimitExceeded):
			writeError(w, http.StatusTooManyRequests, "Daily passcode limit reached. Try again tomorrow.", "DAILY_LIMIT_EXCEEDED")
		case errors.Is(err, domain.ErrDeliveryFailed):
			writeError(w, http.StatusBadGateway, "Could not deliver the passcode. Try again.", "DELIVERY_FAILED")
		default:
			logger.ErrorContext(r.Context(), "OTP request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"attempts_left": result.AttemptsLeft,
		"expires_in":    int64(result.ExpiresIn.Seconds()),
	})
}

// OtpVerify handles POST /auth/otp/verify. Success logs the user in,
// creating a passwordless account for unknown identifiers.
func (h *Handlers) OtpVerify(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r, domain.PurposeOtpVerify) {
		return
	}

	var body otpVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_INPUT")
		return
	}

	ident, err := domain.ParseIdentifier(body.Identifier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}

	pair, user, err := h.authService.LoginWithOtp(r.Context(), ident, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOtpNotFound):
			writeError(w, http.StatusNotFound, "No active passcode for this identifier", "OTP_NOT_FOUND")
		case errors.Is(err, domain.ErrOtpMismatch):
			writeError(w, http.StatusUnauthorized, "Incorrect passcode", "OTP_MISMATCH")
		case errors.Is(err, domain.ErrAccountDeleted):
			writeError(w, http.StatusForbidden, "Account has been deleted", "ACCOUNT_DELETED")
		default:
			logger.ErrorContext(r.Context(), "OTP verification failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{SessionPair: pair, User: user.ToUserInfo()})
}

// PasswordLogin handles POST /auth/login.
func (h *Handlers) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r, domain.PurposePasswordLogin) {
		return
	}

	var body passwordLoginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_INPUT")
		return
	}

	ident, err := domain.ParseIdentifier(body.Identifier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}
	if body.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required", "INVALID_INPUT")
		return
	}

	pair, user, err := h.authService.LoginWithPassword(r.Context(), ident, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		case errors.Is(err, domain.ErrAccountDeleted):
			writeError(w, http.StatusForbidden, "Account has been deleted", "ACCOUNT_DELETED")
		default:
			logger.ErrorContext(r.Context(), "Password login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{SessionPair: pair, User: user.ToUserInfo()})
}

// Refresh handles POST /auth/refresh. A superseded token forces a full
// re-login client-side; it is never auto-retried.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_INPUT")
		return
	}

	pair, err := h.tokenService.Rotate(r.Context(), body.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "Refresh token has expired", "EXPIRED_TOKEN")
		case errors.Is(err, domain.ErrInvalidSignature):
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", "INVALID_TOKEN")
		case errors.Is(err, domain.ErrRefreshTokenSuperseded):
			writeError(w, http.StatusUnauthorized, "Refresh token superseded. Log in again.", "TOKEN_SUPERSEDED")
		case errors.Is(err, domain.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND")
		case errors.Is(err, domain.ErrAccountDeleted):
			writeError(w, http.StatusForbidden, "Account has been deleted", "ACCOUNT_DELETED")
		default:
			logger.ErrorContext(r.Context(), "Token rotation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Logout handles POST /auth/logout (JWT-guarded).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing token claims", "UNAUTHORIZED")
		return
	}

	if err := h.tokenService.Revoke(r.Context(), claims.Sub); err != nil {
		logger.ErrorContext(r.Context(), "Logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SubscriptionStatus handles GET /subscription/status (JWT-guarded). The
// snapshot is recomputed on demand so plan changes show up immediately.
func (h *Handlers) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing token claims", "UNAUTHORIZED")
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), claims.Sub)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND")
		return
	}

	snapshot, err := h.subscription.Calculate(r.Context(), user.ID, user.CreatedAt)
	if err != nil {
		logger.ErrorContext(r.Context(), "Subscription calculation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
