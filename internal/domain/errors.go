package domain

import (
	"errors"
)

// Failure taxonomy surfaced to the route layer. The core never retries
// internally; the route layer decides HTTP status mapping.
var (
	ErrInvalidSignature       = errors.New("token signature is invalid")
	ErrTokenExpired           = errors.New("token has expired")
	ErrRefreshTokenSuperseded = errors.New("refresh token has been superseded")
	ErrDailyLimitExceeded     = errors.New("daily passcode limit exceeded")
	ErrDeliveryFailed         = errors.New("passcode delivery failed")
	ErrOtpNotFound            = errors.New("no active passcode for identifier")
	ErrOtpMismatch            = errors.New("passcode does not match")
	ErrIPBanned               = errors.New("ip address is temporarily banned")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountDeleted         = errors.New("account has been deleted")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)
