package domain

import (
	"time"
)

// Rate-limit purposes. Counters are tracked per (ip, purpose) so abuse of
// one endpoint does not bleed into the others.
const (
	PurposeOtpRequest    = "otp_request"
	PurposeOtpVerify     = "otp_verify"
	PurposePasswordLogin = "password_login"
)

// UnknownIP is the sentinel key used when a proxy stripped the client IP.
const UnknownIP = "unknown"

// RateLimitRecord tracks attempt bursts for one (ip, purpose) pair.
type RateLimitRecord struct {
	IP          string     `json:"ip"`
	Purpose     string     `json:"purpose"`
	WindowStart time.Time  `json:"window_start"`
	Count       int        `json:"count"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	LastAttempt time.Time  `json:"last_attempt"`
	Reason      string     `json:"reason,omitempty"`
}

// BanStatus is returned by the limiter so callers can render a countdown
// rather than a bare rejection.
type BanStatus struct {
	Banned      bool       `json:"banned"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}
