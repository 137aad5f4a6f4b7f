package domain

import (
	"time"
)

// Subscription is a row of the billing subsystem's history table. The core
// only reads the most recent active record per user.
type Subscription struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	Status  string    `json:"status"`
	EndDate time.Time `json:"end_date"`
}

const SubscriptionStatusActive = "active"

// AccessSnapshot is the derived "has paid or trial access" pair embedded
// into every issued token. It is never persisted; subscription changes
// become visible at the next token refresh.
type AccessSnapshot struct {
	HasAccess bool       `json:"has_access"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
