package domain

import (
	"time"
)

// OtpChallenge is the single active passcode challenge for a contact
// identifier. It is overwritten on every re-request and deleted on
// successful verification.
type OtpChallenge struct {
	Identifier string    `json:"identifier"`
	Code       string    `json:"-"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	// OtpDailyCap is the number of codes that may be issued per identifier
	// per calendar day.
	OtpDailyCap = 5

	// OtpCodeDigits is the length of generated passcodes.
	OtpCodeDigits = 6
)

// SameCalendarDay reports whether both instants fall on the same calendar
// day in the given location. The daily attempt counter resets at midnight,
// not on a rolling 24h window.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// OtpRequestResult reports a successful code issuance.
type OtpRequestResult struct {
	AttemptsLeft int           `json:"attempts_left"`
	ExpiresIn    time.Duration `json:"expires_in"`
}
