package domain

// SessionPair is the access/refresh token pair returned on login, signup
// and rotation. Tokens are opaque strings to all callers.
type SessionPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
