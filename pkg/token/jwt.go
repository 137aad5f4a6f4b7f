package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type Claims struct {
	Sub                   int64      `json:"sub"`
	Role                  string     `json:"role"`
	IsProfileComplete     bool       `json:"is_profile_complete"`
	HasSubscriptionAccess bool       `json:"has_subscription_access"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	TokenType             string     `json:"token_type"`
	jwt.RegisteredClaims
}

// Mint produces a signed HS256 token embedding the session payload. It is a
// pure function of its inputs plus wall-clock time.
func Mint(sub int64, role string, isProfileComplete, hasAccess bool, accessExpiresAt *time.Time, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:                   sub,
		Role:                  role,
		IsProfileComplete:     isProfileComplete,
		HasSubscriptionAccess: hasAccess,
		SubscriptionExpiresAt: accessExpiresAt,
		TokenType:             tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every minted token unique, so reissuing within the
			// same second still supersedes the previous refresh token.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"lexhub-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse verifies the signature and expiry and returns the decoded claims.
// Expiry failures surface as jwt.ErrTokenExpired for callers to map.
func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
