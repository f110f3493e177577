package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is the uniform verification failure. Expired, malformed,
// tampered and wrong-algorithm tokens are indistinguishable to callers.
var ErrTokenInvalid = errors.New("invalid token")

const defaultTokenTTLSeconds = 3600

// TokenManager issues and verifies signed bearer tokens. It holds no state
// beyond the immutable signing key, so concurrent use needs no locking.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager builds a manager around the process signing key.
func NewTokenManager(key []byte, ttlSeconds int) *TokenManager {
	if ttlSeconds <= 0 {
		ttlSeconds = defaultTokenTTLSeconds
	}
	return &TokenManager{key: key, ttl: time.Duration(ttlSeconds) * time.Second}
}

// GenerateToken builds and signs a token for the username.
func (tm *TokenManager) GenerateToken(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken checks signature and expiry and returns the subject username.
func (tm *TokenManager) VerifyToken(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		// The signing method is pinned; the alg value in the token header
		// is not trusted.
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return tm.key, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
