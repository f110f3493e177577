package auth

import (
	"crypto/rand"
	"fmt"
)

const signingKeySize = 32

// NewSigningKey generates the process-lifetime HMAC secret. The key is never
// persisted or rotated, so tokens signed by one process instance cannot be
// verified by another.
func NewSigningKey() ([]byte, error) {
	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}
