package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "auth_principal"

// Principal is the request-scoped authenticated identity. A verified token
// is sufficient on its own; downstream handlers perform no further
// credential checks.
type Principal struct {
	Username string
}

// Middleware verifies bearer tokens and attaches the resulting principal.
// It never rejects a request itself: a missing or invalid token just leaves
// the request unauthenticated, and route guards decide whether that matters.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle runs once per request before any protected handler.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Next()
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	username, err := m.tokens.VerifyToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Username: username})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
