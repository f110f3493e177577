package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// RequireAuthenticated rejects requests that reached a protected route
// without an attached principal. Enforcement lives here, not in the
// middleware, so public routes stay reachable without special-casing.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
