package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abhinav/feedback-service/internal/domain"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

// RequireRole guards a route with a required role. A request that never
// authenticated is rejected as unauthorized; an authenticated caller with a
// different role is rejected as forbidden. Pure predicate over the security
// context, no I/O.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != required {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
