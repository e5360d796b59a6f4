package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/repository"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the request-scoped security context established for an
// authenticated caller. It lives in the request's Locals and is discarded
// when the request completes.
type Principal struct {
	User *domain.User
	Role domain.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle authenticates requests carrying a bearer token. Requests without a
// token (or with a non-bearer scheme) proceed anonymously; role guards reject
// them downstream if the route needs a principal. A presented token that fails
// verification is terminal for the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	// UserContext carries the request timeout set by the transport layer.
	user, err := m.users.GetByUsername(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A token for a deleted or renamed account must not grant access.
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.MapError(err)
	}

	// Re-check subject equality and expiry against the record resolved now;
	// the account may have changed between issuance and use.
	if user.Username != claims.Subject {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return apperrors.NewUnauthorized("token expired")
	}

	c.Locals(principalKey, &Principal{User: user, Role: user.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal for this request.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
