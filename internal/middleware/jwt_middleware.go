package middleware

import (
	"strings"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(token string) (services.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// resolved identity is stored for CurrentIdentity.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthenticated("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return apperr.Unauthenticated("Authorization header format must be 'Bearer <token>'")
		}

		identity, err := validator.ValidateToken(parts[1])
		if err != nil {
			zap.L().Debug("JWT validation failed", zap.Error(err))
			return apperr.Unauthenticated("Invalid or expired token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// AdminRequired rejects callers whose token does not carry the admin flag.
// It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return apperr.Unauthenticated("Authentication required")
		}
		if !identity.IsAdmin {
			return apperr.Forbidden("Action Forbidden")
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
