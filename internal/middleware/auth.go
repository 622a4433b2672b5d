package middleware

import (
	"strings"

	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Locals key holding the authenticated user's id
const UserIDKey = "userID"

// AuthUser validates the bearer token and stores the caller's user id in
// the request context. A missing or malformed header, or any token that
// fails validation, is rejected as unauthenticated.
func AuthUser(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return types.Unauthenticated("Missing bearer token", "auth.token.missing")
		}

		userID := issuer.ExtractUserID(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
		if userID == "" {
			return types.Unauthenticated("Invalid or expired token", "auth.token.invalid")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
