package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"libris/internal/types"
)

// SessionUserKey is the session key holding the signed-in user's id.
const SessionUserKey = "user_id"

// UserIDKey is the request-local key the auth middleware sets for handlers.
const UserIDKey = "userID"

// RequireUser validates that the request carries a signed-in session and
// stashes the user id in request locals.
func RequireUser(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Session unavailable",
				Type:    "auth.session",
			}
		}

		raw := sess.Get(SessionUserKey)
		userID, ok := raw.(uint)
		if !ok {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Sign in required",
				Type:    "auth.session",
			}
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// SessionUserID returns the signed-in user id set by RequireUser.
func SessionUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(UserIDKey).(uint)
	return userID, ok
}
