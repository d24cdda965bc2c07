package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"nibblify/internal/model"
	"nibblify/internal/service"
)

// UserLocalKey holds the authenticated *model.User in Fiber's context locals.
const UserLocalKey = "user"

// ErrNotAuthenticated is returned for requests without a usable bearer token.
var ErrNotAuthenticated = fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")

// Authenticate requires a valid bearer token and stores the resolved user
// under UserLocalKey.
func Authenticate(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return ErrNotAuthenticated
		}

		user, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return fiber.NewError(fiber.StatusUnauthorized, "Could not validate credentials")
		}
		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(*model.User)
	return u, ok && u != nil
}
