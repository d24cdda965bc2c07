package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nibblify/internal/http/middleware"
	"nibblify/internal/model"
	"nibblify/internal/service"
)

// Login exchanges form-encoded username/password for a bearer token.
func Login(auth service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.FormValue("username")
		password := c.FormValue("password")
		if username == "" || password == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "CREDENTIALS_REQUIRED", "username and password are required")
		}
		tok, err := auth.Login(c.UserContext(), username, password)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(tok)
	}
}

// Register creates an account from a JSON body.
func Register(auth service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.RegisterCredentials
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "invalid request body")
		}
		u, err := auth.Register(c.UserContext(), in)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(u)
	}
}

// Me returns the authenticated account.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := middleware.CurrentUser(c)
		if !ok {
			return middleware.ErrNotAuthenticated
		}
		return c.JSON(u)
	}
}
