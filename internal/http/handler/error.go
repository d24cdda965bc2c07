package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nibblify/internal/http/middleware"
	"nibblify/internal/service"
)

// errorPayload is the error response body. Detail follows the backend's
// {"detail": "..."} convention so clients can show it verbatim.
type errorPayload struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Detail    string `json:"detail"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, detail string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Detail:    detail,
	})
}

// serviceErrors maps service sentinels to responses.
var serviceErrors = []struct {
	err    error
	status int
	code   string
	detail string
}{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Document not found"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "Not enough permissions"},
	{service.ErrIDRequired, fiber.StatusUnprocessableEntity, "INVALID_ID", "id is required"},
	{service.ErrTitleRequired, fiber.StatusUnprocessableEntity, "TITLE_REQUIRED", "Title is required"},
	{service.ErrTagNameRequired, fiber.StatusUnprocessableEntity, "NAME_REQUIRED", "Tag name is required"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrUnsupportedFile, fiber.StatusBadRequest, "UNSUPPORTED_FILE", "Only PDF files are supported"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File too large"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password"},
	{service.ErrInvalidToken, fiber.StatusUnauthorized, "INVALID_TOKEN", "Could not validate credentials"},
	{service.ErrInactiveUser, fiber.StatusBadRequest, "INACTIVE_USER", "Inactive user"},
	{service.ErrEmailTaken, fiber.StatusBadRequest, "EMAIL_TAKEN", "The user with this email already exists in the system"},
	{service.ErrInvalidEmail, fiber.StatusUnprocessableEntity, "INVALID_EMAIL", "value is not a valid email address"},
	{service.ErrPasswordRequired, fiber.StatusUnprocessableEntity, "PASSWORD_REQUIRED", "Password is required"},
}

// serviceError translates a service error; anything unknown is logged and
// reported as a 500.
func serviceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			return writeError(c, e.status, e.code, e.detail)
		}
	}
	log.Error("request failed",
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "Bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "Not Found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "Method Not Allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "File too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "Internal server error")
		}
	}
}
