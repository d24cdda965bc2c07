package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nibblify/internal/service"
)

// ListTags serves GET /tags.
func ListTags(tagSvc service.TagService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		tags, err := tagSvc.List(c.UserContext(), uid)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(tags)
	}
}

// CreateTag serves POST /tags with {"name": "..."}.
func CreateTag(tagSvc service.TagService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		var in struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "invalid request body")
		}
		tag, err := tagSvc.Create(c.UserContext(), uid, in.Name)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(tag)
	}
}
