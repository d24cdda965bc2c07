package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nibblify/internal/http/middleware"
	"nibblify/internal/model"
	"nibblify/internal/service"
)

// owner returns the authenticated user's ID. Routes using it sit behind
// middleware.Authenticate.
func owner(c *fiber.Ctx) (model.ID, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return "", middleware.ErrNotAuthenticated
	}
	return u.ID, nil
}

// ListDocuments serves GET /documents with skip & limit.
func ListDocuments(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.DefaultListLimit)))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		docs, err := docSvc.List(c.UserContext(), uid, skip, limit)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(docs)
	}
}

// CreateDocument serves POST /documents with a JSON body.
func CreateDocument(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		var in model.CreateDocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Create(c.UserContext(), uid, in)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(doc)
	}
}

// UploadDocument serves POST /documents/upload (multipart/form-data, fields
// file, title and repeated tag_ids).
func UploadDocument(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		in := service.UploadInput{
			Reader:   f,
			Filename: fh.Filename,
			Title:    c.FormValue("title"),
		}
		if form, err := c.MultipartForm(); err == nil {
			for _, v := range form.Value["tag_ids"] {
				in.TagIDs = append(in.TagIDs, model.ID(v))
			}
		}

		doc, err := docSvc.Upload(c.UserContext(), uid, in)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(doc)
	}
}

// GetDocument serves GET /documents/:id.
func GetDocument(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		doc, err := docSvc.Get(c.UserContext(), uid, model.ID(c.Params("id")))
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument serves PUT /documents/:id; absent fields are left as stored.
func UpdateDocument(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		var patch model.UpdateDocumentInput
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Update(c.UserContext(), uid, model.ID(c.Params("id")), patch)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument serves DELETE /documents/:id.
func DeleteDocument(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		if err := docSvc.Delete(c.UserContext(), uid, model.ID(c.Params("id"))); err != nil {
			return serviceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchDocuments serves POST /documents/search.
func SearchDocuments(docSvc service.DocumentService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := owner(c)
		if err != nil {
			return err
		}
		var q model.SearchQuery
		if err := c.BodyParser(&q); err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_BODY", "invalid request body")
		}
		res, err := docSvc.Search(c.UserContext(), uid, q)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}
