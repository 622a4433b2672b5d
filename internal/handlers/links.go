package handlers

import (
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LinkHandler handles program-document link routes
type LinkHandler struct {
	DB *gorm.DB
}

// CreateLink handles POST /api/programs/:id/documents
// @Summary Link a document to a program
// @Description A document may be linked to a program at most once.
// @Tags Links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param body body object true "Document id and usage notes"
// @Success 201 {object} models.ProgramDocument
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs/{id}/documents [post]
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "createLink")
	}

	var body struct {
		DocumentID string  `json:"documentId"`
		UsageNotes *string `json:"usageNotes"`
	}
	if err := c.BodyParser(&body); err != nil || body.DocumentID == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "links.validation.input")
	}

	link, err := services.CreateLink(h.DB, userID, c.Params("id"), body.DocumentID, body.UsageNotes)
	if err != nil {
		return serviceError(c, err, "createLink")
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// ListLinks handles GET /api/programs/:id/documents
// @Summary List a program's document links
// @Tags Links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {array} models.ProgramDocument
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs/{id}/documents [get]
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "listLinks")
	}

	links, err := services.ListLinks(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "listLinks")
	}

	return c.Status(fiber.StatusOK).JSON(links)
}

// UpdateLink handles PUT /api/links/:id
// @Summary Update a link's usage notes
// @Tags Links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Link ID"
// @Param body body object true "Usage notes"
// @Success 200 {object} models.ProgramDocument
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /links/{id} [put]
func (h *LinkHandler) UpdateLink(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "updateLink")
	}

	var body struct {
		UsageNotes *string `json:"usageNotes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "links.validation.input")
	}

	link, err := services.UpdateLink(h.DB, userID, c.Params("id"), body.UsageNotes)
	if err != nil {
		return serviceError(c, err, "updateLink")
	}

	return c.Status(fiber.StatusOK).JSON(link)
}

// DeleteLink handles DELETE /api/links/:id
// @Summary Unlink a document from a program
// @Description Removes the link only; the document and its file are kept.
// @Tags Links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Link ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "deleteLink")
	}

	if err := services.DeleteLink(h.DB, userID, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteLink")
	}

	return utils.DeleteSuccessResponse(c, "Link removed")
}
