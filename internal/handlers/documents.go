package handlers

import (
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"github.com/EliseTrad/gradapptracker/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DocumentHandler handles document upload and lifecycle routes
type DocumentHandler struct {
	DB    *gorm.DB
	Files *storage.Store
}

// uploadInputFromForm extracts the multipart file (if any) and metadata
// fields from the request. The io.Reader in the result must be closed by
// the caller via the returned closer.
func uploadInputFromForm(c *fiber.Ctx) (services.UploadInput, func(), error) {
	in := services.UploadInput{
		DocumentType: c.FormValue("documentType"),
	}
	if notes := c.FormValue("notes"); notes != "" {
		in.Notes = &notes
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// No file part: metadata-only input
		return in, func() {}, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return in, func() {}, types.Internal("Failed to read upload", "documents.upload.read")
	}

	in.FileName = fileHeader.Filename
	in.Size = fileHeader.Size
	in.Content = src
	return in, func() { src.Close() }, nil
}

// UploadDocument handles POST /api/documents
// @Summary Upload a document
// @Description Upload a supporting document (multipart field "file", optional "documentType" and "notes"). Max 5 MiB; pdf, docx, doc, txt, jpg, jpeg, png only.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Param documentType formData string false "Document type"
// @Param notes formData string false "Notes"
// @Success 201 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "uploadDocument")
	}

	in, closeFile, err := uploadInputFromForm(c)
	if err != nil {
		return serviceError(c, err, "uploadDocument")
	}
	defer closeFile()

	if in.Content == nil {
		return utils.ErrorResponse(c, "No file provided", fiber.StatusBadRequest, "documents.validation.file")
	}

	doc, err := services.UploadDocument(h.DB, h.Files, userID, in)
	if err != nil {
		return serviceError(c, err, "uploadDocument")
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ListDocuments handles GET /api/documents
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Document
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "listDocuments")
	}

	docs, err := services.ListDocuments(h.DB, userID)
	if err != nil {
		return serviceError(c, err, "listDocuments")
	}

	return c.Status(fiber.StatusOK).JSON(docs)
}

// GetDocument handles GET /api/documents/:id
// @Summary Get a document's metadata
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "getDocument")
	}

	doc, err := services.GetDocument(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getDocument")
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

// ReplaceDocument handles PUT /api/documents/:id
// @Summary Replace a document
// @Description With a multipart "file" the stored file is replaced (old file removed after commit); without one only documentType/notes change.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param file formData file false "Replacement file"
// @Param documentType formData string false "Document type"
// @Param notes formData string false "Notes"
// @Success 200 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [put]
func (h *DocumentHandler) ReplaceDocument(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "replaceDocument")
	}

	in, closeFile, err := uploadInputFromForm(c)
	if err != nil {
		return serviceError(c, err, "replaceDocument")
	}
	defer closeFile()

	doc, err := services.ReplaceDocument(h.DB, h.Files, userID, c.Params("id"), in)
	if err != nil {
		return serviceError(c, err, "replaceDocument")
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

// ReplaceDocumentPath handles PUT /api/documents/:id/path
// @Summary Point a document at an existing file
// @Description Switch the metadata to a file already on disk; the previous file is deleted synchronously first.
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param body body object true "New file path"
// @Success 200 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id}/path [put]
func (h *DocumentHandler) ReplaceDocumentPath(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "replaceDocumentPath")
	}

	var body struct {
		FilePath string `json:"filePath"`
	}
	if err := c.BodyParser(&body); err != nil || body.FilePath == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	doc, err := services.ReplaceDocumentPath(h.DB, h.Files, userID, c.Params("id"), body.FilePath)
	if err != nil {
		return serviceError(c, err, "replaceDocumentPath")
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

// DeleteDocument handles DELETE /api/documents/:id
// @Summary Delete a document
// @Description Refused with 409 while any program link references the document.
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "deleteDocument")
	}

	if err := services.DeleteDocument(h.DB, h.Files, userID, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteDocument")
	}

	return utils.DeleteSuccessResponse(c, "Document deleted")
}
