package handlers

import (
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProgramHandler handles program CRUD routes
type ProgramHandler struct {
	DB *gorm.DB
}

// CreateProgram handles POST /api/programs
// @Summary Create a program
// @Description Create a graduate-school application record
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProgramInput true "Program fields"
// @Success 201 {object} models.Program
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "createProgram")
	}

	var body services.ProgramInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "programs.validation.input")
	}

	program, err := services.CreateProgram(h.DB, userID, body)
	if err != nil {
		return serviceError(c, err, "createProgram")
	}

	return c.Status(fiber.StatusCreated).JSON(program)
}

// ListPrograms handles GET /api/programs
// @Summary List programs
// @Description List the caller's programs, narrowed by filter query parameters (case-insensitive substring for text fields, exact YYYY-MM-DD match for deadline)
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param universityName query string false "University name filter"
// @Param fieldOfStudy query string false "Field of study filter"
// @Param focusArea query string false "Focus area filter"
// @Param status query string false "Status filter"
// @Param deadline query string false "Deadline date (YYYY-MM-DD)"
// @Success 200 {array} models.Program
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "listPrograms")
	}

	programs, err := services.ListPrograms(h.DB, userID, queryFilters(c))
	if err != nil {
		return serviceError(c, err, "listPrograms")
	}

	return c.Status(fiber.StatusOK).JSON(programs)
}

// GetProgram handles GET /api/programs/:id
// @Summary Get a program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} models.Program
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs/{id} [get]
func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "getProgram")
	}

	program, err := services.GetProgram(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getProgram")
	}

	return c.Status(fiber.StatusOK).JSON(program)
}

// UpdateProgram handles PUT /api/programs/:id
// @Summary Update a program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param body body services.ProgramInput true "Program fields"
// @Success 200 {object} models.Program
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs/{id} [put]
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "updateProgram")
	}

	var body services.ProgramInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "programs.validation.input")
	}

	program, err := services.UpdateProgram(h.DB, userID, c.Params("id"), body)
	if err != nil {
		return serviceError(c, err, "updateProgram")
	}

	return c.Status(fiber.StatusOK).JSON(program)
}

// DeleteProgram handles DELETE /api/programs/:id
// @Summary Delete a program
// @Description Delete a program and its document links; linked documents are kept
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /programs/{id} [delete]
func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "deleteProgram")
	}

	if err := services.DeleteProgram(h.DB, userID, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteProgram")
	}

	return utils.DeleteSuccessResponse(c, "Program deleted")
}
