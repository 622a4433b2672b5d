package handlers

import (
	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and account deletion
type AuthHandler struct {
	DB     *gorm.DB
	Issuer *auth.Issuer
	Files  *storage.Store
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Create a user account with name, email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body services.RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	user, err := services.RegisterUser(h.DB, body)
	if err != nil {
		return serviceError(c, err, "register")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and issue a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "Email and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	token, user, err := services.LoginUser(h.DB, h.Issuer, body.Email, body.Password)
	if err != nil {
		return serviceError(c, err, "login")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// DeleteAccount handles DELETE /api/account
// @Summary Delete the authenticated account
// @Description Remove the account and all owned programs, documents and links
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /account [delete]
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return serviceError(c, err, "deleteAccount")
	}

	if err := services.DeleteAccount(h.DB, h.Files, userID); err != nil {
		return serviceError(c, err, "deleteAccount")
	}

	return utils.DeleteSuccessResponse(c, "Account deleted")
}
