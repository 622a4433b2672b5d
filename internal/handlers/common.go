package handlers

import (
	"errors"
	"log"

	"github.com/EliseTrad/gradapptracker/internal/middleware"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"github.com/EliseTrad/gradapptracker/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// getUserID extracts the authenticated user id from context (set by auth middleware)
func getUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", types.Unauthenticated("Missing authenticated user", "auth.token.missing")
	}
	return userID, nil
}

// serviceError maps a service error onto the standard error envelope.
// CustomError codes pass through; anything else is a generic 500 with the
// detail kept server-side.
func serviceError(c *fiber.Ctx, err error, fallbackType string) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}
	log.Printf("Unexpected error (%s): %v", fallbackType, err)
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, fallbackType)
}

// queryFilters collects the program filter criteria from query parameters.
// Blank values are dropped here; unrecognized names are left for the
// service to skip.
func queryFilters(c *fiber.Ctx) map[string]string {
	filters := make(map[string]string)
	for key, values := range c.Queries() {
		if values != "" {
			filters[key] = values
		}
	}
	return filters
}
