package router

import (
	"errors"
	"time"

	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/config"
	"github.com/EliseTrad/gradapptracker/internal/handlers"
	"github.com/EliseTrad/gradapptracker/internal/middleware"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// New assembles the Fiber application with all middleware and routes
func New(cfg *config.Config, db *gorm.DB, issuer *auth.Issuer, files *storage.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    storage.MaxUploadSize + 1<<20, // upload ceiling plus form overhead
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("gradapptracker")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Issuer: issuer, Files: files}
	programHandler := &handlers.ProgramHandler{DB: db}
	documentHandler := &handlers.DocumentHandler{DB: db, Files: files}
	linkHandler := &handlers.LinkHandler{DB: db}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Files: files}

	requireUser := middleware.AuthUser(issuer)

	// Public routes
	api.Get("/health", healthHandler.Health)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Account
	api.Delete("/account", requireUser, authHandler.DeleteAccount)

	// Programs
	api.Get("/programs", requireUser, programHandler.ListPrograms)
	api.Post("/programs", requireUser, programHandler.CreateProgram)
	api.Get("/programs/:id", requireUser, programHandler.GetProgram)
	api.Put("/programs/:id", requireUser, programHandler.UpdateProgram)
	api.Delete("/programs/:id", requireUser, programHandler.DeleteProgram)

	// Program-document links
	api.Post("/programs/:id/documents", requireUser, linkHandler.CreateLink)
	api.Get("/programs/:id/documents", requireUser, linkHandler.ListLinks)
	api.Put("/links/:id", requireUser, linkHandler.UpdateLink)
	api.Delete("/links/:id", requireUser, linkHandler.DeleteLink)

	// Documents
	api.Get("/documents", requireUser, documentHandler.ListDocuments)
	api.Post("/documents", requireUser, documentHandler.UploadDocument)
	api.Get("/documents/:id", requireUser, documentHandler.GetDocument)
	api.Put("/documents/:id", requireUser, documentHandler.ReplaceDocument)
	api.Put("/documents/:id/path", requireUser, documentHandler.ReplaceDocumentPath)
	api.Delete("/documents/:id", requireUser, documentHandler.DeleteDocument)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

// ErrorHandler translates errors that escape the handlers into the
// standard JSON envelope. CustomError codes and types pass through;
// anything else becomes a generic 500 without internal detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorType := "unknown"

	var ce *types.CustomError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
