package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/config"
	"github.com/EliseTrad/gradapptracker/internal/database"
	"github.com/EliseTrad/gradapptracker/internal/router"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/joho/godotenv"

	_ "github.com/EliseTrad/gradapptracker/docs/api" // Swagger docs
)

// @title GradAppTracker API
// @version 1.0.0
// @description REST backend for tracking graduate-school applications and supporting documents
// @contact.name API Support
// @contact.url https://github.com/EliseTrad/gradapptracker

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Prepare the upload root
	files, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload root: %v", err)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	app := router.New(cfg, db, issuer, files)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
