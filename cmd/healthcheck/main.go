package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/EliseTrad/gradapptracker/internal/config"
	"github.com/EliseTrad/gradapptracker/internal/database"
	"github.com/EliseTrad/gradapptracker/internal/services"
	"github.com/EliseTrad/gradapptracker/internal/storage"
)

func main() {
	// Load configuration
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

	files, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to open upload root: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(cfg, db, files)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
