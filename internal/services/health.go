package services

import (
	"fmt"
	"log"
	"os"

	"github.com/EliseTrad/gradapptracker/internal/config"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB, files *storage.Store) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check the upload root is present and writable
	if info, err := os.Stat(files.Root()); err != nil || !info.IsDir() {
		result.Status = "unhealthy"
		result.Storage = "unavailable"
		result.Details["storage_error"] = fmt.Sprintf("upload root %s is not a directory", files.Root())
		if result.ErrorMessage == "" {
			result.ErrorMessage = result.Details["storage_error"]
		}
		log.Printf("Health check failed - upload root: %v", err)
	} else {
		probe, err := os.CreateTemp(files.Root(), ".healthcheck-*")
		if err != nil {
			result.Status = "unhealthy"
			result.Storage = "readonly"
			result.Details["storage_error"] = err.Error()
			if result.ErrorMessage == "" {
				result.ErrorMessage = fmt.Sprintf("Upload root not writable: %v", err)
			}
			log.Printf("Health check failed - upload root write probe: %v", err)
		} else {
			probe.Close()
			os.Remove(probe.Name())
			result.Storage = "ok"
			result.Details["upload_root"] = files.Root()
		}
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
