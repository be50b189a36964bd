package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"libris/internal/config"
	"libris/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	OpenLibrary  string            `json:"open_library"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
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
			result.Details["database_name"] = cfg.DBName
		}
	}

	// Check Open Library connectivity
	if err := utils.PingOpenLibrary(cfg.OpenLibraryBaseURL); err != nil {
		result.Status = "unhealthy"
		result.OpenLibrary = "unreachable"
		result.Details["open_library_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Open Library ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; Open Library ping failed: %v", err)
		}
		log.Printf("Health check failed - open library ping: %v", err)
	} else {
		result.OpenLibrary = "ok"
		result.Details["open_library_url"] = cfg.OpenLibraryBaseURL
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
