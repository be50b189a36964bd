package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends a standard error response.
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response.
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// NotAuthorizedResponse sends a 403 declined-mutation response.
func NotAuthorizedResponse(c *fiber.Ctx, errorType string) error {
	return ErrorResponse(c, "You are not authorized.", fiber.StatusForbidden, errorType)
}

// ConflictResponse sends a 409 response for duplicate unique keys.
func ConflictResponse(c *fiber.Ctx, message string, errorType string) error {
	return ErrorResponse(c, message, fiber.StatusConflict, errorType)
}

// ServiceUnavailableResponse sends a 503 response for failed outbound lookups.
func ServiceUnavailableResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusServiceUnavailable, "lookup.unavailable")
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
