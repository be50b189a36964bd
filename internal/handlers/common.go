package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"libris/internal/middleware"
	"libris/internal/openlibrary"
	"libris/internal/services"
	"libris/internal/types"
	"libris/internal/utils"
)

// ownUserID parses the :user_id path parameter and checks it against the
// signed-in session. Requests for another user's library fail closed. Denials
// come back as a non-nil *types.CustomError for the global error handler, so
// callers can rely on err != nil and never fall through with a zero user id.
func ownUserID(c *fiber.Ctx, errorType string) (uint, error) {
	sessionUserID, ok := middleware.SessionUserID(c)
	if !ok {
		return 0, &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "Sign in required",
			Type:    errorType,
		}
	}

	pathUserID, err := c.ParamsInt("user_id")
	if err != nil || pathUserID <= 0 {
		return 0, &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid user id",
			Type:    errorType,
		}
	}

	if uint(pathUserID) != sessionUserID {
		return 0, &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "You are not authorized.",
			Type:    errorType,
		}
	}

	return sessionUserID, nil
}

// serviceError maps service and lookup errors onto HTTP responses.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, openlibrary.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		return utils.NotAuthorizedResponse(c, errorType)
	case errors.Is(err, openlibrary.ErrServiceUnavailable):
		return utils.ServiceUnavailableResponse(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrDuplicateISBN):
		return utils.ConflictResponse(c, err.Error(), errorType)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, errorType)
	default:
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
	}
}

// paramUint parses a positive integer path parameter.
func paramUint(c *fiber.Ctx, name string) (uint, bool) {
	v, err := c.ParamsInt(name)
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}
