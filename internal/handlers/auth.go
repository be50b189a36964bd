package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"libris/internal/middleware"
	"libris/internal/services"
	"libris/internal/utils"
)

// AuthHandler handles signup, login and logout routes.
type AuthHandler struct {
	Auth   *services.AuthService
	Store  *session.Store
	Logger *zap.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /api/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "auth.signup")
	}
	if req.Username == "" || req.Password == "" {
		return utils.ErrorResponse(c, "Username and password are required", fiber.StatusBadRequest, "auth.signup")
	}

	user, err := h.Auth.Signup(req.Username, req.Password)
	if err != nil {
		return serviceError(c, err, "auth.signup")
	}

	if err := h.startSession(c, user.ID); err != nil {
		return utils.ErrorResponse(c, "Failed to create session", fiber.StatusInternalServerError, "auth.signup")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "auth.login")
	}

	user, err := h.Auth.Authenticate(req.Username, req.Password)
	if err != nil {
		return serviceError(c, err, "auth.login")
	}

	if err := h.startSession(c, user.ID); err != nil {
		return utils.ErrorResponse(c, "Failed to create session", fiber.StatusInternalServerError, "auth.login")
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.Store.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			h.Logger.Warn("failed to destroy session", zap.Error(err))
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, userID uint) error {
	sess, err := h.Store.Get(c)
	if err != nil {
		return err
	}
	// Drop any prior identity before binding the new one.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.SessionUserKey, userID)
	return sess.Save()
}
