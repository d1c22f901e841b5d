package handler

import (
	"errors"

	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService       service.AuthService
	userService       service.UserService
	permissionService service.PermissionService
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, permissionService service.PermissionService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, permissionService: permissionService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrUserInactive) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(response)
}

// ValidateToken checks a token and returns the session info
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Token is required"})
	}

	info, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"valid": true, "data": info})
}

// ChangePassword changes the caller's password
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "old_password and new_password are required"})
	}

	if err := h.authService.ChangePassword(actor.UserID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Heartbeat keeps the session alive
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.authService.Heartbeat(actor.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Me returns the caller's profile
// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	user, err := h.userService.GetUserByID(actor, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

// MyModules lists the modules the caller can open
// GET /api/v1/me/modules
func (h *AuthHandler) MyModules(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(fiber.Map{"data": h.permissionService.Modules(actor)})
}

// CheckPermission answers whether the caller may perform an action
// GET /api/v1/me/permissions/check?module=M07&action=update&cycle_id=...
func (h *AuthHandler) CheckPermission(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycleID, ok := optionalUUID(c, "cycle_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle_id"})
	}
	res, err := h.permissionService.Check(actor, c.Query("module"), c.Query("action"), cycleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": res})
}
