package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// GetRoles returns all available roles with their permissions
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	roles, err := h.roleService.GetAllRoles(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": roles})
}

// GetPermissions returns every module/action permission code
// GET /api/v1/permissions
func (h *RoleHandler) GetPermissions(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	perms, err := h.roleService.GetAllPermissions(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": perms})
}
