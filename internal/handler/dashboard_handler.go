package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService  service.DashboardService
	competencyService service.CompetencyService
}

func NewDashboardHandler(dashboardService service.DashboardService, competencyService service.CompetencyService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, competencyService: competencyService}
}

// GetDashboardStats
// GET /api/v1/dashboard/stats?cycle_id=...
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycleID, ok := optionalUUID(c, "cycle_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle_id"})
	}
	stats, err := h.dashboardService.GetDashboardStats(actor, cycleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

// GetCompetencies lists the competency catalog
// GET /api/v1/competencies
func (h *DashboardHandler) GetCompetencies(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	items, err := h.competencyService.List(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}
