package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/repository"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLogs
// GET /api/v1/audit?user_id=...&module=M09&entity_id=...&limit=100&offset=0
func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	entries, total, err := h.auditService.List(actor, repository.AuditFilter{
		UserID:   c.Query("user_id"),
		Module:   c.Query("module"),
		EntityID: c.Query("entity_id"),
		Limit:    c.QueryInt("limit", 100),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": entries, "total": total})
}
