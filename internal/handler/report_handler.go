package handler

import (
	"fmt"

	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func sendPDF(c *fiber.Ctx, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Send(body)
}

// EvaluationSheet renders the official evaluation sheet
// GET /api/v1/reports/evaluations/:id.pdf?template=ficha_avaliacao
func (h *ReportHandler) EvaluationSheet(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	pdf, err := h.reportService.EvaluationSheet(actor, id, c.Query("template"))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("avaliacao-%s.pdf", id), pdf)
}

// CycleSummary renders the final grades of a cycle
// GET /api/v1/reports/cycles/:id.pdf
func (h *ReportHandler) CycleSummary(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	pdf, err := h.reportService.CycleSummary(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("ciclo-%s.pdf", id), pdf)
}
