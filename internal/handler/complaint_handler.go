package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/model"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ComplaintHandler struct {
	complaintService service.ComplaintService
}

func NewComplaintHandler(complaintService service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// GetComplaints
// GET /api/v1/complaints?cycle_id=...&evaluation_id=...&status=pendente
func (h *ComplaintHandler) GetComplaints(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycleID, ok := optionalUUID(c, "cycle_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle_id"})
	}
	evaluationID, ok := optionalUUID(c, "evaluation_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation_id"})
	}
	items, err := h.complaintService.List(actor, service.ComplaintQuery{
		CycleID:      cycleID,
		EvaluationID: evaluationID,
		Status:       model.ComplaintStatus(c.Query("status")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetComplaint
// GET /api/v1/complaints/:id
func (h *ComplaintHandler) GetComplaint(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid complaint ID"})
	}
	item, err := h.complaintService.Get(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": item})
}

// CreateComplaint lodges a reclamação or recurso
// POST /api/v1/complaints
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.ComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.complaintService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Complaint created successfully", "data": item})
}

// RespondComplaint
// POST /api/v1/complaints/:id/response
func (h *ComplaintHandler) RespondComplaint(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid complaint ID"})
	}
	var req service.ComplaintResponse
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.complaintService.Respond(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Complaint answered", "data": item})
}
