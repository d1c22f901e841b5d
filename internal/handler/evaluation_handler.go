package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/model"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type EvaluationHandler struct {
	evaluationService service.EvaluationService
	ackService        service.AcknowledgementService
}

func NewEvaluationHandler(evaluationService service.EvaluationService, ackService service.AcknowledgementService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService, ackService: ackService}
}

// GetEvaluations lists evaluations
// GET /api/v1/evaluations?cycle_id=...&type=superior&evaluated_id=...
func (h *EvaluationHandler) GetEvaluations(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycleID, ok := optionalUUID(c, "cycle_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle_id"})
	}
	evaluatedID, ok := optionalUUID(c, "evaluated_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluated_id"})
	}
	evs, err := h.evaluationService.List(actor, service.EvaluationQuery{
		CycleID:     cycleID,
		Type:        model.EvaluationType(c.Query("type")),
		EvaluatedID: evaluatedID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": evs})
}

// GetEvaluation
// GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	ev, err := h.evaluationService.Get(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": ev})
}

// SubmitEvaluation
// POST /api/v1/evaluations
func (h *EvaluationHandler) SubmitEvaluation(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.EvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	ev, err := h.evaluationService.Submit(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Evaluation submitted successfully", "data": ev})
}

// UpdateEvaluation
// PUT /api/v1/evaluations/:id
func (h *EvaluationHandler) UpdateEvaluation(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	var req service.EvaluationScores
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	ev, err := h.evaluationService.Update(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Evaluation updated successfully", "data": ev})
}

// DeleteEvaluation
// DELETE /api/v1/evaluations/:id
func (h *EvaluationHandler) DeleteEvaluation(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	if err := h.evaluationService.Delete(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Evaluation deleted successfully"})
}

// Acknowledge records the tomada de conhecimento of an evaluation
// POST /api/v1/evaluations/:id/acknowledgements
func (h *EvaluationHandler) Acknowledge(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}
	ack, err := h.ackService.Acknowledge(actor, id, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Evaluation acknowledged", "data": ack})
}

// GetAcknowledgements
// GET /api/v1/evaluations/:id/acknowledgements
func (h *EvaluationHandler) GetAcknowledgements(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evaluation ID"})
	}
	acks, err := h.ackService.List(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": acks})
}
