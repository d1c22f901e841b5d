package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ObjectiveHandler struct {
	objectiveService service.ObjectiveService
}

func NewObjectiveHandler(objectiveService service.ObjectiveService) *ObjectiveHandler {
	return &ObjectiveHandler{objectiveService: objectiveService}
}

// GetObjectives lists the objectives of a cycle visible to the caller
// GET /api/v1/cycles/:id/objectives
func (h *ObjectiveHandler) GetObjectives(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycleID, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	objs, err := h.objectiveService.List(actor, cycleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": objs})
}

// CreateObjective
// POST /api/v1/objectives
func (h *ObjectiveHandler) CreateObjective(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.ObjectiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	obj, err := h.objectiveService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Objective created successfully", "data": obj})
}

// UpdateObjective
// PUT /api/v1/objectives/:id
func (h *ObjectiveHandler) UpdateObjective(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid objective ID"})
	}
	var req service.ObjectiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	obj, err := h.objectiveService.Update(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Objective updated successfully", "data": obj})
}

// DeleteObjective
// DELETE /api/v1/objectives/:id
func (h *ObjectiveHandler) DeleteObjective(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid objective ID"})
	}
	if err := h.objectiveService.Delete(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Objective deleted successfully"})
}
