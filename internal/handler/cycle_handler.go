package handler

import (
	"sgad-api/internal/middleware"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CycleHandler struct {
	cycleService service.CycleService
}

func NewCycleHandler(cycleService service.CycleService) *CycleHandler {
	return &CycleHandler{cycleService: cycleService}
}

type TransitionRequest struct {
	State string `json:"state"`
	Note  string `json:"note"`
}

// GetCycles lists evaluation cycles
// GET /api/v1/cycles
func (h *CycleHandler) GetCycles(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	cycles, err := h.cycleService.List(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cycles})
}

// GetCycle returns one cycle
// GET /api/v1/cycles/:id
func (h *CycleHandler) GetCycle(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	cycle, err := h.cycleService.Get(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cycle})
}

// CreateCycle opens a new cycle
// POST /api/v1/cycles
func (h *CycleHandler) CreateCycle(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.CycleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	cycle, err := h.cycleService.Create(actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Cycle created successfully", "data": cycle})
}

// UpdateCycle edits cycle metadata; the state is changed by TransitionCycle
// PUT /api/v1/cycles/:id
func (h *CycleHandler) UpdateCycle(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	var req service.CycleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	cycle, err := h.cycleService.Update(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cycle updated successfully", "data": cycle})
}

// DeleteCycle removes an open cycle
// DELETE /api/v1/cycles/:id
func (h *CycleHandler) DeleteCycle(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	if err := h.cycleService.Delete(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cycle deleted successfully"})
}

// TransitionCycle moves the cycle one state forward
// POST /api/v1/cycles/:id/transition
func (h *CycleHandler) TransitionCycle(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	cycle, err := h.cycleService.Transition(actor, id, req.State, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cycle state updated", "data": cycle})
}

// GetCycleHistory lists the state changes of a cycle
// GET /api/v1/cycles/:id/transitions
func (h *CycleHandler) GetCycleHistory(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cycle ID"})
	}
	history, err := h.cycleService.History(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": history})
}
