package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// ListOperators returns operators with the dashboard counters
// GET /api/v1/admin/operators?search=
func (h *AdminHandler) ListOperators(c *fiber.Ctx) error {
	ops, err := h.operators.List(c.UserContext(), services.OperatorFilter{Search: c.Query("search")})
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.Success(c, fiber.Map{
		"operators": ops,
		"summary":   services.Summarize(ops),
	})
}

// UpsertOperator creates or updates an operator by name
// PUT /api/v1/admin/operators
func (h *AdminHandler) UpsertOperator(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	var req services.OperatorInput
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadBody(c, err)
	}

	result, err := h.operators.Upsert(c.UserContext(), actor, req)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	if result.Created {
		return response.Created(c, result)
	}
	return response.Success(c, result)
}

// DeleteOperator terminates an operator account
// DELETE /api/v1/admin/operators/:id
func (h *AdminHandler) DeleteOperator(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.operators.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Operator terminated", nil)
}
