package admin

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

func redact(signals []model.Signal) []model.Signal {
	out := make([]model.Signal, len(signals))
	for i, s := range signals {
		out[i] = s.Redacted()
	}
	return out
}

// ListSignals returns the registry with masked URLs obscured
// GET /api/v1/admin/signals?search=&status=
func (h *AdminHandler) ListSignals(c *fiber.Ctx) error {
	signals, err := h.signals.List(c.UserContext(), services.SignalFilter{
		Search: c.Query("search"),
		Status: model.SignalStatus(c.Query("status")),
	})
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, redact(signals))
}

// InjectSignal adds a new stream source
// POST /api/v1/admin/signals
func (h *AdminHandler) InjectSignal(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	var req services.SignalInput
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadBody(c, err)
	}

	sig, err := h.signals.Inject(c.UserContext(), actor, req)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Created(c, sig.Redacted())
}

// UpdateSignal edits name, category or status
// PATCH /api/v1/admin/signals/:id
func (h *AdminHandler) UpdateSignal(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	var req services.SignalPatch
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadBody(c, err)
	}

	sig, err := h.signals.Update(c.UserContext(), actor, c.Params("id"), req)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, sig.Redacted())
}

// ToggleSignalMask flips URL masking
// POST /api/v1/admin/signals/:id/mask
func (h *AdminHandler) ToggleSignalMask(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	sig, err := h.signals.ToggleMask(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, sig.Redacted())
}

// DeleteSignal removes a stream source
// DELETE /api/v1/admin/signals/:id
func (h *AdminHandler) DeleteSignal(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.signals.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Signal deleted", nil)
}

// ProbeSignals runs one reachability pass right away
// POST /api/v1/admin/signals/probe
func (h *AdminHandler) ProbeSignals(c *fiber.Ctx) error {
	if h.prober == nil {
		return response.ServiceUnavailable(c, "Signal probing is disabled")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Minute)
	defer cancel()

	report, err := h.prober.ProbeAll(ctx)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, report)
}
