package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// GetConfig handles GET /api/v1/admin/config
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.config.Get(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, cfg)
}

// UpdateConfig handles PATCH /api/v1/admin/config
// Body is a partial object, e.g. {"maintenanceMode": true}
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	patch, err := services.ParseConfigPatchJSON(c.Body())
	if err != nil {
		return handlers.RespondError(c, err)
	}

	cfg, err := h.config.Update(c.UserContext(), actor, patch)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Configuration updated", cfg)
}

// ResetConfig handles POST /api/v1/admin/config/reset
func (h *AdminHandler) ResetConfig(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	cfg, err := h.config.Reset(c.UserContext(), actor)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Configuration restored to defaults", cfg)
}

// ConfigKeys handles GET /api/v1/admin/config/keys
func (h *AdminHandler) ConfigKeys(c *fiber.Ctx) error {
	return response.Success(c, services.ConfigKeys())
}
