package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// GetStats returns row counts for the dashboard
// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.DBStats(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, stats)
}

// GetUserActivity returns viewers ordered by last activity
// GET /api/v1/admin/activity?limit=
func (h *AdminHandler) GetUserActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > response.MaxPerPage {
		limit = 50
	}

	activity, err := h.stats.UserActivity(c.UserContext(), limit)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, activity)
}

// ClearViewer removes a viewer's favorites and settings
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) ClearViewer(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	removed, err := h.channels.ClearViewer(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Viewer data cleared", fiber.Map{"removed": removed})
}
