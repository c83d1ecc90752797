package public

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/views"
	g "maragu.dev/gomponents"
)

const trendingLimit = 6

func renderPage(c *fiber.Ctx, node g.Node) error {
	c.Type("html", "utf-8")
	return node.Render(c)
}

// Landing handles GET /
// While maintenance mode is on every visitor is sent to /warning.
func (h *PublicHandler) Landing(c *fiber.Ctx) error {
	cfg, err := h.config.Get(c.UserContext())
	if err != nil {
		utils.Log.WithError(err).Error("failed to load site config for landing page")
		return c.Status(fiber.StatusInternalServerError).SendString("Service temporarily unavailable")
	}

	if cfg.MaintenanceMode {
		return c.Redirect("/warning", fiber.StatusFound)
	}

	channels, err := h.channels.ListChannels(c.UserContext(), "")
	if err != nil {
		utils.Log.WithError(err).Warn("failed to load channels for landing page")
	}

	var trending []model.Channel
	for _, ch := range channels {
		if ch.Trending && len(trending) < trendingLimit {
			trending = append(trending, ch)
		}
	}

	return renderPage(c, views.Landing(*cfg, trending))
}

// Warning handles GET /warning
func (h *PublicHandler) Warning(c *fiber.Ctx) error {
	cfg, err := h.config.Get(c.UserContext())
	if err != nil {
		def := model.DefaultSiteConfig()
		cfg = &def
	}
	c.Set("Cache-Control", "no-store")
	return renderPage(c, views.Warning(*cfg))
}
