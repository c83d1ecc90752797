package public

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/response"
	"github.com/vpoint-tv/vpoint-api/utils/sse"
	"github.com/vpoint-tv/vpoint-api/utils/validation"
)

// HeaderUserID carries the anonymous viewer id chosen by the client
const HeaderUserID = "X-User-Id"

// PublicHandler serves the unauthenticated viewer surface
type PublicHandler struct {
	config   *services.ConfigService
	channels *services.ChannelService
	hub      *sse.Hub

	done      chan struct{}
	closeOnce sync.Once
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(config *services.ConfigService, channels *services.ChannelService, hub *sse.Hub) *PublicHandler {
	return &PublicHandler{
		config:   config,
		channels: channels,
		hub:      hub,
		done:     make(chan struct{}),
	}
}

// Close ends every open config stream so the server can shut down
func (h *PublicHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func userID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(HeaderUserID)); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query("user_id")); id != "" {
		return id
	}
	return model.DefaultUserID
}

// GetConfig handles GET /api/v1/config
func (h *PublicHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.config.Get(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, cfg)
}

// ListChannels handles GET /api/v1/channels?category=
func (h *PublicHandler) ListChannels(c *fiber.Ctx) error {
	channels, err := h.channels.ListChannels(c.UserContext(), c.Query("category"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, channels)
}

// ListFavorites handles GET /api/v1/favorites
func (h *PublicHandler) ListFavorites(c *fiber.Ctx) error {
	favorites, err := h.channels.ListFavorites(c.UserContext(), userID(c))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, favorites)
}

// ToggleFavorite handles POST /api/v1/favorites/:channel_id
func (h *PublicHandler) ToggleFavorite(c *fiber.Ctx) error {
	channelID := c.Params("channel_id")
	favorited, err := h.channels.ToggleFavorite(c.UserContext(), userID(c), channelID)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, fiber.Map{
		"channelId": channelID,
		"favorited": favorited,
	})
}

// GetSettings handles GET /api/v1/settings
func (h *PublicHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.channels.GetSettings(c.UserContext(), userID(c))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, settings)
}

// UpdateSettingRequest is the body of a settings write
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// UpdateSetting handles PUT /api/v1/settings/:key
func (h *PublicHandler) UpdateSetting(c *fiber.Ctx) error {
	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadBody(c, err)
	}

	key := c.Params("key")
	req.Value = validation.SanitizeString(req.Value)
	if err := h.channels.UpdateSetting(c.UserContext(), userID(c), key, req.Value); err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, fiber.Map{"key": key, "value": req.Value})
}
