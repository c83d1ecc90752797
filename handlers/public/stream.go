package public

import (
	"bufio"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/sse"
)

const keepAliveInterval = 25 * time.Second

var errShuttingDown = errors.New("server shutting down, reconnect shortly")

// eventID derives the SSE id from the config's updatedAt
func eventID(payload []byte) string {
	ts := gjson.GetBytes(payload, "updatedAt").Time()
	if ts.IsZero() {
		return ""
	}
	return strconv.FormatInt(ts.UnixMilli(), 10)
}

// StreamConfig handles GET /api/v1/config/stream
// Sends the current config, then every change until the client goes away.
func (h *PublicHandler) StreamConfig(c *fiber.Ctx) error {
	// subscribe before Get so a change published in between is still delivered
	updates, unsubscribe := h.hub.Subscribe(services.ConfigTopic)
	cfg, err := h.config.Get(c.UserContext())
	if err != nil {
		unsubscribe()
		return handlers.RespondError(c, err)
	}
	log := utils.Component("config-stream").WithField("ip", c.IP())

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		if err := sse.SendConfig(w, strconv.FormatInt(cfg.UpdatedAt.UnixMilli(), 10), cfg); err != nil {
			return
		}
		log.Debug("config stream opened")

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				sse.SendError(w, errShuttingDown)
				return
			case msg, ok := <-updates:
				if !ok {
					return
				}
				if err := sse.SendConfig(w, eventID(msg.Data), msg.Data); err != nil {
					log.Debug("config stream closed by client")
					return
				}
			case <-ticker.C:
				if err := sse.SendKeepAlive(w); err != nil {
					log.Debug("config stream closed by client")
					return
				}
			}
		}
	})

	return nil
}
