package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/sse"
)

// ConfigTopic is the hub topic carrying site config changes
const ConfigTopic = "config"

// HubPublisher delivers config changes to the SSE streams of this process
type HubPublisher struct {
	hub *sse.Hub
}

// NewHubPublisher creates a publisher bound to hub
func NewHubPublisher(hub *sse.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// Publish implements ConfigPublisher
func (p *HubPublisher) Publish(ctx context.Context, cfg model.SiteConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	p.Forward(payload)
	return nil
}

// Forward pushes an already encoded config, as received from another instance
func (p *HubPublisher) Forward(payload []byte) {
	delivered := p.hub.Publish(ConfigTopic, sse.Message{Type: "config", Data: payload})
	if listeners := p.hub.Subscribers(ConfigTopic); delivered < listeners {
		utils.Component("config").WithFields(map[string]interface{}{
			"delivered": delivered,
			"listeners": listeners,
		}).Warn("slow config streams missed an update")
	}
}
