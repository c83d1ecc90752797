package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"gorm.io/gorm"
)

// ConfigChangedChannel is the postgres NOTIFY channel carrying site config updates
const ConfigChangedChannel = "site_config_changed"

// ConfigChannel fans site config changes out to every API instance through
// postgres LISTEN/NOTIFY, so SSE clients connected anywhere see the change.
type ConfigChannel struct {
	db  *gorm.DB
	dsn string
}

// NewConfigChannel creates a channel bound to the given connection and DSN
func NewConfigChannel(db *gorm.DB, dsn string) *ConfigChannel {
	return &ConfigChannel{db: db, dsn: dsn}
}

// Publish sends the new config to all listeners
func (c *ConfigChannel) Publish(ctx context.Context, cfg model.SiteConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config payload: %w", err)
	}
	return c.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", ConfigChangedChannel, string(payload)).Error
}

// Listen blocks until ctx is done, invoking handle with each payload received
func (c *ConfigChannel) Listen(ctx context.Context, handle func(payload []byte)) error {
	log := utils.Component("config-listener")

	listener := pq.NewListener(c.dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithError(err).Warn("listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(ConfigChangedChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ConfigChangedChannel, err)
	}
	log.Infof("listening on %s", ConfigChangedChannel)

	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; nothing was delivered
			if n == nil {
				continue
			}
			handle([]byte(n.Extra))
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				log.WithError(err).Warn("listener ping failed")
			}
		}
	}
}
