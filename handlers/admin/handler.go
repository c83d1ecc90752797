package admin

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// ArchiveStore exposes audit archives written before purges
type ArchiveStore interface {
	ListArchives(ctx context.Context) ([]string, error)
	DownloadArchive(ctx context.Context, name string) ([]byte, error)
}

// AdminHandler serves the operator console under /api/v1/admin
type AdminHandler struct {
	config    *services.ConfigService
	audit     *services.AuditService
	operators *services.OperatorService
	signals   *services.SignalService
	prober    *services.SignalProber
	channels  *services.ChannelService
	stats     *services.StatsService
	archives  ArchiveStore
}

// Services bundles the dependencies of AdminHandler
type Services struct {
	Config    *services.ConfigService
	Audit     *services.AuditService
	Operators *services.OperatorService
	Signals   *services.SignalService
	Prober    *services.SignalProber
	Channels  *services.ChannelService
	Stats     *services.StatsService
	Archives  ArchiveStore // nil when archiving is off
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(s Services) *AdminHandler {
	return &AdminHandler{
		config:    s.Config,
		audit:     s.Audit,
		operators: s.Operators,
		signals:   s.Signals,
		prober:    s.Prober,
		channels:  s.Channels,
		stats:     s.Stats,
		archives:  s.Archives,
	}
}

func unauthenticated(c *fiber.Ctx) error {
	return response.Unauthorized(c, "Not authenticated")
}
