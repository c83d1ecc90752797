package public

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/database/dbtest"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/sse"
	"gorm.io/gorm"
)

func newStreamApp(t *testing.T) (*fiber.App, *PublicHandler, *sse.Hub, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	hub := sse.NewHub()
	h := NewPublicHandler(
		services.NewConfigService(db, services.NewHubPublisher(hub)),
		services.NewChannelService(db),
		hub,
	)
	app := fiber.New()
	app.Get("/api/v1/config/stream", h.StreamConfig)
	return app, h, hub, db
}

func TestStreamConfigSendsSnapshotAndReleasesSubscription(t *testing.T) {
	app, h, hub, _ := newStreamApp(t)
	// a closed handler ends the stream right after the initial snapshot
	h.Close()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/config/stream", nil), -1)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
	if !strings.Contains(body, "event: config\n") || !strings.Contains(body, `"accentColor"`) {
		t.Fatalf("expected initial config event, got %q", body)
	}
	if !strings.Contains(body, "event: error\n") {
		t.Fatalf("expected shutdown error event, got %q", body)
	}
	if n := hub.Subscribers(services.ConfigTopic); n != 0 {
		t.Fatalf("expected subscription released, got %d listeners", n)
	}
}

func TestStreamConfigReleasesSubscriptionWhenLoadFails(t *testing.T) {
	app, _, hub, db := newStreamApp(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.Close()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/config/stream", nil), -1)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 when config cannot load, got %d", resp.StatusCode)
	}
	if n := hub.Subscribers(services.ConfigTopic); n != 0 {
		t.Fatalf("expected subscription released, got %d listeners", n)
	}
}
