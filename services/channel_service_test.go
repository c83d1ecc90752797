package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vpoint-tv/vpoint-api/database"
	"github.com/vpoint-tv/vpoint-api/database/dbtest"
	"github.com/vpoint-tv/vpoint-api/model"
	"gorm.io/gorm"
)

func seededChannels(t *testing.T) (*gorm.DB, *ChannelService) {
	t.Helper()
	db := dbtest.Open(t)
	if err := database.NewSeeder(db).SeedChannels(database.DefaultChannels()); err != nil {
		t.Fatalf("SeedChannels failed: %v", err)
	}
	return db, NewChannelService(db)
}

func TestToggleFavorite(t *testing.T) {
	_, svc := seededChannels(t)
	ctx := context.Background()

	on, err := svc.ToggleFavorite(ctx, "", "asia-tv")
	if err != nil || !on {
		t.Fatalf("expected favorite added, got %v %v", on, err)
	}

	favs, err := svc.ListFavorites(ctx, model.DefaultUserID)
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favs) != 1 || favs[0].ChannelID != "asia-tv" {
		t.Fatalf("unexpected favorites %+v", favs)
	}

	off, err := svc.ToggleFavorite(ctx, "", "asia-tv")
	if err != nil || off {
		t.Fatalf("expected favorite removed, got %v %v", off, err)
	}
	favs, _ = svc.ListFavorites(ctx, "")
	if len(favs) != 0 {
		t.Fatalf("expected no favorites, got %+v", favs)
	}

	var nf *NotFoundError
	if _, err := svc.ToggleFavorite(ctx, "", "no-such-channel"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	_, svc := seededChannels(t)
	ctx := context.Background()

	if err := svc.UpdateSetting(ctx, "viewer-1", "quality", "720p"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	if err := svc.UpdateSetting(ctx, "viewer-1", "quality", "1080p"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	if err := svc.UpdateSetting(ctx, "viewer-1", "autoplay", "true"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}

	settings, err := svc.GetSettings(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if len(settings) != 2 || settings["quality"] != "1080p" || settings["autoplay"] != "true" {
		t.Fatalf("unexpected settings %v", settings)
	}

	var ve *ValidationError
	if err := svc.UpdateSetting(ctx, "viewer-1", " ", "x"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty key, got %v", err)
	}
}

func TestClearViewer(t *testing.T) {
	db, svc := seededChannels(t)
	ctx := context.Background()

	if _, err := svc.ToggleFavorite(ctx, "viewer-2", "sky-sports"); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if err := svc.UpdateSetting(ctx, "viewer-2", "quality", "auto"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}

	removed, err := svc.ClearViewer(ctx, admin, "viewer-2")
	if err != nil {
		t.Fatalf("ClearViewer failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}

	var nf *NotFoundError
	if _, err := svc.ClearViewer(ctx, admin, "viewer-2"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	entries, _ := NewAuditService(db).List(ctx, AuditFilter{Category: model.AuditCategoryUser})
	if len(entries) != 1 || entries[0].Target != "viewer-2" {
		t.Fatalf("expected one USER entry, got %+v", entries)
	}
}

func TestStats(t *testing.T) {
	db, channels := seededChannels(t)
	ctx := context.Background()

	if _, err := channels.ToggleFavorite(ctx, "viewer-1", "asia-tv"); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if _, err := channels.ToggleFavorite(ctx, "viewer-1", "world-news"); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if err := channels.UpdateSetting(ctx, "viewer-2", "quality", "auto"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	if _, err := NewSignalService(db).Inject(ctx, admin, SignalInput{Name: "ASIA TV", URL: "m3u8-placeholder"}); err != nil {
		t.Fatalf("Inject failed: %v", err)
	}

	svc := NewStatsService(db)
	stats, err := svc.DBStats(ctx)
	if err != nil {
		t.Fatalf("DBStats failed: %v", err)
	}
	want := DBStats{Channels: 3, Signals: 1, LiveSignals: 1, Users: 2, Favorites: 2, Settings: 1, AuditEntries: 1}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}

	activity, err := svc.UserActivity(ctx, 0)
	if err != nil {
		t.Fatalf("UserActivity failed: %v", err)
	}
	if len(activity) != 2 {
		t.Fatalf("expected 2 viewers, got %+v", activity)
	}
	// viewer-2 stored a setting last
	if activity[0].UserID != "viewer-2" || activity[0].Settings != 1 {
		t.Fatalf("unexpected first viewer %+v", activity[0])
	}
	if activity[1].UserID != "viewer-1" || activity[1].Favorites != 2 {
		t.Fatalf("unexpected second viewer %+v", activity[1])
	}

	limited, _ := svc.UserActivity(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
