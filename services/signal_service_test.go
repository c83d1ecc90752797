package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vpoint-tv/vpoint-api/database/dbtest"
	"github.com/vpoint-tv/vpoint-api/model"
)

func TestSignalLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewSignalService(db)
	ctx := context.Background()

	sig, err := svc.Inject(ctx, admin, SignalInput{Name: "ASIA TV", URL: "https://x/live.m3u8", Category: "Entertainment"})
	if err != nil {
		t.Fatalf("Inject failed: %v", err)
	}
	if !sig.Masked || sig.Status != model.SignalLive {
		t.Fatalf("expected masked Live signal, got %+v", sig)
	}
	if sig.ID == "" || sig.LastChecked.IsZero() {
		t.Fatalf("expected id and lastChecked, got %+v", sig)
	}

	toggled, err := svc.ToggleMask(ctx, admin, sig.ID)
	if err != nil {
		t.Fatalf("ToggleMask failed: %v", err)
	}
	if toggled.Masked {
		t.Fatal("expected masked=false after toggle")
	}

	if err := svc.Delete(ctx, admin, sig.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, err := svc.List(ctx, SignalFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, s := range list {
		if s.ID == sig.ID {
			t.Fatal("deleted signal still listed")
		}
	}

	entries, err := NewAuditService(db).List(ctx, AuditFilter{Category: model.AuditCategorySignal})
	if err != nil {
		t.Fatalf("List audit failed: %v", err)
	}
	actions := []string{}
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	if len(actions) != 3 || actions[0] != "delete" || actions[1] != "unmask" || actions[2] != "inject" {
		t.Fatalf("unexpected SIGNAL actions %v", actions)
	}
}

func TestSignalInjectValidation(t *testing.T) {
	svc := NewSignalService(dbtest.Open(t))
	ctx := context.Background()

	cases := []struct {
		in    SignalInput
		field string
	}{
		{SignalInput{URL: "https://x/live.m3u8"}, "name"},
		{SignalInput{Name: "ASIA TV", URL: "  "}, "url"},
		{SignalInput{Name: "ASIA TV", URL: "ftp://x/live"}, "url"},
	}
	for _, tc := range cases {
		_, err := svc.Inject(ctx, admin, tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("Inject(%+v): expected ValidationError on %q, got %v", tc.in, tc.field, err)
		}
	}
}

func TestSignalInjectDefaultsAndNormalizes(t *testing.T) {
	svc := NewSignalService(dbtest.Open(t))

	sig, err := svc.Inject(context.Background(), admin, SignalInput{Name: "news 24", URL: "https://Bücher.example/live.m3u8"})
	if err != nil {
		t.Fatalf("Inject failed: %v", err)
	}
	if sig.Name != "NEWS 24" {
		t.Fatalf("expected uppercased name, got %q", sig.Name)
	}
	if sig.Category != model.DefaultSignalCategory {
		t.Fatalf("expected default category, got %q", sig.Category)
	}
	if sig.URL != "https://xn--bcher-kva.example/live.m3u8" {
		t.Fatalf("expected punycode host, got %q", sig.URL)
	}
}

func TestSignalListSearch(t *testing.T) {
	svc := NewSignalService(dbtest.Open(t))
	ctx := context.Background()

	for _, name := range []string{"ASIA TV", "SKY SPORTS", "SKY NEWS"} {
		if _, err := svc.Inject(ctx, admin, SignalInput{Name: name, URL: "m3u8-placeholder"}); err != nil {
			t.Fatalf("Inject failed: %v", err)
		}
	}

	got, err := svc.List(ctx, SignalFilter{Search: "sky"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "SKY NEWS" || got[1].Name != "SKY SPORTS" {
		t.Fatalf("unexpected search result %+v", got)
	}
}

func TestSignalNotFound(t *testing.T) {
	svc := NewSignalService(dbtest.Open(t))
	ctx := context.Background()

	var nf *NotFoundError
	if _, err := svc.ToggleMask(ctx, admin, "missing"); !errors.As(err, &nf) {
		t.Fatalf("ToggleMask: expected NotFoundError, got %v", err)
	}
	if err := svc.Delete(ctx, admin, "missing"); !errors.As(err, &nf) {
		t.Fatalf("Delete: expected NotFoundError, got %v", err)
	}
	status := "Offline"
	if _, err := svc.Update(ctx, admin, "missing", SignalPatch{Status: &status}); !errors.As(err, &nf) {
		t.Fatalf("Update: expected NotFoundError, got %v", err)
	}
}

func TestSignalUpdate(t *testing.T) {
	svc := NewSignalService(dbtest.Open(t))
	ctx := context.Background()

	sig, err := svc.Inject(ctx, admin, SignalInput{Name: "ASIA TV", URL: "https://x/live.m3u8"})
	if err != nil {
		t.Fatalf("Inject failed: %v", err)
	}

	status, category := "Scheduled", "Movies"
	updated, err := svc.Update(ctx, admin, sig.ID, SignalPatch{Status: &status, Category: &category})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != model.SignalScheduled || updated.Category != "Movies" || !updated.Masked {
		t.Fatalf("unexpected update result %+v", updated)
	}

	bad := "Paused"
	var ve *ValidationError
	if _, err := svc.Update(ctx, admin, sig.ID, SignalPatch{Status: &bad}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSignalDisplayURL(t *testing.T) {
	sig := model.Signal{URL: "https://stream.example.com/1/live/master.m3u8", Masked: true}
	if got := sig.DisplayURL(); got != "https://stream.example.com/••••" {
		t.Fatalf("unexpected masked URL %q", got)
	}
	if got := sig.Redacted().URL; got != sig.DisplayURL() {
		t.Fatalf("Redacted should use DisplayURL, got %q", got)
	}

	sig.Masked = false
	if got := sig.DisplayURL(); got != sig.URL {
		t.Fatalf("expected plain URL when unmasked, got %q", got)
	}

	placeholder := model.Signal{URL: "m3u8-placeholder", Masked: true}
	if got := placeholder.DisplayURL(); got != "••••" {
		t.Fatalf("unexpected masked placeholder %q", got)
	}
}
