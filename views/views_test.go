package views

import (
	"strings"
	"testing"

	"github.com/vpoint-tv/vpoint-api/model"
)

func render(t *testing.T, cfg model.SiteConfig, channels []model.Channel) string {
	t.Helper()
	var b strings.Builder
	if err := Landing(cfg, channels).Render(&b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func TestLandingHonoursSectionFlags(t *testing.T) {
	cfg := model.DefaultSiteConfig()
	html := render(t, cfg, nil)

	for _, id := range []string{`id="hero"`, `id="features"`, `id="whats-new"`, `id="faq"`} {
		if !strings.Contains(html, id) {
			t.Fatalf("expected %s in default landing page", id)
		}
	}

	cfg.ShowHero = false
	cfg.ShowFAQ = false
	html = render(t, cfg, nil)
	if strings.Contains(html, `id="hero"`) || strings.Contains(html, `id="faq"`) {
		t.Fatalf("hidden sections were rendered")
	}
	if !strings.Contains(html, `id="features"`) {
		t.Fatalf("features section should still render")
	}
}

func TestLandingUsesAccentAndBranding(t *testing.T) {
	cfg := model.DefaultSiteConfig()
	cfg.AccentColor = "#ff00aa"
	cfg.BrandingText = "VPoint <Beta>"

	html := render(t, cfg, []model.Channel{{ID: "asia-tv", Name: "Asia TV", Category: "Entertainment", Viewers: "1.2K"}})

	if !strings.Contains(html, "--accent:#ff00aa") {
		t.Fatalf("accent colour not applied")
	}
	if !strings.Contains(html, "VPoint &lt;Beta&gt;") {
		t.Fatalf("branding text should be escaped, got page without it")
	}
	if !strings.Contains(html, "Asia TV") {
		t.Fatalf("trending channel missing")
	}
}

func TestLandingAdSlot(t *testing.T) {
	cfg := model.DefaultSiteConfig()
	if strings.Contains(render(t, cfg, nil), "ad-slot wrap") || strings.Contains(render(t, cfg, nil), `data-ad-slot`) {
		t.Fatalf("ad slot rendered while AdSense is off")
	}
	cfg.AdSenseActive = true
	if !strings.Contains(render(t, cfg, nil), `data-ad-slot="landing-top"`) {
		t.Fatalf("ad slot missing while AdSense is on")
	}
}

func TestWarningPage(t *testing.T) {
	var b strings.Builder
	if err := Warning(model.DefaultSiteConfig()).Render(&b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := b.String()
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Fatalf("missing doctype")
	}
	if !strings.Contains(html, "Restricted") || !strings.Contains(html, `href="/#hero"`) {
		t.Fatalf("unexpected warning page: %s", html)
	}
}
