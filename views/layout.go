// Package views renders the server-side public pages with gomponents.
package views

import (
	"fmt"

	"github.com/vpoint-tv/vpoint-api/model"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const siteName = "VPoint"

// PageLayout wraps content in the shared document shell
func PageLayout(title, description, accent string, content g.Node) g.Node {
	if accent == "" {
		accent = model.DefaultAccentColor
	}
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(description)),
				Meta(Name("theme-color"), Content(accent)),
				TitleEl(g.Text(title)),
				// accent is a validated hex colour
				StyleEl(g.Raw(fmt.Sprintf(":root{--accent:%s}", accent))),
				StyleEl(g.Raw(baseCSS)),
			),
			Body(content),
		),
	})
}

const baseCSS = `
* { box-sizing: border-box; scroll-behavior: smooth; }
body { margin: 0; background: #050505; color: #e2e8f0; font-family: ui-sans-serif, system-ui, sans-serif; }
a { color: var(--accent); }
::selection { background: var(--accent); color: #050505; }
.wrap { max-width: 1100px; margin: 0 auto; padding: 0 24px; }
.hero { padding: 120px 0 80px; text-align: center; }
.hero h1 { font-size: clamp(3rem, 8vw, 6rem); font-weight: 900; letter-spacing: -0.04em; text-transform: uppercase; line-height: .9; margin: 0; }
.hero h1 span { color: var(--accent); }
.badge { display: inline-block; padding: 8px 16px; border: 1px solid rgba(255,255,255,.1); border-radius: 999px; font-size: 10px; letter-spacing: .3em; text-transform: uppercase; color: var(--accent); margin-bottom: 32px; }
.lead { max-width: 42rem; margin: 32px auto 0; color: #94a3b8; text-transform: uppercase; letter-spacing: .1em; }
.cta { display: inline-block; margin-top: 40px; padding: 18px 40px; border-radius: 999px; background: #fff; color: #050505; font-weight: 900; text-transform: uppercase; letter-spacing: .2em; text-decoration: none; }
.cta:hover { background: var(--accent); }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 24px; }
.card { padding: 32px; border: 1px solid rgba(255,255,255,.08); border-radius: 24px; background: rgba(255,255,255,.02); }
.card h3 { margin-top: 0; text-transform: uppercase; letter-spacing: .15em; }
.section { padding: 64px 0; }
.section h2 { text-transform: uppercase; letter-spacing: .2em; font-size: 14px; color: var(--accent); }
.ad-slot { min-height: 90px; margin: 32px 0; border: 1px dashed rgba(255,255,255,.1); }
footer { padding: 48px 0; color: #64748b; font-size: 12px; text-align: center; }
.warning { min-height: 100vh; display: flex; align-items: center; justify-content: center; text-align: center; }
.warning h1 { font-size: clamp(3rem, 7vw, 5rem); font-weight: 900; font-style: italic; text-transform: uppercase; margin: 0; }
.warning h1 span { color: #dc2626; }
.warning .note { max-width: 28rem; margin: 32px auto; padding-left: 24px; border-left: 2px solid rgba(220,38,38,.3); color: #94a3b8; text-align: left; font-style: italic; }
.warning .back { display: inline-block; padding: 18px 40px; border-radius: 16px; background: #dc2626; color: #fff; font-weight: 900; text-transform: uppercase; letter-spacing: .25em; text-decoration: none; }
`
