package views

import (
	"github.com/vpoint-tv/vpoint-api/model"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Warning renders the restricted-access page shown while maintenance mode is on
// or after a blocked attempt to reach development tooling.
func Warning(cfg model.SiteConfig) g.Node {
	back := A(Class("back"), Href("/#hero"), g.Text("Back to safe area"))
	if cfg.MaintenanceMode {
		back = P(Class("note"), g.Text("The network is under maintenance. This page will stay in place until it is back."))
	}

	return PageLayout(siteName+" | Access Restricted", "Access restricted", cfg.AccentColor,
		Main(Class("warning"),
			Div(
				H1(g.Text("Access "), Span(g.Text("Restricted"))),
				P(Class("note"),
					g.Text("The system has detected an attempt to access restricted protocols."),
				),
				back,
			),
		),
	)
}
