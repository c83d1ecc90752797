package views

import (
	"github.com/vpoint-tv/vpoint-api/model"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type feature struct {
	Title string
	Desc  string
}

var features = []feature{
	{"Zero Lag", "Predictive buffering keeps playback smooth even on unstable networks."},
	{"Global Signals", "Entertainment, sports and news transmissions from across the network."},
	{"Live HUD", "Signal status and stream telemetry shown right inside the player."},
}

var faqs = []feature{
	{"Is VPoint free?", "Yes. Every channel in the catalogue can be watched without an account."},
	{"Why did a channel go offline?", "Signals are checked every few minutes. Offline sources come back as soon as they answer again."},
	{"Can I keep my favorites?", "Favorites and player settings are stored against your device id."},
}

// Landing renders the public home page. Sections follow the site config flags.
func Landing(cfg model.SiteConfig, trending []model.Channel) g.Node {
	return PageLayout(siteName+" | Live TV", "Ultra-low latency live television", cfg.AccentColor,
		Main(
			g.If(cfg.ShowHero, hero()),
			g.If(cfg.AdSenseActive, Div(Class("wrap ad-slot"), g.Attr("data-ad-slot", "landing-top"))),
			g.If(cfg.ShowFeatures, featureSection()),
			g.If(cfg.ShowWhatsNew, whatsNew(trending)),
			g.If(cfg.ShowFAQ, faqSection()),
			footer(cfg.BrandingText),
		),
	)
}

func hero() g.Node {
	return Section(ID("hero"), Class("hero wrap"),
		Div(Class("badge"), g.Text("Live network online")),
		H1(g.Text("Beyond "), Span(g.Text("Streaming"))),
		P(Class("lead"), g.Text("The next evolution of live television. Low latency, global signal coverage and a fluid interface.")),
		A(Class("cta"), Href("/watch"), g.Text("Start Transmission")),
	)
}

func featureSection() g.Node {
	return Section(ID("features"), Class("section wrap"),
		Div(Class("grid"),
			g.Map(features, func(f feature) g.Node {
				return Div(Class("card"), H3(g.Text(f.Title)), P(g.Text(f.Desc)))
			}),
		),
	)
}

func whatsNew(trending []model.Channel) g.Node {
	return Section(ID("whats-new"), Class("section wrap"),
		H2(g.Text("What's new")),
		g.If(len(trending) == 0, P(g.Text("New channels are on their way."))),
		Div(Class("grid"),
			g.Map(trending, func(ch model.Channel) g.Node {
				return Div(Class("card"),
					H3(g.Text(ch.Name)),
					P(g.Textf("%s · %s watching", ch.Category, ch.Viewers)),
				)
			}),
		),
	)
}

func faqSection() g.Node {
	return Section(ID("faq"), Class("section wrap"),
		H2(g.Text("FAQ")),
		g.Map(faqs, func(f feature) g.Node {
			return Div(Class("card"), H3(g.Text(f.Title)), P(g.Text(f.Desc)))
		}),
	)
}

func footer(branding string) g.Node {
	if branding == "" {
		branding = "© " + siteName
	}
	return Footer(Class("wrap"), P(g.Text(branding)))
}
