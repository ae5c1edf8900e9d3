package view

import (
	"finitefield.org/corporate-web/internal/nav"
	"finitefield.org/corporate-web/internal/seo"
)

// Page is the data the "base" layout renders. Data carries the page body's
// own view model.
type Page struct {
	Lang        string
	SiteName    string
	Meta        seo.Meta
	Nav         []nav.RenderedItem
	Languages   []nav.Language
	Breadcrumbs []nav.Crumb
	// Suggest is the visitor's preferred language when it is not the one
	// being served.
	Suggest     *nav.Language
	HomeHref    string
	PrivacyHref string
	Analytics   Analytics
	Data        any
}
