// Package seo builds head metadata, structured data, sitemaps and robots.txt.
package seo

import (
	"html/template"
	"strings"

	"finitefield.org/corporate-web/internal/locale"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is one <link rel="alternate" hreflang> entry.
type Alternate struct {
	Hreflang string
	Href     string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []template.JS
}

// XDefault is the hreflang value for the language-neutral fallback URL.
const XDefault = "x-default"

// Absolute joins a root-relative path onto baseURL. Absolute URLs are
// returned unchanged.
func Absolute(baseURL, path string) string {
	if path == "" {
		return strings.TrimRight(baseURL, "/") + "/"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}

// Alternates converts locale links into absolute hreflang entries followed by
// an x-default entry pointing at the default locale.
func Alternates(baseURL string, links []locale.AlternateLink, defaultLocale string) []Alternate {
	out := make([]Alternate, 0, len(links)+1)
	for _, l := range links {
		out = append(out, Alternate{Hreflang: l.Locale, Href: Absolute(baseURL, l.Href)})
	}
	if def := locale.Href(links, defaultLocale); def != "" {
		out = append(out, Alternate{Hreflang: XDefault, Href: Absolute(baseURL, def)})
	}
	return out
}

// OGLocale maps a site locale to the Open Graph locale form.
func OGLocale(code string) string {
	switch code {
	case "tr":
		return "tr_TR"
	case "en":
		return "en_US"
	case "es":
		return "es_ES"
	case "ru":
		return "ru_RU"
	default:
		return code
	}
}

// Page describes one page for NewMeta.
type Page struct {
	SiteName    string
	BaseURL     string
	Title       string
	Description string
	Path        string
	Image       string
	Type        string
	Locale      string
	Alternates  []Alternate
}

// NewMeta fills the head metadata of a page. The document title gets the site
// name appended unless it is the site name already.
func NewMeta(p Page) Meta {
	title := strings.TrimSpace(p.Title)
	switch {
	case title == "":
		title = p.SiteName
	case title != p.SiteName && !strings.Contains(title, p.SiteName):
		title = title + " | " + p.SiteName
	}
	ogType := p.Type
	if ogType == "" {
		ogType = "website"
	}
	canonical := Absolute(p.BaseURL, p.Path)
	image := ""
	if p.Image != "" {
		image = Absolute(p.BaseURL, p.Image)
	}
	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	return Meta{
		Title:       title,
		Description: p.Description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: p.Description,
			Image:       image,
			Type:        ogType,
			URL:         canonical,
			SiteName:    p.SiteName,
			Locale:      OGLocale(p.Locale),
		},
		Twitter: Twitter{
			Card:  card,
			Image: image,
		},
		Alternates: p.Alternates,
	}
}
