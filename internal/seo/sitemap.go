package seo

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"finitefield.org/corporate-web/internal/locale"
)

// SitemapExcluded lists path prefixes never listed in the sitemap.
var SitemapExcluded = []string{"/admin", "/api"}

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

// URLSet is the <urlset> document.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Links      []XHTMLLink `xml:"xhtml:link"`
}

type XHTMLLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type sitemapEntry struct {
	links      []locale.AlternateLink
	lastMod    time.Time
	changeFreq string
	priority   string
}

// SitemapBuilder collects pages and emits one <url> per page and locale,
// each carrying the alternates of every locale plus x-default.
type SitemapBuilder struct {
	reg     *locale.Registry
	baseURL string
	entries []sitemapEntry
}

// NewSitemapBuilder starts an empty sitemap for the site at baseURL.
func NewSitemapBuilder(reg *locale.Registry, baseURL string) *SitemapBuilder {
	return &SitemapBuilder{reg: reg, baseURL: strings.TrimRight(baseURL, "/")}
}

// AddHome adds the home page.
func (b *SitemapBuilder) AddHome(lastMod time.Time) {
	b.entries = append(b.entries, sitemapEntry{links: b.reg.HomeAlternates(), lastMod: lastMod, changeFreq: "weekly", priority: "1.0"})
}

// AddSection adds the landing page of a translated section.
func (b *SitemapBuilder) AddSection(key locale.RouteKey, lastMod time.Time) {
	b.entries = append(b.entries, sitemapEntry{links: b.reg.AlternateLinks(key, ""), lastMod: lastMod, changeFreq: "weekly", priority: "0.8"})
}

// AddDocument adds a document inside a translated section.
func (b *SitemapBuilder) AddDocument(key locale.RouteKey, slug string, lastMod time.Time) {
	b.entries = append(b.entries, sitemapEntry{links: b.reg.AlternateLinks(key, slug), lastMod: lastMod, changeFreq: "monthly", priority: "0.6"})
}

// AddPath adds a page whose path is the same in every locale.
func (b *SitemapBuilder) AddPath(path string, lastMod time.Time) {
	b.entries = append(b.entries, sitemapEntry{links: b.reg.PathAlternates(path), lastMod: lastMod, changeFreq: "monthly", priority: "0.5"})
}

// URLSet returns the sitemap document.
func (b *SitemapBuilder) URLSet() URLSet {
	set := URLSet{NS: sitemapNS, XHTML: xhtmlNS}
	def := b.reg.Default()
	for _, e := range b.entries {
		links := make([]locale.AlternateLink, 0, len(e.links))
		for _, l := range e.links {
			if !b.excluded(l.Href) {
				links = append(links, l)
			}
		}
		if len(links) == 0 {
			continue
		}
		alternates := make([]XHTMLLink, 0, len(links)+1)
		for _, a := range Alternates(b.baseURL, links, def) {
			alternates = append(alternates, XHTMLLink{Rel: "alternate", Hreflang: a.Hreflang, Href: a.Href})
		}
		lastMod := ""
		if !e.lastMod.IsZero() {
			lastMod = e.lastMod.UTC().Format("2006-01-02")
		}
		for _, l := range links {
			set.URLs = append(set.URLs, SitemapURL{
				Loc:        Absolute(b.baseURL, l.Href),
				LastMod:    lastMod,
				ChangeFreq: e.changeFreq,
				Priority:   e.priority,
				Links:      alternates,
			})
		}
	}
	return set
}

// WriteXML writes the sitemap with its XML declaration.
func (b *SitemapBuilder) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(b.URLSet()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (b *SitemapBuilder) excluded(href string) bool {
	_, rest := b.reg.StripLocale(href)
	for _, prefix := range SitemapExcluded {
		if rest == prefix || strings.HasPrefix(rest, prefix+"/") {
			return true
		}
	}
	return false
}
