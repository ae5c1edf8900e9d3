package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/cms"
	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/seo"
)

var sitemapCollections = []struct {
	collection string
	key        locale.RouteKey
}{
	{cms.CollectionProducts, locale.RouteProducts},
	{cms.CollectionProjects, locale.RouteProjects},
	{cms.CollectionNews, locale.RouteNews},
}

// fixedPages are sections served from a CMS page of the same slug.
var fixedPages = map[string]locale.RouteKey{
	string(locale.RouteAbout):    locale.RouteAbout,
	string(locale.RouteServices): locale.RouteServices,
	string(locale.RouteTeam):     locale.RouteTeam,
}

// BuildSitemap collects every public URL. A collection that cannot be listed
// is logged and left out so the remaining URLs are still published.
func (s *Site) BuildSitemap(ctx context.Context) *seo.SitemapBuilder {
	logger := s.log(ctx)
	def := s.reg.Default()
	b := seo.NewSitemapBuilder(s.reg, s.cfg.BaseURL)

	var homeMod time.Time
	if hp, err := s.content.Homepage(ctx, def); err == nil {
		homeMod = hp.UpdatedAt
	}
	b.AddHome(homeMod)

	for _, c := range sitemapCollections {
		entries, err := s.content.Index(ctx, c.collection, def)
		if err != nil {
			logger.Warn("sitemap: list collection", zap.String("collection", c.collection), zap.Error(err))
			continue
		}
		b.AddSection(c.key, latest(entries))
		for _, e := range entries {
			b.AddDocument(c.key, e.Slug, e.UpdatedAt)
		}
	}

	pages, err := s.content.Index(ctx, cms.CollectionPages, def)
	if err != nil {
		logger.Warn("sitemap: list pages", zap.Error(err))
	}
	for _, e := range pages {
		if key, ok := fixedPages[e.Slug]; ok {
			b.AddSection(key, e.UpdatedAt)
			continue
		}
		b.AddPath(e.Slug, e.UpdatedAt)
	}
	b.AddSection(locale.RouteContact, time.Time{})
	return b
}

// Sitemap serves /sitemap.xml.
func (s *Site) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := s.BuildSitemap(r.Context())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := b.WriteXML(w); err != nil {
		s.log(r.Context()).Error("sitemap: write", zap.Error(err))
	}
}

// Robots serves /robots.txt.
func (s *Site) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.Robots(s.cfg.BaseURL, s.cfg.RobotsDisallowAll)))
}

func latest(entries []cms.IndexEntry) time.Time {
	var t time.Time
	for _, e := range entries {
		if e.UpdatedAt.After(t) {
			t = e.UpdatedAt
		}
	}
	return t
}
