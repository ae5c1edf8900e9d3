// Package handlers serves the public site pages.
package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/blocks"
	"finitefield.org/corporate-web/internal/cms"
	"finitefield.org/corporate-web/internal/i18n"
	"finitefield.org/corporate-web/internal/locale"
	mw "finitefield.org/corporate-web/internal/middleware"
	"finitefield.org/corporate-web/internal/nav"
	"finitefield.org/corporate-web/internal/platform/requestctx"
	"finitefield.org/corporate-web/internal/seo"
	"finitefield.org/corporate-web/internal/view"
)

const (
	listPageSize = 9
	privacySlug  = "privacy"
)

// Config holds the site-wide settings handlers need.
type Config struct {
	SiteName          string
	BaseURL           string
	RobotsDisallowAll bool
	ContactEndpoint   string
	Analytics         view.Analytics
}

// Site serves every localized page.
type Site struct {
	cfg     Config
	reg     *locale.Registry
	content *cms.Client
	blocks  *blocks.Renderer
	bundle  *i18n.Bundle
	view    *view.Renderer
	logger  *zap.Logger
}

// NewSite wires the page handlers. A nil logger is replaced by a no-op one.
func NewSite(cfg Config, reg *locale.Registry, content *cms.Client, br *blocks.Renderer, bundle *i18n.Bundle, vr *view.Renderer, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ContactEndpoint == "" {
		cfg.ContactEndpoint = "/api/contact"
	}
	return &Site{cfg: cfg, reg: reg, content: content, blocks: br, bundle: bundle, view: vr, logger: logger}
}

// Routes mounts the localized pages. Paths are expected to carry an explicit
// locale prefix, which the locale middleware guarantees.
func (s *Site) Routes(r chi.Router) {
	r.NotFound(s.NotFound)
	r.Get("/sitemap.xml", s.Sitemap)
	r.Get("/robots.txt", s.Robots)
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(s.requireLocale)
		r.Get("/", s.Home)
		r.Get("/{section}", s.Section)
		r.Get("/{section}/{slug}", s.Detail)
	})
}

func (s *Site) requireLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.reg.IsSupported(chi.URLParam(r, "locale")) {
			s.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// lang is the locale from the URL, or the resolved request locale outside
// localized routes.
func (s *Site) lang(r *http.Request) string {
	if l := chi.URLParam(r, "locale"); s.reg.IsSupported(l) {
		return l
	}
	return mw.Lang(r, s.reg.Default())
}

// pageInput describes one page for the layout.
type pageInput struct {
	title       string
	description string
	image       string
	ogType      string
	alternates  []locale.AlternateLink
	rest        string // path below the locale prefix, for breadcrumbs
	crumbTitle  string
	jsonLD      []map[string]any
	noindex     bool
}

func (s *Site) page(r *http.Request, in pageInput, data any) view.Page {
	lang := s.lang(r)
	current := locale.Href(in.alternates, lang)
	if current == "" {
		current = s.reg.LocalePath(lang, in.rest)
	}
	meta := seo.NewMeta(seo.Page{
		SiteName:    s.cfg.SiteName,
		BaseURL:     s.cfg.BaseURL,
		Title:       in.title,
		Description: in.description,
		Path:        current,
		Image:       in.image,
		Type:        in.ogType,
		Locale:      lang,
		Alternates:  seo.Alternates(s.cfg.BaseURL, in.alternates, s.reg.Default()),
	})
	if in.noindex {
		meta.Robots = "noindex"
	}
	crumbs := nav.Breadcrumbs(s.reg, lang, in.rest, in.crumbTitle)
	ld := append([]map[string]any{}, in.jsonLD...)
	if len(crumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = s.bundle.T(lang, c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: seo.Absolute(s.cfg.BaseURL, c.Href)})
		}
		ld = append(ld, seo.BreadcrumbList(items))
	}
	for _, v := range ld {
		if js := seo.JSON(v); js != "" {
			meta.JSONLD = append(meta.JSONLD, js)
		}
	}

	p := view.Page{
		Lang:        lang,
		SiteName:    s.cfg.SiteName,
		Meta:        meta,
		Nav:         nav.Build(s.reg, lang, current),
		Languages:   nav.Languages(s.reg, in.alternates, lang),
		Breadcrumbs: crumbs,
		HomeHref:    s.reg.LocalePath(lang, ""),
		PrivacyHref: s.reg.LocalePath(lang, privacySlug),
		Analytics:   s.cfg.Analytics,
		Data:        data,
	}
	if suggested := mw.SuggestedLang(r); suggested != "" && suggested != lang {
		if href := locale.Href(in.alternates, suggested); href != "" {
			p.Suggest = &nav.Language{Code: suggested, Name: s.reg.DisplayName(suggested), Href: href}
		}
	}
	return p
}

// log returns the request-scoped logger, or the site logger outside requests.
func (s *Site) log(ctx context.Context) *zap.Logger {
	if l := requestctx.Logger(ctx); l != requestctx.NoopLogger() {
		return l
	}
	return s.logger
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page) {
	if err := s.view.Render(w, status, name, p); err != nil {
		s.log(r.Context()).Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Site) renderBlocks(r *http.Request, lang string, layout []blocks.Block) []template.HTML {
	resolved := s.content.ResolveProductGrids(r.Context(), lang, layout)
	return s.blocks.Render(resolved, lang)
}

type errorData struct {
	Status   int
	TitleKey string
	BodyKey  string
}

// NotFound renders the localized 404 page.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	p := s.page(r, pageInput{
		title:      s.bundle.T(s.lang(r), "error.notFound.title"),
		alternates: s.reg.HomeAlternates(),
		noindex:    true,
	}, errorData{Status: http.StatusNotFound, TitleKey: "error.notFound.title", BodyKey: "error.notFound.body"})
	p.Languages = nil
	s.render(w, r, http.StatusNotFound, "error", p)
}

// fail maps content errors to the 404 page or a logged 500 page.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cms.ErrNotFound) {
		s.NotFound(w, r)
		return
	}
	s.log(r.Context()).Error("load content", zap.String("path", r.URL.Path), zap.Error(err))
	p := s.page(r, pageInput{
		title:      s.bundle.T(s.lang(r), "error.internal.title"),
		alternates: s.reg.HomeAlternates(),
		noindex:    true,
	}, errorData{Status: http.StatusInternalServerError, TitleKey: "error.internal.title", BodyKey: "error.internal.body"})
	p.Languages = nil
	s.render(w, r, http.StatusInternalServerError, "error", p)
}
