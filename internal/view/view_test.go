package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/corporate-web/internal/nav"
	"finitefield.org/corporate-web/internal/seo"
)

func TestRenderLayoutAndPage(t *testing.T) {
	r, err := New(WithTranslator(func(lang, key string) string { return lang + ":" + key }))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	page := Page{
		Lang:     "en",
		SiteName: "Finite Field",
		Meta: seo.Meta{
			Title:      "Not found | Finite Field",
			Alternates: []seo.Alternate{{Hreflang: "tr", Href: "https://example.com/"}, {Hreflang: seo.XDefault, Href: "https://example.com/"}},
			JSONLD:     []template.JS{seo.JSON(seo.Organization("Finite Field", "https://example.com", ""))},
		},
		Nav:      []nav.RenderedItem{{Href: "/en/products", LabelKey: "nav.products", Active: true}},
		Suggest:  &nav.Language{Code: "tr", Name: "Türkçe", Href: "/"},
		HomeHref: "/en",
		Data:     struct{ Status int; TitleKey, BodyKey string }{404, "error.notFound.title", "error.notFound.body"},
	}
	require.NoError(t, r.Render(rec, http.StatusNotFound, "error", page))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, "Not found | Finite Field", doc.Find("title").Text())
	assert.Equal(t, 2, doc.Find(`link[rel="alternate"]`).Length())
	assert.Equal(t, "x-default", doc.Find(`link[rel="alternate"]`).Last().AttrOr("hreflang", ""))
	assert.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"@type":"Organization"`)
	assert.Equal(t, "page", doc.Find(".main-nav a.active").AttrOr("aria-current", ""))
	assert.Equal(t, "en:error.notFound.title", doc.Find("main h1").Text())
	assert.Equal(t, "/", doc.Find(".lang-suggest a").AttrOr("href", ""))
}

func TestRenderUnknownPageWritesNothing(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "missing", Page{})
	require.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestDevDirReparses(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("layout.tmpl", `{{define "base"}}[{{template "content" .}}]{{end}}`)
	write("partials/empty.tmpl", `{{define "partial"}}{{end}}`)
	write("pages/home.tmpl", `{{define "content"}}v1{{end}}`)

	r, err := New(WithDevDir(dir))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "home", nil))
	assert.Equal(t, "[v1]", rec.Body.String())

	write("pages/home.tmpl", `{{define "content"}}v2{{end}}`)
	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "home", nil))
	assert.Equal(t, "[v2]", rec.Body.String())
}
