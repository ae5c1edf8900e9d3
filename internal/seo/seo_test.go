package seo

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/corporate-web/internal/locale"
)

const base = "https://example.com"

func newRegistry(t *testing.T) *locale.Registry {
	t.Helper()
	reg, err := locale.NewRegistry(locale.DefaultConfig())
	require.NoError(t, err)
	return reg
}

func TestAlternatesAddsXDefault(t *testing.T) {
	reg := newRegistry(t)
	alts := Alternates(base+"/", reg.AlternateLinks(locale.RouteProducts, "ff-pt100"), reg.Default())
	require.Len(t, alts, 5)
	assert.Equal(t, Alternate{Hreflang: "tr", Href: base + "/urunler/ff-pt100"}, alts[0])
	assert.Equal(t, Alternate{Hreflang: "ru", Href: base + "/ru/produkty/ff-pt100"}, alts[3])
	assert.Equal(t, Alternate{Hreflang: XDefault, Href: base + "/urunler/ff-pt100"}, alts[4])
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Page{
		SiteName: "Finite Field",
		BaseURL:  base,
		Title:    "Products",
		Path:     "/en/products",
		Image:    "/assets/img/a.svg",
		Locale:   "en",
	})
	assert.Equal(t, "Products | Finite Field", m.Title)
	assert.Equal(t, base+"/en/products", m.Canonical)
	assert.Equal(t, base+"/assets/img/a.svg", m.OG.Image)
	assert.Equal(t, "summary_large_image", m.Twitter.Card)
	assert.Equal(t, "en_US", m.OG.Locale)
	assert.Equal(t, "website", m.OG.Type)

	home := NewMeta(Page{SiteName: "Finite Field", BaseURL: base})
	assert.Equal(t, "Finite Field", home.Title)
	assert.Equal(t, base+"/", home.Canonical)
	assert.Equal(t, "summary", home.Twitter.Card)
}

func TestSitemapIncludesEveryLocaleWithAlternates(t *testing.T) {
	reg := newRegistry(t)
	b := NewSitemapBuilder(reg, base)
	b.AddHome(time.Time{})
	b.AddDocument(locale.RouteNews, "launch", time.Date(2024, 8, 21, 7, 0, 0, 0, time.UTC))
	b.AddPath("api", time.Time{})
	b.AddPath("admin/users", time.Time{})
	b.AddPath("privacy", time.Time{})

	set := b.URLSet()
	require.Len(t, set.URLs, 12, "3 pages x 4 locales; /api and /admin are dropped")

	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
		require.Len(t, u.Links, 5)
		assert.Equal(t, XDefault, u.Links[4].Hreflang)
		assert.NotContains(t, u.Loc, "/api")
		assert.NotContains(t, u.Loc, "/admin")
	}
	assert.Contains(t, locs, base+"/")
	assert.Contains(t, locs, base+"/en")
	assert.Contains(t, locs, base+"/haberler/launch")
	assert.Contains(t, locs, base+"/es/noticias/launch")
	assert.Contains(t, locs, base+"/ru/privacy")
	assert.Equal(t, "2024-08-21", set.URLs[4].LastMod)
}

func TestSitemapXML(t *testing.T) {
	reg := newRegistry(t)
	b := NewSitemapBuilder(reg, base)
	b.AddSection(locale.RouteProducts, time.Time{})

	var buf bytes.Buffer
	require.NoError(t, b.WriteXML(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, out, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, out, `<xhtml:link rel="alternate" hreflang="es" href="https://example.com/es/productos"></xhtml:link>`)
	assert.Contains(t, out, `<loc>https://example.com/urunler</loc>`)
}

func TestRobots(t *testing.T) {
	out := Robots(base, false)
	assert.Contains(t, out, "Disallow: /admin/\n")
	assert.Contains(t, out, "Disallow: /api/\n")
	assert.Contains(t, out, "Sitemap: https://example.com/sitemap.xml\n")

	closed := Robots(base, true)
	assert.Equal(t, "User-agent: *\nDisallow: /\n", closed)
}

func TestExcerpt(t *testing.T) {
	in := `<h2>Title</h2><p>First &amp; <strong>bold</strong> words.</p><script>alert(1)</script><p>Second paragraph here</p>`
	assert.Equal(t, "Title First & bold words. Second paragraph here", Excerpt(in, 0))
	assert.Equal(t, "Title First & bold…", Excerpt(in, 22))
	assert.Equal(t, "short", Excerpt("short", 10))
}

func TestJSONLD(t *testing.T) {
	js := JSON(Article("Launch", base+"/en/news/launch", "", "Finite Field",
		time.Date(2024, 8, 21, 7, 0, 0, 0, time.UTC), time.Time{}))
	assert.Contains(t, string(js), `"@type":"NewsArticle"`)
	assert.Contains(t, string(js), `"datePublished":"2024-08-21T07:00:00Z"`)
	assert.NotContains(t, string(js), "dateModified")

	crumbs := BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: base + "/"}, {Name: "News", Item: base + "/haberler"}})
	items := crumbs["itemListElement"].([]map[string]any)
	assert.Equal(t, 2, items[1]["position"])
}
