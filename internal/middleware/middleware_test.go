package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/platform/requestctx"
)

func testRegistry(t *testing.T) *locale.Registry {
	t.Helper()
	reg, err := locale.NewRegistry(locale.DefaultConfig())
	require.NoError(t, err)
	return reg
}

func TestDecide(t *testing.T) {
	reg := testRegistry(t)
	cases := []struct {
		path string
		want Decision
	}{
		{"/en/urunler", Decision{Action: PassThrough, Locale: "en", Path: "/en/urunler"}},
		{"/en", Decision{Action: PassThrough, Locale: "en", Path: "/en"}},
		{"/ru/produkty/", Decision{Action: PassThrough, Locale: "ru", Path: "/ru/produkty"}},
		{"/tr/urunler", Decision{Action: Redirect, Locale: "tr", Path: "/urunler"}},
		{"/tr", Decision{Action: Redirect, Locale: "tr", Path: "/"}},
		{"/tr/", Decision{Action: Redirect, Locale: "tr", Path: "/"}},
		{"/urunler", Decision{Action: Rewrite, Locale: "tr", Path: "/tr/urunler"}},
		{"/", Decision{Action: Rewrite, Locale: "tr", Path: "/tr"}},
		{"", Decision{Action: Rewrite, Locale: "tr", Path: "/tr"}},
		{"/de/page", Decision{Action: Rewrite, Locale: "tr", Path: "/tr/de/page"}},
		{"/api/contact", Decision{Action: PassThrough, Path: "/api/contact"}},
		{"/admin", Decision{Action: PassThrough, Path: "/admin"}},
		{"/assets/css/site.css", Decision{Action: PassThrough, Path: "/assets/css/site.css"}},
		{"/favicon.ico", Decision{Action: PassThrough, Path: "/favicon.ico"}},
		{"/en/brochure.pdf", Decision{Action: PassThrough, Path: "/en/brochure.pdf"}},
		{"/apiary", Decision{Action: Rewrite, Locale: "tr", Path: "/tr/apiary"}},
		{"/tr//evil.example/x", Decision{Action: Redirect, Locale: "tr", Path: "/evil.example/x"}},
		{"//tr///urunler", Decision{Action: Redirect, Locale: "tr", Path: "/urunler"}},
		{"/en//products", Decision{Action: PassThrough, Locale: "en", Path: "/en/products"}},
		{"//evil.example/x", Decision{Action: Rewrite, Locale: "tr", Path: "/tr/evil.example/x"}},
	}
	for _, tc := range cases {
		got := Decide(reg, tc.path, DefaultExcluded)
		assert.Equal(t, tc.want, got, "Decide(%q)", tc.path)
	}
}

func serveLocale(t *testing.T, target string, header string) (*httptest.ResponseRecorder, *http.Request, requestctx.LocaleInfo) {
	t.Helper()
	var (
		seen *http.Request
		info requestctx.LocaleInfo
	)
	h := Locale(testRegistry(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		info, _ = requestctx.Locale(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Accept-Language", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen, info
}

func TestLocaleRedirectsDefaultPrefix(t *testing.T) {
	rec, seen, _ := serveLocale(t, "/tr/urunler?page=2", "")
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/urunler?page=2", rec.Header().Get("Location"))
}

func TestLocaleRedirectStaysOnHost(t *testing.T) {
	rec, seen, _ := serveLocale(t, "/tr//evil.example/x", "")
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/evil.example/x", rec.Header().Get("Location"))
}

func TestLocaleRewritesUnprefixedPath(t *testing.T) {
	rec, seen, info := serveLocale(t, "/urunler", "en-US,en;q=0.8")
	require.NotNil(t, seen)
	assert.Equal(t, "/tr/urunler", seen.URL.Path)
	assert.Equal(t, "/urunler", seen.RequestURI, "client URL must not change")
	assert.Equal(t, "tr", info.Locale)
	assert.Equal(t, "en", info.Preferred)
	assert.False(t, info.Explicit)
	assert.Equal(t, "tr", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Language")
}

func TestLocalePassesThroughNonDefaultLocale(t *testing.T) {
	rec, seen, info := serveLocale(t, "/en/urunler", "")
	require.NotNil(t, seen)
	assert.Equal(t, "/en/urunler", seen.URL.Path)
	assert.Equal(t, "en", info.Locale)
	assert.True(t, info.Explicit)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
}

func TestLocaleExcludedPathUsesHeaderHint(t *testing.T) {
	rec, seen, info := serveLocale(t, "/api/contact", "ru")
	require.NotNil(t, seen)
	assert.Equal(t, "/api/contact", seen.URL.Path)
	assert.Equal(t, "ru", info.Locale)
	assert.Empty(t, rec.Header().Get("Content-Language"))

	_, _, info = serveLocale(t, "/api/contact", "")
	assert.Equal(t, "tr", info.Locale)
}

func TestSuggestedLang(t *testing.T) {
	h := Locale(testRegistry(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Lang(r, "xx") + "|" + SuggestedLang(r)))
	}))
	for target, want := range map[string]string{
		"/urunler":     "tr|es",
		"/es/noticias": "es|",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Accept-Language", "es-ES")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Body.String(), target)
	}
}

func TestAssets(t *testing.T) {
	fsys := fstest.MapFS{"css/site.css": {Data: []byte("body{}")}}
	h := Assets(fsys, "/assets")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
