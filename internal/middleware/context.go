package middleware

import (
	"net/http"

	"finitefield.org/corporate-web/internal/platform/requestctx"
)

// Lang returns the locale resolved for r, or fallback when the locale
// middleware has not run.
func Lang(r *http.Request, fallback string) string {
	if info, ok := requestctx.Locale(r.Context()); ok && info.Locale != "" {
		return info.Locale
	}
	return fallback
}

// SuggestedLang returns the Accept-Language match when it differs from the
// locale being served, so pages can offer a switch. Empty otherwise.
func SuggestedLang(r *http.Request) string {
	info, ok := requestctx.Locale(r.Context())
	if !ok || info.Preferred == "" || info.Preferred == info.Locale {
		return ""
	}
	return info.Preferred
}
