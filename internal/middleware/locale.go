package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/platform/requestctx"
)

// Action is what the locale middleware does with a request.
type Action int

const (
	// PassThrough serves the request unchanged.
	PassThrough Action = iota
	// Redirect answers 301 with Decision.Path as the new location.
	Redirect
	// Rewrite serves Decision.Path internally without changing the client URL.
	Rewrite
)

func (a Action) String() string {
	switch a {
	case Redirect:
		return "redirect"
	case Rewrite:
		return "rewrite"
	default:
		return "pass"
	}
}

// Decision is the outcome of Decide for one request path.
type Decision struct {
	Action Action
	// Locale is the locale the path resolves to. Empty for excluded paths.
	Locale string
	// Path is the redirect target or the internal path to serve.
	Path string
}

// DefaultExcluded lists path prefixes that are never localized.
var DefaultExcluded = []string{"/admin", "/api", "/assets", "/_internal", "/healthz"}

// Decide maps a request path to a locale action. The default locale never
// appears in public URLs: /{default}/x redirects to /x, and /x is served
// internally as /{default}/x. Non-default locales keep their prefix.
func Decide(reg *locale.Registry, path string, excluded []string) Decision {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	// "//host" in a Location header points at another origin.
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if isExcluded(path, excluded) {
		return Decision{Action: PassThrough, Path: path}
	}

	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	def := reg.Default()
	switch {
	case first == def:
		return Decision{Action: Redirect, Locale: def, Path: reg.LocalePath(def, strings.TrimSuffix(rest, "/"))}
	case first != "" && reg.IsSupported(first):
		return Decision{Action: PassThrough, Locale: first, Path: trimTrailingSlash(path)}
	}

	if path == "/" {
		return Decision{Action: Rewrite, Locale: def, Path: "/" + def}
	}
	return Decision{Action: Rewrite, Locale: def, Path: "/" + def + trimTrailingSlash(path)}
}

func isExcluded(path string, excluded []string) bool {
	for _, prefix := range excluded {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	last := path[strings.LastIndexByte(path, '/')+1:]
	return strings.Contains(last, ".")
}

func trimTrailingSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}

type localeOptions struct {
	excluded []string
}

// LocaleOption customises the Locale middleware.
type LocaleOption func(*localeOptions)

// WithExcluded adds path prefixes that bypass locale resolution.
func WithExcluded(prefixes ...string) LocaleOption {
	return func(o *localeOptions) {
		o.excluded = append(o.excluded, prefixes...)
	}
}

// Locale resolves the request locale from the URL and applies Decide. It must
// run before routing so rewritten paths are matched by the router.
func Locale(reg *locale.Registry, opts ...LocaleOption) func(http.Handler) http.Handler {
	o := localeOptions{excluded: append([]string(nil), DefaultExcluded...)}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Language")

			d := Decide(reg, r.URL.Path, o.excluded)
			if d.Action == Redirect {
				target := d.Path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				requestctx.Logger(r.Context()).Debug("locale redirect",
					zap.String("from", r.URL.Path), zap.String("to", target))
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}

			var preferred string
			if header := r.Header.Get("Accept-Language"); header != "" {
				preferred = reg.Match(header)
			}
			info := requestctx.LocaleInfo{Locale: d.Locale, Preferred: preferred, Explicit: d.Action == PassThrough && d.Locale != ""}
			if info.Locale == "" {
				info.Locale = preferred
				if info.Locale == "" {
					info.Locale = reg.Default()
				}
			} else {
				w.Header().Set("Content-Language", d.Locale)
			}

			r = r.WithContext(requestctx.WithLocale(r.Context(), info))
			if d.Path != r.URL.Path {
				u := *r.URL
				u.Path = d.Path
				u.RawPath = ""
				r.URL = &u
			}
			next.ServeHTTP(w, r)
		})
	}
}
