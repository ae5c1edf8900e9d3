package locale

import "strings"

// TranslatedSegment returns the URL segment of key in locale.
// Unconfigured pairs fall back to the key itself.
func (r *Registry) TranslatedSegment(key RouteKey, locale string) string {
	if byLocale, ok := r.routes[key]; ok {
		if seg, ok := byLocale[locale]; ok && seg != "" {
			return seg
		}
	}
	return string(key)
}

// RouteKeyFor is the reverse of TranslatedSegment. The boolean is false when
// segment is not a known section in locale.
func (r *Registry) RouteKeyFor(segment, locale string) (RouteKey, bool) {
	segment = strings.Trim(segment, "/")
	if segment == "" {
		return "", false
	}
	bySegment, ok := r.reverse[locale]
	if !ok {
		return "", false
	}
	key, ok := bySegment[segment]
	return key, ok
}

// LocalePath builds a root-relative URL for path in locale. The default locale
// is never prefixed; every other locale gets a /{locale} prefix.
func (r *Registry) LocalePath(locale, path string) string {
	rest := strings.TrimLeft(collapseSlashes(path), "/")
	if locale == r.def || locale == "" {
		return "/" + rest
	}
	if rest == "" {
		return "/" + locale
	}
	return "/" + locale + "/" + rest
}

// SectionPath returns the localized URL of a section, or of a document inside
// it when slug is not empty.
func (r *Registry) SectionPath(key RouteKey, locale, slug string) string {
	p := r.TranslatedSegment(key, locale)
	if slug = strings.Trim(slug, "/"); slug != "" {
		p += "/" + slug
	}
	return r.LocalePath(locale, p)
}

// StripLocale splits a /{locale}/... path into the locale and the remainder.
// Paths without a supported locale prefix return an empty locale.
func (r *Registry) StripLocale(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, _ := strings.Cut(trimmed, "/")
	if !r.IsSupported(first) {
		return "", path
	}
	return first, "/" + rest
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
