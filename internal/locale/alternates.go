package locale

import "strings"

// AlternateLink is one language version of a URL.
type AlternateLink struct {
	Locale string
	Href   string
}

// AlternateLinks returns the URL of a section (or of slug inside it) in every
// locale, in registry order.
func (r *Registry) AlternateLinks(key RouteKey, slug string) []AlternateLink {
	slug = strings.Trim(slug, "/")
	out := make([]AlternateLink, 0, len(r.locales))
	for _, l := range r.locales {
		base := r.TranslatedSegment(key, l.Code)
		p := base
		if slug != "" {
			p = base + "/" + slug
		}
		out = append(out, AlternateLink{Locale: l.Code, Href: r.LocalePath(l.Code, p)})
	}
	return out
}

// HomeAlternates returns the home page URL of every locale, in registry order.
func (r *Registry) HomeAlternates() []AlternateLink {
	out := make([]AlternateLink, 0, len(r.locales))
	for _, l := range r.locales {
		out = append(out, AlternateLink{Locale: l.Code, Href: r.LocalePath(l.Code, "")})
	}
	return out
}

// PathAlternates returns an untranslated path in every locale, in registry
// order. It serves documents that live outside a translated section.
func (r *Registry) PathAlternates(path string) []AlternateLink {
	out := make([]AlternateLink, 0, len(r.locales))
	for _, l := range r.locales {
		out = append(out, AlternateLink{Locale: l.Code, Href: r.LocalePath(l.Code, path)})
	}
	return out
}

// Href returns the link for locale, or an empty string.
func Href(links []AlternateLink, locale string) string {
	for _, l := range links {
		if l.Locale == locale {
			return l.Href
		}
	}
	return ""
}
