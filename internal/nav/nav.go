package nav

import (
	"path"
	"strings"

	"finitefield.org/corporate-web/internal/locale"
)

// Item represents a top-level navigation item.
type Item struct {
	Key      locale.RouteKey
	LabelKey string // i18n key, e.g. "nav.products"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Language is one entry of the language switcher.
type Language struct {
	Code   string
	Name   string
	Href   string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Key: locale.RouteProducts, LabelKey: "nav.products"},
	{Key: locale.RouteProjects, LabelKey: "nav.projects"},
	{Key: locale.RouteServices, LabelKey: "nav.services"},
	{Key: locale.RouteNews, LabelKey: "nav.news"},
	{Key: locale.RouteAbout, LabelKey: "nav.about"},
	{Key: locale.RouteTeam, LabelKey: "nav.team"},
	{Key: locale.RouteContact, LabelKey: "nav.contact"},
}

// Build renders navigation items in loc with active state given the public
// path of the current page.
func Build(reg *locale.Registry, loc, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		href := reg.SectionPath(it.Key, loc, "")
		items = append(items, RenderedItem{
			Href:     href,
			LabelKey: it.LabelKey,
			Active:   isActive(href, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/urunler" or "/urunler/..."
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries for rest, the path below the locale
// prefix. Known sections use their nav label; the last crumb uses title when
// it is set.
func Breadcrumbs(reg *locale.Registry, loc, rest, title string) []Crumb {
	home := reg.LocalePath(loc, "")
	crumbs := []Crumb{{Href: home, LabelKey: "nav.home"}}

	clean := path.Clean("/" + rest)
	if clean == "/" {
		crumbs[0].Active = true
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		c := Crumb{
			Href:   reg.LocalePath(loc, href),
			Label:  titleFromSegment(part),
			Active: i == len(parts)-1,
		}
		if i == 0 {
			if key, ok := reg.RouteKeyFor(part, loc); ok {
				c.LabelKey = "nav." + string(key)
			}
		}
		if c.Active && title != "" {
			c.LabelKey = ""
			c.Label = title
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// Languages builds the language switcher from the alternates of the current
// page.
func Languages(reg *locale.Registry, links []locale.AlternateLink, current string) []Language {
	out := make([]Language, 0, len(links))
	for _, l := range links {
		out = append(out, Language{
			Code:   l.Locale,
			Name:   reg.DisplayName(l.Locale),
			Href:   l.Href,
			Active: l.Locale == current,
		})
	}
	return out
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
