package seo

import (
	"strings"

	"golang.org/x/net/html"
)

// Robots renders robots.txt. disallowAll blocks every crawler, which is used
// for non-production deployments.
func Robots(baseURL string, disallowAll bool) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if disallowAll {
		b.WriteString("Disallow: /\n")
		return b.String()
	}
	for _, prefix := range SitemapExcluded {
		b.WriteString("Disallow: " + prefix + "/\n")
	}
	b.WriteString("Allow: /\n\n")
	b.WriteString("Sitemap: " + Absolute(baseURL, "/sitemap.xml") + "\n")
	return b.String()
}

// Excerpt returns the text content of an HTML fragment, whitespace collapsed
// and cut at a word boundary to at most n runes.
func Excerpt(fragment string, n int) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var (
		b    strings.Builder
		skip int
	)
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "div":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "div":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
