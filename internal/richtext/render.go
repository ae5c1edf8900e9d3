package richtext

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

// RenderContent renders a field value. Legacy HTML is returned as-is.
func RenderContent(c Content) template.HTML {
	if c.root != nil {
		return Render(*c.root)
	}
	return template.HTML(c.html)
}

// Render renders a node tree to HTML. Text is escaped; output depends only on
// the tree.
func Render(n Node) template.HTML {
	var b strings.Builder
	writeNode(&b, n)
	return template.HTML(b.String())
}

// textWrappers lists format bits from outermost to innermost.
var textWrappers = []struct {
	bit Format
	tag string
}{
	{Bold, "strong"},
	{Italic, "em"},
	{Strikethrough, "s"},
	{Underline, "u"},
	{Code, "code"},
}

func writeNode(b *strings.Builder, n Node) {
	switch n.Type {
	case "root":
		writeChildren(b, n)
	case "text":
		writeText(b, n)
	case "paragraph":
		writeElement(b, "p", "", n)
	case "heading":
		writeElement(b, headingTag(n.Tag), "", n)
	case "list":
		tag := "ul"
		if n.ListType == "number" {
			tag = "ol"
		}
		writeElement(b, tag, "", n)
	case "listitem":
		attrs := ""
		if n.Ordinal > 0 {
			attrs = ` value="` + strconv.Itoa(n.Ordinal) + `"`
		}
		writeElement(b, "li", attrs, n)
	case "quote":
		writeElement(b, "blockquote", "", n)
	case "link", "autolink":
		writeLink(b, n)
	case "linebreak":
		b.WriteString("<br>")
	case "horizontalrule":
		b.WriteString("<hr>")
	case "tab":
		b.WriteString("\t")
	case "upload":
		writeUpload(b, n)
	default:
		if len(n.Children) > 0 {
			writeElement(b, "div", "", n)
		}
	}
}

func writeChildren(b *strings.Builder, n Node) {
	for _, child := range n.Children {
		writeNode(b, child)
	}
}

func writeElement(b *strings.Builder, tag, attrs string, n Node) {
	b.WriteString("<" + tag + attrs + ">")
	writeChildren(b, n)
	b.WriteString("</" + tag + ">")
}

func writeText(b *strings.Builder, n Node) {
	for _, w := range textWrappers {
		if n.Format.Has(w.bit) {
			b.WriteString("<" + w.tag + ">")
		}
	}
	b.WriteString(template.HTMLEscapeString(n.Text))
	for i := len(textWrappers) - 1; i >= 0; i-- {
		if n.Format.Has(textWrappers[i].bit) {
			b.WriteString("</" + textWrappers[i].tag + ">")
		}
	}
}

func headingTag(tag string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return tag
	}
	return "h2"
}

func writeLink(b *strings.Builder, n Node) {
	href, ok := safeHref(n.URL)
	if !ok {
		writeChildren(b, n)
		return
	}
	attrs := ` href="` + template.HTMLEscapeString(href) + `"`
	// Only absolute URLs open a new context; newTab on internal links is ignored.
	if IsExternal(href) {
		attrs += ` target="_blank" rel="noopener noreferrer"`
	}
	writeElement(b, "a", attrs, n)
}

// IsExternal reports whether href is an absolute http(s) or
// protocol-relative URL.
func IsExternal(href string) bool {
	if strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func safeHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return raw, true
	}
	return "", false
}

func writeUpload(b *strings.Builder, n Node) {
	if n.Upload == nil || strings.TrimSpace(n.Upload.URL) == "" {
		return
	}
	m := n.Upload
	src := template.HTMLEscapeString(m.URL)
	b.WriteString("<figure>")
	if strings.HasPrefix(m.MimeType, "video/") {
		b.WriteString(`<video src="` + src + `" controls preload="metadata"></video>`)
	} else {
		b.WriteString(`<img src="` + src + `" alt="` + template.HTMLEscapeString(m.Alt) + `"`)
		if m.Width > 0 && m.Height > 0 {
			b.WriteString(` width="` + strconv.Itoa(m.Width) + `" height="` + strconv.Itoa(m.Height) + `"`)
		}
		b.WriteString(` loading="lazy">`)
	}
	if m.Caption != "" {
		b.WriteString("<figcaption>" + template.HTMLEscapeString(m.Caption) + "</figcaption>")
	}
	b.WriteString("</figure>")
}
