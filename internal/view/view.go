// Package view renders the site's HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"finitefield.org/corporate-web/internal/format"
	"finitefield.org/corporate-web/internal/richtext"
)

//go:embed templates
var embedded embed.FS

const layoutFile = "layout.tmpl"

// Renderer executes the "base" layout around a page template. Each page
// lives in templates/pages/{name}.tmpl and defines "content".
type Renderer struct {
	funcs     template.FuncMap
	devDir    string
	translate func(lang, key string) string
	pages     map[string]*template.Template
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithFuncs adds template functions.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// WithTranslator sets the UI string lookup behind the "t" and "tf" functions.
func WithTranslator(t func(lang, key string) string) Option {
	return func(r *Renderer) {
		if t != nil {
			r.translate = t
		}
	}
}

// WithDevDir reparses templates from dir on every render.
func WithDevDir(dir string) Option {
	return func(r *Renderer) { r.devDir = strings.TrimSpace(dir) }
}

// New parses the embedded templates. In dev mode parsing is deferred to
// each render and only checked once here.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		translate: func(_, key string) string { return key },
	}
	r.funcs = template.FuncMap{
		"now":      time.Now,
		"t":        func(lang, key string) string { return r.translate(lang, key) },
		"tf":       func(lang, key string, args ...any) string { return fmt.Sprintf(r.translate(lang, key), args...) },
		"richtext": richtext.RenderContent,
		"date":     format.FmtDate,
		"isoDate":  format.ISODate,
		"number":   format.FmtNumber,
		"external": richtext.IsExternal,
	}
	for _, opt := range opts {
		opt(r)
	}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func (r *Renderer) source() (fs.FS, error) {
	if r.devDir != "" {
		return os.DirFS(r.devDir), nil
	}
	return fs.Sub(embedded, "templates")
}

func (r *Renderer) parse() (map[string]*template.Template, error) {
	fsys, err := r.source()
	if err != nil {
		return nil, err
	}
	base, err := template.New("_root").Funcs(r.funcs).ParseFS(fsys, layoutFile, "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}
	files, err := fs.Glob(fsys, "pages/*.tmpl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("view: no page templates found")
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		t, err := template.Must(base.Clone()).ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}
	return pages, nil
}

// Render executes page name with data and writes it with status. Nothing is
// written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	pages := r.pages
	if r.devDir != "" {
		fresh, err := r.parse()
		if err != nil {
			return err
		}
		pages = fresh
	}
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
