package cms

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// seedFile is the layout of one seed YAML file. Every document may carry a
// "locales" map whose entries overlay the shared fields for that locale.
type seedFile struct {
	Globals     map[string]map[string]any   `yaml:"globals"`
	Collections map[string][]map[string]any `yaml:"collections"`
}

// LocalSource serves content from seed YAML files. Localized fields missing
// for a locale fall back to the default locale.
type LocalSource struct {
	defaultLocale string
	globals       map[string]map[string]any
	collections   map[string][]map[string]any
	markdown      goldmark.Markdown
	policy        *bluemonday.Policy

	mu       sync.RWMutex
	rendered map[string]string
}

// NewLocalSource loads every *.yaml file under the root of fsys.
func NewLocalSource(fsys fs.FS, defaultLocale string) (*LocalSource, error) {
	s := &LocalSource{
		defaultLocale: defaultLocale,
		globals:       make(map[string]map[string]any),
		collections:   make(map[string][]map[string]any),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy:   newContentPolicy(),
		rendered: make(map[string]string),
	}
	matches, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("cms: list seed files: %w", err)
	}
	sort.Strings(matches)
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("cms: read %s: %w", name, err)
		}
		var file seedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("cms: parse %s: %w", name, err)
		}
		for slug, doc := range file.Globals {
			s.globals[slug] = doc
		}
		for collection, docs := range file.Collections {
			s.collections[collection] = append(s.collections[collection], docs...)
		}
	}
	return s, nil
}

// NewSeedSource loads the embedded seed content.
func NewSeedSource(defaultLocale string) (*LocalSource, error) {
	sub, err := fs.Sub(seedFS, "seed")
	if err != nil {
		return nil, err
	}
	return NewLocalSource(sub, defaultLocale)
}

// Find filters, sorts and paginates a seeded collection.
func (s *LocalSource) Find(_ context.Context, q Query) (Result, error) {
	q = q.normalized()
	var matched []map[string]any
	for _, raw := range s.collections[q.Collection] {
		doc := s.localize(raw, q.Locale)
		if matches(doc, q) {
			matched = append(matched, doc)
		}
	}
	if q.Sort != "" {
		field, desc := strings.TrimPrefix(q.Sort, "-"), strings.HasPrefix(q.Sort, "-")
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := fieldString(matched[i], field), fieldString(matched[j], field)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	res := Result{
		TotalDocs:  len(matched),
		Page:       q.Page,
		TotalPages: totalPages(len(matched), q.Limit),
		Docs:       []Document{},
	}
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return res, nil
	}
	end := min(start+q.Limit, len(matched))
	for _, doc := range matched[start:end] {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return Result{}, fmt.Errorf("cms: encode %s document: %w", q.Collection, err)
		}
		res.Docs = append(res.Docs, Document(encoded))
	}
	return res, nil
}

// Global returns a seeded singleton.
func (s *LocalSource) Global(_ context.Context, name, locale string, _ int) (Document, bool, error) {
	raw, ok := s.globals[name]
	if !ok {
		return nil, false, nil
	}
	encoded, err := json.Marshal(s.localize(raw, locale))
	if err != nil {
		return nil, false, fmt.Errorf("cms: encode global %s: %w", name, err)
	}
	return Document(encoded), true, nil
}

// localize flattens the shared fields with the default and requested locale
// overlays and renders markdown values.
func (s *LocalSource) localize(raw map[string]any, locale string) map[string]any {
	out := make(map[string]any, len(raw)+4)
	for k, v := range raw {
		if k == "locales" {
			continue
		}
		out[k] = v
	}
	overlays, _ := raw["locales"].(map[string]any)
	if def, ok := overlays[s.defaultLocale].(map[string]any); ok {
		for k, v := range def {
			out[k] = v
		}
	}
	if locale != s.defaultLocale {
		if loc, ok := overlays[locale].(map[string]any); ok {
			for k, v := range loc {
				out[k] = v
			}
		}
	}
	return s.convert(out).(map[string]any)
}

// convert replaces every {markdown: "..."} map with sanitised HTML.
func (s *LocalSource) convert(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if md, ok := val["markdown"].(string); ok && len(val) == 1 {
			return s.renderMarkdown(md)
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = s.convert(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = s.convert(item)
		}
		return out
	default:
		return v
	}
}

func (s *LocalSource) renderMarkdown(md string) string {
	s.mu.RLock()
	html, ok := s.rendered[md]
	s.mu.RUnlock()
	if ok {
		return html
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return s.policy.Sanitize(md)
	}
	html = strings.TrimSpace(s.policy.Sanitize(buf.String()))
	s.mu.Lock()
	s.rendered[md] = html
	s.mu.Unlock()
	return html
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(false)
	return policy
}

func matches(doc map[string]any, q Query) bool {
	for field, want := range q.Where {
		if fieldString(doc, field) != want {
			return false
		}
	}
	for field, values := range q.In {
		got := fieldString(doc, field)
		found := false
		for _, v := range values {
			if v == got {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fieldString reads a possibly dotted field path as a string.
func fieldString(doc map[string]any, field string) string {
	var cur any = doc
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[part]
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
