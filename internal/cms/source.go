// Package cms reads localized site content from the headless CMS, with an
// embedded seed used when the CMS is not configured or unreachable.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a CMS resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

// Collections served by the CMS.
const (
	CollectionPages    = "pages"
	CollectionProducts = "products"
	CollectionProjects = "projects"
	CollectionNews     = "news"
)

// GlobalHomepage is the singleton holding the home page layout.
const GlobalHomepage = "homepage"

// Document is one JSON document as returned by a Source.
type Document json.RawMessage

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	if len(d) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(d, v)
}

// MarshalJSON emits the raw document.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores a copy of data.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

// Query selects documents from a collection. Where holds equality filters and
// In holds membership filters, both keyed by field name.
type Query struct {
	Collection string
	Locale     string
	Where      map[string]string
	In         map[string][]string
	Limit      int
	Page       int
	Depth      int
	// Sort is a field name, prefixed with "-" for descending order.
	Sort string
}

// Result is one page of documents. An empty Docs slice means nothing matched.
type Result struct {
	Docs       []Document `json:"docs"`
	TotalDocs  int        `json:"totalDocs"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// Source is the content backend contract. Missing content is reported as an
// empty Result or found=false, never as an error.
type Source interface {
	Find(ctx context.Context, q Query) (Result, error)
	Global(ctx context.Context, name, locale string, depth int) (Document, bool, error)
}

const defaultLimit = 10

func (q Query) normalized() Query {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Depth < 0 {
		q.Depth = 0
	}
	return q
}

// key renders the query deterministically for use as a cache key.
func (q Query) key() string {
	q = q.normalized()
	var b strings.Builder
	b.WriteString(q.Collection)
	b.WriteString("|")
	b.WriteString(q.Locale)
	b.WriteString("|")
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteString("|")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("|")
	b.WriteString(strconv.Itoa(q.Depth))
	b.WriteString("|")
	b.WriteString(q.Sort)
	for _, field := range sortedKeys(q.Where) {
		b.WriteString("|w:")
		b.WriteString(field)
		b.WriteString("=")
		b.WriteString(q.Where[field])
	}
	for _, field := range sortedKeys(q.In) {
		b.WriteString("|in:")
		b.WriteString(field)
		b.WriteString("=")
		b.WriteString(strings.Join(q.In[field], ","))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func totalPages(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.Contains(slug, "/") {
		return ""
	}
	return slug
}
