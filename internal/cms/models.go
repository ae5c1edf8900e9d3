package cms

import (
	"bytes"
	"encoding/json"
	"time"

	"finitefield.org/corporate-web/internal/blocks"
	"finitefield.org/corporate-web/internal/richtext"
)

// ID is a document identifier. Numeric ids are kept in their decimal form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Layout is a page-builder block list.
type Layout []blocks.Block

func (l *Layout) UnmarshalJSON(data []byte) error {
	list, err := blocks.DecodeList(data)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

func (l Layout) MarshalJSON() ([]byte, error) {
	return blocks.EncodeList(l)
}

// Meta is the per-document SEO override group.
type Meta struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Image       *richtext.Media `json:"image,omitempty"`
}

type Homepage struct {
	Title     string    `json:"title"`
	Layout    Layout    `json:"layout"`
	Meta      Meta      `json:"meta"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Page struct {
	ID        ID        `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Layout    Layout    `json:"layout"`
	Meta      Meta      `json:"meta"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Spec is one row of a product's technical specification table.
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Product struct {
	ID          ID               `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	Category    string           `json:"category"`
	Image       *richtext.Media  `json:"image,omitempty"`
	Gallery     []richtext.Media `json:"gallery,omitempty"`
	Description richtext.Content `json:"description"`
	Specs       []Spec           `json:"specs,omitempty"`
	Meta        Meta             `json:"meta"`
	PublishedAt time.Time        `json:"publishedAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Card returns the summary rendered by product grids.
func (p Product) Card() blocks.ProductCard {
	return blocks.ProductCard{
		Slug:     p.Slug,
		Title:    p.Title,
		Summary:  p.Summary,
		Category: p.Category,
		Image:    p.Image,
	}
}

type Project struct {
	ID          ID               `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	Client      string           `json:"client,omitempty"`
	Location    string           `json:"location,omitempty"`
	Year        string           `json:"year,omitempty"`
	Image       *richtext.Media  `json:"image,omitempty"`
	Gallery     []richtext.Media `json:"gallery,omitempty"`
	Content     richtext.Content `json:"content"`
	Meta        Meta             `json:"meta"`
	PublishedAt time.Time        `json:"publishedAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type NewsItem struct {
	ID          ID               `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Excerpt     string           `json:"excerpt"`
	Image       *richtext.Media  `json:"image,omitempty"`
	Content     richtext.Content `json:"content"`
	Meta        Meta             `json:"meta"`
	PublishedAt time.Time        `json:"publishedAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// List is one page of typed documents.
type List[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	TotalDocs  int
}

func (l List[T]) HasPrev() bool { return l.Page > 1 }
func (l List[T]) HasNext() bool { return l.Page < l.TotalPages }

// IndexEntry is the minimal document view used for sitemaps.
type IndexEntry struct {
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updatedAt"`
}
