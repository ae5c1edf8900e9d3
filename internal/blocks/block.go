// Package blocks decodes and renders page-builder layouts.
package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"finitefield.org/corporate-web/internal/richtext"
)

// Block is one entry of a layout. The set of variants is closed; content
// types this package does not know decode to Unknown.
type Block interface {
	BlockType() string
	isBlock()
}

// Button is a call-to-action link.
type Button struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Style  string `json:"style,omitempty"`
	NewTab bool   `json:"newTab,omitempty"`
}

// Hero is a full-width banner with a heading and optional buttons. Height
// is small, medium, large or full; Alignment is left, center or right.
type Hero struct {
	Heading         string          `json:"heading"`
	Subheading      string          `json:"subheading,omitempty"`
	BackgroundImage *richtext.Media `json:"backgroundImage,omitempty"`
	Buttons         []Button        `json:"buttons,omitempty"`
	Height          string          `json:"height,omitempty"`
	Alignment       string          `json:"alignment,omitempty"`
}

// Column is one rich-text column of a Content block.
type Column struct {
	Content richtext.Content `json:"content"`
}

// Content lays out rich-text columns. Layout names the column split, for
// example "oneColumn" or "twoColumns".
type Content struct {
	Layout          string   `json:"layout,omitempty"`
	Columns         []Column `json:"columns,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	PaddingTop      string   `json:"paddingTop,omitempty"`
	PaddingBottom   string   `json:"paddingBottom,omitempty"`
}

// CTA is a call-to-action band.
type CTA struct {
	Heading         string   `json:"heading"`
	Description     string   `json:"description,omitempty"`
	Buttons         []Button `json:"buttons,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
}

// GalleryImage is one captioned image.
type GalleryImage struct {
	Image   *richtext.Media `json:"image"`
	Caption string          `json:"caption,omitempty"`
}

// Gallery shows images in a grid of Columns (2 to 4).
type Gallery struct {
	Heading string         `json:"heading,omitempty"`
	Images  []GalleryImage `json:"images,omitempty"`
	Columns FlexInt        `json:"columns,omitempty"`
}

// Stat is one headline figure.
type Stat struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Stats is a row of headline figures.
type Stats struct {
	Heading string `json:"heading,omitempty"`
	Items   []Stat `json:"items,omitempty"`
}

// Milestone is one dated entry of a Timeline.
type Milestone struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Timeline lists milestones in the stored order.
type Timeline struct {
	Heading string      `json:"heading,omitempty"`
	Items   []Milestone `json:"items,omitempty"`
}

// Testimonial is a customer quote with attribution.
type Testimonial struct {
	Quote    string          `json:"quote"`
	Author   string          `json:"author"`
	Position string          `json:"position,omitempty"`
	Company  string          `json:"company,omitempty"`
	Photo    *richtext.Media `json:"photo,omitempty"`
}

// Testimonials groups customer quotes.
type Testimonials struct {
	Heading string        `json:"heading,omitempty"`
	Items   []Testimonial `json:"items,omitempty"`
}

// ProductCard is the product summary a ProductGrid renders.
type ProductCard struct {
	Slug     string          `json:"slug"`
	Title    string          `json:"title"`
	Summary  string          `json:"summary,omitempty"`
	Category string          `json:"category,omitempty"`
	Image    *richtext.Media `json:"image,omitempty"`
}

// Product grid sources.
const (
	SourceCategory = "category"
	SourceManual   = "manual"
	SourceAuto     = "auto"
)

// ProductGrid selects products by category, by explicit IDs or as the latest
// entries. The content layer fills Products before rendering.
type ProductGrid struct {
	Heading    string        `json:"heading,omitempty"`
	Source     string        `json:"source,omitempty"`
	Category   string        `json:"category,omitempty"`
	ProductIDs []string      `json:"products,omitempty"`
	Limit      int           `json:"limit,omitempty"`
	Products   []ProductCard `json:"resolvedProducts,omitempty"`
}

// Unknown keeps a block of an unrecognised type so it can be skipped.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

// BlockType returns the CMS blockType discriminator.
func (Hero) BlockType() string         { return "hero" }
func (Content) BlockType() string      { return "content" }
func (CTA) BlockType() string          { return "cta" }
func (Gallery) BlockType() string      { return "gallery" }
func (Stats) BlockType() string        { return "stats" }
func (Timeline) BlockType() string     { return "timeline" }
func (Testimonials) BlockType() string { return "testimonials" }
func (ProductGrid) BlockType() string  { return "productGrid" }
func (u Unknown) BlockType() string    { return u.Type }

func (Hero) isBlock()         {}
func (Content) isBlock()      {}
func (CTA) isBlock()          {}
func (Gallery) isBlock()      {}
func (Stats) isBlock()        {}
func (Timeline) isBlock()     {}
func (Testimonials) isBlock() {}
func (ProductGrid) isBlock()  {}
func (Unknown) isBlock()      {}

// Decode decodes one block using its blockType discriminator.
func Decode(data json.RawMessage) (Block, error) {
	var head struct {
		BlockType string `json:"blockType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("blocks: decode: %w", err)
	}
	var (
		b   Block
		err error
	)
	switch head.BlockType {
	case "hero":
		b, err = decodeAs[Hero](data)
	case "content":
		b, err = decodeAs[Content](data)
	case "cta":
		b, err = decodeAs[CTA](data)
	case "gallery":
		b, err = decodeAs[Gallery](data)
	case "stats":
		b, err = decodeAs[Stats](data)
	case "timeline":
		b, err = decodeAs[Timeline](data)
	case "testimonials":
		b, err = decodeAs[Testimonials](data)
	case "productGrid":
		b, err = decodeProductGrid(data)
	default:
		return Unknown{Type: head.BlockType, Raw: append(json.RawMessage(nil), data...)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blocks: decode %s: %w", head.BlockType, err)
	}
	return b, nil
}

// DecodeList decodes a JSON array of blocks, keeping order.
func DecodeList(data json.RawMessage) ([]Block, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("blocks: decode list: %w", err)
	}
	out := make([]Block, 0, len(raws))
	for i, raw := range raws {
		b, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("blocks: item %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Encode writes a block with its discriminator, the inverse of Decode.
func Encode(b Block) (json.RawMessage, error) {
	if u, ok := b.(Unknown); ok {
		return u.Raw, nil
	}
	body, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["blockType"], _ = json.Marshal(b.BlockType())
	return json.Marshal(fields)
}

// EncodeList is the inverse of DecodeList.
func EncodeList(list []Block) (json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(list))
	for _, b := range list {
		raw, err := Encode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func decodeAs[T Block](data json.RawMessage) (Block, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeProductGrid accepts product references as IDs or as populated
// documents carrying an "id" field.
func decodeProductGrid(data json.RawMessage) (Block, error) {
	var raw struct {
		ProductGrid
		ProductIDs []json.RawMessage `json:"products,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	g := raw.ProductGrid
	g.ProductIDs = nil
	for _, ref := range raw.ProductIDs {
		var id string
		if err := json.Unmarshal(ref, &id); err == nil {
			g.ProductIDs = append(g.ProductIDs, id)
			continue
		}
		var doc struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(ref, &doc); err != nil {
			return nil, err
		}
		if s := flexString(doc.ID); s != "" {
			g.ProductIDs = append(g.ProductIDs, s)
		}
	}
	return g, nil
}

func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// FlexInt decodes a number that editors may store as a string enum ("3").
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("blocks: %q is not a number", s)
	}
	*f = FlexInt(n)
	return nil
}
