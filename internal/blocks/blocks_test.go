package blocks

import (
	"encoding/json"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/richtext"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	reg, err := locale.NewRegistry(locale.DefaultConfig())
	require.NoError(t, err)
	r, err := NewRenderer(reg, WithTranslator(func(loc, key string) string { return loc + ":" + key }))
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, h template.HTML) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(h)))
	require.NoError(t, err)
	return doc
}

func TestDecodeListDispatchesOnBlockType(t *testing.T) {
	raw := `[
		{"blockType":"hero","heading":"Welcome","height":"full"},
		{"blockType":"unknownType","foo":1},
		{"blockType":"gallery","columns":"4","images":[]},
		{"blockType":"productGrid","source":"manual","products":["p1",{"id":42,"title":"x"}]}
	]`
	list, err := DecodeList(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, list, 4)

	assert.Equal(t, Hero{Heading: "Welcome", Height: "full"}, list[0])
	assert.Equal(t, "unknownType", list[1].BlockType())
	assert.IsType(t, Unknown{}, list[1])
	assert.Equal(t, FlexInt(4), list[2].(Gallery).Columns)
	assert.Equal(t, []string{"p1", "42"}, list[3].(ProductGrid).ProductIDs)

	_, err = DecodeList(json.RawMessage(`[{"blockType":"hero","heading":7}]`))
	assert.Error(t, err)
	_, err = DecodeList(json.RawMessage(`{"blockType":"hero"}`))
	assert.Error(t, err)

	empty, err := DecodeList(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEncodeListRoundTrip(t *testing.T) {
	in := []Block{
		CTA{Heading: "Talk to us", BackgroundColor: "dark"},
		ProductGrid{Source: SourceAuto, Limit: 3, Products: []ProductCard{{Slug: "pump", Title: "Pump"}}},
		Unknown{Type: "later", Raw: json.RawMessage(`{"blockType":"later"}`)},
	}
	raw, err := EncodeList(in)
	require.NoError(t, err)
	out, err := DecodeList(raw)
	require.NoError(t, err)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, "later", out[2].BlockType())
}

func TestRenderSkipsUnknownBlocks(t *testing.T) {
	r := newRenderer(t)
	out := r.Render([]Block{Unknown{Type: "unknownType"}}, "en")
	assert.Empty(t, out)

	out = r.Render([]Block{
		Stats{Items: []Stat{{Value: "1", Label: "a"}}},
		Unknown{Type: "x"},
		Timeline{Items: []Milestone{{Year: "2001", Title: "Founded"}}},
	}, "en")
	require.Len(t, out, 2)
	assert.Contains(t, string(out[0]), "stats")
	assert.Contains(t, string(out[1]), "timeline")
}

func TestRenderHeroDefaults(t *testing.T) {
	r := newRenderer(t)
	out := r.Render([]Block{
		Hero{Heading: "H", Buttons: []Button{{Label: "Go", URL: "/en/products"}, {Label: "Ext", URL: "https://example.com", Style: "outline"}}},
		Hero{Heading: "H2", Height: "medium", Alignment: "left"},
		Hero{Heading: "H3", Height: "giant", Alignment: "justify"},
	}, "en")
	require.Len(t, out, 3)

	doc := parse(t, out[0])
	section := doc.Find("section.hero")
	assert.True(t, section.HasClass("hero--large"))
	assert.True(t, section.HasClass("text-center"))
	links := doc.Find(".hero__actions a")
	require.Equal(t, 2, links.Length())
	_, blank := links.First().Attr("target")
	assert.False(t, blank)
	assert.Equal(t, "_blank", links.Last().AttrOr("target", ""))
	assert.True(t, links.Last().HasClass("btn-outline"))

	section = parse(t, out[1]).Find("section.hero")
	assert.True(t, section.HasClass("hero--medium"))
	assert.True(t, section.HasClass("text-left"))

	section = parse(t, out[2]).Find("section.hero")
	assert.True(t, section.HasClass("hero--large"))
	assert.True(t, section.HasClass("text-center"))
}

func TestRenderContentLayouts(t *testing.T) {
	r := newRenderer(t)
	col := func(s string) Column { return Column{Content: richtext.FromHTML("<p>" + s + "</p>")} }

	out := r.Render([]Block{
		Content{Columns: []Column{col("a"), col("b")}},
		Content{Layout: "twoWideRight", Columns: []Column{col("a"), col("b")}, BackgroundColor: "dark", PaddingTop: "none"},
		Content{Layout: "three", Columns: []Column{col("a"), col("b"), col("c")}, PaddingBottom: "large"},
	}, "tr")
	require.Len(t, out, 3)

	doc := parse(t, out[0])
	section := doc.Find("section.content")
	assert.True(t, section.HasClass("bg-white"))
	assert.True(t, section.HasClass("pt-medium"))
	assert.True(t, section.HasClass("pb-medium"))
	assert.Equal(t, 1, doc.Find(".prose").Length(), "layout one renders one column")

	doc = parse(t, out[1])
	section = doc.Find("section.content")
	assert.True(t, section.HasClass("bg-dark"))
	assert.True(t, section.HasClass("pt-none"))
	assert.True(t, section.HasClass("pb-medium"))
	cols := doc.Find(".prose")
	require.Equal(t, 2, cols.Length())
	assert.True(t, cols.Eq(0).HasClass("col-4"))
	assert.True(t, cols.Eq(1).HasClass("col-8"))

	doc = parse(t, out[2])
	assert.True(t, doc.Find("section.content").HasClass("pb-large"))
	assert.Equal(t, 3, doc.Find(".prose p").Length())
}

func TestRenderCTAButtonContrast(t *testing.T) {
	r := newRenderer(t)
	cases := map[string]string{
		"":          "btn-outline-white",
		"primary":   "btn-outline-white",
		"secondary": "btn-outline-white",
		"dark":      "btn-outline-white",
		"light":     "btn-primary",
	}
	for bg, want := range cases {
		out := r.Render([]Block{CTA{Heading: "c", BackgroundColor: bg, Buttons: []Button{{Label: "x", URL: "/x"}}}}, "en")
		require.Len(t, out, 1)
		btn := parse(t, out[0]).Find(".cta__actions a")
		assert.True(t, btn.HasClass(want), "background %q", bg)
	}
}

func TestRenderGalleryColumns(t *testing.T) {
	r := newRenderer(t)
	img := GalleryImage{Image: &richtext.Media{URL: "/m/1.jpg", Alt: "one"}}
	for cols, want := range map[FlexInt]string{0: "grid-cols-3", 2: "grid-cols-2", 5: "grid-cols-5", 9: "grid-cols-3"} {
		out := r.Render([]Block{Gallery{Columns: cols, Images: []GalleryImage{img, {Image: nil}}}}, "en")
		doc := parse(t, out[0])
		assert.True(t, doc.Find(".grid").HasClass(want), "columns %d", cols)
		assert.Equal(t, 1, doc.Find("img").Length())
	}
}

func TestRenderKeepsItemOrder(t *testing.T) {
	r := newRenderer(t)
	out := r.Render([]Block{
		Timeline{Items: []Milestone{{Year: "2020", Title: "c"}, {Year: "1999", Title: "a"}, {Year: "2010", Title: "b"}}},
		Testimonials{Items: []Testimonial{{Quote: "q1", Author: "A", Position: "CEO", Company: "X"}, {Quote: "q2", Author: "B"}}},
	}, "en")
	require.Len(t, out, 2)

	var years []string
	parse(t, out[0]).Find(".timeline__year").Each(func(_ int, s *goquery.Selection) {
		years = append(years, s.Text())
	})
	assert.Equal(t, []string{"2020", "1999", "2010"}, years)

	doc := parse(t, out[1])
	assert.Equal(t, "CEO, X", doc.Find(".testimonial__role").First().Text())
	assert.Equal(t, 1, doc.Find(".testimonial__role").Length())
}

func TestRenderProductGridUsesLocalizedPaths(t *testing.T) {
	r := newRenderer(t)
	grid := ProductGrid{Heading: "Featured", Products: []ProductCard{{Slug: "pump-x", Title: "Pump X"}}}

	doc := parse(t, r.Render([]Block{grid}, "tr")[0])
	assert.Equal(t, "/urunler/pump-x", doc.Find(".product-card__title a").AttrOr("href", ""))
	assert.Equal(t, "tr:products.view", doc.Find(".product-card__link").Text())

	doc = parse(t, r.Render([]Block{grid}, "es")[0])
	assert.Equal(t, "/es/productos/pump-x", doc.Find(".product-card__title a").AttrOr("href", ""))

	doc = parse(t, r.Render([]Block{ProductGrid{}}, "en")[0])
	assert.Equal(t, "en:products.empty", doc.Find(".product-grid__empty").Text())
}
