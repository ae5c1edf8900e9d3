package blocks

import (
	"bytes"
	"embed"
	"html/template"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/richtext"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Translator looks up a UI string for a locale.
type Translator func(locale, key string) string

// Renderer turns blocks into HTML fragments.
type Renderer struct {
	tmpl      *template.Template
	reg       *locale.Registry
	translate Translator
	logger    *zap.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithTranslator sets the UI string lookup used for fixed labels.
func WithTranslator(t Translator) Option {
	return func(r *Renderer) { r.translate = t }
}

// WithLogger sets the logger used for template failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer parses the embedded block templates.
func NewRenderer(reg *locale.Registry, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		reg:       reg,
		translate: func(_, key string) string { return key },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	funcs := template.FuncMap{
		"richtext":    richtext.RenderContent,
		"buttonClass": buttonClass,
		"external":    richtext.IsExternal,
	}
	tmpl, err := template.New("blocks").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

type heroView struct {
	Hero
	HeightClass string
	AlignClass  string
}

type contentColumn struct {
	Class   string
	Content richtext.Content
}

type contentView struct {
	Background    string
	PaddingTop    string
	PaddingBottom string
	Columns       []contentColumn
}

type ctaView struct {
	CTA
	Background  string
	ButtonClass string
}

type galleryView struct {
	Gallery
	Cols int
}

type productLink struct {
	ProductCard
	Href string
}

type productGridView struct {
	Heading  string
	Products []productLink
	Empty    string
	More     string
}

// Render renders blocks in order. Unknown blocks produce no entry; a block
// whose template fails is logged and skipped.
func (r *Renderer) Render(list []Block, loc string) []template.HTML {
	out := make([]template.HTML, 0, len(list))
	for _, b := range list {
		name, data, ok := r.view(b, loc)
		if !ok {
			continue
		}
		var buf bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			r.logger.Error("blocks: render failed", zap.String("block", b.BlockType()), zap.Error(err))
			continue
		}
		out = append(out, template.HTML(buf.String()))
	}
	return out
}

func (r *Renderer) view(b Block, loc string) (string, any, bool) {
	switch v := b.(type) {
	case Hero:
		return "hero", heroView{Hero: v, HeightClass: heroHeightClass(v.Height), AlignClass: alignClass(v.Alignment)}, true
	case Content:
		classes := columnClasses(v.Layout)
		cols := make([]contentColumn, 0, len(classes))
		for i, class := range classes {
			if i >= len(v.Columns) {
				break
			}
			cols = append(cols, contentColumn{Class: class, Content: v.Columns[i].Content})
		}
		return "content", contentView{
			Background:    contentBackgroundClass(v.BackgroundColor),
			PaddingTop:    paddingSize(v.PaddingTop),
			PaddingBottom: paddingSize(v.PaddingBottom),
			Columns:       cols,
		}, true
	case CTA:
		class := "btn btn-primary"
		if ctaInverted(v.BackgroundColor) {
			class = "btn btn-outline-white"
		}
		return "cta", ctaView{CTA: v, Background: ctaBackground(v.BackgroundColor), ButtonClass: class}, true
	case Gallery:
		return "gallery", galleryView{Gallery: v, Cols: galleryColumns(v.Columns)}, true
	case Stats:
		return "stats", v, true
	case Timeline:
		return "timeline", v, true
	case Testimonials:
		return "testimonials", v, true
	case ProductGrid:
		links := make([]productLink, 0, len(v.Products))
		for _, p := range v.Products {
			links = append(links, productLink{ProductCard: p, Href: r.reg.SectionPath(locale.RouteProducts, loc, p.Slug)})
		}
		return "productGrid", productGridView{
			Heading:  v.Heading,
			Products: links,
			Empty:    r.translate(loc, "products.empty"),
			More:     r.translate(loc, "products.view"),
		}, true
	default:
		return "", nil, false
	}
}
