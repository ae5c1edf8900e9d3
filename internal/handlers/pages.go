package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"finitefield.org/corporate-web/internal/blocks"
	"finitefield.org/corporate-web/internal/cms"
	"finitefield.org/corporate-web/internal/format"
	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/richtext"
	"finitefield.org/corporate-web/internal/seo"
)

// HomeData is the view model of the home page.
type HomeData struct {
	Blocks []template.HTML
}

// PageData is the view model of a CMS page.
type PageData struct {
	Title     string
	HideTitle bool
	Blocks    []template.HTML
}

// Card is one entry of a listing.
type Card struct {
	Href    string
	Title   string
	Summary string
	Label   string
	Image   *richtext.Media
}

// ListData is the view model of a paginated collection listing.
type ListData struct {
	Lang       string
	Kind       string
	Title      string
	Items      []Card
	Page       int
	TotalPages int
	TotalDocs  int
	PrevHref   string
	NextHref   string
	EmptyKey   string
}

type ProductData struct {
	Product     cms.Product
	ContactHref string
}

type ProjectData struct {
	Project cms.Project
}

type NewsData struct {
	Item cms.NewsItem
}

type ContactData struct {
	Endpoint string
}

// Home renders the localized homepage layout.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	hp, err := s.content.Homepage(r.Context(), lang)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	title := firstNonEmpty(hp.Meta.Title, hp.Title)
	p := s.page(r, pageInput{
		title:       title,
		description: hp.Meta.Description,
		image:       mediaURL(hp.Meta.Image),
		alternates:  s.reg.HomeAlternates(),
		jsonLD: []map[string]any{
			seo.Organization(s.cfg.SiteName, s.cfg.BaseURL, seo.Absolute(s.cfg.BaseURL, "/assets/img/logo.svg")),
			seo.WebSite(s.cfg.SiteName, s.cfg.BaseURL, s.reg.Codes()),
		},
	}, HomeData{Blocks: s.renderBlocks(r, lang, hp.Layout)})
	s.render(w, r, http.StatusOK, "home", p)
}

// Section serves /{locale}/{section}: collection listings, the fixed pages
// behind translated segments and, for any other segment, a CMS page by slug.
func (s *Site) Section(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	seg := chi.URLParam(r, "section")
	key, ok := s.reg.RouteKeyFor(seg, lang)
	if !ok {
		// Fixed pages are only reachable through their translated segment.
		if _, fixed := fixedPages[seg]; fixed {
			s.NotFound(w, r)
			return
		}
		s.cmsPage(w, r, seg, s.reg.PathAlternates(seg), seg)
		return
	}
	switch key {
	case locale.RouteProducts, locale.RouteProjects, locale.RouteNews:
		s.listing(w, r, key)
	case locale.RouteContact:
		s.contactPage(w, r)
	default:
		s.cmsPage(w, r, string(key), s.reg.AlternateLinks(key, ""), seg)
	}
}

// Detail serves a single product, project or news item.
func (s *Site) Detail(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	seg := chi.URLParam(r, "section")
	slug := chi.URLParam(r, "slug")
	key, ok := s.reg.RouteKeyFor(seg, lang)
	if !ok {
		s.NotFound(w, r)
		return
	}
	switch key {
	case locale.RouteProducts:
		s.product(w, r, slug)
	case locale.RouteProjects:
		s.project(w, r, slug)
	case locale.RouteNews:
		s.newsItem(w, r, slug)
	default:
		s.NotFound(w, r)
	}
}

func (s *Site) cmsPage(w http.ResponseWriter, r *http.Request, slug string, alternates []locale.AlternateLink, seg string) {
	lang := s.lang(r)
	pg, err := s.content.Page(r.Context(), lang, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := s.page(r, pageInput{
		title:       firstNonEmpty(pg.Meta.Title, pg.Title),
		description: pg.Meta.Description,
		image:       mediaURL(pg.Meta.Image),
		alternates:  alternates,
		rest:        seg,
		crumbTitle:  pg.Title,
	}, PageData{
		Title:     pg.Title,
		HideTitle: startsWithHero(pg.Layout),
		Blocks:    s.renderBlocks(r, lang, pg.Layout),
	})
	s.render(w, r, http.StatusOK, "page", p)
}

func (s *Site) contactPage(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	p := s.page(r, pageInput{
		title:      s.bundle.T(lang, "contact.title"),
		alternates: s.reg.AlternateLinks(locale.RouteContact, ""),
		rest:       s.reg.TranslatedSegment(locale.RouteContact, lang),
	}, ContactData{Endpoint: s.cfg.ContactEndpoint})
	s.render(w, r, http.StatusOK, "contact", p)
}

func (s *Site) listing(w http.ResponseWriter, r *http.Request, key locale.RouteKey) {
	lang := s.lang(r)
	ctx := r.Context()
	page := pageParam(r)
	data := ListData{Lang: lang, Kind: string(key)}

	switch key {
	case locale.RouteProducts:
		list, err := s.content.ListProducts(ctx, lang, page, listPageSize)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, p := range list.Items {
			data.Items = append(data.Items, Card{
				Href:    s.reg.SectionPath(key, lang, p.Slug),
				Title:   p.Title,
				Summary: p.Summary,
				Label:   p.Category,
				Image:   p.Image,
			})
		}
		data.Page, data.TotalPages, data.TotalDocs = list.Page, list.TotalPages, list.TotalDocs
		data.Title, data.EmptyKey = s.bundle.T(lang, "products.title"), "products.empty"
	case locale.RouteProjects:
		list, err := s.content.ListProjects(ctx, lang, page, listPageSize)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, p := range list.Items {
			data.Items = append(data.Items, Card{
				Href:    s.reg.SectionPath(key, lang, p.Slug),
				Title:   p.Title,
				Summary: p.Summary,
				Label:   firstNonEmpty(p.Location, p.Year),
				Image:   p.Image,
			})
		}
		data.Page, data.TotalPages, data.TotalDocs = list.Page, list.TotalPages, list.TotalDocs
		data.Title, data.EmptyKey = s.bundle.T(lang, "projects.title"), "projects.empty"
	case locale.RouteNews:
		list, err := s.content.ListNews(ctx, lang, page, listPageSize)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, n := range list.Items {
			label := ""
			if !n.PublishedAt.IsZero() {
				label = format.FmtDate(n.PublishedAt, lang)
			}
			data.Items = append(data.Items, Card{
				Href:    s.reg.SectionPath(key, lang, n.Slug),
				Title:   n.Title,
				Summary: n.Excerpt,
				Label:   label,
				Image:   n.Image,
			})
		}
		data.Page, data.TotalPages, data.TotalDocs = list.Page, list.TotalPages, list.TotalDocs
		data.Title, data.EmptyKey = s.bundle.T(lang, "news.title"), "news.empty"
	}

	// Pages past the end are not content.
	if page > 1 && page > data.TotalPages {
		s.NotFound(w, r)
		return
	}
	base := s.reg.SectionPath(key, lang, "")
	if data.Page > 1 {
		data.PrevHref = pageHref(base, data.Page-1)
	}
	if data.Page < data.TotalPages {
		data.NextHref = pageHref(base, data.Page+1)
	}

	p := s.page(r, pageInput{
		title:      data.Title,
		alternates: s.reg.AlternateLinks(key, ""),
		rest:       s.reg.TranslatedSegment(key, lang),
	}, data)
	s.render(w, r, http.StatusOK, "list", p)
}

func (s *Site) product(w http.ResponseWriter, r *http.Request, slug string) {
	lang := s.lang(r)
	prod, err := s.content.Product(r.Context(), lang, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	path := s.reg.SectionPath(locale.RouteProducts, lang, prod.Slug)
	desc := firstNonEmpty(prod.Meta.Description, prod.Summary)
	image := firstNonEmpty(mediaURL(prod.Meta.Image), mediaURL(prod.Image))
	p := s.page(r, pageInput{
		title:       firstNonEmpty(prod.Meta.Title, prod.Title),
		description: desc,
		image:       image,
		ogType:      "product",
		alternates:  s.reg.AlternateLinks(locale.RouteProducts, prod.Slug),
		rest:        s.reg.TranslatedSegment(locale.RouteProducts, lang) + "/" + prod.Slug,
		crumbTitle:  prod.Title,
		jsonLD: []map[string]any{
			seo.Product(prod.Title, desc, seo.Absolute(s.cfg.BaseURL, path), absoluteOrEmpty(s.cfg.BaseURL, image), prod.Category, s.cfg.SiteName),
		},
	}, ProductData{Product: prod, ContactHref: s.reg.SectionPath(locale.RouteContact, lang, "")})
	s.render(w, r, http.StatusOK, "product", p)
}

func (s *Site) project(w http.ResponseWriter, r *http.Request, slug string) {
	lang := s.lang(r)
	proj, err := s.content.Project(r.Context(), lang, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := s.page(r, pageInput{
		title:       firstNonEmpty(proj.Meta.Title, proj.Title),
		description: firstNonEmpty(proj.Meta.Description, proj.Summary),
		image:       firstNonEmpty(mediaURL(proj.Meta.Image), mediaURL(proj.Image)),
		ogType:      "article",
		alternates:  s.reg.AlternateLinks(locale.RouteProjects, proj.Slug),
		rest:        s.reg.TranslatedSegment(locale.RouteProjects, lang) + "/" + proj.Slug,
		crumbTitle:  proj.Title,
	}, ProjectData{Project: proj})
	s.render(w, r, http.StatusOK, "project", p)
}

func (s *Site) newsItem(w http.ResponseWriter, r *http.Request, slug string) {
	lang := s.lang(r)
	item, err := s.content.NewsItem(r.Context(), lang, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	path := s.reg.SectionPath(locale.RouteNews, lang, item.Slug)
	desc := item.Meta.Description
	if desc == "" {
		desc = item.Excerpt
	}
	if desc == "" {
		desc = seo.Excerpt(string(richtext.RenderContent(item.Content)), 160)
	}
	image := firstNonEmpty(mediaURL(item.Meta.Image), mediaURL(item.Image))
	p := s.page(r, pageInput{
		title:       firstNonEmpty(item.Meta.Title, item.Title),
		description: desc,
		image:       image,
		ogType:      "article",
		alternates:  s.reg.AlternateLinks(locale.RouteNews, item.Slug),
		rest:        s.reg.TranslatedSegment(locale.RouteNews, lang) + "/" + item.Slug,
		crumbTitle:  item.Title,
		jsonLD: []map[string]any{
			seo.Article(item.Title, seo.Absolute(s.cfg.BaseURL, path), absoluteOrEmpty(s.cfg.BaseURL, image), s.cfg.SiteName, item.PublishedAt, item.UpdatedAt),
		},
	}, NewsData{Item: item})
	s.render(w, r, http.StatusOK, "news_item", p)
}

// startsWithHero reports whether the layout opens with a hero, which carries
// the page heading itself.
func startsWithHero(layout []blocks.Block) bool {
	if len(layout) == 0 {
		return false
	}
	_, ok := layout[0].(blocks.Hero)
	return ok
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pageHref(base string, page int) string {
	if page <= 1 {
		return base
	}
	return base + "?page=" + strconv.Itoa(page)
}

func mediaURL(m *richtext.Media) string {
	if m == nil {
		return ""
	}
	return m.URL
}

func absoluteOrEmpty(baseURL, p string) string {
	if p == "" {
		return ""
	}
	return seo.Absolute(baseURL, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
