package cms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/blocks"
)

const (
	defaultDepth     = 2
	defaultGridLimit = 6
	indexPageSize    = 100
	publishedSort    = "-publishedAt"
)

// Client is the typed repository the site handlers read content through.
type Client struct {
	src    Source
	depth  int
	logger *zap.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithDepth sets the relationship population depth for every query.
func WithDepth(depth int) ClientOption {
	return func(c *Client) {
		if depth >= 0 {
			c.depth = depth
		}
	}
}

// WithLogger sets the logger used for best-effort lookups.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a Client over src.
func NewClient(src Source, opts ...ClientOption) *Client {
	c := &Client{src: src, depth: defaultDepth, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Homepage returns the home page singleton.
func (c *Client) Homepage(ctx context.Context, locale string) (Homepage, error) {
	doc, found, err := c.src.Global(ctx, GlobalHomepage, locale, c.depth)
	if err != nil {
		return Homepage{}, err
	}
	if !found {
		return Homepage{}, ErrNotFound
	}
	var hp Homepage
	if err := doc.Decode(&hp); err != nil {
		return Homepage{}, fmt.Errorf("cms: decode homepage: %w", err)
	}
	return hp, nil
}

// Page returns the page with slug.
func (c *Client) Page(ctx context.Context, locale, slug string) (Page, error) {
	return findBySlug[Page](ctx, c, CollectionPages, locale, slug)
}

func (c *Client) Product(ctx context.Context, locale, slug string) (Product, error) {
	return findBySlug[Product](ctx, c, CollectionProducts, locale, slug)
}

func (c *Client) Project(ctx context.Context, locale, slug string) (Project, error) {
	return findBySlug[Project](ctx, c, CollectionProjects, locale, slug)
}

func (c *Client) NewsItem(ctx context.Context, locale, slug string) (NewsItem, error) {
	return findBySlug[NewsItem](ctx, c, CollectionNews, locale, slug)
}

// ListProducts returns one page of products, newest first.
func (c *Client) ListProducts(ctx context.Context, locale string, page, limit int) (List[Product], error) {
	return findList[Product](ctx, c, Query{Collection: CollectionProducts, Locale: locale, Page: page, Limit: limit, Sort: publishedSort})
}

func (c *Client) ListProjects(ctx context.Context, locale string, page, limit int) (List[Project], error) {
	return findList[Project](ctx, c, Query{Collection: CollectionProjects, Locale: locale, Page: page, Limit: limit, Sort: publishedSort})
}

func (c *Client) ListNews(ctx context.Context, locale string, page, limit int) (List[NewsItem], error) {
	return findList[NewsItem](ctx, c, Query{Collection: CollectionNews, Locale: locale, Page: page, Limit: limit, Sort: publishedSort})
}

// ProductsByCategory returns up to limit products of category, newest first.
func (c *Client) ProductsByCategory(ctx context.Context, locale, category string, limit int) ([]Product, error) {
	list, err := findList[Product](ctx, c, Query{
		Collection: CollectionProducts,
		Locale:     locale,
		Where:      map[string]string{"category": category},
		Limit:      limit,
		Sort:       publishedSort,
	})
	return list.Items, err
}

// LatestProducts returns the limit most recently published products.
func (c *Client) LatestProducts(ctx context.Context, locale string, limit int) ([]Product, error) {
	list, err := c.ListProducts(ctx, locale, 1, limit)
	return list.Items, err
}

// ProductsByIDs returns the products with the given ids in the order given.
// Unknown ids are skipped.
func (c *Client) ProductsByIDs(ctx context.Context, locale string, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := findList[Product](ctx, c, Query{
		Collection: CollectionProducts,
		Locale:     locale,
		In:         map[string][]string{"id": ids},
		Limit:      len(ids),
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[ID]Product, len(list.Items))
	for _, p := range list.Items {
		byID[p.ID] = p
	}
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[ID(id)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ResolveProductGrids fills the product list of every product grid in layout.
// A failed lookup leaves that grid empty.
func (c *Client) ResolveProductGrids(ctx context.Context, locale string, layout []blocks.Block) []blocks.Block {
	out := make([]blocks.Block, len(layout))
	for i, b := range layout {
		grid, ok := b.(blocks.ProductGrid)
		if !ok {
			out[i] = b
			continue
		}
		limit := grid.Limit
		if limit <= 0 {
			limit = defaultGridLimit
		}
		var (
			products []Product
			err      error
		)
		switch grid.Source {
		case blocks.SourceCategory:
			products, err = c.ProductsByCategory(ctx, locale, grid.Category, limit)
		case blocks.SourceManual:
			products, err = c.ProductsByIDs(ctx, locale, grid.ProductIDs)
		default:
			products, err = c.LatestProducts(ctx, locale, limit)
		}
		if err != nil {
			c.logger.Warn("resolve product grid",
				zap.String("source", grid.Source),
				zap.String("locale", locale),
				zap.Error(err),
			)
		}
		grid.Products = make([]blocks.ProductCard, 0, len(products))
		for _, p := range products {
			grid.Products = append(grid.Products, p.Card())
		}
		out[i] = grid
	}
	return out
}

// Index lists the slug and modification time of every document in a
// collection.
func (c *Client) Index(ctx context.Context, collection, locale string) ([]IndexEntry, error) {
	var entries []IndexEntry
	for page := 1; ; page++ {
		res, err := c.src.Find(ctx, Query{Collection: collection, Locale: locale, Page: page, Limit: indexPageSize})
		if err != nil {
			return nil, err
		}
		for _, doc := range res.Docs {
			var e IndexEntry
			if err := doc.Decode(&e); err != nil {
				return nil, fmt.Errorf("cms: decode %s index: %w", collection, err)
			}
			if e.Slug != "" {
				entries = append(entries, e)
			}
		}
		if len(res.Docs) == 0 || page >= res.TotalPages {
			return entries, nil
		}
	}
}

func findBySlug[T any](ctx context.Context, c *Client, collection, locale, slug string) (T, error) {
	var zero T
	slug = sanitizeSlug(slug)
	if slug == "" {
		return zero, ErrNotFound
	}
	res, err := c.src.Find(ctx, Query{
		Collection: collection,
		Locale:     locale,
		Where:      map[string]string{"slug": slug},
		Limit:      1,
		Depth:      c.depth,
	})
	if err != nil {
		return zero, err
	}
	if len(res.Docs) == 0 {
		return zero, ErrNotFound
	}
	var v T
	if err := res.Docs[0].Decode(&v); err != nil {
		return zero, fmt.Errorf("cms: decode %s %q: %w", collection, slug, err)
	}
	return v, nil
}

func findList[T any](ctx context.Context, c *Client, q Query) (List[T], error) {
	q.Depth = c.depth
	q = q.normalized()
	res, err := c.src.Find(ctx, q)
	if err != nil {
		return List[T]{}, err
	}
	list := List[T]{
		Items:      make([]T, 0, len(res.Docs)),
		Page:       res.Page,
		TotalPages: res.TotalPages,
		TotalDocs:  res.TotalDocs,
	}
	if list.Page == 0 {
		list.Page = q.Page
	}
	for _, doc := range res.Docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return List[T]{}, fmt.Errorf("cms: decode %s: %w", q.Collection, err)
		}
		list.Items = append(list.Items, v)
	}
	return list, nil
}
