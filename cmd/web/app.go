package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/blocks"
	"finitefield.org/corporate-web/internal/cache"
	"finitefield.org/corporate-web/internal/cms"
	"finitefield.org/corporate-web/internal/contact"
	"finitefield.org/corporate-web/internal/handlers"
	"finitefield.org/corporate-web/internal/i18n"
	"finitefield.org/corporate-web/internal/locale"
	mw "finitefield.org/corporate-web/internal/middleware"
	"finitefield.org/corporate-web/internal/platform/config"
	"finitefield.org/corporate-web/internal/platform/observability"
	"finitefield.org/corporate-web/internal/platform/secrets"
	"finitefield.org/corporate-web/internal/status"
	"finitefield.org/corporate-web/internal/view"
)

const (
	requestTimeout  = 30 * time.Second
	contactEndpoint = "/api/contact"
)

// app holds the wired dependencies of one process.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	reg    *locale.Registry
	site   *handlers.Site
	router chi.Router

	closers []io.Closer
	cache   cache.Cache
	remote  *cms.RemoteSource
	status  *status.Reporter
}

// newApp loads configuration and wires every component. Secret references in
// the configuration are resolved through Secret Manager when a project is set.
func newApp(ctx context.Context, opts ...config.Option) (*app, error) {
	rawDev, _ := config.Lookup("WEB_DEV", opts...)
	dev, _ := strconv.ParseBool(rawDev)
	baseLogger, err := observability.NewLogger(dev)
	if err != nil {
		return nil, fmt.Errorf("initialise logger: %w", err)
	}
	logger := baseLogger.Named("web")

	projectID, err := config.Lookup("WEB_SECRETS_PROJECT_ID", opts...)
	if err != nil {
		return nil, fmt.Errorf("read secrets project: %w", err)
	}
	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithProject(projectID),
		secrets.WithLogger(logger.Named("secrets")),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise secret fetcher: %w", err)
	}

	cfg, err := config.Load(ctx, append(opts, config.WithSecretResolver(fetcher))...)
	if err != nil {
		_ = fetcher.Close()
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{fetcher}}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	cfg := a.cfg
	reg, err := locale.NewRegistry(locale.DefaultConfig())
	if err != nil {
		return fmt.Errorf("locale registry: %w", err)
	}
	a.reg = reg

	bundle, err := i18n.Embedded(reg.Default(), reg.Codes())
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	src, err := a.contentSource()
	if err != nil {
		return err
	}
	client := cms.NewClient(src, cms.WithLogger(a.logger.Named("cms")))

	br, err := blocks.NewRenderer(reg,
		blocks.WithTranslator(bundle.T),
		blocks.WithLogger(a.logger.Named("blocks")),
	)
	if err != nil {
		return fmt.Errorf("block templates: %w", err)
	}

	viewOpts := []view.Option{view.WithTranslator(bundle.T)}
	if cfg.Dev {
		viewOpts = append(viewOpts, view.WithDevDir(cfg.Server.TemplatesDir))
	}
	vr, err := view.New(viewOpts...)
	if err != nil {
		return fmt.Errorf("page templates: %w", err)
	}

	a.site = handlers.NewSite(handlers.Config{
		SiteName:          cfg.Site.Name,
		BaseURL:           cfg.Site.BaseURL,
		RobotsDisallowAll: cfg.Site.RobotsDisallowAll,
		ContactEndpoint:   contactEndpoint,
		Analytics: view.Analytics{
			GA4MeasurementID: cfg.Analytics.GA4MeasurementID,
			GTMContainerID:   cfg.Analytics.GTMContainerID,
			Debug:            cfg.Analytics.Debug,
		},
	}, reg, client, br, bundle, vr, a.logger.Named("site"))

	contactHandler := contact.NewHandler(
		contact.NewLogSink(a.logger.Named("contact")),
		contact.WithTranslator(bundle.T),
		contact.WithLocale(func(r *http.Request) string { return mw.Lang(r, reg.Default()) }),
	)
	// The cms check bypasses the cache and the seed fallback so an
	// unreachable CMS shows up as degraded.
	checked := client
	if a.remote != nil {
		checked = cms.NewClient(a.remote)
	}
	a.status = status.NewReporter([]status.Check{
		{Name: "cms", Run: func(ctx context.Context) error {
			_, err := checked.Homepage(ctx, reg.Default())
			return err
		}},
		{Name: "cache", Run: a.checkCache},
	})
	a.router = a.newRouter(contactHandler)
	return nil
}

// contentSource layers the content sources: the remote CMS when configured,
// falling back to the embedded seed, behind the shared cache.
func (a *app) contentSource() (cms.Source, error) {
	cfg := a.cfg
	seed, err := cms.NewSeedSource(locale.DefaultConfig().Default)
	if err != nil {
		return nil, fmt.Errorf("load seed content: %w", err)
	}
	var src cms.Source = seed
	if cfg.CMS.BaseURL != "" {
		a.remote = cms.NewRemoteSource(cfg.CMS.BaseURL,
			cms.WithAPIKey(cfg.CMS.APIKey),
			cms.WithTimeout(cfg.CMS.Timeout),
			cms.WithRemoteLogger(a.logger.Named("cms.remote")),
		)
		src = cms.NewFallbackSource(a.remote, seed, a.logger.Named("cms.fallback"))
	}

	c, err := cache.New(cfg.Cache.ValkeyAddr, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("initialise cache: %w", err)
	}
	a.cache = c
	return cms.NewCachedSource(src, c, cfg.Cache.TTL, a.logger.Named("cms.cache")), nil
}

// checkCache writes and reads back a short-lived key.
func (a *app) checkCache(ctx context.Context) error {
	const key = "status:check"
	want := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := a.cache.Set(ctx, key, want, time.Minute); err != nil {
		return err
	}
	got, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || got != want {
		return fmt.Errorf("cache check: read back %q", got)
	}
	return nil
}

func (a *app) newRouter(contactHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(observability.TraceMiddleware(a.cfg.Secrets.ProjectID))
	r.Use(observability.RequestLoggerMiddleware("/assets/"))
	r.Use(observability.RecoveryMiddleware(a.logger))
	r.Use(mw.Locale(a.reg))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/_internal/status", a.status)
	assets := os.DirFS(filepath.Join(a.cfg.Server.PublicDir, "assets"))
	r.Handle("/assets/*", mw.Assets(assets, "/assets"))
	r.Method(http.MethodPost, contactEndpoint, contactHandler)

	a.site.Routes(r)
	return r
}

func (a *app) server() *http.Server {
	return &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}
}

// Close releases clients and flushes the logger.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
