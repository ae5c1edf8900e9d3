// Command web serves the multilingual corporate site.
//
// Usage:
//
//	web            # same as "web serve"
//	web serve      # run the HTTP server
//	web sitemap    # print sitemap.xml
//	web routes     # print the localized route table
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/locale"
	"finitefield.org/corporate-web/internal/platform/config"
	"finitefield.org/corporate-web/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "web",
		Short:        "Multilingual corporate website",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configOptions(envFile))
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides")

	root.AddCommand(serveCmd(&envFile))
	root.AddCommand(sitemapCmd(&envFile))
	root.AddCommand(routesCmd())
	return root
}

func configOptions(envFile string) []config.Option {
	return []config.Option{config.WithEnvFile(envFile)}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configOptions(*envFile))
		},
	}
}

func sitemapCmd(envFile *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml built from the configured content",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configOptions(*envFile)...)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			ctx := observability.WithLogger(cmd.Context(), a.logger)
			return a.site.BuildSitemap(ctx).WriteXML(w)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the localized URL of every section",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := locale.NewRegistry(locale.DefaultConfig())
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), reg)
		},
	}
}

// printRoutes writes one row per route key with its path in every locale.
func printRoutes(w io.Writer, reg *locale.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	codes := reg.Codes()
	fmt.Fprintf(tw, "KEY\t%s\n", strings.ToUpper(strings.Join(codes, "\t")))
	fmt.Fprint(tw, "home")
	for _, l := range reg.HomeAlternates() {
		fmt.Fprintf(tw, "\t%s", l.Href)
	}
	fmt.Fprintln(tw)
	for _, key := range reg.RouteKeys() {
		fmt.Fprint(tw, key)
		for _, code := range codes {
			fmt.Fprintf(tw, "\t%s", reg.SectionPath(key, code, ""))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func runServe(ctx context.Context, opts []config.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	server := a.server()
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := a.logger.Named("http").With(zap.String("addr", server.Addr), zap.Bool("dev", a.cfg.Dev))
	errs := make(chan error, 1)
	go func() {
		serverLogger.Info("web listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		serverLogger.Error("http server error", zap.Error(err))
		return err
	case <-shutdown:
		a.logger.Info("shutdown signal received; draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
