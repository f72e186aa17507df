// Package integration installs the content repository integration into a
// site pipeline: preview route and middleware, component plugins, link
// resolver and HTML serializer templates, the client plugin and the static
// route generator.
package integration

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/linkresolver"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/metrics"
	"git.home.luguber.info/inful/prismicgen/internal/prismic"
	"git.home.luguber.info/inful/prismicgen/internal/routes"
	"git.home.luguber.info/inful/prismicgen/internal/site"
)

//go:embed templates
var bundled embed.FS

// Build-relative file names of installed assets.
const (
	PreviewPageFile       = "prismic/pages/preview.html"
	PreviewMiddlewareFile = "prismic/middleware/prismic_preview.yaml"
	ImageComponentFile    = "prismic/components/prismic-image.html"
	LinkComponentFile     = "prismic/components/prismic-link.html"
	LinkResolverFile      = "prismic/link-resolver.yaml"
	HTMLSerializerFile    = "prismic/html-serializer.yaml"
	ClientPluginFile      = "prismic/plugins/prismic.yaml"

	PreviewRouteName  = "prismic-preview"
	PreviewMiddleware = "prismic_preview"
)

// Host is the pipeline extension point the integration installs into.
// *site.Pipeline implements it.
type Host interface {
	SrcDir() string
	AppDir() string
	BuildDir() string
	AddTemplate(site.Asset)
	AddPlugin(site.Asset)
	ExtendRoutes(func([]site.Route) []site.Route)
	PrependMiddleware(name string)
	SetRouteGenerator(site.RouteGenerator) error
}

// QuerierFactory creates the repository client for one generation run.
type QuerierFactory func(endpoint string, opts ...prismic.Option) (routes.Querier, error)

// Deps are the collaborators used at install and generation time.
type Deps struct {
	Logger        *slog.Logger
	Recorder      metrics.Recorder
	ClientOptions []prismic.Option
	NewQuerier    QuerierFactory
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = metrics.NoopRecorder{}
	}
	if d.NewQuerier == nil {
		d.NewQuerier = func(endpoint string, opts ...prismic.Option) (routes.Querier, error) {
			return prismic.NewClient(endpoint, opts...)
		}
	}
	return d
}

// Install registers the integration with host.
func Install(host Host, opts Options, deps Deps) error {
	deps = deps.withDefaults()
	log := deps.Logger

	if strings.TrimSpace(opts.Endpoint) == "" {
		return errors.ConfigError("prismic endpoint is required").
			WithContext("option", "endpoint").
			Build()
	}
	repo := prismic.RepositoryName(opts.Endpoint)
	log = log.With(logfields.Repository(repo))

	preview := opts.PreviewPath()
	if preview != "" {
		host.AddTemplate(bundledAsset(PreviewPageFile, "templates/pages/preview.html", nil))
		component := filepath.Join(host.BuildDir(), filepath.FromSlash(PreviewPageFile))
		host.ExtendRoutes(func(rs []site.Route) []site.Route {
			return append(rs, site.Route{
				Name:      PreviewRouteName,
				Path:      preview,
				Component: component,
			})
		})
		host.AddPlugin(bundledAsset(PreviewMiddlewareFile, "templates/middleware/prismic_preview.yaml", nil))
		host.PrependMiddleware(PreviewMiddleware)
		log.Debug("Installed preview", logfields.Path(preview))
	}

	if opts.ComponentsEnabled() {
		host.AddPlugin(bundledAsset(ImageComponentFile, "templates/components/prismic-image.html", nil))
		host.AddPlugin(bundledAsset(LinkComponentFile, "templates/components/prismic-link.html", nil))
	}

	templateOptions := map[string]any{
		"endpoint":   opts.Endpoint,
		"preview":    opts.pluginPreview(),
		"components": opts.ComponentsEnabled(),
	}

	userDir := filepath.Join(host.SrcDir(), host.AppDir(), "prismic")
	userResolver := filepath.Join(userDir, filepath.Base(LinkResolverFile))
	userSerializer := filepath.Join(userDir, filepath.Base(HTMLSerializerFile))
	hasUserResolver := fileExists(userResolver)

	if !hasUserResolver && len(opts.LinkResolver) == 0 {
		log.Warn("Please create " + filepath.ToSlash(filepath.Join(host.AppDir(), "prismic", "link-resolver.yaml")))
	}
	host.AddTemplate(overridableAsset(LinkResolverFile, userResolver, hasUserResolver, "templates/link-resolver.yaml", templateOptions))
	host.AddTemplate(overridableAsset(HTMLSerializerFile, userSerializer, fileExists(userSerializer), "templates/html-serializer.yaml", templateOptions))

	host.AddPlugin(bundledAsset(ClientPluginFile, "templates/plugins/prismic.yaml", map[string]any{
		"preview":  opts.pluginPreview(),
		"endpoint": opts.Endpoint,
		"repo":     repo,
		"script":   prismic.PreviewScriptURL(repo),
	}))

	if opts.DisableDefaultGenerator {
		return nil
	}

	rules := opts.LinkResolver
	if hasUserResolver {
		fileRules, err := linkresolver.LoadRules(userResolver)
		if err != nil {
			return err
		}
		rules = fileRules
	}
	if len(rules) == 0 {
		log.Warn("No link resolver configured; static route generation is disabled")
		return nil
	}
	resolver, err := linkresolver.New(rules)
	if err != nil {
		return err
	}

	gen := &generator{
		endpoint: opts.Endpoint,
		clientOpts: append(append([]prismic.Option(nil), deps.ClientOptions...),
			prismic.WithAccessToken(opts.AccessToken)),
		resolve: resolver.Resolve,
		deps:    deps,
		logger:  log,
	}
	if err := host.SetRouteGenerator(gen); err != nil {
		return err
	}
	log.Debug("Installed route generator", logfields.Endpoint(opts.Endpoint))
	return nil
}

// generator collects routes from the repository on every generation run.
type generator struct {
	endpoint   string
	clientOpts []prismic.Option
	resolve    routes.Resolver
	deps       Deps
	logger     *slog.Logger
}

// GenerateRoutes creates a fresh client so each run reads the current master ref.
func (g *generator) GenerateRoutes(ctx context.Context, configured routes.Extra) ([]string, error) {
	q, err := g.deps.NewQuerier(g.endpoint, g.clientOpts...)
	if err != nil {
		return nil, err
	}
	c, err := routes.NewCollector(q, g.resolve,
		routes.WithLogger(g.logger),
		routes.WithRecorder(g.deps.Recorder))
	if err != nil {
		return nil, err
	}
	return c.Collect(ctx, configured)
}

func bundledAsset(fileName, src string, options map[string]any) site.Asset {
	return site.Asset{FileName: fileName, Src: src, FS: bundled, Options: options}
}

func overridableAsset(fileName, userPath string, useUser bool, bundledSrc string, options map[string]any) site.Asset {
	if useUser {
		return site.Asset{FileName: fileName, Src: userPath, Options: options}
	}
	return bundledAsset(fileName, bundledSrc, options)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
