package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/routes"
)

// DefaultAppDir is the application directory under SrcDir.
const DefaultAppDir = "app"

// DefaultBuildDir is the build directory under SrcDir.
const DefaultBuildDir = ".prismicgen"

// Route is an application route served by a component.
type Route struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Path      string `json:"path" yaml:"path"`
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
}

// RouteGenerator produces the static route list. It receives the routes the
// pipeline had configured before any generator was installed.
type RouteGenerator interface {
	GenerateRoutes(ctx context.Context, configured routes.Extra) ([]string, error)
}

// RouteGeneratorFunc adapts a function to RouteGenerator.
type RouteGeneratorFunc func(ctx context.Context, configured routes.Extra) ([]string, error)

// GenerateRoutes calls f.
func (f RouteGeneratorFunc) GenerateRoutes(ctx context.Context, configured routes.Extra) ([]string, error) {
	return f(ctx, configured)
}

// Config is the starting state of a Pipeline.
type Config struct {
	SrcDir     string
	AppDir     string
	BuildDir   string
	Routes     routes.Extra
	Middleware []string
}

// Pipeline collects extension registrations for one build.
type Pipeline struct {
	mu sync.Mutex

	srcDir   string
	appDir   string
	buildDir string
	routes   routes.Extra

	templates  []Asset
	plugins    []Asset
	extenders  []func([]Route) []Route
	middleware []string
	generator  RouteGenerator

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pipeline. Relative AppDir is kept as given; a relative
// BuildDir is resolved against SrcDir.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.SrcDir == "" {
		return nil, errors.ConfigError("pipeline source directory is required").Build()
	}
	p := &Pipeline{
		srcDir:     cfg.SrcDir,
		appDir:     cfg.AppDir,
		buildDir:   cfg.BuildDir,
		routes:     cfg.Routes,
		middleware: append([]string(nil), cfg.Middleware...),
		logger:     slog.Default(),
	}
	if p.appDir == "" {
		p.appDir = DefaultAppDir
	}
	if p.buildDir == "" {
		p.buildDir = DefaultBuildDir
	}
	if !filepath.IsAbs(p.buildDir) {
		p.buildDir = filepath.Join(p.srcDir, p.buildDir)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) SrcDir() string   { return p.srcDir }
func (p *Pipeline) AppDir() string   { return p.appDir }
func (p *Pipeline) BuildDir() string { return p.buildDir }

// ConfiguredRoutes returns the routes the pipeline was configured with.
func (p *Pipeline) ConfiguredRoutes() routes.Extra { return p.routes }

// AddTemplate registers a template asset.
func (p *Pipeline) AddTemplate(a Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates = append(p.templates, a)
}

// AddPlugin registers a plugin asset.
func (p *Pipeline) AddPlugin(a Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plugins = append(p.plugins, a)
}

// ExtendRoutes registers fn to edit the application route table. Extenders
// run in registration order during Generate.
func (p *Pipeline) ExtendRoutes(fn func([]Route) []Route) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extenders = append(p.extenders, fn)
}

// PrependMiddleware puts name at the front of the router middleware list.
func (p *Pipeline) PrependMiddleware(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append([]string{name}, p.middleware...)
}

// SetRouteGenerator installs the route generator. Only one may be installed.
func (p *Pipeline) SetRouteGenerator(g RouteGenerator) error {
	if g == nil {
		return errors.ValidationError("route generator is nil").Build()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generator != nil {
		return errors.ConfigError("a route generator is already installed").Build()
	}
	p.generator = g
	return nil
}

// HasRouteGenerator reports whether a generator is installed.
func (p *Pipeline) HasRouteGenerator() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generator != nil
}

// Result is the resolved state of a pipeline after Generate.
type Result struct {
	Routes     []string
	Templates  []Asset
	Plugins    []Asset
	AppRoutes  []Route
	Middleware []string
	Duration   time.Duration
}

// Generate resolves the static route list and the application route table.
// Without a generator the configured routes are used as-is (deduplicated).
func (p *Pipeline) Generate(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	gen := p.generator
	extenders := append([]func([]Route) []Route(nil), p.extenders...)
	res := &Result{
		Templates:  append([]Asset(nil), p.templates...),
		Plugins:    append([]Asset(nil), p.plugins...),
		Middleware: append([]string(nil), p.middleware...),
	}
	p.mu.Unlock()

	start := time.Now()
	var (
		list []string
		err  error
	)
	if gen != nil {
		list, err = gen.GenerateRoutes(ctx, p.routes)
	} else {
		list, err = routes.ResolveExtra(ctx, p.routes)
	}
	if err != nil {
		p.logger.Error("Route generation failed", logfields.Stage("generate"), logfields.Error(err))
		return nil, err
	}
	res.Routes = routes.Merge(list)

	appRoutes := []Route{}
	for _, extend := range extenders {
		appRoutes = extend(appRoutes)
	}
	res.AppRoutes = appRoutes
	res.Duration = time.Since(start)

	p.logger.Info("Pipeline generated",
		logfields.Stage("generate"),
		logfields.Routes(len(res.Routes)),
		slog.Int("templates", len(res.Templates)),
		slog.Int("plugins", len(res.Plugins)),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}
