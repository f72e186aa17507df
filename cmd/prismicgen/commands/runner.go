package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/prismicgen/internal/config"
	"git.home.luguber.info/inful/prismicgen/internal/integration"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/manifest"
	"git.home.luguber.info/inful/prismicgen/internal/metrics"
	"git.home.luguber.info/inful/prismicgen/internal/prismic"
	"git.home.luguber.info/inful/prismicgen/internal/routes"
	"git.home.luguber.info/inful/prismicgen/internal/site"
	"git.home.luguber.info/inful/prismicgen/internal/version"
)

// runner performs generation runs for one configuration.
type runner struct {
	cfg      *config.Config
	buildDir string
	logger   *slog.Logger
	registry *prom.Registry
	recorder metrics.Recorder
}

func newRunner(cfg *config.Config, buildDir string, logger *slog.Logger) *runner {
	reg := prom.NewRegistry()
	if buildDir == "" {
		buildDir = cfg.Site.BuildDir
	}
	return &runner{
		cfg:      cfg,
		buildDir: buildDir,
		logger:   logger,
		registry: reg,
		recorder: metrics.NewPrometheusRecorder(reg),
	}
}

// run holds the outcome of one generation.
type run struct {
	id       string
	pipeline *site.Pipeline
	result   *site.Result
	manifest *manifest.BuildManifest
}

// pipeline builds a pipeline from configuration with the integration installed.
func (r *runner) pipeline(logger *slog.Logger) (*site.Pipeline, error) {
	var configured routes.Extra
	if len(r.cfg.Site.Routes) > 0 {
		configured = routes.StaticRoutes(r.cfg.Site.Routes)
	}
	p, err := site.New(site.Config{
		SrcDir:     r.cfg.Site.SrcDir,
		AppDir:     r.cfg.Site.AppDir,
		BuildDir:   r.buildDir,
		Routes:     configured,
		Middleware: r.cfg.Site.Middleware,
	}, site.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	err = integration.Install(p, r.cfg.Prismic, integration.Deps{
		Logger:        logger,
		Recorder:      r.recorder,
		ClientOptions: []prismic.Option{prismic.WithUserAgent(version.UserAgent())},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// generate runs the pipeline; with write it also replaces the build directory.
func (r *runner) generate(ctx context.Context, write bool) (*run, error) {
	id := uuid.NewString()
	logger := r.logger.With(logfields.RunID(id))
	start := time.Now()

	p, err := r.pipeline(logger)
	if err != nil {
		return nil, err
	}
	res, err := p.Generate(ctx)
	if err != nil {
		return nil, err
	}
	out := &run{id: id, pipeline: p, result: res}

	if write {
		out.manifest, err = p.WriteBuild(res, site.BuildInfo{
			RunID:      id,
			Version:    version.Version,
			Repository: prismic.RepositoryName(r.cfg.Prismic.Endpoint),
		})
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("Run finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return out, nil
}

// writeMetrics dumps the run metrics when a textfile path is configured.
func (r *runner) writeMetrics(path string) error {
	if path == "" {
		path = r.cfg.Metrics.Textfile
	}
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, r.registry); err != nil {
		return err
	}
	r.logger.Debug("Wrote metrics", logfields.Path(path))
	return nil
}

// watchedFiles lists the files whose changes trigger regeneration.
func (r *runner) watchedFiles(configPath string) []string {
	appDir := r.cfg.Site.AppDir
	if appDir == "" {
		appDir = site.DefaultAppDir
	}
	userDir := filepath.Join(r.cfg.Site.SrcDir, appDir, "prismic")
	return []string{
		configPath,
		filepath.Join(userDir, filepath.Base(integration.LinkResolverFile)),
		filepath.Join(userDir, filepath.Base(integration.HTMLSerializerFile)),
	}
}
