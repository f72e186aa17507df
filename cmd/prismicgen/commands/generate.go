package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/prismicgen/internal/config"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	BuildDir    string `name:"build-dir" short:"o" help:"Override the configured build directory" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run" type:"path"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return g.run(ctx, global, root.Config)
}

func (g *GenerateCmd) run(ctx context.Context, global *Global, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	r := newRunner(cfg, g.BuildDir, global.logger())
	out, genErr := r.generate(ctx, true)
	// Metrics are written for failed runs too.
	if err := r.writeMetrics(g.MetricsFile); err != nil {
		global.logger().Warn("Failed to write metrics", logfields.Error(err))
	}
	if genErr != nil {
		return genErr
	}

	_, _ = fmt.Fprintf(global.stdout(), "Generated %d routes into %s\n", out.manifest.Routes, out.pipeline.BuildDir())
	return nil
}
