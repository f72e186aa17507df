package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.home.luguber.info/inful/prismicgen/internal/config"
	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval    time.Duration `help:"Override the configured regeneration interval"`
	BuildDir    string        `name:"build-dir" short:"o" help:"Override the configured build directory" type:"path"`
	MetricsFile string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each run" type:"path"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, global, root.Config)
}

// watcher reloads configuration before every run so edits apply without a restart.
type watcher struct {
	cmd        *WatchCmd
	configPath string
	global     *Global

	mu       sync.Mutex
	runner   *runner
	lastHash string
}

func (w *WatchCmd) run(ctx context.Context, global *Global, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := global.logger()

	wt := &watcher{cmd: w, configPath: configPath, global: global, runner: newRunner(cfg, w.BuildDir, logger)}
	regenerate := watch.Serialize(wt.regenerate)

	if err := regenerate(ctx, watch.TriggerStartup); err != nil {
		logger.Error("Initial generation failed", logfields.Error(err))
	}

	interval := w.Interval
	if interval <= 0 {
		interval = cfg.Watch.Interval
	}
	sched, err := watch.NewScheduler(logger)
	if err != nil {
		return err
	}
	if _, err := sched.SchedulePeriodic(ctx, interval, regenerate); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}()

	fw, err := watch.NewFileWatcher(wt.runner.watchedFiles(configPath), cfg.Watch.Debounce, logger)
	if err != nil {
		logger.Warn("File watching disabled", logfields.Error(err))
		<-ctx.Done()
		return nil
	}
	defer func() { _ = fw.Close() }()

	logger.Info("Watching for changes", logfields.Path(configPath))
	fw.Run(ctx, func(path string) {
		logger.Info("Change detected", logfields.Path(path))
		if err := regenerate(ctx, watch.TriggerFile); err != nil && ctx.Err() == nil {
			logger.Error("Regeneration failed", logfields.Error(err))
		}
	})
	return nil
}

func (wt *watcher) regenerate(ctx context.Context, trigger watch.Trigger) error {
	logger := wt.global.logger().With(logfields.Stage(string(trigger)))

	wt.mu.Lock()
	r := wt.runner
	wt.mu.Unlock()

	if trigger == watch.TriggerFile {
		cfg, err := config.Load(wt.configPath)
		if err != nil {
			logger.Warn("Keeping previous configuration", logfields.Error(err))
		} else {
			r = newRunner(cfg, wt.cmd.BuildDir, wt.global.logger())
			wt.mu.Lock()
			wt.runner = r
			wt.mu.Unlock()
		}
	}

	out, err := r.generate(ctx, true)
	if mErr := r.writeMetrics(wt.cmd.MetricsFile); mErr != nil {
		logger.Warn("Failed to write metrics", logfields.Error(mErr))
	}
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok && ce.CanRetry() {
			logger.Warn("Regeneration deferred to next run",
				logfields.Retry(string(ce.RetryStrategy())),
				slog.String("hint", ce.RetryStrategy().Hint()),
				logfields.Error(err))
		}
		return err
	}

	hash, err := out.manifest.Hash()
	if err != nil {
		return err
	}
	if hash == wt.lastHash {
		logger.Info("Build unchanged", logfields.Routes(out.manifest.Routes))
	} else {
		logger.Info("Build updated", logfields.Routes(out.manifest.Routes), logfields.RunID(out.id))
	}
	wt.lastHash = hash
	return nil
}
