package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/prismicgen/internal/config"
	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

// RoutesCmd implements the 'routes' command: collect and print, write nothing.
type RoutesCmd struct {
	JSON bool `name:"json" help:"Print routes as a JSON array"`
}

func (c *RoutesCmd) Run(global *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return c.run(ctx, global, root.Config)
}

func (c *RoutesCmd) run(ctx context.Context, global *Global, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	out, err := newRunner(cfg, "", global.logger()).generate(ctx, false)
	if err != nil {
		return err
	}

	w := global.stdout()
	if c.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out.result.Routes); err != nil {
			return errors.InternalError("failed to encode routes").WithCause(err).Build()
		}
		return nil
	}
	for _, r := range out.result.Routes {
		_, _ = fmt.Fprintln(w, r)
	}
	return nil
}
