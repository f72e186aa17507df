package commands

import (
	"fmt"

	"git.home.luguber.info/inful/prismicgen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	return RunInit(global, root.Config, i.Force)
}

func RunInit(global *Global, configPath string, force bool) error {
	w := global.stdout()
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(w, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(w, "Initialized successfully")
	return nil
}
