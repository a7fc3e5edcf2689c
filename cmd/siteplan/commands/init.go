package commands

import (
	"fmt"

	"git.home.luguber.info/inful/siteplan/internal/config"
	"git.home.luguber.info/inful/siteplan/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	g.logger().Debug("Initializing configuration", logfields.ConfigPath(root.Config), "force", i.Force)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.out(), "Wrote example configuration to %s\n", root.Config)
	return err
}
