package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/config"
)

// configCommand prints configuration.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration: the defaults overlaid with the file
given by --config (or the default location). With --defaults the built-in
defaults are printed instead, as a starting point for a config file.`,
		Example: `  cardgrid config
  cardgrid config --defaults > ~/.config/cardgrid/config.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if defaults {
				cfg = config.Default()
			}
			return cfg.Write(stdout)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults")
	return cmd
}
