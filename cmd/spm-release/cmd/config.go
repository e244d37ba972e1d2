package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/spm-release/internal/config"
)

// configCmd prints the resolved configuration without publishing anything.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with the token masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return config.Dump(cmd.OutOrStdout(), cfg)
	},
}
