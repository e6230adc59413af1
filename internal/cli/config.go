package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.siteRoot != "" {
				cfg.Site.Root = opts.siteRoot
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := model.DefaultAppConfig()
			if opts.siteRoot != "" {
				cfg.Site.Root = opts.siteRoot
			}
			if err := model.SaveConfig(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	})

	return cmd
}
