package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the projects as a projectData script",
		Long: `Write every project record as a "const projectData = {...};" script
to site.export_script. The site's own script.js is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
			if err != nil {
				return err
			}
			defer e.Close()

			path, err := e.export()
			if err != nil {
				return err
			}
			e.log.Info().Str("path", path).Msg("projects exported")
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d projects to %s\n", len(e.projects.Projects()), path)
			return nil
		},
	}
}
