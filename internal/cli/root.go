// Package cli defines the contentmgr commands.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rjratcon/rachaeljuzeler/internal/app"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// options are shared by every command.
type options struct {
	fs         afero.Fs
	configPath string
	siteRoot   string

	// stdin feeds interactive prompts.
	stdin io.ReadCloser
}

// NewRootCmd builds the command tree over the given filesystem.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	opts := &options{fs: fs, stdin: os.Stdin}

	root := &cobra.Command{
		Use:   "contentmgr",
		Short: "Edit the portfolio site's projects, CV, updates and contact pages",
		Long: `contentmgr edits the content of the portfolio website.

Run without arguments to open the terminal editor. The project
subcommands perform the same operations from scripts.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&opts.siteRoot, "site", "", "website checkout (overrides site.root)")

	root.AddCommand(newProjectCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

// Execute runs the root command against the real filesystem.
func Execute() error {
	return NewRootCmd(afero.NewOsFs()).Execute()
}

func runUI(cmd *cobra.Command, opts *options) error {
	e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
	if err != nil {
		return err
	}
	defer e.Close()

	m := app.New(app.Options{
		Projects: e.projects,
		Content:  e.content,
		Export:   e.export,
		Site:     e.cfg.Site.Root,
		Log:      e.log.With().Str("component", "ui").Logger(),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
