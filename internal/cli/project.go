package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
)

func newProjectCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "List, create, update or delete portfolio projects",
	}
	cmd.AddCommand(
		newProjectListCmd(opts),
		newProjectCreateCmd(opts),
		newProjectUpdateCmd(opts),
		newProjectDeleteCmd(opts),
	)
	return cmd
}

func newProjectListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects in id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
			if err != nil {
				return err
			}
			defer e.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tIMAGES\tPRIMARY")
			for _, p := range e.projects.Projects() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Title, len(p.Images), p.PrimaryImage())
			}
			return w.Flush()
		},
	}
}

// projectFlags binds the ProjectInput fields to flags.
func projectFlags(cmd *cobra.Command, in *model.ProjectInput) {
	cmd.Flags().StringVar(&in.Title, "title", "", "project title")
	cmd.Flags().StringVar(&in.Subtitle, "subtitle", "", "optional subtitle")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	cmd.Flags().StringArrayVar(&in.Images, "image", nil, "image file to copy (repeatable; first is primary)")
}

func newProjectCreateCmd(opts *options) *cobra.Command {
	var in model.ProjectInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project and copy its images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
			if err != nil {
				return err
			}
			defer e.Close()

			out, err := e.projects.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			printOutcome(cmd, "created", out)
			return nil
		},
	}
	projectFlags(cmd, &in)
	return cmd
}

func newProjectUpdateCmd(opts *options) *cobra.Command {
	var in model.ProjectInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Overwrite a project's text and optionally replace its images",
		Long: `Overwrite a project's title, subtitle and description. Fields not
given on the command line keep their current values. When --image is
given the images are copied and replace the current list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
			if err != nil {
				return err
			}
			defer e.Close()

			id := args[0]
			current, ok := e.projects.Get(id)
			if !ok {
				return fmt.Errorf("project %s: %w", id, store.ErrNotFound)
			}
			flags := cmd.Flags()
			if !flags.Changed("title") {
				in.Title = current.Title
			}
			if !flags.Changed("subtitle") {
				in.Subtitle = current.Subtitle
			}
			if !flags.Changed("description") {
				in.Description = current.Description
			}

			out, err := e.projects.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			printOutcome(cmd, "updated", out)
			return nil
		},
	}
	projectFlags(cmd, &in)
	return cmd
}

func newProjectDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project record (image files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts.fs, opts.configPath, opts.siteRoot)
			if err != nil {
				return err
			}
			defer e.Close()

			confirm := promptConfirm(opts)
			if yes {
				confirm = nil
			}
			err = e.projects.Delete(cmd.Context(), args[0], confirm)
			if errors.Is(err, store.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (image folder kept)\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// promptConfirm asks on the terminal before a delete. Any answer other
// than yes, including an aborted prompt, refuses.
func promptConfirm(opts *options) store.ConfirmFunc {
	return func(p model.Project) bool {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete %s", p.Label()),
			IsConfirm: true,
			Stdin:     opts.stdin,
		}
		_, err := prompt.Run()
		return err == nil
	}
}

func printOutcome(cmd *cobra.Command, verb string, out store.Outcome[model.Project]) {
	w := cmd.OutOrStdout()
	p := out.Record
	fmt.Fprintf(w, "Project %s %s: %s\n", p.ID, verb, p.Title)
	if len(p.Images) > 0 {
		fmt.Fprintf(w, "Images: %s\n", strings.Join(p.Images, ", "))
	}
	for _, warning := range out.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}
}
