package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/viewconfig"
)

// NewInitViewCommand creates the init-view command.
func NewInitViewCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-view [file]",
		Short: "Write the default view config",
		Long: `Generate a view config from the logged rows and write it to disk.

The generated view has a Summary panel with every column plus one line
plot per numeric column, indexed by step when a step column exists. Edit
the file to choose panels; it is re-read on every request.`,
		Example: `  # Write runlens.view.yaml in the project root
  runlens init-view

  # Write to a custom path, replacing an existing file
  runlens init-view views/default.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := getConfig().ViewConfig
			if len(args) > 0 {
				path = args[0]
			}
			return runInitView(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing view config")

	return cmd
}

func runInitView(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if cc.Store == nil {
		return fmt.Errorf("init-view needs a local storage directory")
	}

	rows, err := cc.Store.Rows(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	view := viewconfig.Default(rows)
	if err := viewconfig.Save(path, view); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cc.Out, "Wrote %s (%d panels)\n", path, len(view.Panels))
	return nil
}
