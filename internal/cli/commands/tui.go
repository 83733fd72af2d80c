package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui <run>",
		Short: "Browse a run report interactively",
		Long: `Open a full-screen terminal report of one run.

Keys:
  up/down, tab     move between controls
  enter, space     expand an entry, show or hide a panel
  left/right       previous/next page or step
  r                refetch the run
  q                quit`,
		Example: `  runlens tui alpha`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args[0])
		},
	}
	return cmd
}

func runTUI(cmd *cobra.Command, run string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	updates := tui.NewUpdates()
	rep, err := cc.OpenReport(cmd.Context(), run, updates.Notify)
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), tui.Config{
		Report:  rep,
		Updates: updates,
		Styled:  true,
		Logger:  cc.Logger,
	})
}
