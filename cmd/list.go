package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/scenario/internal/controller"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [paths...]",
		Short: "List scenario files and recognized call-site counts",
		Long: `List every scenario file found under the given paths together with the
number of given/when/it call sites the transform would rewrite.`,
		RunE: func(_ *cobra.Command, args []string) error {
			sources, err := workflow.Discover(parsePaths(args)...)
			if err != nil {
				return err
			}

			if err := ui.Start(controller.WithListMode()); err != nil {
				return err
			}
			defer ui.Close()

			rows, err := workflow.Estimate(sources)

			return ui.DisplayEstimation(rows, err)
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
