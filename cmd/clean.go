package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/printgrab/internal/output"
	"github.com/tanq16/printgrab/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path]",
		Short: "Clean up temporary download files",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			if err := utils.Clean(root); err != nil {
				output.PrintError("Error cleaning up temporary files")
				os.Exit(1)
			}
			output.PrintSuccess("Temporary files cleaned up")
		},
	}
}
