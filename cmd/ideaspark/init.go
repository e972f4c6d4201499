package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "tasks",
	Short:   "Create the task database",
	Long: `Create the task database and its schema if they do not exist yet.

Running init again is harmless; existing tasks are kept.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		s := openStore(ctx)
		defer s.Close()

		stats, err := s.Stats(ctx)
		if err != nil {
			fatal("%v", err)
		}

		fmt.Printf("%s Database ready at %s\n", ui.SuccessStyle.Render("✓"), s.Path())
		fmt.Printf("   Tasks: %d (%d in trash)\n", stats.Active, stats.Deleted)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
