package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/store/schema"
	"github.com/ideaspark/ideaspark/internal/ui"
)

func statusCommand(use, short string, status schema.Status, verb string) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <id>",
		GroupID: "tasks",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := commandContext()
			defer cancel()

			s := openStore(ctx)
			defer s.Close()

			task := resolveTask(ctx, s, args[0])
			if err := s.SetTaskStatus(ctx, task.ID, status); err != nil {
				fatal("%v", err)
			}
			fmt.Printf("%s %s %s (%s)\n", ui.SuccessStyle.Render("✓"), verb, ui.ShortID(task.ID), task.Title)
		},
	}
}

var trashCmd = &cobra.Command{
	Use:     "trash <id>",
	GroupID: "tasks",
	Short:   "Move a task to the trash, or restore it if already trashed",
	Long: `Toggle a task's trash state. Trashed tasks are hidden from "list" unless
--all is given. Running trash again on the same task restores it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		s := openStore(ctx)
		defer s.Close()

		task := resolveTask(ctx, s, args[0])
		if err := s.ToggleTaskDeletion(ctx, task.ID); err != nil {
			fatal("%v", err)
		}

		if task.Deleted {
			fmt.Printf("%s Restored %s (%s)\n", ui.SuccessStyle.Render("✓"), ui.ShortID(task.ID), task.Title)
		} else {
			fmt.Printf("%s Moved %s (%s) to trash\n", ui.SuccessStyle.Render("✓"), ui.ShortID(task.ID), task.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(
		statusCommand("done", "Mark a task as done", schema.StatusDone, "Completed"),
		statusCommand("reopen", "Mark a done task as new again", schema.StatusNew, "Reopened"),
		trashCmd,
	)
}
