package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/ui"
)

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	GroupID: "tasks",
	Short:   "Change a task's title, description or due date",
	Long: `Change a task's title, description or due date. The id may be the
short prefix shown by "ideaspark list".

Category, status and trash state are not changed by edit; use done, reopen
and trash for those.

With no flags in a terminal, a pre-filled form is shown.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		s := openStore(ctx)
		defer s.Close()

		task := resolveTask(ctx, s, args[0])
		flags := cmd.Flags()
		now := time.Now()

		changed := flags.Changed("title") || flags.Changed("description") || flags.Changed("due")
		switch {
		case changed:
			if flags.Changed("title") {
				task.Title, _ = flags.GetString("title")
			}
			if flags.Changed("description") {
				task.Description, _ = flags.GetString("description")
			}
			if flags.Changed("due") {
				due, _ := flags.GetString("due")
				parsed, err := ui.ParseDueDate(due, now)
				if err != nil {
					fatal("%v", err)
				}
				task.DueDate = parsed
			}
		case ui.IsInteractive():
			form := &ui.TaskForm{
				Title:       task.Title,
				Description: task.Description,
				DueDate:     task.DueDate,
				Category:    task.Category,
			}
			if err := ui.RunTaskForm(form, now); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Cancelled.")
					os.Exit(1)
				}
				fatal("%v", err)
			}
			task.Title = form.Title
			task.Description = form.Description
			task.DueDate = form.DueDate
		default:
			fatal("nothing to change (use --title, --description or --due)")
		}

		if err := s.UpdateTask(ctx, task); err != nil {
			fatal("%v", err)
		}

		updated, err := s.GetTask(ctx, task.ID)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s Updated task %s\n\n", ui.SuccessStyle.Render("✓"), ui.ShortID(task.ID))
		fmt.Print(ui.FormatTask(updated))
	},
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().String("due", "", "New due date (YYYY-MM-DD or natural language)")

	rootCmd.AddCommand(editCmd)
}
