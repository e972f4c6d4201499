package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/store/schema"
	"github.com/ideaspark/ideaspark/internal/ui"
)

var addCmd = &cobra.Command{
	Use:     "add [title]",
	GroupID: "tasks",
	Short:   "Add a task",
	Long: `Add a new task.

The due date accepts YYYY-MM-DD or natural language such as "tomorrow" or
"next friday". When run in a terminal with fields missing, a form asks for
them.

Examples:
  ideaspark add "Buy milk" -d "2 liters" --due 2024-06-01 -c errands
  ideaspark add                      # interactive form`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		title, _ := cmd.Flags().GetString("title")
		if len(args) == 1 {
			title = args[0]
		}
		description, _ := cmd.Flags().GetString("description")
		due, _ := cmd.Flags().GetString("due")
		category, _ := cmd.Flags().GetString("category")
		status, _ := cmd.Flags().GetString("status")

		form := &ui.TaskForm{Title: title, Description: description, DueDate: due, Category: category}
		now := time.Now()

		if form.Missing() && ui.IsInteractive() {
			if err := ui.RunTaskForm(form, now); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Cancelled.")
					os.Exit(1)
				}
				fatal("%v", err)
			}
		} else {
			parsed, err := ui.ParseDueDate(form.DueDate, now)
			if err != nil {
				fatal("%v", err)
			}
			form.DueDate = parsed
		}

		s := openStore(ctx)
		defer s.Close()

		task, err := s.CreateTask(ctx, schema.NewTask{
			Title:       form.Title,
			Description: form.Description,
			DueDate:     form.DueDate,
			Category:    form.Category,
			Status:      schema.Status(status),
		})
		if err != nil {
			fatal("%v", err)
		}

		fmt.Printf("%s Created task %s\n\n", ui.SuccessStyle.Render("✓"), ui.ShortID(task.ID))
		fmt.Print(ui.FormatTask(task))
	},
}

func init() {
	addCmd.Flags().StringP("title", "t", "", "Task title")
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or natural language)")
	addCmd.Flags().StringP("category", "c", "", "Category (default uncategorized)")
	addCmd.Flags().StringP("status", "s", "", "Initial status: new or done (default new)")

	rootCmd.AddCommand(addCmd)
}
