package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ideaspark/ideaspark/internal/store/schema"
	"github.com/ideaspark/ideaspark/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: "tasks",
	Short:   "List tasks, newest first",
	Long: `List tasks, newest first. Trashed tasks are hidden unless --all is given.

Examples:
  ideaspark list
  ideaspark list -c errands --status new
  ideaspark list --all --format json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		category, _ := cmd.Flags().GetString("category")
		status, _ := cmd.Flags().GetString("status")
		all, _ := cmd.Flags().GetBool("all")
		format, _ := cmd.Flags().GetString("format")

		filter := schema.ListFilter{
			Category:       category,
			Status:         schema.Status(status),
			IncludeDeleted: all,
		}
		if filter.Status != "" && !filter.Status.IsValid() {
			fatal("invalid status %q (want new or done)", status)
		}

		s := openStore(ctx)
		defer s.Close()

		tasks, err := s.ListTasks(ctx, filter)
		if err != nil {
			fatal("%v", err)
		}

		switch format {
		case "table", "":
			fmt.Println(ui.RenderTasks(tasks))
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(tasks); err != nil {
				fatal("failed to encode json: %v", err)
			}
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(tasks); err != nil {
				fatal("failed to encode yaml: %v", err)
			}
			_ = enc.Close()
		default:
			fatal("unknown format %q (want table, json or yaml)", format)
		}
	},
}

func init() {
	listCmd.Flags().StringP("category", "c", "", "Only tasks in this category")
	listCmd.Flags().StringP("status", "s", "", "Only tasks with this status (new or done)")
	listCmd.Flags().BoolP("all", "a", false, "Include trashed tasks")
	listCmd.Flags().StringP("format", "f", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(listCmd)
}
