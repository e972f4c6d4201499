package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/store/migrate"
	"github.com/ideaspark/ideaspark/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	GroupID: "data",
	Short:   "Export all tasks as JSONL",
	Long: `Write every task, trashed ones included, as one JSON object per line.
Without a file (or with "-") the export goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		s := openStore(ctx)
		defer s.Close()

		if len(args) == 0 || args[0] == "-" {
			if _, err := migrate.Export(ctx, os.Stdout, s); err != nil {
				fatal("%v", err)
			}
			return
		}

		n, err := migrate.ExportFile(ctx, args[0], s)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s Exported %d tasks to %s\n", ui.SuccessStyle.Render("✓"), n, args[0])
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "data",
	Short:   "Import tasks from a JSONL export",
	Long: `Restore tasks from a JSONL export. Ids, creation times and trash state
are kept. Tasks whose id already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		s := openStore(ctx)
		defer s.Close()

		result, err := migrate.ImportFile(ctx, args[0], s, migrate.Options{DryRun: dryRun})
		if err != nil {
			fatal("%v", err)
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %s %d tasks (%d skipped)\n", ui.SuccessStyle.Render("✓"), verb, result.Imported, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "   %s\n", ui.MutedStyle.Render(e))
		}
		if len(result.Errors) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate without writing")

	rootCmd.AddCommand(exportCmd, importCmd)
}
