package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, environment
variables and flags have been applied. The API key is masked.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		out, err := config.Render(cfg, format)
		if err != nil {
			fatal("%v", err)
		}
		_, _ = os.Stdout.Write(out)
	},
}

func init() {
	configShowCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or toml")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
