// Command ideaspark is a local task manager with AI-generated ideas.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ideaspark/ideaspark/internal/config"
	"github.com/ideaspark/ideaspark/internal/logging"
)

var (
	// Resolved in rootCmd's PersistentPreRun.
	cfg  *config.Config
	sink *logging.Sink
)

var rootCmd = &cobra.Command{
	Use:   "ideaspark",
	Short: "Local task manager with AI-generated ideas",
	Long: `IdeaSpark keeps your tasks in a local SQLite database and can ask an AI
model for ideas when you are stuck.

Configuration is read from $IDEASPARK_HOME/config.yaml (or config.toml),
IDEASPARK_* environment variables and the flags below.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		home, _ := cmd.Flags().GetString("home")

		v := config.New(home)
		bindFlag(v, "db.path", cmd, "db")
		bindFlag(v, "log.file", cmd, "log-file")
		bindFlag(v, "log.verbose", cmd, "verbose")

		loaded, err := config.Load(v)
		if err != nil {
			fatal("%v", err)
		}
		cfg = loaded

		sink, err = logging.Setup(logging.Options{
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Verbose:    cfg.Log.Verbose,
		})
		if err != nil {
			fatal("failed to set up logging: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeStores()
		if sink != nil {
			_ = sink.Close()
		}
	},
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if f := cmd.Flags().Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Tasks:"},
		&cobra.Group{ID: "ai", Title: "Ideas:"},
		&cobra.Group{ID: "data", Title: "Data:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.String("home", config.DefaultHome(), "IdeaSpark home directory")
	flags.String("db", "", "Database path (default <home>/ideaspark.db)")
	flags.String("log-file", "", "Write logs to this file (rotated)")
	flags.BoolP("verbose", "v", false, "Log to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
