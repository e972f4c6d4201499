package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/store"
	"github.com/ideaspark/ideaspark/internal/store/loadtest"
)

var benchCmd = &cobra.Command{
	Use:     "bench",
	GroupID: "data",
	Hidden:  true,
	Short:   "Measure store latency under concurrent load",
	Long: `Run concurrent clients against a throwaway database and print read and
write latency. Your own task database is not used.

Examples:
  ideaspark bench
  ideaspark bench --clients 100 --ops 20 --write-ratio 0.5`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		lc := loadtest.DefaultConfig()
		lc.Tasks, _ = cmd.Flags().GetInt("tasks")
		lc.Clients, _ = cmd.Flags().GetInt("clients")
		lc.OpsPerClient, _ = cmd.Flags().GetInt("ops")
		lc.WriteRatio, _ = cmd.Flags().GetFloat64("write-ratio")

		dir, err := os.MkdirTemp("", "ideaspark-bench-*")
		if err != nil {
			fatal("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		s := store.New(filepath.Join(dir, "bench.db"), store.WithLogger(sink.Logger("bench")))
		trackStore(s)
		if err := s.Initialize(ctx); err != nil {
			fatal("%v", err)
		}
		defer s.Close()

		fmt.Printf("Running %d clients x %d ops over %d tasks...\n", lc.Clients, lc.OpsPerClient, lc.Tasks)
		result, err := loadtest.Run(ctx, s, lc)
		if err != nil {
			fatal("%v", err)
		}
		result.Print(os.Stdout)
	},
}

func init() {
	d := loadtest.DefaultConfig()
	benchCmd.Flags().Int("tasks", d.Tasks, "Tasks to seed before the run")
	benchCmd.Flags().Int("clients", d.Clients, "Concurrent clients")
	benchCmd.Flags().Int("ops", d.OpsPerClient, "Operations per client")
	benchCmd.Flags().Float64("write-ratio", d.WriteRatio, "Share of operations that write")

	rootCmd.AddCommand(benchCmd)
}
