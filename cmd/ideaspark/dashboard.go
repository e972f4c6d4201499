package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/dashboard"
	"github.com/ideaspark/ideaspark/internal/store"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "data",
	Short:   "Serve a live task feed over WebSocket",
	Long: `Start a WebSocket dashboard server that broadcasts task changes.

Changes made by other ideaspark commands while the dashboard runs are picked
up by watching the database file.

Endpoints:
  /ws      task_update and stats messages
  /tasks   current task list as JSON (?category=, ?status=, ?all=true)
  /health  server status

Example usage:
  ideaspark dashboard                 # default port (dashboard.port)
  ideaspark dashboard --port 9000`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		port := cfg.Dashboard.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		logger := sink.Logger("dashboard")

		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		handler := dashboard.NewHandler(server, logger)

		s := openStore(ctx, store.WithObserver(handler))
		defer s.Close()
		server.SetSource(s)

		watcher, err := dashboard.NewWatcher(s.Path(), cfg.Dashboard.Debounce, func() {
			if err := handler.RefreshStats(context.Background()); err != nil {
				logger.Printf("Failed to refresh stats: %v", err)
			}
		}, sink.Logger("watcher"))
		if err != nil {
			fatal("%v", err)
		}

		if err := server.Start(); err != nil {
			fatal("failed to start dashboard: %v", err)
		}
		if err := watcher.Start(); err != nil {
			_ = server.Stop()
			fatal("%v", err)
		}

		fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		<-ctx.Done()

		fmt.Println("\nShutting down dashboard server...")
		_ = watcher.Stop()
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Dashboard server stopped")
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 8080, "Port to listen on")

	rootCmd.AddCommand(dashboardCmd)
}
