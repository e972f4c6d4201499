package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/ideaspark/ideaspark/internal/store"
	"github.com/ideaspark/ideaspark/internal/store/schema"
	"github.com/ideaspark/ideaspark/internal/ui"
)

// exit is replaced in tests.
var exit = os.Exit

// Stores opened by the running command. fatal closes them because os.Exit
// skips the command's deferred Close.
var (
	openMu sync.Mutex
	opened []*store.Store
)

func trackStore(s *store.Store) {
	openMu.Lock()
	opened = append(opened, s)
	openMu.Unlock()
}

func closeStores() {
	openMu.Lock()
	stores := opened
	opened = nil
	openMu.Unlock()

	for _, s := range stores {
		_ = s.Close()
	}
}

// fatal prints "Error: ..." to stderr, closes open stores and the log sink,
// and exits with status 1.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.ErrorStyle.Render("Error:"), fmt.Sprintf(format, args...))
	closeStores()
	if sink != nil {
		_ = sink.Close()
	}
	exit(1)
}

// commandContext is cancelled on Ctrl+C or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStore creates and initializes the store from the resolved config.
func openStore(ctx context.Context, opts ...store.Option) *store.Store {
	opts = append([]store.Option{store.WithLogger(sink.Logger("store"))}, opts...)
	s := store.New(cfg.DB.Path, opts...)
	trackStore(s)
	if err := s.Initialize(ctx); err != nil {
		fatal("%v", err)
	}
	return s
}

// resolveTask finds a task by full id or by a unique id prefix (as shown in
// the list table). Deleted tasks are included so they can be restored.
func resolveTask(ctx context.Context, s *store.Store, ref string) *schema.Task {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		fatal("task id required")
	}

	task, err := s.GetTask(ctx, ref)
	if err == nil {
		return task
	}
	if !errors.Is(err, store.ErrNotFound) {
		fatal("%v", err)
	}

	tasks, err := s.ListTasks(ctx, schema.ListFilter{IncludeDeleted: true})
	if err != nil {
		fatal("%v", err)
	}
	var matches []*schema.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		fatal("task not found: %s", ref)
	case 1:
		return matches[0]
	default:
		fatal("id prefix %q is ambiguous (%d tasks match)", ref, len(matches))
	}
	return nil
}
