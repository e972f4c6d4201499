package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ideaspark/ideaspark/internal/config"
	"github.com/ideaspark/ideaspark/internal/logging"
	"github.com/ideaspark/ideaspark/internal/store"
	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// run executes the root command with args, discarding stdout.
func run(t *testing.T, args ...string) {
	t.Helper()

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	stdout := os.Stdout
	os.Stdout = devNull
	defer func() {
		os.Stdout = stdout
		devNull.Close()
	}()

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ideaspark %s: %v", strings.Join(args, " "), err)
	}
}

func TestCommands_AddListEditDone(t *testing.T) {
	home := t.TempDir()
	dbPath := filepath.Join(home, "ideaspark.db")
	t.Setenv("IDEASPARK_HOME", home)

	run(t, "--home", home, "init")
	run(t, "--home", home, "add", "Buy milk",
		"--description", "2 liters", "--due", "2024-06-01", "--category", "errands")

	s := store.New(dbPath, store.WithLogger(log.New(io.Discard, "", 0)))
	defer s.Close()
	ctx := context.Background()

	tasks, err := s.ListTasks(ctx, schema.ListFilter{})
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Category != "errands" {
		t.Fatalf("tasks = %+v, want the added task", tasks)
	}
	id := tasks[0].ID

	run(t, "--home", home, "list", "--format", "json")
	run(t, "--home", home, "edit", id[:8], "--title", "Buy oat milk")
	run(t, "--home", home, "done", id)

	got, err := s.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	if got.Title != "Buy oat milk" || got.Status != schema.StatusDone {
		t.Errorf("task = %+v, want edited and done", got)
	}

	run(t, "--home", home, "trash", id)
	got, _ = s.GetTask(ctx, id)
	if !got.Deleted {
		t.Error("trash did not mark the task deleted")
	}

	export := filepath.Join(t.TempDir(), "tasks.jsonl")
	run(t, "--home", home, "export", export)
	data, err := os.ReadFile(export)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), id) {
		t.Errorf("export missing task %s", id)
	}
}

func TestIdeaTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plan a hike", "Plan a hike"},
		{"  First line  \nsecond line", "First line"},
		{strings.Repeat("a", 100), strings.Repeat("a", 79) + "…"},
	}
	for _, tt := range tests {
		if got := ideaTitle(tt.in); got != tt.want {
			t.Errorf("ideaTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type exitCode int

func TestFatal_ClosesOpenStores(t *testing.T) {
	prevExit, prevCfg, prevSink := exit, cfg, sink
	t.Cleanup(func() { exit, cfg, sink = prevExit, prevCfg, prevSink })

	cfg = &config.Config{DB: config.DBConfig{Path: filepath.Join(t.TempDir(), "ideaspark.db")}}
	sink = logging.Discard()
	exit = func(code int) { panic(exitCode(code)) }

	s := openStore(context.Background())
	if !s.Initialized() {
		t.Fatal("openStore() returned an uninitialized store")
	}

	code := func() (code exitCode) {
		defer func() {
			if r := recover(); r != nil {
				code = r.(exitCode)
			}
		}()
		fatal("boom")
		return -1
	}()

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if s.Initialized() {
		t.Error("store still open after fatal")
	}
	openMu.Lock()
	defer openMu.Unlock()
	if len(opened) != 0 {
		t.Errorf("%d stores still tracked", len(opened))
	}
}
