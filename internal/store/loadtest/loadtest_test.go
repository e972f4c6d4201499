package loadtest

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ideaspark/ideaspark/internal/store"
	"github.com/ideaspark/ideaspark/internal/store/schema"
)

func openStore(tb testing.TB) *store.Store {
	tb.Helper()
	s := store.New(filepath.Join(tb.TempDir(), "load.db"),
		store.WithLogger(log.New(io.Discard, "", 0)))
	if err := s.Initialize(context.Background()); err != nil {
		tb.Fatalf("Initialize() failed: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeed(t *testing.T) {
	s := openStore(t)
	ids, err := Seed(context.Background(), s, 25)
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	if len(ids) != 25 {
		t.Fatalf("Seed() returned %d ids, want 25", len(ids))
	}

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Total != 25 {
		t.Errorf("Total = %d, want 25", stats.Total)
	}
}

func TestRun_Consistent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	cfg := Config{Tasks: 50, Clients: 10, OpsPerClient: 20, WriteRatio: 0.5, Seed: 7}
	result, err := Run(ctx, s, cfg)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got := result.Reads.Count + result.Writes.Count; got != cfg.Clients*cfg.OpsPerClient {
		t.Errorf("ops = %d, want %d", got, cfg.Clients*cfg.OpsPerClient)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Total != cfg.Tasks+result.Created {
		t.Errorf("Total = %d, want %d seeded + %d created", stats.Total, cfg.Tasks, result.Created)
	}

	all, err := s.ListTasks(ctx, schema.ListFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("tasks out of order at %d", i)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	s := openStore(t)
	if _, err := Run(context.Background(), s, Config{Clients: 0, OpsPerClient: 1}); err == nil {
		t.Fatal("Run() accepted zero clients")
	}
}

func TestRun_NotInitialized(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "x.db"), store.WithLogger(log.New(io.Discard, "", 0)))
	if _, err := Run(context.Background(), s, Config{Tasks: 1, Clients: 1, OpsPerClient: 1}); err == nil {
		t.Fatal("Run() succeeded on an uninitialized store")
	}
}

func TestComputeLatencyStats(t *testing.T) {
	var ds []time.Duration
	for i := 100; i >= 1; i-- {
		ds = append(ds, time.Duration(i)*time.Millisecond)
	}
	s := computeLatencyStats(ds)
	if s.Min != time.Millisecond || s.Max != 100*time.Millisecond {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.P50 != 51*time.Millisecond || s.P99 != 100*time.Millisecond {
		t.Errorf("p50/p99 = %v/%v", s.P50, s.P99)
	}
	if s.Count != 100 {
		t.Errorf("Count = %d", s.Count)
	}
	if empty := computeLatencyStats(nil); empty.Count != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestResult_Print(t *testing.T) {
	r := &Result{Reads: LatencyStats{Count: 1, Min: time.Millisecond}, Created: 3}
	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	if !strings.Contains(out, "Reads: 1 ops") || !strings.Contains(out, "Writes: 0 ops") {
		t.Errorf("Print() = %q", out)
	}
}

func BenchmarkListTasks_500(b *testing.B) {
	s := openStore(b)
	ctx := context.Background()
	if _, err := Seed(ctx, s, 500); err != nil {
		b.Fatalf("Seed() failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ListTasks(ctx, schema.ListFilter{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCreateTask(b *testing.B) {
	s := openStore(b)
	ctx := context.Background()
	input := schema.NewTask{Title: "bench", Description: "bench", DueDate: "2030-01-01"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.CreateTask(ctx, input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConcurrentClients(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s := openStore(b)
		b.StartTimer()

		if _, err := Run(context.Background(), s, Config{Tasks: 100, Clients: 20, OpsPerClient: 10, WriteRatio: 0.2, Seed: 1}); err != nil {
			b.Fatal(err)
		}
	}
}
