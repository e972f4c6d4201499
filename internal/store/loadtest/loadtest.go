// Package loadtest drives a Store with many concurrent clients and reports
// per-operation latency.
//
// It is used by the store's benchmarks and by "ideaspark bench", which runs
// against a throwaway database so the user's tasks are never touched.
package loadtest

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ideaspark/ideaspark/internal/store"
	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// Config describes one run.
type Config struct {
	// Tasks is how many tasks are created before the run starts.
	Tasks int
	// Clients is the number of concurrent goroutines.
	Clients int
	// OpsPerClient is how many operations each client performs.
	OpsPerClient int
	// WriteRatio is the share of operations that write (0.0-1.0). Writes
	// are split between create, toggle deletion and status change.
	WriteRatio float64
	// Seed makes the operation mix reproducible.
	Seed int64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tasks:        500,
		Clients:      20,
		OpsPerClient: 50,
		WriteRatio:   0.2,
		Seed:         42,
	}
}

// LatencyStats captures latency over a set of operations.
type LatencyStats struct {
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Count int
}

// Result is the outcome of Run.
type Result struct {
	Reads   LatencyStats
	Writes  LatencyStats
	Created int
	Elapsed time.Duration
}

var categories = []string{"work", "home", "errands", "ideas", schema.DefaultCategory}

// Seed creates n tasks and returns their ids, oldest first.
func Seed(ctx context.Context, s *store.Store, n int) ([]string, error) {
	ids := make([]string, 0, n)
	base := time.Now().AddDate(0, 0, 7)

	for i := 0; i < n; i++ {
		task, err := s.CreateTask(ctx, schema.NewTask{
			Title:       fmt.Sprintf("Task %d", i),
			Description: fmt.Sprintf("Load test task %d", i),
			DueDate:     base.AddDate(0, 0, i%30).Format("2006-01-02"),
			Category:    categories[i%len(categories)],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed task %d: %w", i, err)
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}

// Run seeds the store and then runs the configured clients against it.
// The store must already be initialized.
func Run(ctx context.Context, s *store.Store, cfg Config) (*Result, error) {
	if cfg.Clients <= 0 || cfg.OpsPerClient <= 0 {
		return nil, fmt.Errorf("clients and ops per client must be positive")
	}

	ids, err := Seed(ctx, s, cfg.Tasks)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		reads   []time.Duration
		writes  []time.Duration
		created int
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	for c := 0; c < cfg.Clients; c++ {
		client := c
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(client)))
			var localReads, localWrites []time.Duration
			localCreated := 0

			for op := 0; op < cfg.OpsPerClient; op++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				isWrite := rng.Float64() < cfg.WriteRatio
				began := time.Now()
				var err error

				if !isWrite {
					filter := schema.ListFilter{}
					if rng.Intn(2) == 0 {
						filter.Category = categories[rng.Intn(len(categories))]
					}
					_, err = s.ListTasks(gctx, filter)
				} else {
					switch {
					case len(ids) == 0 || rng.Intn(3) == 0:
						_, err = s.CreateTask(gctx, schema.NewTask{
							Title:       fmt.Sprintf("Client %d op %d", client, op),
							Description: "created during load test",
							DueDate:     "2030-01-01",
						})
						if err == nil {
							localCreated++
						}
					case rng.Intn(2) == 0:
						err = s.ToggleTaskDeletion(gctx, ids[rng.Intn(len(ids))])
					default:
						status := schema.StatusDone
						if rng.Intn(2) == 0 {
							status = schema.StatusNew
						}
						err = s.SetTaskStatus(gctx, ids[rng.Intn(len(ids))], status)
					}
				}

				elapsed := time.Since(began)
				if err != nil {
					return fmt.Errorf("client %d op %d failed: %w", client, op, err)
				}
				if isWrite {
					localWrites = append(localWrites, elapsed)
				} else {
					localReads = append(localReads, elapsed)
				}
			}

			mu.Lock()
			reads = append(reads, localReads...)
			writes = append(writes, localWrites...)
			created += localCreated
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Reads:   computeLatencyStats(reads),
		Writes:  computeLatencyStats(writes),
		Created: created,
		Elapsed: time.Since(start),
	}, nil
}

// computeLatencyStats calculates statistics from a slice of durations.
func computeLatencyStats(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return LatencyStats{
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  sum / time.Duration(len(sorted)),
		P50:   sorted[len(sorted)*50/100],
		P95:   sorted[len(sorted)*95/100],
		P99:   sorted[len(sorted)*99/100],
		Count: len(sorted),
	}
}

// Print writes a human-readable report.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "Elapsed: %v (%d tasks created during run)\n", r.Elapsed.Round(time.Millisecond), r.Created)
	for _, section := range []struct {
		name  string
		stats LatencyStats
	}{{"Reads", r.Reads}, {"Writes", r.Writes}} {
		s := section.stats
		fmt.Fprintf(w, "%s: %d ops\n", section.name, s.Count)
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  Min:  %v\n", s.Min)
		fmt.Fprintf(w, "  P50:  %v\n", s.P50)
		fmt.Fprintf(w, "  Mean: %v\n", s.Mean)
		fmt.Fprintf(w, "  P95:  %v\n", s.P95)
		fmt.Fprintf(w, "  P99:  %v\n", s.P99)
		fmt.Fprintf(w, "  Max:  %v\n", s.Max)
	}
}
