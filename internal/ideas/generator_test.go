package ideas

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const messageResponse = `{
  "id": "msg_test",
  "type": "message",
  "role": "assistant",
  "model": "test-model",
  "content": [{"type": "text", "text": "  Plan a weekend hike  "}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func errorResponse(kind, msg string) string {
	return `{"type":"error","error":{"type":"` + kind + `","message":"` + msg + `"}}`
}

// fakeAPI replies with statuses[i] for the i-th call, then 200.
type fakeAPI struct {
	statuses []int
	calls    atomic.Int32

	mu       sync.Mutex
	lastBody map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(f.calls.Add(1)) - 1

	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	f.mu.Lock()
	f.lastBody = body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if n < len(f.statuses) {
		w.WriteHeader(f.statuses[n])
		_, _ = io.WriteString(w, errorResponse("overloaded_error", "Overloaded"))
		return
	}
	_, _ = io.WriteString(w, messageResponse)
}

func newTestGenerator(t *testing.T, api http.Handler, maxRetries int) (*Generator, *[]time.Duration) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	g, err := NewGenerator(Options{
		APIKey:            "test-key",
		Model:             "test-model",
		BaseURL:           srv.URL,
		MaxRetries:        maxRetries,
		InitialRetryDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	var delays []time.Duration
	g.wait = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return g, &delays
}

func TestGenerate_Success(t *testing.T) {
	api := &fakeAPI{}
	g, _ := newTestGenerator(t, api, 3)

	got, err := g.Generate(context.Background(), PromptInput{
		UserInput: "weekend plans",
		Language:  Indonesian,
		Context:   "I like mountains",
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got != "Plan a weekend hike" {
		t.Errorf("Generate() = %q, want trimmed text", got)
	}

	api.mu.Lock()
	body := api.lastBody
	api.mu.Unlock()

	raw, _ := json.Marshal(body)
	s := string(raw)
	if !strings.Contains(s, "Anda adalah asisten AI") {
		t.Errorf("request missing Indonesian system prompt: %s", s)
	}
	if !strings.Contains(s, `I like mountains\nweekend plans`) {
		t.Errorf("request missing context prefix: %s", s)
	}
}

func TestGenerate_RetriesWithBackoff(t *testing.T) {
	api := &fakeAPI{statuses: []int{529, 503, 429}}
	g, delays := newTestGenerator(t, api, 5)

	got, err := g.Generate(context.Background(), PromptInput{UserInput: "idea"})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got == "" {
		t.Fatal("Generate() returned empty text")
	}
	if n := api.calls.Load(); n != 4 {
		t.Errorf("calls = %d, want 4", n)
	}

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, (*delays)[i], want[i])
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		initial time.Duration
		attempt int
		want    time.Duration
	}{
		{3 * time.Second, 0, 3 * time.Second},
		{3 * time.Second, 2, 12 * time.Second},
		{3 * time.Second, 6, 192 * time.Second},
		{3 * time.Second, 7, maxRetryDelay},
		{3 * time.Second, 40, maxRetryDelay},
		{3 * time.Second, 100, maxRetryDelay},
		{time.Nanosecond, 64, maxRetryDelay},
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.initial, tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%v, %d) = %v, want %v", tt.initial, tt.attempt, got, tt.want)
		}
	}
}

func TestGenerate_ManyRetriesNeverWaitNegative(t *testing.T) {
	statuses := make([]int, 40)
	for i := range statuses {
		statuses[i] = 529
	}
	api := &fakeAPI{statuses: statuses}
	g, delays := newTestGenerator(t, api, 40)
	g.initialDelay = 3 * time.Second

	if _, err := g.Generate(context.Background(), PromptInput{UserInput: "idea"}); !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("Generate() error = %v, want ErrMaxRetries", err)
	}
	if len(*delays) != 39 {
		t.Fatalf("waited %d times, want 39", len(*delays))
	}
	for i, d := range *delays {
		if d <= 0 || d > maxRetryDelay {
			t.Errorf("delay[%d] = %v, want within (0, %v]", i, d, maxRetryDelay)
		}
	}
}

func TestGenerate_MaxRetries(t *testing.T) {
	api := &fakeAPI{statuses: []int{529, 529, 529, 529}}
	g, _ := newTestGenerator(t, api, 3)

	_, err := g.Generate(context.Background(), PromptInput{UserInput: "idea"})
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("Generate() error = %v, want ErrMaxRetries", err)
	}
	if n := api.calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestGenerate_FriendlyErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			api := &fakeAPI{statuses: []int{tt.status}}
			g, delays := newTestGenerator(t, api, 5)

			_, err := g.Generate(context.Background(), PromptInput{UserInput: "idea"})
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
			if n := api.calls.Load(); n != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", n)
			}
			if len(*delays) != 0 {
				t.Errorf("waited %v, want no backoff", *delays)
			}
		})
	}
}

func TestGenerate_OtherStatusNotRetried(t *testing.T) {
	api := &fakeAPI{statuses: []int{http.StatusBadRequest}}
	g, _ := newTestGenerator(t, api, 5)

	_, err := g.Generate(context.Background(), PromptInput{UserInput: "idea"})
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("Generate() error = %v, want status 400", err)
	}
	if n := api.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestGenerate_EmptyInput(t *testing.T) {
	api := &fakeAPI{}
	g, _ := newTestGenerator(t, api, 3)

	for _, in := range []string{"", "   "} {
		if _, err := g.Generate(context.Background(), PromptInput{UserInput: in}); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Generate(%q) error = %v, want ErrEmptyInput", in, err)
		}
	}
	if n := api.calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestGenerate_BadLanguage(t *testing.T) {
	api := &fakeAPI{}
	g, _ := newTestGenerator(t, api, 3)

	if _, err := g.Generate(context.Background(), PromptInput{UserInput: "x", Language: "fr"}); err == nil {
		t.Fatal("Generate() accepted unsupported language")
	}
	if n := api.calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestGenerate_ContextCancelledWhileWaiting(t *testing.T) {
	api := &fakeAPI{statuses: []int{529, 529, 529}}
	g, _ := newTestGenerator(t, api, 5)
	g.wait = sleepContext
	g.initialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(ctx, PromptInput{UserInput: "idea"})
		done <- err
	}()

	deadline := time.After(5 * time.Second)
	for api.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no request was made")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Generate() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Generate() did not return after cancel")
	}
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGenerator(Options{}); err == nil {
		t.Fatal("NewGenerator() accepted empty API key")
	}
}

func TestPromptTemplate(t *testing.T) {
	if English.systemPrompt() == Indonesian.systemPrompt() {
		t.Error("English and Indonesian share a system prompt")
	}
	if Language("").systemPrompt() != English.systemPrompt() {
		t.Error("empty language should default to English")
	}
	in := PromptInput{UserInput: "go"}
	if in.userMessage() != "go" {
		t.Errorf("userMessage() = %q", in.userMessage())
	}
}
