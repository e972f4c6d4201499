// Package ideas turns a short user prompt into a task idea using the
// Anthropic Messages API.
//
// The generator owns its retry policy: while the service reports that it is
// temporarily unavailable (overloaded or rate limited) the request is retried
// with exponential backoff. Authentication and model errors are mapped to
// friendly sentinel errors and are never retried.
package ideas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel             = "claude-sonnet-4-5"
	defaultMaxTokens         = 256
	defaultMaxRetries        = 5
	defaultInitialRetryDelay = 3 * time.Second
	defaultTimeout           = 60 * time.Second

	// maxRetryDelay caps a single backoff wait.
	maxRetryDelay = 5 * time.Minute

	// statusOverloaded is Anthropic's "overloaded" status code.
	statusOverloaded = 529
)

var (
	// ErrMaxRetries is returned when the service stays unavailable for every attempt.
	ErrMaxRetries = errors.New("model failed to respond after maximum retries")
	// ErrUnauthorized means the API key was rejected.
	ErrUnauthorized = errors.New("unauthorized: check your Anthropic API key")
	// ErrForbidden means the key has no access to the requested model.
	ErrForbidden = errors.New("forbidden: your API key might not have access to this model")
	// ErrModelNotFound means the configured model name is unknown.
	ErrModelNotFound = errors.New("model not found: check the model name")
	// ErrEmptyInput is returned before any request when the prompt is blank.
	ErrEmptyInput = errors.New("prompt is empty")
	// ErrEmptyResponse is returned when the model answered without text.
	ErrEmptyResponse = errors.New("model returned no text")
)

// Options configures a Generator. Zero values fall back to defaults.
type Options struct {
	APIKey            string
	Model             string
	BaseURL           string
	MaxTokens         int
	Temperature       float64
	MaxRetries        int
	InitialRetryDelay time.Duration
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// Generator produces ideas from prompts.
type Generator struct {
	client       anthropic.Client
	model        string
	maxTokens    int
	temperature  float64
	maxRetries   int
	initialDelay time.Duration
	logger       *log.Logger

	// wait blocks for d or until ctx is done.
	wait func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a generator. The SDK's own retries are disabled so
// that the backoff loop below is the only retry policy.
func NewGenerator(opts Options) (*Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("AI API key not configured (set ai.api_key or ANTHROPIC_API_KEY)")
	}

	g := &Generator{
		model:        opts.Model,
		maxTokens:    opts.MaxTokens,
		temperature:  opts.Temperature,
		maxRetries:   opts.MaxRetries,
		initialDelay: opts.InitialRetryDelay,
		logger:       opts.Logger,
		wait:         sleepContext,
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.maxRetries <= 0 {
		g.maxRetries = defaultMaxRetries
	}
	if g.initialDelay <= 0 {
		g.initialDelay = defaultInitialRetryDelay
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard, "[ideas] ", log.LstdFlags)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	g.client = anthropic.NewClient(reqOpts...)

	return g, nil
}

// Generate returns the model's answer to input.
func (g *Generator) Generate(ctx context.Context, input PromptInput) (string, error) {
	if strings.TrimSpace(input.UserInput) == "" {
		return "", ErrEmptyInput
	}
	if err := input.Language.validate(); err != nil {
		return "", err
	}

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		text, err := g.send(ctx, input)
		if err == nil {
			return text, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !isUnavailable(err) {
			return "", classify(err)
		}

		if attempt == g.maxRetries-1 {
			break
		}
		delay := backoffDelay(g.initialDelay, attempt)
		g.logger.Printf("Model unavailable, attempt %d of %d (waiting %s)", attempt+1, g.maxRetries, delay)
		if err := g.wait(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", ErrMaxRetries
}

// backoffDelay returns initial doubled attempt times, capped at maxRetryDelay.
func backoffDelay(initial time.Duration, attempt int) time.Duration {
	delay := initial
	for i := 0; i < attempt && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

func (g *Generator) send(ctx context.Context, input PromptInput) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: input.Language.systemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input.userMessage())),
		},
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(g.temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// isUnavailable reports whether err means "try again later".
func isUnavailable(err error) bool {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case statusOverloaded, http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return true
	}
	return false
}

// classify maps non-retryable API failures to friendly errors.
func classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, ErrEmptyResponse) {
			return err
		}
		return fmt.Errorf("AI request failed: %w", err)
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrModelNotFound
	}
	return fmt.Errorf("AI API error (status %d): %w", apiErr.StatusCode, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
