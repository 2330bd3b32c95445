package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"docqa/internal/ratelimit"
)

// MinAnswerLength is the exclusive lower bound on a usable generated answer, in characters.
const MinAnswerLength = 20

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 15 * time.Second

var (
	// ErrRateLimited is reported when the provider rejects a call with HTTP 429.
	ErrRateLimited = errors.New("provider rate limit reached")
	// ErrEmptyResponse is reported when a successful response carries no text.
	ErrEmptyResponse = errors.New("response contains no text")
)

// StatusError is a non-200 response from a backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap maps 429 responses to ErrRateLimited.
func (e *StatusError) Unwrap() error {
	if e.Code == 429 {
		return ErrRateLimited
	}
	return nil
}

// Params are the sampling settings sent with every request.
type Params struct {
	Temperature     float32
	MaxOutputTokens int
	TopP            float32
	TopK            int
}

// DefaultParams favors short, literal answers.
func DefaultParams() Params {
	return Params{Temperature: 0.1, MaxOutputTokens: 800, TopP: 0.8, TopK: 10}
}

// Backend sends a single prompt to a text-generation provider.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Client makes one rate-limited generation attempt per question and never retries.
type Client struct {
	backend Backend
	limiter *ratelimit.Limiter
	timeout time.Duration
	params  Params
	logger  zerolog.Logger
}

// NewClient wraps a backend. A nil backend disables generation.
func NewClient(backend Backend, limiter *ratelimit.Limiter, timeout time.Duration, logger zerolog.Logger) *Client {
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultInterval, nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{backend: backend, limiter: limiter, timeout: timeout, params: DefaultParams(), logger: logger}
}

// Name returns the backend name, or "none" when generation is disabled.
func (c *Client) Name() string {
	if c.backend == nil {
		return "none"
	}
	return c.backend.Name()
}

// Generate asks the backend to answer query from contextText.
// ok is false when the caller should fall back to an extracted answer.
func (c *Client) Generate(ctx context.Context, query, contextText string) (string, bool) {
	if c.backend == nil {
		return "", false
	}
	prompt := BuildPrompt(query, contextText)

	var text string
	err := c.limiter.Do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		var err error
		text, err = c.backend.Complete(callCtx, prompt, c.params)
		return err
	})
	log := c.logger.With().Str("backend", c.backend.Name()).Logger()
	switch {
	case errors.Is(err, ErrRateLimited):
		log.Warn().Msg("provider rate limit reached, using fallback response")
		return "", false
	case err != nil:
		log.Warn().Err(err).Msg("generation failed, using fallback response")
		return "", false
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= MinAnswerLength {
		log.Warn().Int("length", utf8.RuneCountInString(text)).Msg("generated answer too short, using fallback response")
		return "", false
	}
	return text, true
}
