package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ports "github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/ports"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryBackoff = 500 * time.Millisecond
	maxResponseBytes    = 1 << 20
	rateLimitKey        = "fallback"
)

// Config holds the remote service settings.
type Config struct {
	Enabled      bool
	URL          string
	Token        string
	Timeout      time.Duration
	Retries      int // retries on 503 only
	RetryBackoff time.Duration
}

// Client posts inputs to a HuggingFace-style inference endpoint.
type Client struct {
	cfg      Config
	http     *http.Client
	cache    ports.Cache
	cacheTTL int
	limiter  ports.RateLimiter
	logger   zerolog.Logger
}

var _ ports.Generator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache memoizes successful replies for ttlSeconds.
func WithCache(cache ports.Cache, ttlSeconds int) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttlSeconds
	}
}

// WithRateLimiter throttles outgoing requests.
func WithRateLimiter(limiter ports.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates a Client.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger.With().Str("component", "fallback").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the fetched reply, or ok=false on any failure.
func (c *Client) Generate(ctx context.Context, input string) (string, bool) {
	r := c.Fetch(ctx, input)
	return r.Text, r.OK()
}

// Fetch asks the remote service for a reply. It never returns an error
// value or panics; failures are reported through Result.Failure and logged.
func (c *Client) Fetch(ctx context.Context, input string) Result {
	if !c.cfg.Enabled || c.cfg.URL == "" {
		return Result{Failure: FailureDisabled}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, input); ok {
			return Result{Text: string(cached), Cached: true}
		}
	}

	if c.limiter != nil {
		release, err := c.limiter.Acquire(ctx, rateLimitKey)
		if err != nil {
			return c.fail(FailureRateLimited, err)
		}
		defer release()
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body []byte
	backoff := retry.WithMaxRetries(uint64(c.cfg.Retries), retry.NewConstant(c.cfg.RetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		body, err = c.post(ctx, input)
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusServiceUnavailable {
			c.logger.Debug().Msg("Generation model loading, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return c.fail(classify(ctx, err), err)
	}

	text, kind, err := parseGenerated(body)
	if kind != FailureNone {
		return c.fail(kind, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, input, []byte(text), c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache generated reply")
		}
	}
	return Result{Text: text}
}

// StatusError is a non-2xx answer from the remote service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.Code, e.Body)
}

func (c *Client) post(ctx context.Context, input string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"inputs": input})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

func classify(ctx context.Context, err error) FailureKind {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return FailureStatus
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureNetwork
	}
}

// parseGenerated reads generated_text from either a list of generations or
// a single object.
func parseGenerated(body []byte) (string, FailureKind, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", FailureMalformed, fmt.Errorf("invalid generation response: %w", err)
	}

	var obj map[string]any
	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return "", FailureMalformed, fmt.Errorf("generation response is an empty list")
		}
		obj, _ = v[0].(map[string]any)
	case map[string]any:
		obj = v
	}
	if obj == nil {
		return "", FailureMalformed, fmt.Errorf("unexpected generation response shape")
	}

	text, ok := obj["generated_text"].(string)
	if !ok {
		return "", FailureMalformed, fmt.Errorf("generation response has no generated_text")
	}
	if strings.TrimSpace(text) == "" {
		return "", FailureEmpty, fmt.Errorf("generation response is empty")
	}
	return text, FailureNone, nil
}

func (c *Client) fail(kind FailureKind, err error) Result {
	c.logger.Warn().Err(err).Str("failure", kind.String()).Msg("Fallback generation failed")
	return Result{Failure: kind, Err: err}
}
