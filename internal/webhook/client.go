package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Sentinel errors returned by the client.
var (
	ErrInvalidURL      = errors.New("invalid webhook URL")
	ErrEmptyResponse   = errors.New("empty response from webhook")
	ErrUnknownResponse = errors.New("unrecognized webhook response format")
)

// DefaultTimeout bounds a single webhook request.
const DefaultTimeout = 30 * time.Second

const (
	maxAttempts = 3
	maxBackoff  = 5 * time.Second
)

// Message is one chat turn in the outgoing payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Attachment is a file sent alongside the last message.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// Config holds webhook client settings.
type Config struct {
	// URL is the webhook endpoint. Required, must be http or https.
	URL string
	// APIKey, when set, is sent as a bearer token.
	APIKey string
	// Model is the model name forwarded in the payload.
	Model string
	// MaxTokens caps the response length.
	MaxTokens int
	// Temperature is the sampling temperature.
	Temperature float64
	// Timeout bounds a single attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. nil means a default client.
	HTTPClient *http.Client
	// Limiter throttles outgoing requests. nil means no limit.
	Limiter *rate.Limiter
	// Logger for request logging. nil means slog.Default().
	Logger *slog.Logger
}

// Validate checks that the config can produce a working client.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Client sends chat turns to the webhook. Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a webhook client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: cfg.Limiter,
		logger:  logger,
	}, nil
}

// Send delivers the conversation and returns the assistant's reply.
// Attachments ride along the last message as multipart form data.
// Network errors and 5xx responses retry up to three attempts with
// exponential backoff capped at five seconds; 4xx responses fail
// immediately.
func (c *Client) Send(ctx context.Context, chatID string, messages []Message, files []Attachment) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, contentType, err := c.encodeBody(chatID, messages, files)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
			c.logger.Debug("retrying webhook request", "attempt", attempt+1)
		}

		reply, retryable, err := c.attempt(ctx, body, contentType)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("webhook failed after %d attempts: %w", maxAttempts, lastErr)
}

// attempt runs one request. The second return reports whether the
// failure is worth retrying.
func (c *Client) attempt(ctx context.Context, body []byte, contentType string) (string, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Give up right away when the caller's context is done.
		if ctx.Err() != nil {
			return "", false, fmt.Errorf("webhook request canceled: %w", ctx.Err())
		}
		return "", true, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", true, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, summarize(raw))
	}
	if resp.StatusCode >= 400 {
		return "", false, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, summarize(raw))
	}

	reply, err := parseResponse(raw)
	if err != nil {
		return "", false, err
	}
	return reply, false, nil
}

func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<(attempt-1)) * time.Second
	if delay > maxBackoff {
		delay = maxBackoff
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func summarize(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
