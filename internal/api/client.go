// Package api provides the HTTP gateway to the tasknest backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/version"
)

const (
	defaultMaxRetries = 3
	baseDelay         = 500 * time.Millisecond
	maxJitter         = 100 * time.Millisecond
)

// TokenSource supplies the current access token. An empty token means the
// request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Client is an HTTP client for the tasknest REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	log        zerolog.Logger
	hooks      Hooks
	gate       Gate
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxRetries sets how many times idempotent requests are attempted.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		log:        zerolog.Nop(),
		hooks:      NoopHooks{},
		gate:       openGate{},
		maxRetries: defaultMaxRetries,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs method on path, sending body as JSON when non-nil, and
// decodes the response envelope into out when non-nil.
//
// The request succeeds only if the status is 2xx and the body does not carry
// "ok": false. Any failure is returned as *output.Error with the server's
// "error" message or "HTTP <status>".
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// Do performs the request and returns the raw JSON body. A body that is not
// valid JSON is replaced by an empty object.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		payload = b
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := c.singleRequest(ctx, method, path, payload, attempt)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var apiErr *output.Error
		if !errors.As(err, &apiErr) || !apiErr.Retryable || attempt == attempts {
			return nil, err
		}

		c.hooks.OnRetry(ctx, RequestInfo{Method: method, URL: c.buildURL(path), Attempt: attempt}, attempt+1, err)
		delay := c.backoffDelay(attempt, apiErr)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("retrying request")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) singleRequest(ctx context.Context, method, path string, payload []byte, attempt int) (json.RawMessage, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bodyReader)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	info := RequestInfo{Method: method, URL: req.URL.String(), Attempt: attempt, RequestID: requestID}
	if err := c.gate.Allow(ctx, info); err != nil {
		c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).Err(err).Msg("request gated")
		return nil, err
	}
	ctx = c.hooks.OnRequestStart(ctx, info)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.finish(ctx, info, RequestResult{Duration: time.Since(start), Error: ctxErr})
			return nil, ctxErr
		}
		c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).Err(err).Msg("request failed")
		netErr := output.ErrNetwork(err)
		c.finish(ctx, info, RequestResult{Duration: time.Since(start), Retryable: true, Error: netErr})
		return nil, netErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := output.ErrNetwork(err)
		c.finish(ctx, info, RequestResult{StatusCode: resp.StatusCode, Duration: time.Since(start), Error: netErr})
		return nil, netErr
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("attempt", attempt).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	raw, err := normalize(resp.StatusCode, resp.Header, data)
	result := RequestResult{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
		RetryAfter: retryAfter(resp.StatusCode, resp.Header.Get("Retry-After")),
		Error:      err,
	}
	var apiErr *output.Error
	if errors.As(err, &apiErr) {
		result.Retryable = apiErr.Retryable
	}
	c.finish(ctx, info, result)
	return raw, err
}

func (c *Client) finish(ctx context.Context, info RequestInfo, result RequestResult) {
	c.hooks.OnRequestEnd(ctx, info, result)
	c.gate.Done(ctx, info, result)
}

// retryAfter reads a Retry-After header given in seconds. Only 429 and 503
// responses carry one.
func retryAfter(status int, header string) time.Duration {
	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// envelopeStatus is the common part of every response body.
type envelopeStatus struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

// normalize applies the success rule to a raw response.
func normalize(status int, header http.Header, data []byte) (json.RawMessage, error) {
	var env envelopeStatus
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &env) != nil {
		data = []byte("{}")
		env = envelopeStatus{}
	}

	success := status >= 200 && status < 300
	if success && (env.OK == nil || *env.OK) {
		return data, nil
	}

	msg := env.Error
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	if success {
		// 2xx with an explicit ok:false is an application-level rejection.
		return nil, output.ErrAPI(status, msg)
	}

	e := output.FromStatus(status, msg)
	if status == http.StatusTooManyRequests {
		e.Hint = retryHint(header.Get("Retry-After"))
	}
	return nil, e
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) backoffDelay(attempt int, apiErr *output.Error) time.Duration {
	if apiErr.HTTPStatus == http.StatusTooManyRequests {
		if secs := parseRetryAfterHint(apiErr.Hint); secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	delay := baseDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(maxJitter))) //nolint:gosec // G404: jitter doesn't need crypto rand
	return delay + jitter
}

func retryHint(header string) string {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return fmt.Sprintf("Try again in %d seconds", secs)
	}
	return "Try again later"
}

func parseRetryAfterHint(hint string) int {
	var secs int
	if _, err := fmt.Sscanf(hint, "Try again in %d seconds", &secs); err != nil {
		return 0
	}
	return secs
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
