package api

import (
	"context"
	"time"
)

// RequestInfo describes an outgoing request.
type RequestInfo struct {
	Method    string
	URL       string
	Attempt   int
	RequestID string
}

// RequestResult describes how a request ended.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Retryable  bool
	RetryAfter time.Duration // from a 429 or 503 Retry-After header
	Error      error
}

// Hooks observes the client's requests. Implementations must be safe for
// concurrent use.
type Hooks interface {
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
	OnRetry(ctx context.Context, info RequestInfo, attempt int, err error)
}

// NoopHooks ignores every event.
type NoopHooks struct{}

func (NoopHooks) OnRequestStart(ctx context.Context, _ RequestInfo) context.Context { return ctx }
func (NoopHooks) OnRequestEnd(context.Context, RequestInfo, RequestResult)           {}
func (NoopHooks) OnRetry(context.Context, RequestInfo, int, error)                   {}

// WithHooks installs request observers.
func WithHooks(h Hooks) Option {
	return func(c *Client) {
		if h != nil {
			c.hooks = h
		}
	}
}

// Gate admits or rejects requests before they are sent and learns from
// their outcome. A rejection is returned to the caller unchanged and is
// never retried.
type Gate interface {
	Allow(ctx context.Context, info RequestInfo) error
	Done(ctx context.Context, info RequestInfo, result RequestResult)
}

type openGate struct{}

func (openGate) Allow(context.Context, RequestInfo) error         { return nil }
func (openGate) Done(context.Context, RequestInfo, RequestResult) {}

// WithGate installs a request gate.
func WithGate(g Gate) Option {
	return func(c *Client) {
		if g != nil {
			c.gate = g
		}
	}
}
