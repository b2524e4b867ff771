// Package observability provides logging, metrics collection and tracing
// for CLI and TUI sessions.
package observability

import (
	"sync"
	"time"

	"github.com/tasknest/tasknest-cli/internal/api"
)

// RequestMetrics holds timing and status information for a single HTTP request.
type RequestMetrics struct {
	Method     string
	URL        string
	Attempt    int
	StatusCode int
	Duration   time.Duration
	Retryable  bool
	Error      error
}

// ActionMetrics holds timing information for one dispatched TUI action.
type ActionMetrics struct {
	Action   string
	Duration time.Duration
	Error    error
}

// SessionMetrics aggregates metrics for an entire session.
type SessionMetrics struct {
	StartTime     time.Time
	EndTime       time.Time
	TotalRequests int
	FailedReqs    int
	TotalActions  int
	FailedActions int
	TotalRetries  int
	TotalLatency  time.Duration
}

// SessionCollector accumulates metrics across a session.
// It is safe for concurrent use and uses counters instead of unbounded slices.
type SessionCollector struct {
	mu sync.Mutex

	startTime     time.Time
	totalRequests int
	failedReqs    int
	totalActions  int
	failedActions int
	totalRetries  int
	totalLatency  time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{
		startTime: time.Now(),
	}
}

// RecordRequest records metrics for an HTTP request.
func (c *SessionCollector) RecordRequest(m RequestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += m.Duration
	if m.Error != nil {
		c.failedReqs++
	}
}

func (c *SessionCollector) recordAPI(info api.RequestInfo, result api.RequestResult) {
	c.RecordRequest(RequestMetrics{
		Method:     info.Method,
		URL:        info.URL,
		Attempt:    info.Attempt,
		StatusCode: result.StatusCode,
		Duration:   result.Duration,
		Retryable:  result.Retryable,
		Error:      result.Error,
	})
}

// RecordAction records metrics for a dispatched action.
func (c *SessionCollector) RecordAction(m ActionMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalActions++
	if m.Error != nil {
		c.failedActions++
	}
}

// RecordRetry records a retry event.
func (c *SessionCollector) RecordRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:     c.startTime,
		EndTime:       time.Now(),
		TotalRequests: c.totalRequests,
		FailedReqs:    c.failedReqs,
		TotalActions:  c.totalActions,
		FailedActions: c.failedActions,
		TotalRetries:  c.totalRetries,
		TotalLatency:  c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.failedReqs = 0
	c.totalActions = 0
	c.failedActions = 0
	c.totalRetries = 0
	c.totalLatency = 0
}
