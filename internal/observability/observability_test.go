package observability

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/api"
)

func TestSessionCollector_Counts(t *testing.T) {
	c := NewSessionCollector()

	c.RecordRequest(RequestMetrics{Method: "GET", URL: "/api/groups", StatusCode: 200, Duration: 50 * time.Millisecond})
	c.RecordRequest(RequestMetrics{Method: "GET", URL: "/api/me", StatusCode: 401, Duration: 10 * time.Millisecond, Error: errors.New("unauthorized")})
	c.RecordAction(ActionMetrics{Action: "nav.switch"})
	c.RecordAction(ActionMetrics{Action: "add.save", Error: errors.New("title required")})
	c.RecordRetry()

	s := c.Summary()
	if s.TotalRequests != 2 || s.FailedReqs != 1 {
		t.Errorf("requests = %d/%d failed, want 2/1", s.TotalRequests, s.FailedReqs)
	}
	if s.TotalActions != 2 || s.FailedActions != 1 {
		t.Errorf("actions = %d/%d failed, want 2/1", s.TotalActions, s.FailedActions)
	}
	if s.TotalRetries != 1 {
		t.Errorf("retries = %d, want 1", s.TotalRetries)
	}
	if s.TotalLatency != 60*time.Millisecond {
		t.Errorf("latency = %v, want 60ms", s.TotalLatency)
	}

	c.Reset()
	if got := c.Summary().TotalRequests; got != 0 {
		t.Errorf("after reset requests = %d", got)
	}
}

func TestSessionCollector_Concurrent(t *testing.T) {
	c := NewSessionCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest(RequestMetrics{})
			c.RecordAction(ActionMetrics{})
		}()
	}
	wg.Wait()
	if s := c.Summary(); s.TotalRequests != 50 || s.TotalActions != 50 {
		t.Errorf("got %d requests, %d actions", s.TotalRequests, s.TotalActions)
	}
}

func TestCLIHooks_Levels(t *testing.T) {
	info := api.RequestInfo{Method: "GET", URL: "http://x/api/groups", Attempt: 1}
	ok := api.RequestResult{StatusCode: 200, Duration: 5 * time.Millisecond}
	failed := api.RequestResult{StatusCode: 500, Error: errors.New("HTTP 500")}

	tests := []struct {
		level     int
		wantLines int
	}{
		{0, 0},
		{1, 2}, // failed request + retry
		{2, 5}, // two starts, two ends, one retry
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		collector := NewSessionCollector()
		h := NewCLIHooks(tt.level, collector, NewTraceWriterTo(&buf))

		ctx := h.OnRequestStart(context.Background(), info)
		h.OnRequestEnd(ctx, info, ok)
		h.OnRequestStart(ctx, info)
		h.OnRequestEnd(ctx, info, failed)
		h.OnRetry(ctx, info, 2, failed.Error)

		lines := strings.Count(buf.String(), "\n")
		if lines != tt.wantLines {
			t.Errorf("level %d: %d trace lines, want %d:\n%s", tt.level, lines, tt.wantLines, buf.String())
		}
		if s := collector.Summary(); s.TotalRequests != 2 || s.TotalRetries != 1 {
			t.Errorf("level %d: collector saw %d requests, %d retries", tt.level, s.TotalRequests, s.TotalRetries)
		}
	}
}

func TestTraceWriter_Action(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriterTo(&buf)

	w.WriteAction(ActionMetrics{Action: "groups.create", Duration: 12 * time.Millisecond})
	w.WriteAction(ActionMetrics{Action: "add.save", Error: errors.New("amount must be positive")})

	out := buf.String()
	if !strings.Contains(out, "Completed groups.create (12ms)") {
		t.Errorf("missing completion line: %s", out)
	}
	if !strings.Contains(out, "Failed add.save: amount must be positive") {
		t.Errorf("missing failure line: %s", out)
	}
	if !strings.HasPrefix(out, "[") {
		t.Errorf("expected timestamp prefix, got: %s", out)
	}
}

func TestScrubURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x/api/me", "http://x/api/me"},
		{"tasknest://open?token=abc&invite=def", "tasknest://open?invite=%5BREDACTED%5D&token=%5BREDACTED%5D"},
		{"http://x/?page=2", "http://x/?page=2"},
		{"http://[::1", "[unparseable URL]"},
	}
	for _, tt := range tests {
		if got := ScrubURL(tt.in); got != tt.want {
			t.Errorf("ScrubURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tasknest.log")
	log, closer, err := NewLogger(path, "warn")
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != zerolog.DebugLevel {
		t.Error("DEBUG should parse")
	}
	if ParseLevel("") != zerolog.InfoLevel || ParseLevel("loud") != zerolog.InfoLevel {
		t.Error("unknown levels should default to info")
	}
	if VerbosityLevel(1, "warn") != "debug" || VerbosityLevel(0, "warn") != "warn" {
		t.Error("verbosity mapping")
	}
}
