package resilience

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// testGate returns a gate whose clock the test advances by hand.
func testGate(t *testing.T, cfg Config) (*Gate, *time.Time) {
	t.Helper()
	clock := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	g := NewGate(NewStore(t.TempDir()), cfg, zerolog.Nop())
	g.now = func() time.Time { return clock }
	return g, &clock
}

var (
	ctx      = context.Background()
	info     = api.RequestInfo{Method: http.MethodGet, URL: "http://example.test/api/me"}
	ok       = api.RequestResult{StatusCode: 200}
	down     = api.RequestResult{Error: output.ErrNetwork(errors.New("connection refused"))}
	notFound = api.RequestResult{StatusCode: 404, Error: output.FromStatus(404, "not found")}
)

func TestGate_OpensAfterFailures(t *testing.T) {
	g, _ := testGate(t, Config{FailureThreshold: 3})

	for range 3 {
		require.NoError(t, g.Allow(ctx, info))
		g.Done(ctx, info, down)
	}

	err := g.Allow(ctx, info)
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeNetwork))
	assert.Contains(t, output.AsError(err).Hint, "30 seconds")
	assert.False(t, output.AsError(err).Retryable)

	st, err := g.Status()
	require.NoError(t, err)
	assert.Equal(t, CircuitOpen, st.Circuit)
}

func TestGate_ClientErrorsDoNotTrip(t *testing.T) {
	g, _ := testGate(t, Config{FailureThreshold: 2})

	for range 5 {
		require.NoError(t, g.Allow(ctx, info))
		g.Done(ctx, info, notFound)
	}
	assert.NoError(t, g.Allow(ctx, info))
}

func TestGate_SuccessResetsFailures(t *testing.T) {
	g, _ := testGate(t, Config{FailureThreshold: 2})

	g.Done(ctx, info, down)
	g.Done(ctx, info, ok)
	g.Done(ctx, info, down)

	st, err := g.Status()
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, st.Circuit)
	assert.Equal(t, 1, st.Failures)
}

func TestGate_HalfOpenTrial(t *testing.T) {
	g, clock := testGate(t, Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Second})

	g.Done(ctx, info, down)
	require.Error(t, g.Allow(ctx, info))

	*clock = clock.Add(11 * time.Second)
	require.NoError(t, g.Allow(ctx, info), "first request after the timeout is a trial")
	assert.Error(t, g.Allow(ctx, info), "only one trial at a time")

	g.Done(ctx, info, ok)
	require.NoError(t, g.Allow(ctx, info))
	g.Done(ctx, info, ok)

	st, err := g.Status()
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, st.Circuit)
}

func TestGate_FailedTrialReopens(t *testing.T) {
	g, clock := testGate(t, Config{FailureThreshold: 1, OpenTimeout: 10 * time.Second})

	g.Done(ctx, info, down)
	*clock = clock.Add(11 * time.Second)
	require.NoError(t, g.Allow(ctx, info))
	g.Done(ctx, info, down)

	err := g.Allow(ctx, info)
	require.Error(t, err)
	assert.Contains(t, output.AsError(err).Hint, "10 seconds")
}

func TestGate_CanceledTrialFreesSlot(t *testing.T) {
	g, clock := testGate(t, Config{FailureThreshold: 1, OpenTimeout: 10 * time.Second})

	g.Done(ctx, info, down)
	*clock = clock.Add(11 * time.Second)
	require.NoError(t, g.Allow(ctx, info))
	g.Done(ctx, info, api.RequestResult{Error: context.Canceled})

	assert.NoError(t, g.Allow(ctx, info))
}

func TestGate_RetryAfter(t *testing.T) {
	g, clock := testGate(t, Config{})

	g.Done(ctx, info, api.RequestResult{StatusCode: 429, RetryAfter: 5 * time.Second, Error: output.ErrRateLimit(5)})

	err := g.Allow(ctx, info)
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeRateLimit))
	assert.Equal(t, "Try again in 5 seconds", output.AsError(err).Hint)

	*clock = clock.Add(6 * time.Second)
	assert.NoError(t, g.Allow(ctx, info))
}

func TestGate_RetryAfterDefault(t *testing.T) {
	g, _ := testGate(t, Config{DefaultRetryAfter: time.Minute})

	g.Done(ctx, info, api.RequestResult{StatusCode: 429, Error: output.ErrRateLimit(0)})

	st, err := g.Status()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, st.BlockedFor)
}

func TestGate_TokenBucket(t *testing.T) {
	g, clock := testGate(t, Config{MaxTokens: 2, RefillRate: 1})

	require.NoError(t, g.Allow(ctx, info))
	require.NoError(t, g.Allow(ctx, info))
	err := g.Allow(ctx, info)
	require.Error(t, err)
	assert.Equal(t, "Too many requests", output.AsError(err).Message)

	*clock = clock.Add(time.Second)
	assert.NoError(t, g.Allow(ctx, info))
}

func TestGate_SharedAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first := NewGate(NewStore(dir), Config{FailureThreshold: 1}, zerolog.Nop())
	second := NewGate(NewStore(dir), Config{FailureThreshold: 1}, zerolog.Nop())

	first.Done(ctx, info, down)
	assert.Error(t, second.Allow(ctx, info))

	require.NoError(t, second.Reset())
	assert.NoError(t, first.Allow(ctx, info))
}

func TestGate_CorruptStateFailsOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{nope"), 0o600))

	g := NewGate(NewStore(dir), Config{}, zerolog.Nop())
	assert.NoError(t, g.Allow(ctx, info))
}

func TestTripsCircuit(t *testing.T) {
	assert.False(t, tripsCircuit(nil))
	assert.True(t, tripsCircuit(output.ErrNetwork(errors.New("x"))))
	assert.True(t, tripsCircuit(output.ErrAPI(502, "bad gateway")))
	assert.False(t, tripsCircuit(output.ErrAPI(200, "ok false")))
	assert.False(t, tripsCircuit(output.ErrAuth("nope")))
	assert.False(t, tripsCircuit(output.ErrRateLimit(1)))
	assert.True(t, tripsCircuit(errors.New("unknown")))
}

func TestGate_WithClient(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	g, _ := testGate(t, Config{FailureThreshold: 2})
	client := api.NewClient(srv.URL, nil, api.WithGate(g), api.WithMaxRetries(1))

	for range 2 {
		_, err := client.Do(ctx, http.MethodGet, "/api/me", nil)
		require.Error(t, err)
	}
	_, err := client.Do(ctx, http.MethodGet, "/api/me", nil)
	require.Error(t, err)
	assert.Equal(t, "API unavailable after repeated failures", output.AsError(err).Message)
	assert.Equal(t, 2, calls, "an open circuit does not reach the server")
}
