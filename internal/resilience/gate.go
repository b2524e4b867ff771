package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// Verify Gate implements api.Gate at compile time.
var _ api.Gate = (*Gate)(nil)

// Gate admits API requests through the shared rate limiter and circuit
// breaker. Every error reading or writing state fails open.
type Gate struct {
	store *Store
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewGate creates a gate over store. Zero config fields take defaults.
func NewGate(store *Store, cfg Config, log zerolog.Logger) *Gate {
	return &Gate{
		store: store,
		cfg:   cfg.withDefaults(),
		log:   log,
		now:   time.Now,
	}
}

// Allow implements api.Gate. The limiter is consulted before the circuit
// so a rejected request never holds the half-open trial request.
func (g *Gate) Allow(_ context.Context, info api.RequestInfo) error {
	var rejected error
	err := g.store.Update(func(s *State) error {
		now := g.now()
		if ok, wait := takeToken(&s.Limiter, g.cfg, now); !ok {
			rejected = rateLimited(wait)
			return nil
		}
		if !allowCircuit(&s.Circuit, g.cfg, now) {
			retryIn := g.cfg.OpenTimeout - now.Sub(s.Circuit.OpenedAt)
			if s.Circuit.State == CircuitHalfOpen {
				retryIn = g.cfg.OpenTimeout - now.Sub(s.Circuit.TrialAt)
			}
			rejected = circuitOpen(retryIn)
			return nil
		}
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		g.log.Debug().Err(err).Msg("resilience state unavailable, allowing request")
		return nil
	}
	if rejected != nil {
		g.log.Debug().Str("method", info.Method).Str("url", info.URL).Err(rejected).Msg("request rejected")
	}
	return rejected
}

// Done implements api.Gate.
func (g *Gate) Done(_ context.Context, info api.RequestInfo, result api.RequestResult) {
	err := g.store.Update(func(s *State) error {
		now := g.now()
		before := s.Circuit.State

		switch {
		case errors.Is(result.Error, context.Canceled), errors.Is(result.Error, context.DeadlineExceeded):
			// The caller gave up; the trial slot is free again.
			s.Circuit.TrialAt = time.Time{}
		case tripsCircuit(result.Error):
			recordFailure(&s.Circuit, g.cfg, now)
		default:
			// Any answer below 500 shows the server is up.
			recordSuccess(&s.Circuit, g.cfg)
		}

		switch {
		case result.RetryAfter > 0:
			block(&s.Limiter, now.Add(result.RetryAfter))
		case result.StatusCode == 429:
			block(&s.Limiter, now.Add(g.cfg.DefaultRetryAfter))
		}

		if after := s.Circuit.State; after != before {
			g.log.Info().Str("from", before).Str("to", after).Str("url", info.URL).Msg("circuit state changed")
		}
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		g.log.Debug().Err(err).Msg("resilience state not recorded")
	}
}

// Status is a snapshot for diagnostics.
type Status struct {
	Circuit      string        `json:"circuit"`
	Failures     int           `json:"failures"`
	Tokens       float64       `json:"tokens"`
	BlockedFor   time.Duration `json:"blocked_for"`
	CircuitRetry time.Duration `json:"circuit_retry,omitempty"`
}

// Status reports the current state without consuming a token.
func (g *Gate) Status() (Status, error) {
	s, err := g.store.Load()
	if err != nil {
		return Status{}, err
	}
	now := g.now()
	refill(&s.Limiter, g.cfg, now)

	st := Status{
		Circuit:  circuitState(s.Circuit, g.cfg, now),
		Failures: s.Circuit.Failures,
		Tokens:   s.Limiter.Tokens,
	}
	if now.Before(s.Limiter.BlockedUntil) {
		st.BlockedFor = s.Limiter.BlockedUntil.Sub(now)
	}
	if st.Circuit == CircuitOpen {
		st.CircuitRetry = g.cfg.OpenTimeout - now.Sub(s.Circuit.OpenedAt)
	}
	return st, nil
}

// Reset closes the circuit and refills the bucket.
func (g *Gate) Reset() error {
	return g.store.Clear()
}

// tripsCircuit reports whether err means the backend is unhealthy:
// transport failures and 5xx answers. Client errors do not count.
func tripsCircuit(err error) bool {
	if err == nil {
		return false
	}
	var e *output.Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Code {
	case output.CodeNetwork:
		return true
	case output.CodeAPI:
		return e.HTTPStatus >= 500
	}
	return false
}

func rateLimited(wait time.Duration) error {
	if wait < 0 {
		return &output.Error{
			Code:    output.CodeRateLimit,
			Message: "Too many requests",
			Hint:    "Slow down and try again in a moment",
		}
	}
	return &output.Error{
		Code:       output.CodeRateLimit,
		Message:    "Rate limited by the server",
		Hint:       fmt.Sprintf("Try again in %d seconds", seconds(wait)),
		HTTPStatus: 429,
	}
}

func circuitOpen(retryIn time.Duration) error {
	return &output.Error{
		Code:    output.CodeNetwork,
		Message: "API unavailable after repeated failures",
		Hint:    fmt.Sprintf("Requests resume in %d seconds", seconds(retryIn)),
	}
}

func seconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}
