package resilience

import "time"

// StateVersion is the current state schema version. Files with another
// version are ignored.
const StateVersion = 2

// Circuit states.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half_open"
)

// State is the persisted gate state.
type State struct {
	Version   int          `json:"version"`
	Circuit   CircuitState `json:"circuit"`
	Limiter   LimiterState `json:"limiter"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CircuitState tracks consecutive failures against the backend.
type CircuitState struct {
	State     string    `json:"state"`
	Failures  int       `json:"failures"`
	Successes int       `json:"successes"`
	OpenedAt  time.Time `json:"opened_at,omitzero"`

	// TrialAt is when the single half-open trial request was let through. A trial
	// older than the open timeout is assumed lost with its process.
	TrialAt time.Time `json:"trial_at,omitzero"`
}

// LimiterState is a token bucket plus the server's Retry-After window.
type LimiterState struct {
	Tokens       float64   `json:"tokens"`
	RefilledAt   time.Time `json:"refilled_at,omitzero"`
	BlockedUntil time.Time `json:"blocked_until,omitzero"`
}

// NewState returns a closed circuit and an uninitialized bucket; the first
// refill fills it.
func NewState() *State {
	return &State{
		Version: StateVersion,
		Circuit: CircuitState{State: CircuitClosed},
	}
}
