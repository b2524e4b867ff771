package resilience

import "time"

// allowCircuit decides whether a request may pass the circuit and records
// a half-open trial request. It mutates cs and must run inside Store.Update.
func allowCircuit(cs *CircuitState, cfg Config, now time.Time) bool {
	switch cs.State {
	case CircuitOpen:
		if now.Sub(cs.OpenedAt) < cfg.OpenTimeout {
			return false
		}
		cs.State = CircuitHalfOpen
		cs.Successes = 0
		cs.TrialAt = now
		return true

	case CircuitHalfOpen:
		// One trial request at a time across processes.
		if !cs.TrialAt.IsZero() && now.Sub(cs.TrialAt) < cfg.OpenTimeout {
			return false
		}
		cs.TrialAt = now
		return true
	}
	return true
}

func recordSuccess(cs *CircuitState, cfg Config) {
	switch cs.State {
	case CircuitHalfOpen:
		cs.Successes++
		cs.TrialAt = time.Time{}
		if cs.Successes >= cfg.SuccessThreshold {
			*cs = CircuitState{State: CircuitClosed}
		}
	default:
		cs.Failures = 0
	}
}

func recordFailure(cs *CircuitState, cfg Config, now time.Time) {
	switch cs.State {
	case CircuitHalfOpen:
		*cs = CircuitState{State: CircuitOpen, OpenedAt: now}
	case CircuitOpen:
		// A request admitted before the circuit opened; nothing to add.
	default:
		cs.Failures++
		if cs.Failures >= cfg.FailureThreshold {
			*cs = CircuitState{State: CircuitOpen, Failures: cs.Failures, OpenedAt: now}
		}
	}
}

// circuitState reports the state as a caller would see it now: an open
// circuit past its timeout reads as half-open.
func circuitState(cs CircuitState, cfg Config, now time.Time) string {
	switch cs.State {
	case CircuitOpen:
		if now.Sub(cs.OpenedAt) >= cfg.OpenTimeout {
			return CircuitHalfOpen
		}
		return CircuitOpen
	case "":
		return CircuitClosed
	}
	return cs.State
}
