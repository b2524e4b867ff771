package resilience

import "time"

func refill(ls *LimiterState, cfg Config, now time.Time) {
	if ls.RefilledAt.IsZero() {
		ls.Tokens = cfg.MaxTokens
		ls.RefilledAt = now
		return
	}
	elapsed := now.Sub(ls.RefilledAt)
	if elapsed <= 0 {
		return
	}
	ls.RefilledAt = now
	ls.Tokens = min(cfg.MaxTokens, ls.Tokens+elapsed.Seconds()*cfg.RefillRate)
}

// takeToken consumes one token. It returns the time left in a Retry-After
// window, or -1 when the bucket is merely empty.
func takeToken(ls *LimiterState, cfg Config, now time.Time) (ok bool, wait time.Duration) {
	if now.Before(ls.BlockedUntil) {
		return false, ls.BlockedUntil.Sub(now)
	}
	refill(ls, cfg, now)
	if ls.Tokens < 1 {
		return false, -1
	}
	ls.Tokens--
	return true, 0
}

// block extends the Retry-After window; an earlier deadline never
// shortens it.
func block(ls *LimiterState, until time.Time) {
	if until.After(ls.BlockedUntil) {
		ls.BlockedUntil = until
	}
}
