package completion

import (
	"context"
	"sync"
	"time"

	"github.com/tasknest/tasknest-cli/internal/models"
)

// GroupSource lists the groups visible to the current user.
type GroupSource interface {
	Groups(ctx context.Context) ([]models.Group, error)
}

// Refresher updates the completion cache from the API.
type Refresher struct {
	store      *Store
	source     GroupSource
	personalID int64

	mu         sync.Mutex
	refreshing bool
	done       chan struct{}
}

// NewRefresher creates a refresher. personalID marks the user's personal
// group so completion can rank it first.
func NewRefresher(store *Store, source GroupSource, personalID int64) *Refresher {
	return &Refresher{store: store, source: source, personalID: personalID}
}

// RefreshIfStale starts a background refresh when the cache is stale and
// none is running. It returns immediately.
func (r *Refresher) RefreshIfStale(maxAge time.Duration) {
	if !r.store.IsStale(maxAge) {
		return
	}

	r.mu.Lock()
	if r.refreshing {
		r.mu.Unlock()
		return
	}
	r.refreshing = true
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.refreshing = false
			r.mu.Unlock()
			close(done)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Best effort: completions fall back to the old cache.
		_ = r.RefreshGroups(ctx)
	}()
}

// Wait blocks until the running background refresh, if any, finishes.
func (r *Refresher) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// RefreshGroups fetches groups and stores them. On failure the existing
// cache is kept.
func (r *Refresher) RefreshGroups(ctx context.Context) error {
	groups, err := r.source.Groups(ctx)
	if err != nil {
		return err
	}
	return r.Store(groups)
}

// Store writes an already-fetched group list to the cache.
func (r *Refresher) Store(groups []models.Group) error {
	return r.store.UpdateGroups(convertGroups(groups, r.personalID))
}

// IsRefreshing reports whether a background refresh is in progress.
func (r *Refresher) IsRefreshing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshing
}

func convertGroups(groups []models.Group, personalID int64) []CachedGroup {
	out := make([]CachedGroup, len(groups))
	for i, g := range groups {
		out[i] = CachedGroup{ID: g.ID, Name: g.Name, Personal: g.ID == personalID}
	}
	return out
}
