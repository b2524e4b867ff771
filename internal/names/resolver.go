// Package names resolves user-typed group names to group IDs.
// Matching runs in priority order:
// 1. Numeric ID passthrough
// 2. Exact match (case-sensitive)
// 3. Case-insensitive match
// 4. Partial match (contains)
package names

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// GroupSource lists the groups visible to the current user.
type GroupSource interface {
	Groups(ctx context.Context) ([]models.Group, error)
}

// Resolver resolves group names to IDs. The group list is fetched once
// per resolver.
type Resolver struct {
	source GroupSource

	mu     sync.Mutex
	groups []models.Group
	loaded bool
}

// NewResolver creates a resolver over source.
func NewResolver(source GroupSource) *Resolver {
	return &Resolver{source: source}
}

// ResolveGroup resolves a group name or ID. "personal" and "me" resolve
// to the user's personal group (defaultID).
func (r *Resolver) ResolveGroup(ctx context.Context, input string, defaultID int64) (models.Group, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.Group{}, output.ErrUsage("group name required")
	}

	groups, err := r.getGroups(ctx)
	if err != nil {
		return models.Group{}, err
	}

	switch strings.ToLower(input) {
	case "personal", "me", "личная":
		for _, g := range groups {
			if g.ID == defaultID {
				return g, nil
			}
		}
		return models.Group{ID: defaultID}, nil
	}

	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		for _, g := range groups {
			if g.ID == id {
				return g, nil
			}
		}
		// Unknown IDs go through; the API decides.
		return models.Group{ID: id}, nil
	}

	match, matches := resolve(input, groups, func(g models.Group) string { return g.Name })
	if match != nil {
		return *match, nil
	}
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return models.Group{}, output.ErrAmbiguous("group", names)
	}

	if suggestions := suggest(input, groups, func(g models.Group) string { return g.Name }); len(suggestions) > 0 {
		return models.Group{}, output.ErrNotFoundHint("Group", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return models.Group{}, output.ErrNotFound("Group", input)
}

// Groups returns the cached group list, fetching it on first use.
func (r *Resolver) Groups(ctx context.Context) ([]models.Group, error) {
	return r.getGroups(ctx)
}

// ClearCache forgets the fetched group list.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = nil
	r.loaded = false
}

func (r *Resolver) getGroups(ctx context.Context) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.groups, nil
	}
	groups, err := r.source.Groups(ctx)
	if err != nil {
		return nil, err
	}
	r.groups = groups
	r.loaded = true
	return groups, nil
}

// resolve returns the single best match, or the candidates when the input
// is ambiguous.
func resolve[T any](input string, items []T, name func(T) string) (*T, []T) {
	inputLower := strings.ToLower(input)

	for i := range items {
		if name(items[i]) == input {
			return &items[i], nil
		}
	}

	var caseMatches []T
	for i := range items {
		if strings.ToLower(name(items[i])) == inputLower {
			caseMatches = append(caseMatches, items[i])
		}
	}
	if len(caseMatches) == 1 {
		return &caseMatches[0], nil
	}
	if len(caseMatches) > 1 {
		return nil, caseMatches
	}

	var partialMatches []T
	for i := range items {
		if strings.Contains(strings.ToLower(name(items[i])), inputLower) {
			partialMatches = append(partialMatches, items[i])
		}
	}
	if len(partialMatches) == 1 {
		return &partialMatches[0], nil
	}
	return nil, partialMatches
}

// suggest returns up to 3 names sharing a prefix or a word with input.
func suggest[T any](input string, items []T, name func(T) string) []string {
	inputRunes := []rune(strings.ToLower(input))
	var suggestions []string

	for _, item := range items {
		n := name(item)
		nameRunes := []rune(strings.ToLower(n))

		common := 0
		for common < len(inputRunes) && common < len(nameRunes) && inputRunes[common] == nameRunes[common] {
			common++
		}

		if common >= 2 || containsWord(string(nameRunes), string(inputRunes)) {
			suggestions = append(suggestions, n)
			if len(suggestions) >= 3 {
				break
			}
		}
	}
	return suggestions
}

func containsWord(haystack, needle string) bool {
	for _, word := range strings.Fields(needle) {
		if len([]rune(word)) >= 2 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
