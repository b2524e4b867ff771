package workspace

// Location mirrors the active screen as a fragment and keeps a
// browser-like history of visited fragments.
type Location struct {
	history []string
	pos     int
}

// NewLocation starts a history at fragment.
func NewLocation(fragment string) *Location {
	return &Location{history: []string{fragment}}
}

// Fragment returns the current fragment.
func (l *Location) Fragment() string {
	if len(l.history) == 0 {
		return ""
	}
	return l.history[l.pos]
}

// Set records fragment as a new history entry, discarding forward entries.
// Setting the current fragment again is a no-op.
func (l *Location) Set(fragment string) {
	if fragment == l.Fragment() && len(l.history) > 0 {
		return
	}
	l.history = append(l.history[:l.pos+1:l.pos+1], fragment)
	l.pos = len(l.history) - 1
}

// Back moves one entry back and returns the fragment there.
func (l *Location) Back() (string, bool) {
	if l.pos == 0 {
		return "", false
	}
	l.pos--
	return l.history[l.pos], true
}

// Forward moves one entry forward and returns the fragment there.
func (l *Location) Forward() (string, bool) {
	if l.pos >= len(l.history)-1 {
		return "", false
	}
	l.pos++
	return l.history[l.pos], true
}

// Len returns the number of history entries.
func (l *Location) Len() int {
	return len(l.history)
}

// InitialScreen resolves the fragment a session starts on. Unknown or empty
// fragments, and the auth screen itself, fall back to the default screen.
func InitialScreen(fragment string) ScreenID {
	id, ok := ParseScreen(fragment)
	if !ok || id == ScreenAuth {
		return DefaultScreen
	}
	return id
}
