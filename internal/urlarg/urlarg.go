// Package urlarg parses launch links into their one-shot parameters.
// Users paste these from the chat bot ("open in terminal") or from the
// web app address bar.
package urlarg

import (
	"net/url"
	"strings"
)

// Scheme is the custom scheme of terminal launch links.
const Scheme = "tasknest"

// Parsed represents the parameters carried by a launch link.
type Parsed struct {
	Token  string // one-time access token (?token=)
	Invite string // group invite token (?invite=)
	Screen string // URL fragment without '#'
}

// Empty reports whether the link carried nothing usable.
func (p *Parsed) Empty() bool {
	return p.Token == "" && p.Invite == "" && p.Screen == ""
}

// IsURL reports whether input looks like a launch link.
func IsURL(input string) bool {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return false
	}
	switch u.Scheme {
	case Scheme:
		return true
	case "http", "https":
		return u.Host != ""
	}
	return false
}

// Parse extracts launch parameters from a link. Supported forms:
//
//	tasknest://open?token=T&invite=I#tasks
//	https://app.example.com/?token=T#finance
//
// Returns nil if input is not a link.
func Parse(input string) *Parsed {
	input = strings.TrimSpace(input)
	if !IsURL(input) {
		return nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return nil
	}
	q := u.Query()
	return &Parsed{
		Token:  strings.TrimSpace(q.Get("token")),
		Invite: strings.TrimSpace(q.Get("invite")),
		Screen: strings.TrimPrefix(u.Fragment, "/"),
	}
}

// Strip removes the one-shot token and invite parameters from a link,
// leaving everything else intact. Non-links are returned unchanged.
func Strip(input string) string {
	if !IsURL(input) {
		return input
	}
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return input
	}
	q := u.Query()
	q.Del("token")
	q.Del("invite")
	u.RawQuery = q.Encode()
	return u.String()
}
