package workspace

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Continuation runs on the event loop once async work has finished.
type Continuation func(s *Session) (tea.Cmd, error)

// Async runs work off the loop with the session context and posts its
// continuation back as a ContinueMsg stamped with the current epoch. label
// names the work in logs, usually the action ID.
// Errors and panics from work surface through the alert.
func Async(s *Session, label string, work func(ctx context.Context) (Continuation, error)) tea.Cmd {
	ctx := s.Context()
	epoch := s.Epoch()
	return func() tea.Msg {
		then, err := runWork(ctx, label, work)
		return EpochMsg{Epoch: epoch, Inner: ContinueMsg{Label: label, Then: then, Err: err}}
	}
}

func runWork(ctx context.Context, label string, work func(ctx context.Context) (Continuation, error)) (then Continuation, err error) {
	defer func() {
		if p := recover(); p != nil {
			then = nil
			err = fmt.Errorf("%s: panic: %v", label, p)
		}
	}()
	return work(ctx)
}

// Resume runs the continuation of msg on the loop. A failure in either
// half is returned as an alert command.
func (msg ContinueMsg) Resume(s *Session) tea.Cmd {
	log := s.Log()
	if msg.Err != nil {
		if s.Context().Err() != nil {
			// Shutting down or re-logging in; the failure is expected.
			return nil
		}
		log.Error().Err(msg.Err).Str("work", msg.Label).Msg("async work failed")
		return Alert(ErrorText(msg.Err))
	}
	if msg.Then == nil {
		return nil
	}
	cmd, err := runContinuation(msg, s)
	if err != nil {
		log.Error().Err(err).Str("work", msg.Label).Msg("continuation failed")
		return Alert(ErrorText(err))
	}
	return cmd
}

func runContinuation(msg ContinueMsg, s *Session) (cmd tea.Cmd, err error) {
	defer func() {
		if p := recover(); p != nil {
			cmd = nil
			err = fmt.Errorf("%s: panic: %v", msg.Label, p)
		}
	}()
	return msg.Then(s)
}

// Done is a continuation with nothing left to do.
func Done(*Session) (tea.Cmd, error) { return nil, nil }

// Then wraps a plain state update as a continuation.
func Then(fn func(s *Session)) Continuation {
	return func(s *Session) (tea.Cmd, error) {
		fn(s)
		return nil, nil
	}
}

// Settle runs cmd synchronously, resuming continuations and expanding
// batches, and returns every other message produced. Messages from a stale
// epoch are dropped. It lets callers without a running program (tests,
// one-shot commands) drive handlers to completion.
func Settle(s *Session, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	return settleMsg(s, cmd())
}

func settleMsg(s *Session, msg tea.Msg) []tea.Msg {
	switch m := msg.(type) {
	case nil:
		return nil
	case EpochMsg:
		if m.Epoch != s.Epoch() {
			return nil
		}
		return settleMsg(s, m.Inner)
	case ContinueMsg:
		return Settle(s, m.Resume(s))
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, Settle(s, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
