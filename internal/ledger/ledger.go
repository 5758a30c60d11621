// Package ledger records the selected option per question of a session.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReference is returned when a write names a question that is
	// not part of the session's catalog.
	ErrInvalidReference = errors.New("invalid question reference")

	// ErrFrozen is returned for writes after the ledger has been frozen.
	ErrFrozen = errors.New("ledger is frozen")
)

// Ledger records the selected option for each answered question.
// A question with no entry is unanswered.
//
// Ledger is not safe for concurrent use; it is written only from the
// session's event loop.
type Ledger struct {
	known   map[string]struct{}
	answers map[string]string
	frozen  bool
}

// New creates an empty ledger that accepts writes only for the given
// question ids.
func New(questionIDs []string) *Ledger {
	known := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		known[id] = struct{}{}
	}
	return &Ledger{
		known:   known,
		answers: make(map[string]string),
	}
}

// Set records optionID as the selection for questionID, replacing any
// earlier selection.
func (l *Ledger) Set(questionID, optionID string) error {
	if l.frozen {
		return ErrFrozen
	}
	if _, ok := l.known[questionID]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidReference, questionID)
	}
	l.answers[questionID] = optionID
	return nil
}

// Get returns the selected option for questionID. ok is false when the
// question is unanswered.
func (l *Ledger) Get(questionID string) (optionID string, ok bool) {
	optionID, ok = l.answers[questionID]
	return optionID, ok
}

// IsAnswered reports whether questionID has a selection.
func (l *Ledger) IsAnswered(questionID string) bool {
	_, ok := l.answers[questionID]
	return ok
}

// CountAnswered returns the number of questions with a selection.
func (l *Ledger) CountAnswered() int {
	return len(l.answers)
}

// Freeze rejects all further writes. Reads keep working.
func (l *Ledger) Freeze() {
	l.frozen = true
}

// Frozen reports whether Freeze has been called.
func (l *Ledger) Frozen() bool {
	return l.frozen
}

// Snapshot returns a copy of the current selections.
func (l *Ledger) Snapshot() map[string]string {
	out := make(map[string]string, len(l.answers))
	for q, o := range l.answers {
		out[q] = o
	}
	return out
}
