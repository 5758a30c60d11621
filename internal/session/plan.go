package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/examly/internal/assessment"
)

// GroupedDuration is the length of a two-subject grouped session.
const GroupedDuration = 3 * time.Hour

// MixedDuration is the length of a single-subject mixed session.
const MixedDuration = 30 * time.Minute

// Selection is what the user picked on the selection screen.
type Selection struct {
	Mode       assessment.Mode
	SubjectIDs []string

	// TopicID optionally narrows a mixed session to one topic.
	TopicID string
}

// Duration returns the session length for the selection's mode.
func (s Selection) Duration() time.Duration {
	if s.Mode == assessment.ModeGrouped {
		return GroupedDuration
	}
	return MixedDuration
}

// Validate checks the subject arity of the selection: exactly two distinct
// subjects in grouped mode, exactly one in mixed mode. A topic is only
// allowed in mixed mode.
func (s Selection) Validate() error {
	want := 0
	switch s.Mode {
	case assessment.ModeGrouped:
		want = 2
		if s.TopicID != "" {
			return fmt.Errorf("%w: topic not allowed in grouped mode", ErrInvalidSelection)
		}
	case assessment.ModeMixed:
		want = 1
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSelection, s.Mode)
	}

	if len(s.SubjectIDs) != want {
		return fmt.Errorf("%w: %s mode needs %d subject(s), got %d",
			ErrInvalidSelection, s.Mode, want, len(s.SubjectIDs))
	}

	seen := make(map[string]bool, len(s.SubjectIDs))
	for _, id := range s.SubjectIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: blank subject id", ErrInvalidSelection)
		}
		if seen[id] {
			return fmt.Errorf("%w: subject %q selected twice", ErrInvalidSelection, id)
		}
		seen[id] = true
	}
	return nil
}

// Request builds the start request for a session beginning at now.
func (s Selection) Request(now time.Time) assessment.StartRequest {
	return assessment.StartRequest{
		SubjectIDs: append([]string(nil), s.SubjectIDs...),
		TopicID:    s.TopicID,
		Mode:       s.Mode,
		StartTime:  now,
		EndTime:    now.Add(s.Duration()),
	}
}
