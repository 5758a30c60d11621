package session

import (
	"errors"
	"time"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/catalog"
	"github.com/abhisek/examly/internal/ledger"
)

var (
	// ErrInvalidSelection is returned by Start when the subject selection
	// has the wrong arity for its mode. No network call is made.
	ErrInvalidSelection = errors.New("invalid subject selection")

	// ErrInvalidReference is returned when an answer names an unknown
	// question or option.
	ErrInvalidReference = ledger.ErrInvalidReference

	// ErrSessionClosed is returned for answers after the session finished.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNotInProgress is returned by operations that need a running session.
	ErrNotInProgress = errors.New("no session in progress")

	// ErrSessionActive is returned by Start while a session exists.
	ErrSessionActive = errors.New("a session is already active")

	// ErrStartInFlight is returned by Start while an earlier start is
	// waiting for the service.
	ErrStartInFlight = errors.New("session start already in progress")

	// ErrNoStartPending is returned by CompleteStart without a BeginStart.
	ErrNoStartPending = errors.New("no session start pending")

	// ErrResultPending is returned by Dismiss before a result was delivered.
	ErrResultPending = errors.New("session result not delivered yet")

	// ErrNoFailedSubmission is returned by RetrySubmission when there is
	// nothing to retry.
	ErrNoFailedSubmission = errors.New("no failed submission to retry")
)

// Status is the externally visible lifecycle state of a session.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Finished
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Finished:
		return "finished"
	default:
		return "not-started"
	}
}

// FinishReason records what finalized a session.
type FinishReason string

const (
	ReasonFinished FinishReason = "finished"
	ReasonExpired  FinishReason = "expired"
)

// Submission is the answer payload of a finalized session.
type Submission struct {
	SessionID string
	Answers   []assessment.AnswerSubmission
	Reason    FinishReason
}

// Answered counts the entries with a selected option.
func (s *Submission) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if a.SelectedOptionID != nil {
			n++
		}
	}
	return n
}

// Info describes a session for observers and history.
type Info struct {
	SessionID  string
	Mode       assessment.Mode
	SubjectIDs []string
	TopicID    string
	Questions  int
	Duration   time.Duration
	StartedAt  time.Time
}

// Observer is notified of lifecycle transitions. Calls happen on the
// controller's goroutine and must not block.
type Observer interface {
	SessionStarted(info Info)
	SessionFinalized(info Info, reason FinishReason, answered int)
	SessionSubmitted(info Info, result assessment.Result)
	SubmissionFailed(info Info, err error)
	SessionAbandoned(info Info, answered int)
}

// phase is the controller's tagged state. Each implementation carries only
// the data valid in that state.
type phase interface {
	status() Status
}

// idle: no session exists.
type idle struct{}

// starting: a start request is waiting for the service.
type starting struct {
	sel Selection
	req assessment.StartRequest
}

// running: the session is in progress and the clock is ticking.
type running struct {
	s *attempt
}

// closed: the session was finalized. The ledger is frozen.
type closed struct {
	s          *attempt
	sub        *Submission
	submitting bool
	result     *assessment.Result
	err        error
	endedAt    time.Time
}

func (idle) status() Status     { return NotStarted }
func (starting) status() Status { return NotStarted }
func (running) status() Status  { return InProgress }
func (*closed) status() Status  { return Finished }

// attempt is the data of one started session.
type attempt struct {
	info    Info
	sel     Selection
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	current int
}

func (a *attempt) clamp(i int) int {
	if i < 0 || a.catalog.Len() == 0 {
		return 0
	}
	if last := a.catalog.Len() - 1; i > last {
		return last
	}
	return i
}
