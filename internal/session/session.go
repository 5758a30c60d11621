// Package session implements the session controller: the state machine that
// starts a timed assessment, records answers, and finalizes and submits it
// exactly once, either on request or when the clock runs out.
//
// A Controller is not safe for concurrent use. It must be driven from one
// goroutine, normally the Bubble Tea Update loop. Network calls happen
// between the two halves of BeginStart/CompleteStart and
// Finish/CompleteSubmission, so the loop never blocks on the service.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/catalog"
	"github.com/abhisek/examly/internal/countdown"
	"github.com/abhisek/examly/internal/ledger"
)

// Controller owns at most one session at a time.
type Controller struct {
	svc      assessment.Service
	observer Observer
	log      zerolog.Logger
	now      func() time.Time
	timer    *countdown.Timer

	phase phase

	// expired holds the submission produced by the timer's expiry callback
	// until Tick hands it to the caller.
	expired *Submission
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTickInterval changes the wall-clock length of one countdown tick.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.timer = countdown.New(c.onExpire, countdown.WithInterval(d))
	}
}

// NewController creates an idle controller backed by svc.
func NewController(svc assessment.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:   svc,
		log:   zerolog.Nop(),
		now:   time.Now,
		phase: idle{},
	}
	c.timer = countdown.New(c.onExpire)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the lifecycle state of the current session.
func (c *Controller) Status() Status { return c.phase.status() }

// Starting reports whether a start request is waiting for the service.
func (c *Controller) Starting() bool {
	_, ok := c.phase.(starting)
	return ok
}

// BeginStart validates sel and moves the controller into the starting
// phase. The caller sends the returned request to the service and passes
// the outcome to CompleteStart.
func (c *Controller) BeginStart(sel Selection) (assessment.StartRequest, error) {
	switch c.phase.(type) {
	case starting:
		return assessment.StartRequest{}, ErrStartInFlight
	case running, *closed:
		return assessment.StartRequest{}, ErrSessionActive
	}
	if err := sel.Validate(); err != nil {
		return assessment.StartRequest{}, err
	}

	req := sel.Request(c.now())
	c.phase = starting{sel: sel, req: req}
	return req, nil
}

// CompleteStart finishes a start begun with BeginStart. On failure the
// controller returns to idle and the error is passed through. On success
// the catalog and an empty ledger are installed and the clock starts.
func (c *Controller) CompleteStart(resp *assessment.StartResponse, err error) error {
	st, ok := c.phase.(starting)
	if !ok {
		return ErrNoStartPending
	}
	if err == nil && (resp == nil || resp.SessionID == "") {
		err = &assessment.Error{Op: "start session", Kind: assessment.ErrUnavailable,
			Err: errors.New("response without session id")}
	}
	if err != nil {
		c.phase = idle{}
		c.log.Warn().Err(err).Strs("subject_ids", st.sel.SubjectIDs).Msg("session start failed")
		return err
	}

	cat, warnings := catalog.New(resp.Questions)
	for _, w := range warnings {
		c.log.Warn().Str("session_id", resp.SessionID).Msg(w)
	}

	a := &attempt{
		info: Info{
			SessionID:  resp.SessionID,
			Mode:       st.sel.Mode,
			SubjectIDs: append([]string(nil), st.sel.SubjectIDs...),
			TopicID:    st.sel.TopicID,
			Questions:  cat.Len(),
			Duration:   st.sel.Duration(),
			StartedAt:  c.now(),
		},
		sel:     st.sel,
		catalog: cat,
		ledger:  ledger.New(cat.IDs()),
	}
	c.phase = running{s: a}

	c.log.Info().Str("session_id", a.info.SessionID).Str("mode", string(a.info.Mode)).
		Int("questions", cat.Len()).Msg("session started")
	if c.observer != nil {
		c.observer.SessionStarted(a.info)
	}

	c.timer.Start(int(a.info.Duration / time.Second))
	return nil
}

// Start runs BeginStart, the service call and CompleteStart in one go.
func (c *Controller) Start(ctx context.Context, sel Selection) error {
	req, err := c.BeginStart(sel)
	if err != nil {
		return err
	}
	resp, err := c.svc.StartSession(ctx, req)
	return c.CompleteStart(resp, err)
}

func (c *Controller) attempt() *attempt {
	switch p := c.phase.(type) {
	case running:
		return p.s
	case *closed:
		return p.s
	}
	return nil
}

// SelectAnswer records optionID for questionID, replacing any earlier
// choice.
func (c *Controller) SelectAnswer(questionID, optionID string) error {
	switch p := c.phase.(type) {
	case *closed:
		return ErrSessionClosed
	case running:
		if !p.s.catalog.HasOption(questionID, optionID) {
			return fmt.Errorf("%w: option %q of question %q", ErrInvalidReference, optionID, questionID)
		}
		return p.s.ledger.Set(questionID, optionID)
	}
	return ErrNotInProgress
}

// SelectCurrent answers the current question with its i-th option.
func (c *Controller) SelectCurrent(i int) error {
	q, ok := c.CurrentQuestion()
	if !ok {
		return ErrNotInProgress
	}
	if i < 0 || i >= len(q.Options) {
		return fmt.Errorf("%w: option %d of question %q", ErrInvalidReference, i, q.ID)
	}
	return c.SelectAnswer(q.ID, q.Options[i].ID)
}

// GoTo moves to question i, clamped to the catalog.
func (c *Controller) GoTo(i int) {
	if p, ok := c.phase.(running); ok {
		p.s.current = p.s.clamp(i)
	}
}

// Next moves one question forward. It reports whether the index changed.
func (c *Controller) Next() bool {
	return c.step(1)
}

// Previous moves one question back. It reports whether the index changed.
func (c *Controller) Previous() bool {
	return c.step(-1)
}

// Skip moves past the current question without recording an answer.
func (c *Controller) Skip() bool {
	return c.step(1)
}

func (c *Controller) step(d int) bool {
	p, ok := c.phase.(running)
	if !ok {
		return false
	}
	before := p.s.current
	p.s.current = p.s.clamp(before + d)
	return p.s.current != before
}

// CanNext reports whether Next would move.
func (c *Controller) CanNext() bool {
	a := c.attempt()
	return a != nil && a.current < a.catalog.Len()-1
}

// CanPrevious reports whether Previous would move.
func (c *Controller) CanPrevious() bool {
	a := c.attempt()
	return a != nil && a.current > 0
}

// Finish finalizes the running session. It returns the submission to send
// and true, or false when the session was already finalized or never
// started.
func (c *Controller) Finish() (*Submission, bool) {
	sub := c.finalize(ReasonFinished)
	return sub, sub != nil
}

func (c *Controller) onExpire() {
	if sub := c.finalize(ReasonExpired); sub != nil {
		c.expired = sub
	}
}

// finalize is the single path from InProgress to Finished. The status
// check and the transition happen in one step.
func (c *Controller) finalize(reason FinishReason) *Submission {
	p, ok := c.phase.(running)
	if !ok {
		return nil
	}
	c.timer.Stop()
	p.s.ledger.Freeze()

	sub := &Submission{
		SessionID: p.s.info.SessionID,
		Answers:   p.s.catalog.Submission(p.s.ledger),
		Reason:    reason,
	}
	c.phase = &closed{s: p.s, sub: sub, submitting: true, endedAt: c.now()}

	c.log.Info().Str("session_id", sub.SessionID).Str("reason", string(reason)).
		Int("answered", sub.Answered()).Int("questions", len(sub.Answers)).Msg("session finalized")
	if c.observer != nil {
		c.observer.SessionFinalized(p.s.info, reason, sub.Answered())
	}
	return sub
}

// CompleteSubmission records the service's answer to a submission. A
// failure leaves the session finished with its answers intact so the
// submission can be retried.
func (c *Controller) CompleteSubmission(result *assessment.Result, err error) {
	p, ok := c.phase.(*closed)
	if !ok || !p.submitting {
		return
	}
	p.submitting = false
	if err == nil && result == nil {
		err = &assessment.Error{Op: "finish session", Kind: assessment.ErrUnavailable,
			Err: errors.New("empty result")}
	}
	if err != nil {
		p.err = err
		c.log.Warn().Err(err).Str("session_id", p.sub.SessionID).Msg("submission failed")
		if c.observer != nil {
			c.observer.SubmissionFailed(p.s.info, err)
		}
		return
	}

	r := *result
	p.result = &r
	p.err = nil
	c.log.Info().Str("session_id", p.sub.SessionID).Float64("score", r.Score).Msg("session scored")
	if c.observer != nil {
		c.observer.SessionSubmitted(p.s.info, r)
	}
}

// RetrySubmission hands back the stored submission after a failed attempt.
// The session is never reopened.
func (c *Controller) RetrySubmission() (*Submission, error) {
	p, ok := c.phase.(*closed)
	if !ok || p.submitting || p.result != nil || p.err == nil {
		return nil, ErrNoFailedSubmission
	}
	p.submitting = true
	return p.sub, nil
}

// Send submits sub to the service and records the outcome.
func (c *Controller) Send(ctx context.Context, sub *Submission) (*assessment.Result, error) {
	result, err := c.svc.FinishSession(ctx, sub.SessionID, sub.Answers)
	c.CompleteSubmission(result, err)
	if err != nil {
		return nil, err
	}
	return c.Result(), c.SubmitErr()
}

// Submit finalizes the running session, or retries a failed submission,
// and sends it to the service.
func (c *Controller) Submit(ctx context.Context) (*assessment.Result, error) {
	sub, ok := c.Finish()
	if !ok {
		var err error
		if sub, err = c.RetrySubmission(); err != nil {
			return nil, err
		}
	}
	return c.Send(ctx, sub)
}

// Abandon discards the running session without submitting it.
func (c *Controller) Abandon() error {
	p, ok := c.phase.(running)
	if !ok {
		return ErrNotInProgress
	}
	c.timer.Stop()
	c.phase = idle{}

	answered := p.s.ledger.CountAnswered()
	c.log.Info().Str("session_id", p.s.info.SessionID).Int("answered", answered).Msg("session abandoned")
	if c.observer != nil {
		c.observer.SessionAbandoned(p.s.info, answered)
	}
	return nil
}

// Dismiss discards a finished session once its result was delivered.
func (c *Controller) Dismiss() error {
	p, ok := c.phase.(*closed)
	if !ok {
		return ErrNotInProgress
	}
	if p.result == nil {
		return ErrResultPending
	}
	c.phase = idle{}
	return nil
}

// Tick forwards a countdown tick. When the tick runs the clock out, the
// session is finalized and the submission is returned.
func (c *Controller) Tick(msg countdown.TickMsg) *Submission {
	sub, _ := c.HandleTick(msg)
	return sub
}

// HandleTick is Tick for the Bubble Tea loop. It also returns the command
// scheduling the next tick, which is nil once the clock stopped or when msg
// was stale, so a stale tick never forks a second tick chain.
func (c *Controller) HandleTick(msg countdown.TickMsg) (*Submission, tea.Cmd) {
	if !c.timer.Owns(msg) {
		return nil, nil
	}
	var next tea.Cmd
	if c.timer.Tick(msg.Tag) {
		next = c.timer.Cmd()
	}
	sub := c.expired
	c.expired = nil
	return sub, next
}

// OwnsTick reports whether msg belongs to this controller's clock.
func (c *Controller) OwnsTick(msg countdown.TickMsg) bool {
	return c.timer.Owns(msg)
}

// TimerCmd schedules the next countdown tick, or returns nil when the clock
// is stopped.
func (c *Controller) TimerCmd() tea.Cmd {
	return c.timer.Cmd()
}

// RemainingSeconds returns the seconds left on the clock.
func (c *Controller) RemainingSeconds() int {
	if c.attempt() == nil {
		return 0
	}
	return c.timer.Remaining()
}

// SessionID returns the id of the current session, or "".
func (c *Controller) SessionID() string {
	if a := c.attempt(); a != nil {
		return a.info.SessionID
	}
	return ""
}

// Info describes the current session.
func (c *Controller) Info() (Info, bool) {
	if a := c.attempt(); a != nil {
		return a.info, true
	}
	return Info{}, false
}

// Catalog returns the current session's catalog, or nil.
func (c *Controller) Catalog() *catalog.Catalog {
	if a := c.attempt(); a != nil {
		return a.catalog
	}
	return nil
}

// CurrentIndex returns the position of the current question.
func (c *Controller) CurrentIndex() int {
	if a := c.attempt(); a != nil {
		return a.current
	}
	return 0
}

// CurrentQuestion returns the question at the current index.
func (c *Controller) CurrentQuestion() (assessment.Question, bool) {
	a := c.attempt()
	if a == nil {
		return assessment.Question{}, false
	}
	return a.catalog.At(a.current)
}

// Selected returns the option recorded for questionID.
func (c *Controller) Selected(questionID string) (string, bool) {
	if a := c.attempt(); a != nil {
		return a.ledger.Get(questionID)
	}
	return "", false
}

// AnsweredCount returns the number of answered questions.
func (c *Controller) AnsweredCount() int {
	if a := c.attempt(); a != nil {
		return a.ledger.CountAnswered()
	}
	return 0
}

// Progress returns the answered/total counts per subject group.
func (c *Controller) Progress() []catalog.GroupProgress {
	if a := c.attempt(); a != nil {
		return a.catalog.Progress(a.ledger)
	}
	return nil
}

// Submitting reports whether a submission is waiting for the service.
func (c *Controller) Submitting() bool {
	p, ok := c.phase.(*closed)
	return ok && p.submitting
}

// Result returns the scored result once delivered.
func (c *Controller) Result() *assessment.Result {
	if p, ok := c.phase.(*closed); ok && p.result != nil {
		r := *p.result
		return &r
	}
	return nil
}

// SubmitErr returns the error of the last failed submission.
func (c *Controller) SubmitErr() error {
	if p, ok := c.phase.(*closed); ok {
		return p.err
	}
	return nil
}

// Summary describes the finished session, or nil before it finished.
func (c *Controller) Summary() *Summary {
	if p, ok := c.phase.(*closed); ok {
		return buildSummary(p)
	}
	return nil
}
