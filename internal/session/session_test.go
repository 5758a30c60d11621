package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/countdown"
)

// fakeService is a hand-written assessment.Service.
type fakeService struct {
	questions []assessment.Question
	startErr  error
	finishErr error
	result    *assessment.Result

	startCalls  int
	finishCalls int
	lastReq     assessment.StartRequest
	lastAnswers []assessment.AnswerSubmission
	nextID      int
}

func (f *fakeService) FetchSubjects(ctx context.Context) ([]assessment.Subject, error) {
	return []assessment.Subject{{ID: "math", Name: "Math"}, {ID: "phys", Name: "Physics"}}, nil
}

func (f *fakeService) FetchTopics(ctx context.Context, subjectID string) ([]assessment.Topic, error) {
	return nil, nil
}

func (f *fakeService) StartSession(ctx context.Context, req assessment.StartRequest) (*assessment.StartResponse, error) {
	f.startCalls++
	f.lastReq = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.nextID++
	return &assessment.StartResponse{
		SessionID: fmt.Sprintf("s-%d", f.nextID),
		Questions: f.questions,
	}, nil
}

func (f *fakeService) FinishSession(ctx context.Context, sessionID string, answers []assessment.AnswerSubmission) (*assessment.Result, error) {
	f.finishCalls++
	f.lastAnswers = answers
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &assessment.Result{TotalQuestions: len(answers)}, nil
}

// recorder is a hand-written Observer.
type recorder struct {
	events []string
}

func (r *recorder) SessionStarted(info Info) { r.events = append(r.events, "started") }
func (r *recorder) SessionFinalized(info Info, reason FinishReason, answered int) {
	r.events = append(r.events, "finalized:"+string(reason))
}
func (r *recorder) SessionSubmitted(info Info, result assessment.Result) {
	r.events = append(r.events, "submitted")
}
func (r *recorder) SubmissionFailed(info Info, err error) { r.events = append(r.events, "failed") }
func (r *recorder) SessionAbandoned(info Info, answered int) {
	r.events = append(r.events, "abandoned")
}

func makeQuestions(n int, subjects ...string) []assessment.Question {
	if len(subjects) == 0 {
		subjects = []string{"Math"}
	}
	qs := make([]assessment.Question, n)
	for i := range qs {
		qs[i] = assessment.Question{
			ID:          fmt.Sprintf("q%d", i),
			Text:        fmt.Sprintf("Question %d", i),
			SubjectName: subjects[i%len(subjects)],
			Options: []assessment.Option{
				{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}, {ID: "d", Text: "D"},
			},
		}
	}
	return qs
}

var mixed = Selection{Mode: assessment.ModeMixed, SubjectIDs: []string{"math"}}

func startedController(t *testing.T, svc *fakeService, opts ...Option) *Controller {
	t.Helper()
	c := NewController(svc, opts...)
	if err := c.Start(context.Background(), mixed); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c
}

// tick delivers n ticks for the controller's current clock run.
func tick(c *Controller, n int) *Submission {
	var sub *Submission
	for i := 0; i < n; i++ {
		msg := countdown.TickMsg{ID: c.timer.ID(), Tag: c.timer.Tag()}
		if s := c.Tick(msg); s != nil {
			sub = s
		}
	}
	return sub
}

func TestStart_InitializesSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &fakeService{questions: makeQuestions(30)}
	c := startedController(t, svc, WithClock(func() time.Time { return now }))

	if c.Status() != InProgress {
		t.Errorf("Status = %v, want in-progress", c.Status())
	}
	if c.RemainingSeconds() != 1800 {
		t.Errorf("RemainingSeconds = %d, want 1800", c.RemainingSeconds())
	}
	if c.AnsweredCount() != 0 {
		t.Errorf("AnsweredCount = %d, want 0", c.AnsweredCount())
	}
	if c.SessionID() != "s-1" {
		t.Errorf("SessionID = %q", c.SessionID())
	}
	if !svc.lastReq.EndTime.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("EndTime = %v", svc.lastReq.EndTime)
	}
	if c.TimerCmd() == nil {
		t.Error("expected a tick command while running")
	}
}

func TestStart_GroupedDuration(t *testing.T) {
	svc := &fakeService{questions: makeQuestions(4, "Math", "Physics")}
	c := NewController(svc)
	sel := Selection{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "phys"}}
	if err := c.Start(context.Background(), sel); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.RemainingSeconds() != 10800 {
		t.Errorf("RemainingSeconds = %d, want 10800", c.RemainingSeconds())
	}
	groups := c.Progress()
	if len(groups) != 2 || groups[0].Subject != "Math" || groups[1].Subject != "Physics" {
		t.Errorf("unexpected groups %+v", groups)
	}
}

func TestStart_InvalidSelectionMakesNoCall(t *testing.T) {
	tests := []Selection{
		{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math"}},
		{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "phys", "chem"}},
		{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "math"}},
		{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "phys"}, TopicID: "t1"},
		{Mode: assessment.ModeMixed, SubjectIDs: nil},
		{Mode: assessment.ModeMixed, SubjectIDs: []string{"math", "phys"}},
		{Mode: assessment.ModeMixed, SubjectIDs: []string{" "}},
		{Mode: "other", SubjectIDs: []string{"math"}},
	}
	for _, sel := range tests {
		svc := &fakeService{}
		c := NewController(svc)
		err := c.Start(context.Background(), sel)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("%+v: err = %v, want ErrInvalidSelection", sel, err)
		}
		if svc.startCalls != 0 {
			t.Errorf("%+v: service called", sel)
		}
		if c.Status() != NotStarted {
			t.Errorf("%+v: Status = %v", sel, c.Status())
		}
	}
}

func TestStart_MixedWithTopic(t *testing.T) {
	svc := &fakeService{questions: makeQuestions(3)}
	c := NewController(svc)
	sel := Selection{Mode: assessment.ModeMixed, SubjectIDs: []string{"math"}, TopicID: "algebra"}
	if err := c.Start(context.Background(), sel); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if svc.lastReq.TopicID != "algebra" {
		t.Errorf("TopicID = %q", svc.lastReq.TopicID)
	}
}

func TestStart_FailureLeavesClockStopped(t *testing.T) {
	svc := &fakeService{startErr: &assessment.Error{Op: "start session", Kind: assessment.ErrUnavailable}}
	c := NewController(svc)

	err := c.Start(context.Background(), mixed)
	if !errors.Is(err, assessment.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if c.Status() != NotStarted {
		t.Errorf("Status = %v", c.Status())
	}
	if c.TimerCmd() != nil {
		t.Error("clock started after failed start")
	}

	// Retryable: the next start succeeds.
	svc.startErr = nil
	svc.questions = makeQuestions(2)
	if err := c.Start(context.Background(), mixed); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
}

func TestStart_RejectsEmptySessionID(t *testing.T) {
	c := NewController(&fakeService{})
	if _, err := c.BeginStart(mixed); err != nil {
		t.Fatal(err)
	}
	err := c.CompleteStart(&assessment.StartResponse{}, nil)
	if !errors.Is(err, assessment.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if c.Status() != NotStarted || c.Starting() {
		t.Error("expected idle controller")
	}
}

func TestBeginStart_Guards(t *testing.T) {
	c := NewController(&fakeService{questions: makeQuestions(2)})
	if _, err := c.BeginStart(mixed); err != nil {
		t.Fatal(err)
	}
	if !c.Starting() {
		t.Error("expected Starting")
	}
	if _, err := c.BeginStart(mixed); !errors.Is(err, ErrStartInFlight) {
		t.Errorf("second BeginStart err = %v, want ErrStartInFlight", err)
	}

	if err := c.CompleteStart(&assessment.StartResponse{SessionID: "x", Questions: makeQuestions(2)}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.BeginStart(mixed); !errors.Is(err, ErrSessionActive) {
		t.Errorf("BeginStart while running err = %v, want ErrSessionActive", err)
	}
	if err := c.CompleteStart(nil, nil); !errors.Is(err, ErrNoStartPending) {
		t.Errorf("CompleteStart err = %v, want ErrNoStartPending", err)
	}
}

func TestSelectAnswer_LastWriteWins(t *testing.T) {
	svc := &fakeService{questions: makeQuestions(3)}
	c := startedController(t, svc)

	for _, opt := range []string{"a", "c", "b"} {
		if err := c.SelectAnswer("q1", opt); err != nil {
			t.Fatalf("SelectAnswer(%s): %v", opt, err)
		}
	}
	got, ok := c.Selected("q1")
	if !ok || got != "b" {
		t.Errorf("Selected = %q, %v; want b", got, ok)
	}
	if c.AnsweredCount() != 1 {
		t.Errorf("AnsweredCount = %d, want 1", c.AnsweredCount())
	}
}

func TestSelectAnswer_InvalidReference(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(2)})

	if err := c.SelectAnswer("q9", "a"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("unknown question err = %v", err)
	}
	if err := c.SelectAnswer("q0", "z"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("unknown option err = %v", err)
	}
	if err := c.SelectCurrent(7); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("SelectCurrent err = %v", err)
	}
	if c.AnsweredCount() != 0 {
		t.Errorf("AnsweredCount = %d, want 0", c.AnsweredCount())
	}
}

func TestSelectAnswer_BeforeStart(t *testing.T) {
	c := NewController(&fakeService{})
	if err := c.SelectAnswer("q0", "a"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("err = %v, want ErrNotInProgress", err)
	}
}

func TestNavigation_ClampsAndSkipLeavesLedger(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(3)})

	if c.CanPrevious() {
		t.Error("CanPrevious at first question")
	}
	if c.Previous() {
		t.Error("Previous moved below 0")
	}
	if !c.Skip() || c.CurrentIndex() != 1 {
		t.Errorf("Skip: index = %d, want 1", c.CurrentIndex())
	}
	c.GoTo(99)
	if c.CurrentIndex() != 2 {
		t.Errorf("GoTo(99) index = %d, want 2", c.CurrentIndex())
	}
	if c.Next() || c.CanNext() {
		t.Error("Next moved past the last question")
	}
	c.GoTo(-4)
	if c.CurrentIndex() != 0 {
		t.Errorf("GoTo(-4) index = %d, want 0", c.CurrentIndex())
	}
	c.Skip()
	c.Skip()
	if c.AnsweredCount() != 0 {
		t.Errorf("navigation changed AnsweredCount to %d", c.AnsweredCount())
	}
	if _, ok := c.Selected("q0"); ok {
		t.Error("skipped question marked answered")
	}
}

func TestFinish_SerializesEveryQuestion(t *testing.T) {
	svc := &fakeService{questions: makeQuestions(4)}
	c := startedController(t, svc)
	_ = c.SelectAnswer("q2", "d")
	c.GoTo(0)
	_ = c.SelectCurrent(1)

	sub, ok := c.Finish()
	if !ok {
		t.Fatal("Finish returned false")
	}
	if len(sub.Answers) != 4 {
		t.Fatalf("len(Answers) = %d, want 4", len(sub.Answers))
	}
	for i, a := range sub.Answers {
		if a.QuestionID != fmt.Sprintf("q%d", i) {
			t.Errorf("entry %d is %q", i, a.QuestionID)
		}
	}
	if *sub.Answers[0].SelectedOptionID != "b" || *sub.Answers[2].SelectedOptionID != "d" {
		t.Error("wrong selected options")
	}
	if sub.Answers[1].SelectedOptionID != nil || sub.Answers[3].SelectedOptionID != nil {
		t.Error("unanswered questions must have a nil option")
	}
	if c.TimerCmd() != nil {
		t.Error("clock still running after finalize")
	}
	if !c.Submitting() {
		t.Error("expected Submitting after Finish")
	}
}

func TestFinish_Idempotent(t *testing.T) {
	rec := &recorder{}
	svc := &fakeService{questions: makeQuestions(2)}
	c := startedController(t, svc, WithObserver(rec))

	if _, ok := c.Finish(); !ok {
		t.Fatal("first Finish returned false")
	}
	if sub, ok := c.Finish(); ok || sub != nil {
		t.Error("second Finish produced a submission")
	}
	// The clock cannot finalize again either.
	if sub := tick(c, 5000); sub != nil {
		t.Error("tick after finish produced a submission")
	}

	finalized := 0
	for _, e := range rec.events {
		if e == "finalized:finished" || e == "finalized:expired" {
			finalized++
		}
	}
	if finalized != 1 {
		t.Errorf("finalized %d times, want 1", finalized)
	}
}

func TestExpiry_ThenFinishIsNoop(t *testing.T) {
	rec := &recorder{}
	svc := &fakeService{questions: makeQuestions(3)}
	c := startedController(t, svc, WithObserver(rec))
	_ = c.SelectAnswer("q1", "b")

	sub := tick(c, 1800)
	if sub == nil {
		t.Fatal("expected a submission when the clock ran out")
	}
	if again, ok := c.Finish(); ok || again != nil {
		t.Error("Finish after expiry produced a second submission")
	}
	// The expiry submission is still pending, so Submit has nothing to send.
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrNoFailedSubmission) {
		t.Errorf("Submit err = %v, want ErrNoFailedSubmission", err)
	}
	if svc.finishCalls != 0 {
		t.Fatalf("finishCalls = %d before Send, want 0", svc.finishCalls)
	}

	if _, err := c.Send(context.Background(), sub); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if svc.finishCalls != 1 {
		t.Errorf("finishCalls = %d, want 1", svc.finishCalls)
	}
	if len(svc.lastAnswers) != 3 || sub.Reason != ReasonExpired {
		t.Errorf("sent %d answers with reason %s", len(svc.lastAnswers), sub.Reason)
	}
	want := []string{"started", "finalized:expired", "submitted"}
	if fmt.Sprint(rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}

	// A fresh session starts clean.
	if err := c.Dismiss(); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if err := c.Start(context.Background(), mixed); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.AnsweredCount() != 0 || c.RemainingSeconds() != 1800 {
		t.Errorf("new session: answered %d, remaining %d", c.AnsweredCount(), c.RemainingSeconds())
	}
}

func TestSelectAnswer_AfterFinishIsClosed(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(2)})
	_ = c.SelectAnswer("q0", "a")
	c.Finish()

	if err := c.SelectAnswer("q0", "b"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
	if got, _ := c.Selected("q0"); got != "a" {
		t.Errorf("answer changed to %q after finish", got)
	}
}

func TestExpiry_AutoSubmitsScenario(t *testing.T) {
	rec := &recorder{}
	svc := &fakeService{questions: makeQuestions(30)}
	c := startedController(t, svc, WithObserver(rec))

	for i := 0; i < 5; i++ {
		if err := c.SelectAnswer(fmt.Sprintf("q%d", i*6), "c"); err != nil {
			t.Fatal(err)
		}
	}

	before := c.RemainingSeconds()
	if sub := tick(c, 1); sub != nil || c.RemainingSeconds() != before-1 {
		t.Fatalf("first tick: remaining = %d", c.RemainingSeconds())
	}

	sub := tick(c, 1799)
	if sub == nil {
		t.Fatal("expected a submission when the clock ran out")
	}
	if c.Status() != Finished {
		t.Errorf("Status = %v, want finished", c.Status())
	}
	if c.RemainingSeconds() != 0 {
		t.Errorf("RemainingSeconds = %d, want 0", c.RemainingSeconds())
	}
	if sub.Reason != ReasonExpired {
		t.Errorf("Reason = %s", sub.Reason)
	}
	if len(sub.Answers) != 30 || sub.Answered() != 5 {
		t.Errorf("submission has %d entries, %d answered; want 30, 5", len(sub.Answers), sub.Answered())
	}

	// Further ticks do nothing.
	if tick(c, 10) != nil || c.RemainingSeconds() != 0 {
		t.Error("late ticks changed the session")
	}

	if _, err := c.Send(context.Background(), sub); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if svc.finishCalls != 1 {
		t.Errorf("finishCalls = %d, want 1", svc.finishCalls)
	}
	want := []string{"started", "finalized:expired", "submitted"}
	if fmt.Sprint(rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestTick_IgnoresForeignTimer(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(1)})
	other := countdown.New(nil)
	if c.OwnsTick(countdown.TickMsg{ID: other.ID()}) {
		t.Error("controller claimed a foreign tick")
	}
	c.Tick(countdown.TickMsg{ID: other.ID(), Tag: c.timer.Tag()})
	if c.RemainingSeconds() != 1800 {
		t.Errorf("RemainingSeconds = %d, want 1800", c.RemainingSeconds())
	}
}

func TestSubmit_FailureKeepsAnswersAndRetries(t *testing.T) {
	rec := &recorder{}
	svc := &fakeService{
		questions: makeQuestions(3),
		finishErr: &assessment.Error{Op: "finish session", Kind: assessment.ErrUnavailable, StatusCode: 503},
	}
	c := startedController(t, svc, WithObserver(rec))
	_ = c.SelectAnswer("q1", "a")

	if _, err := c.Submit(context.Background()); !errors.Is(err, assessment.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if c.Status() != Finished {
		t.Errorf("Status = %v, want finished", c.Status())
	}
	if c.SubmitErr() == nil {
		t.Error("expected SubmitErr")
	}
	if err := c.Dismiss(); !errors.Is(err, ErrResultPending) {
		t.Errorf("Dismiss err = %v, want ErrResultPending", err)
	}
	if c.TimerCmd() != nil {
		t.Error("clock restarted after failed submission")
	}

	svc.finishErr = nil
	svc.result = &assessment.Result{TotalQuestions: 3, CorrectAnswers: 1, WrongAnswers: 2, Score: 33.3}
	res, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.CorrectAnswers != 1 {
		t.Errorf("result = %+v", res)
	}
	if svc.finishCalls != 2 {
		t.Errorf("finishCalls = %d, want 2", svc.finishCalls)
	}
	if len(svc.lastAnswers) != 3 || svc.lastAnswers[1].SelectedOptionID == nil {
		t.Error("retry lost answers")
	}
	if _, err := c.RetrySubmission(); !errors.Is(err, ErrNoFailedSubmission) {
		t.Errorf("RetrySubmission after success err = %v", err)
	}
	if err := c.Dismiss(); err != nil {
		t.Errorf("Dismiss: %v", err)
	}
	if c.Status() != NotStarted {
		t.Errorf("Status after Dismiss = %v", c.Status())
	}

	want := []string{"started", "finalized:finished", "failed", "submitted"}
	if fmt.Sprint(rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestRetrySubmission_WhileSubmitting(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(1)})
	c.Finish()
	if _, err := c.RetrySubmission(); !errors.Is(err, ErrNoFailedSubmission) {
		t.Errorf("err = %v, want ErrNoFailedSubmission", err)
	}
	c.CompleteSubmission(nil, nil)
	if !errors.Is(c.SubmitErr(), assessment.ErrUnavailable) {
		t.Errorf("empty result should fail, got %v", c.SubmitErr())
	}
	if _, err := c.RetrySubmission(); err != nil {
		t.Errorf("RetrySubmission: %v", err)
	}
}

func TestAbandon_NeverSubmits(t *testing.T) {
	rec := &recorder{}
	svc := &fakeService{questions: makeQuestions(5)}
	c := startedController(t, svc, WithObserver(rec))
	_ = c.SelectAnswer("q0", "a")
	_ = c.SelectAnswer("q1", "a")

	if err := c.Abandon(); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if svc.finishCalls != 0 {
		t.Error("abandon called FinishSession")
	}
	if c.TimerCmd() != nil {
		t.Error("clock running after abandon")
	}
	if c.Status() != NotStarted {
		t.Errorf("Status = %v", c.Status())
	}
	if err := c.Abandon(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("second Abandon err = %v", err)
	}

	if err := c.Start(context.Background(), mixed); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if c.AnsweredCount() != 0 {
		t.Errorf("new session inherited %d answers", c.AnsweredCount())
	}
	if c.SessionID() != "s-2" {
		t.Errorf("SessionID = %q, want s-2", c.SessionID())
	}
	if c.RemainingSeconds() != 1800 {
		t.Errorf("RemainingSeconds = %d", c.RemainingSeconds())
	}
}

func TestAbandon_AfterFinishRejected(t *testing.T) {
	c := startedController(t, &fakeService{questions: makeQuestions(1)})
	c.Finish()
	if err := c.Abandon(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("err = %v, want ErrNotInProgress", err)
	}
}

func TestEmptyCatalogSession(t *testing.T) {
	c := startedController(t, &fakeService{})
	if c.Status() != InProgress {
		t.Fatalf("Status = %v", c.Status())
	}
	if _, ok := c.CurrentQuestion(); ok {
		t.Error("expected no current question")
	}
	if c.Next() || c.Previous() {
		t.Error("navigation moved in an empty catalog")
	}
	sub, ok := c.Finish()
	if !ok || len(sub.Answers) != 0 {
		t.Errorf("unexpected submission %+v", sub)
	}
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := &fakeService{
		questions: makeQuestions(4, "Math", "Physics"),
		result:    &assessment.Result{TotalQuestions: 4, CorrectAnswers: 3, WrongAnswers: 1, Score: 75},
	}
	c := NewController(svc, WithClock(clock))
	sel := Selection{Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "phys"}}
	if err := c.Start(context.Background(), sel); err != nil {
		t.Fatal(err)
	}
	if c.Summary() != nil {
		t.Error("summary before finish")
	}
	_ = c.SelectAnswer("q1", "a")
	now = now.Add(20 * time.Minute)

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := c.Summary()
	if s.Elapsed != 20*time.Minute {
		t.Errorf("Elapsed = %v", s.Elapsed)
	}
	if s.Answered != 1 || s.Accuracy() != 0.75 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.Groups) != 2 || s.Groups[1].Answered != 1 {
		t.Errorf("groups = %+v", s.Groups)
	}
}

func TestHandleTick_SchedulesOnlyForCurrentRun(t *testing.T) {
	svc := &fakeService{questions: makeQuestions(2)}
	c := startedController(t, svc)

	sub, next := c.HandleTick(countdown.TickMsg{ID: c.timer.ID(), Tag: c.timer.Tag()})
	if sub != nil || next == nil {
		t.Fatalf("live tick: sub=%v next=%v", sub, next)
	}

	_, next = c.HandleTick(countdown.TickMsg{ID: c.timer.ID(), Tag: c.timer.Tag() - 1})
	if next != nil {
		t.Error("stale tick must not schedule another tick")
	}

	tick(c, c.RemainingSeconds()-1)
	sub, next = c.HandleTick(countdown.TickMsg{ID: c.timer.ID(), Tag: c.timer.Tag()})
	if sub == nil || sub.Reason != ReasonExpired {
		t.Fatalf("expected expiry submission, got %+v", sub)
	}
	if next != nil {
		t.Error("no tick after expiry")
	}
}
