// Package history records session lifecycle transitions and results in the
// local store.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/store"
)

// writeTimeout bounds each store write; the recorder runs on the UI loop.
const writeTimeout = 2 * time.Second

// Recorder implements session.Observer on top of a store.EventRepo.
// Store failures are logged and never reach the session.
type Recorder struct {
	repo store.EventRepo
	log  zerolog.Logger
}

var _ session.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder.
func NewRecorder(repo store.EventRepo, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

func (r *Recorder) SessionStarted(info session.Info) {
	r.append(eventFor(info, store.ActionStart))
}

func (r *Recorder) SessionFinalized(info session.Info, reason session.FinishReason, answered int) {
	ev := eventFor(info, store.ActionFinalize)
	ev.Reason = string(reason)
	ev.Answered = answered
	r.append(ev)
}

func (r *Recorder) SessionSubmitted(info session.Info, result assessment.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	err := r.repo.AppendResult(ctx, store.ResultData{
		SessionID:      info.SessionID,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		WrongAnswers:   result.WrongAnswers,
		Score:          result.Score,
	})
	if err != nil {
		r.log.Error().Err(err).Str("session_id", info.SessionID).Msg("record result")
	}
}

func (r *Recorder) SubmissionFailed(info session.Info, err error) {
	ev := eventFor(info, store.ActionSubmitFailed)
	ev.ErrorMessage = err.Error()
	r.append(ev)
}

func (r *Recorder) SessionAbandoned(info session.Info, answered int) {
	ev := eventFor(info, store.ActionAbandon)
	ev.Answered = answered
	r.append(ev)
}

func (r *Recorder) append(ev store.SessionEventData) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.repo.AppendSessionEvent(ctx, ev); err != nil {
		r.log.Error().Err(err).Str("session_id", ev.SessionID).Str("action", ev.Action).
			Msg("record session event")
	}
}

func eventFor(info session.Info, action string) store.SessionEventData {
	return store.SessionEventData{
		SessionID:    info.SessionID,
		Action:       action,
		Mode:         string(info.Mode),
		SubjectIDs:   info.SubjectIDs,
		TopicID:      info.TopicID,
		Questions:    info.Questions,
		DurationSecs: int(info.Duration / time.Second),
	}
}
