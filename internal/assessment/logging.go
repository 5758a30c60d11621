package assessment

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LoggingService is a decorator that logs every call to the wrapped Service
// with its latency and outcome.
type LoggingService struct {
	inner Service
	log   zerolog.Logger
}

// WithLogging wraps a Service with call logging.
func WithLogging(s Service, log zerolog.Logger) Service {
	return &LoggingService{inner: s, log: log.With().Str("component", "assessment").Logger()}
}

func (l *LoggingService) FetchSubjects(ctx context.Context) ([]Subject, error) {
	start := time.Now()
	out, err := l.inner.FetchSubjects(ctx)
	l.done(l.event(err).Int("subjects", len(out)), "fetch subjects", start, err)
	return out, err
}

func (l *LoggingService) FetchTopics(ctx context.Context, subjectID string) ([]Topic, error) {
	start := time.Now()
	out, err := l.inner.FetchTopics(ctx, subjectID)
	l.done(l.event(err).Str("subject_id", subjectID).Int("topics", len(out)), "fetch topics", start, err)
	return out, err
}

func (l *LoggingService) StartSession(ctx context.Context, req StartRequest) (*StartResponse, error) {
	start := time.Now()
	resp, err := l.inner.StartSession(ctx, req)
	ev := l.event(err).
		Str("mode", string(req.Mode)).
		Strs("subject_ids", req.SubjectIDs).
		Str("topic_id", req.TopicID)
	if resp != nil {
		ev = ev.Str("session_id", resp.SessionID).Int("questions", len(resp.Questions))
	}
	l.done(ev, "start session", start, err)
	return resp, err
}

func (l *LoggingService) FinishSession(ctx context.Context, sessionID string, answers []AnswerSubmission) (*Result, error) {
	start := time.Now()
	res, err := l.inner.FinishSession(ctx, sessionID, answers)
	ev := l.event(err).Str("session_id", sessionID).Int("answers", len(answers))
	if res != nil {
		ev = ev.Int("correct", res.CorrectAnswers).Float64("score", res.Score)
	}
	l.done(ev, "finish session", start, err)
	return res, err
}

func (l *LoggingService) event(err error) *zerolog.Event {
	if err != nil {
		return l.log.Warn().Err(err)
	}
	return l.log.Debug()
}

func (l *LoggingService) done(ev *zerolog.Event, op string, start time.Time, err error) {
	ev.Dur("latency", time.Since(start)).Bool("success", err == nil).Msg(op)
}
