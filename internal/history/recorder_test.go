package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/store"
)

func TestRecorder_WritesHistory(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	repo := st.EventRepo()
	rec := NewRecorder(repo, zerolog.Nop())

	info := session.Info{
		SessionID:  "abc",
		Mode:       assessment.ModeGrouped,
		SubjectIDs: []string{"math", "phys"},
		Questions:  60,
		Duration:   3 * time.Hour,
	}
	rec.SessionStarted(info)
	rec.SessionFinalized(info, session.ReasonExpired, 42)
	rec.SubmissionFailed(info, errors.New("connection refused"))
	rec.SessionSubmitted(info, assessment.Result{TotalQuestions: 60, CorrectAnswers: 45, WrongAnswers: 15, Score: 75})

	records, err := repo.QuerySessions(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Mode != "grouped" || r.Questions != 60 || r.Answered != 42 || r.Reason != "expired" {
		t.Errorf("record = %+v", r)
	}
	if r.Result == nil || r.Result.CorrectAnswers != 45 {
		t.Errorf("result = %+v", r.Result)
	}
}

// failingRepo makes every write fail.
type failingRepo struct {
	store.EventRepo
	calls int
}

func (f *failingRepo) AppendSessionEvent(ctx context.Context, data store.SessionEventData) error {
	f.calls++
	return errors.New("disk full")
}

func TestRecorder_StoreErrorsAreSwallowed(t *testing.T) {
	repo := &failingRepo{}
	rec := NewRecorder(repo, zerolog.Nop())
	rec.SessionStarted(session.Info{SessionID: "x"})
	rec.SessionAbandoned(session.Info{SessionID: "x"}, 0)
	if repo.calls != 2 {
		t.Errorf("calls = %d, want 2", repo.calls)
	}
}
