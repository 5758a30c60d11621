package offline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/bank"
)

// makeBank builds a bank of n questions whose correct option is always "a".
// Even-numbered questions belong to topic "even".
func makeBank(id string, n int) *bank.Bank {
	b := &bank.Bank{
		Subject: assessment.Subject{ID: id, Name: "Subject " + id},
		Topics:  []assessment.Topic{{ID: "even", Name: "Even"}},
	}
	for i := range n {
		q := bank.Question{
			ID:      fmt.Sprintf("%s-%d", id, i),
			Text:    "question",
			Options: []assessment.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
			Answer:  "a",
		}
		if i%2 == 0 {
			q.TopicID = "even"
		}
		b.Questions = append(b.Questions, q)
	}
	return b
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s, err := New([]*bank.Bank{makeBank("math", 40), makeBank("phys", 10)}, opts...)
	require.NoError(t, err)
	return s
}

func str(s string) *string { return &s }

func TestFetch(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	subjects, err := s.FetchSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "math", subjects[0].ID)

	topics, err := s.FetchTopics(ctx, "phys")
	require.NoError(t, err)
	assert.Equal(t, []assessment.Topic{{ID: "even", Name: "Even"}}, topics)

	_, err = s.FetchTopics(ctx, "art")
	assert.ErrorIs(t, err, assessment.ErrNotFound)
}

func TestNew_DuplicateSubject(t *testing.T) {
	_, err := New([]*bank.Bank{makeBank("m", 1), makeBank("m", 2)})
	assert.ErrorIs(t, err, bank.ErrInvalidBank)
}

func TestStartSession_Grouped(t *testing.T) {
	s := newService(t, WithIDFunc(func() string { return "fixed" }))
	resp, err := s.StartSession(context.Background(), assessment.StartRequest{
		Mode:       assessment.ModeGrouped,
		SubjectIDs: []string{"phys", "math"},
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed", resp.SessionID)
	require.Len(t, resp.Questions, 10+DefaultQuestionLimit)
	// Subjects appear in request order.
	assert.Equal(t, "Subject phys", resp.Questions[0].SubjectName)
	assert.Equal(t, "Subject math", resp.Questions[len(resp.Questions)-1].SubjectName)

	seen := map[string]bool{}
	for _, q := range resp.Questions {
		assert.False(t, seen[q.ID], "duplicate question %s", q.ID)
		seen[q.ID] = true
	}
}

func TestStartSession_MixedTopic(t *testing.T) {
	s := newService(t)
	resp, err := s.StartSession(context.Background(), assessment.StartRequest{
		Mode:       assessment.ModeMixed,
		SubjectIDs: []string{"phys"},
		TopicID:    "even",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 5)
}

func TestStartSession_RejectsSelection(t *testing.T) {
	tests := map[string]assessment.StartRequest{
		"unknown mode":    {Mode: "solo", SubjectIDs: []string{"math"}},
		"grouped one":     {Mode: assessment.ModeGrouped, SubjectIDs: []string{"math"}},
		"grouped twice":   {Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "math"}},
		"grouped topic":   {Mode: assessment.ModeGrouped, SubjectIDs: []string{"math", "phys"}, TopicID: "even"},
		"mixed two":       {Mode: assessment.ModeMixed, SubjectIDs: []string{"math", "phys"}},
		"unknown subject": {Mode: assessment.ModeMixed, SubjectIDs: []string{"art"}},
		"unknown topic":   {Mode: assessment.ModeMixed, SubjectIDs: []string{"math"}, TopicID: "odd"},
	}
	s := newService(t)
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.StartSession(context.Background(), req)
			assert.ErrorIs(t, err, assessment.ErrSelectionInvalid)
		})
	}
}

func TestFinishSession_Scores(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	resp, err := s.StartSession(ctx, assessment.StartRequest{
		Mode:       assessment.ModeMixed,
		SubjectIDs: []string{"phys"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 10)

	answers := make([]assessment.AnswerSubmission, len(resp.Questions))
	for i, q := range resp.Questions {
		answers[i].QuestionID = q.ID
		switch {
		case i < 4:
			answers[i].SelectedOptionID = str("a")
		case i < 7:
			answers[i].SelectedOptionID = str("b")
		}
	}
	answers = append(answers, assessment.AnswerSubmission{QuestionID: "stray", SelectedOptionID: str("a")})

	res, err := s.FinishSession(ctx, resp.SessionID, answers)
	require.NoError(t, err)
	assert.Equal(t, assessment.Result{TotalQuestions: 10, CorrectAnswers: 4, WrongAnswers: 6, Score: 40}, *res)

	// A resubmission gets the first result.
	again, err := s.FinishSession(ctx, resp.SessionID, nil)
	require.NoError(t, err)
	assert.Equal(t, *res, *again)
}

func TestFinishSession_UnansweredCountsAsWrong(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	resp, err := s.StartSession(ctx, assessment.StartRequest{
		Mode:       assessment.ModeMixed,
		SubjectIDs: []string{"phys"},
	})
	require.NoError(t, err)

	answers := make([]assessment.AnswerSubmission, len(resp.Questions))
	for i, q := range resp.Questions {
		answers[i].QuestionID = q.ID
	}

	res, err := s.FinishSession(ctx, resp.SessionID, answers)
	require.NoError(t, err)
	assert.Equal(t, assessment.Result{TotalQuestions: 10, WrongAnswers: 10}, *res)
	assert.Equal(t, res.TotalQuestions, res.CorrectAnswers+res.WrongAnswers)
}

func TestFinishSession_UnknownSession(t *testing.T) {
	s := newService(t)
	_, err := s.FinishSession(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, assessment.ErrNotFound)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 0))
	assert.Equal(t, 33.33, Score(1, 3))
	assert.Equal(t, 100.0, Score(30, 30))
}
