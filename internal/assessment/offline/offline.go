// Package offline implements assessment.Service over local question banks.
// It samples questions, keeps the answer key of every open session in memory
// and scores submissions itself. It is safe for concurrent use, so the local
// REST server can share one instance between requests.
package offline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/bank"
)

// DefaultQuestionLimit is the number of questions drawn per subject in
// grouped mode and in total in mixed mode.
const DefaultQuestionLimit = 30

// Service is a bank-backed assessment service.
type Service struct {
	mu       sync.Mutex
	subjects []assessment.Subject
	banks    map[string]*bank.Bank
	sessions map[string]*sitting
	limit    int
	rng      *rand.Rand
	newID    func() string
}

// sitting is the server-side record of an issued session.
type sitting struct {
	key    map[string]string // question id → correct option id
	order  []string
	result *assessment.Result
}

// Option configures a Service.
type Option func(*Service)

// WithQuestionLimit overrides DefaultQuestionLimit.
func WithQuestionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithRand sets the random source used for sampling.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithIDFunc replaces uuid-based session ids.
func WithIDFunc(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// New builds a service from banks. Subjects are listed in bank order.
func New(banks []*bank.Bank, opts ...Option) (*Service, error) {
	s := &Service{
		banks:    make(map[string]*bank.Bank, len(banks)),
		sessions: make(map[string]*sitting),
		limit:    DefaultQuestionLimit,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID:    func() string { return uuid.New().String() },
	}
	for _, b := range banks {
		if _, dup := s.banks[b.Subject.ID]; dup {
			return nil, fmt.Errorf("%w: subject %q loaded twice", bank.ErrInvalidBank, b.Subject.ID)
		}
		s.banks[b.Subject.ID] = b
		s.subjects = append(s.subjects, b.Subject)
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FetchSubjects lists the loaded subjects.
func (s *Service) FetchSubjects(ctx context.Context) ([]assessment.Subject, error) {
	return slices.Clone(s.subjects), nil
}

// FetchTopics lists the topics of one subject.
func (s *Service) FetchTopics(ctx context.Context, subjectID string) ([]assessment.Topic, error) {
	b, ok := s.banks[subjectID]
	if !ok {
		return nil, &assessment.Error{
			Op:   "fetch topics",
			Kind: assessment.ErrNotFound,
			Err:  fmt.Errorf("subject %q", subjectID),
		}
	}
	out := slices.Clone(b.Topics)
	if out == nil {
		out = []assessment.Topic{}
	}
	return out, nil
}

// StartSession draws the questions of a new session.
func (s *Service) StartSession(ctx context.Context, req assessment.StartRequest) (*assessment.StartResponse, error) {
	picked, err := s.plan(req)
	if err != nil {
		return nil, &assessment.Error{Op: "start session", Kind: assessment.ErrSelectionInvalid, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &assessment.StartResponse{SessionID: s.newID()}
	sit := &sitting{key: make(map[string]string)}
	for _, group := range picked {
		for _, q := range s.sample(group.questions) {
			resp.Questions = append(resp.Questions, q.Public(group.subject.Name))
			sit.key[q.ID] = q.Answer
			sit.order = append(sit.order, q.ID)
		}
	}
	if resp.Questions == nil {
		resp.Questions = []assessment.Question{}
	}
	s.sessions[resp.SessionID] = sit
	return resp, nil
}

type pool struct {
	subject   assessment.Subject
	questions []bank.Question
}

// plan checks req against the loaded banks and returns the question pool of
// each requested subject, in request order.
func (s *Service) plan(req assessment.StartRequest) ([]pool, error) {
	switch req.Mode {
	case assessment.ModeGrouped:
		if len(req.SubjectIDs) != 2 {
			return nil, fmt.Errorf("grouped mode needs exactly 2 subjects, got %d", len(req.SubjectIDs))
		}
		if req.SubjectIDs[0] == req.SubjectIDs[1] {
			return nil, fmt.Errorf("subject %q selected twice", req.SubjectIDs[0])
		}
		if req.TopicID != "" {
			return nil, fmt.Errorf("grouped mode takes no topic")
		}
	case assessment.ModeMixed:
		if len(req.SubjectIDs) != 1 {
			return nil, fmt.Errorf("mixed mode needs exactly 1 subject, got %d", len(req.SubjectIDs))
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}
	if !req.StartTime.IsZero() && !req.EndTime.IsZero() && !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end time %s is not after start time %s",
			req.EndTime.Format(time.RFC3339), req.StartTime.Format(time.RFC3339))
	}

	pools := make([]pool, 0, len(req.SubjectIDs))
	for _, id := range req.SubjectIDs {
		b, ok := s.banks[id]
		if !ok {
			return nil, fmt.Errorf("unknown subject %q", id)
		}
		p := pool{subject: b.Subject, questions: b.Questions}
		if req.TopicID != "" {
			if !slices.ContainsFunc(b.Topics, func(t assessment.Topic) bool { return t.ID == req.TopicID }) {
				return nil, fmt.Errorf("subject %q has no topic %q", id, req.TopicID)
			}
			p.questions = nil
			for _, q := range b.Questions {
				if q.TopicID == req.TopicID {
					p.questions = append(p.questions, q)
				}
			}
		}
		pools = append(pools, p)
	}
	return pools, nil
}

// sample draws up to limit questions and keeps them in bank order.
// Callers hold s.mu, which also guards rng.
func (s *Service) sample(qs []bank.Question) []bank.Question {
	if len(qs) <= s.limit {
		return qs
	}
	idx := s.rng.Perm(len(qs))[:s.limit]
	slices.Sort(idx)
	out := make([]bank.Question, len(idx))
	for i, j := range idx {
		out[i] = qs[j]
	}
	return out
}

// FinishSession scores answers against the session's key. Finishing an
// already scored session returns the first result again, so a client whose
// response was lost can safely resubmit.
func (s *Service) FinishSession(ctx context.Context, sessionID string, answers []assessment.AnswerSubmission) (*assessment.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sit, ok := s.sessions[sessionID]
	if !ok {
		return nil, &assessment.Error{
			Op:   "finish session",
			Kind: assessment.ErrNotFound,
			Err:  fmt.Errorf("session %q", sessionID),
		}
	}
	if sit.result != nil {
		r := *sit.result
		return &r, nil
	}

	chosen := make(map[string]string, len(answers))
	for _, a := range answers {
		if a.SelectedOptionID == nil {
			continue
		}
		if _, known := sit.key[a.QuestionID]; known {
			chosen[a.QuestionID] = *a.SelectedOptionID
		}
	}

	res := &assessment.Result{TotalQuestions: len(sit.order)}
	for _, qid := range sit.order {
		got, answered := chosen[qid]
		// Unanswered counts as wrong.
		if answered && got == sit.key[qid] {
			res.CorrectAnswers++
		} else {
			res.WrongAnswers++
		}
	}
	res.Score = Score(res.CorrectAnswers, res.TotalQuestions)
	sit.result = res

	r := *res
	return &r, nil
}

// Score is the percentage of correct answers, rounded to two decimals.
func Score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)*10000/float64(total)) / 100
}
