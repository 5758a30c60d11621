// Package assessment defines the contract of the Assessment Service: the
// backend that issues sessions with their questions and scores submitted
// answers.
package assessment

import (
	"context"
	"time"
)

// Mode selects the session layout.
type Mode string

const (
	// ModeGrouped is the two-subject, three-hour layout (the "DTM" test).
	ModeGrouped Mode = "grouped"

	// ModeMixed is the single-subject, thirty-question layout.
	ModeMixed Mode = "mixed"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeGrouped || m == ModeMixed
}

// Subject is a selectable subject.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Topic narrows a subject in mixed mode.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option is one answer choice of a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a question as delivered by the service.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	ImageURL    string   `json:"image_url,omitempty"`
	SubjectName string   `json:"subject_name"`
	Options     []Option `json:"options"`
}

// StartRequest asks the service to open a session.
type StartRequest struct {
	SubjectIDs []string  `json:"subject_ids"`
	TopicID    string    `json:"topic_id,omitempty"`
	Mode       Mode      `json:"mode"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// StartResponse carries the new session's id and its questions.
type StartResponse struct {
	SessionID string     `json:"session_id"`
	Questions []Question `json:"questions"`
}

// AnswerSubmission is one entry of the finish payload. SelectedOptionID is
// nil for an unanswered question.
type AnswerSubmission struct {
	QuestionID       string  `json:"question_id"`
	SelectedOptionID *string `json:"selected_option_id"`
}

// Result is the service's scoring of a finished session.
type Result struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	WrongAnswers   int     `json:"wrong_answers"`
	Score          float64 `json:"score"`
}

// Service is the Assessment Service collaborator.
type Service interface {
	// FetchSubjects lists the subjects a session can be built from.
	FetchSubjects(ctx context.Context) ([]Subject, error)

	// FetchTopics lists the topics of a subject.
	FetchTopics(ctx context.Context, subjectID string) ([]Topic, error)

	// StartSession opens a session. It fails with ErrSelectionInvalid when
	// the service rejects the selection and ErrUnavailable on network or
	// server failure.
	StartSession(ctx context.Context, req StartRequest) (*StartResponse, error)

	// FinishSession submits the answers of a session for scoring. It fails
	// with ErrUnavailable on network or server failure.
	FinishSession(ctx context.Context, sessionID string, answers []AnswerSubmission) (*Result, error)
}
