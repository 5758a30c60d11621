package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Session event actions.
const (
	ActionStart        = "start"
	ActionFinalize     = "finalize"
	ActionSubmitFailed = "submit_failed"
	ActionAbandon      = "abandon"
)

// SessionEventData captures one lifecycle transition of a session.
type SessionEventData struct {
	SessionID    string
	Action       string
	Mode         string
	SubjectIDs   []string
	TopicID      string
	Questions    int
	Answered     int
	DurationSecs int
	Reason       string
	ErrorMessage string
}

// ResultData is the scored result of a session.
type ResultData struct {
	SessionID      string
	TotalQuestions int
	CorrectAnswers int
	WrongAnswers   int
	Score          float64
}

// SessionRecord is one row of the session history: the start event joined
// with how the session ended and its result, if any.
type SessionRecord struct {
	SessionID  string
	StartedAt  time.Time
	Mode       string
	SubjectIDs []string
	TopicID    string
	Questions  int

	// Outcome is the last terminal action (finalize or abandon), or "" for a
	// session that never ended.
	Outcome  string
	Reason   string
	Answered int

	// Result is nil when the session was never scored.
	Result *ResultData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage per purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle transition.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendResult records the scored result of a session.
	AppendResult(ctx context.Context, data ResultData) error

	// QuerySessions returns session history, newest first.
	QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates LLM usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates LLM usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
