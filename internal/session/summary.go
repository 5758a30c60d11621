package session

import (
	"time"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/catalog"
)

// Summary holds the data displayed on the result screen.
type Summary struct {
	Info     Info
	Reason   FinishReason
	Elapsed  time.Duration
	Answered int
	Groups   []catalog.GroupProgress

	// Result is nil until the service has scored the session.
	Result *assessment.Result
}

// Accuracy returns correct/total, or 0 before scoring.
func (s *Summary) Accuracy() float64 {
	if s.Result == nil || s.Result.TotalQuestions == 0 {
		return 0
	}
	return float64(s.Result.CorrectAnswers) / float64(s.Result.TotalQuestions)
}

func buildSummary(c *closed) *Summary {
	elapsed := c.endedAt.Sub(c.s.info.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > c.s.info.Duration {
		elapsed = c.s.info.Duration
	}
	return &Summary{
		Info:     c.s.info,
		Reason:   c.sub.Reason,
		Elapsed:  elapsed,
		Answered: c.s.ledger.CountAnswered(),
		Groups:   c.s.catalog.Progress(c.s.ledger),
		Result:   c.result,
	}
}
