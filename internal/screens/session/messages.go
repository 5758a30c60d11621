package session

import (
	"github.com/abhisek/examly/internal/assessment"
)

// startedMsg carries the service's answer to a start request.
type startedMsg struct {
	Resp *assessment.StartResponse
	Err  error
}
