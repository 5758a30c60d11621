package result

import "github.com/abhisek/examly/internal/assessment"

// submittedMsg carries the service's answer to a submission.
type submittedMsg struct {
	Result *assessment.Result
	Err    error
}
