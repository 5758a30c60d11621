// Package bankgen generates multiple-choice question banks with an LLM.
package bankgen

import "github.com/abhisek/examly/internal/assessment"

// Candidate is a generated question before it is accepted into a bank.
type Candidate struct {
	// Text is the question prompt in plain text.
	Text string

	// Choices holds exactly ChoiceCount options.
	Choices []string

	// AnswerIndex is the zero-based index of the correct choice.
	AnswerIndex int

	// Difficulty is the LLM's self-assessed difficulty (1-5).
	Difficulty int

	// Explanation is a short worked solution.
	Explanation string
}

// Correct returns the text of the correct choice, or "" when AnswerIndex is
// out of range.
func (c *Candidate) Correct() string {
	if c.AnswerIndex < 0 || c.AnswerIndex >= len(c.Choices) {
		return ""
	}
	return c.Choices[c.AnswerIndex]
}

// Input describes the bank to generate.
type Input struct {
	Subject assessment.Subject

	// Topic narrows generation. Nil means the whole subject.
	Topic *assessment.Topic

	// Level is a free-form audience description, e.g. "grade 11".
	Level string

	// Count is the number of questions wanted.
	Count int

	// PriorQuestions are texts already in the bank. Generated questions
	// must not repeat them.
	PriorQuestions []string
}

// ChoiceCount is the number of options every generated question carries.
const ChoiceCount = 4
