package bankgen

import (
	"fmt"
	"strings"
)

// StructuralValidator checks that required fields are present, within
// length limits, and that the choices are well formed.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Candidate, _ Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	switch {
	case strings.TrimSpace(c.Text) == "":
		return fail("question_text is empty")
	case len(c.Text) > 500:
		return fail("question_text exceeds 500 characters")
	case strings.TrimSpace(c.Explanation) == "":
		return fail("explanation is empty")
	case len(c.Explanation) > 1000:
		return fail("explanation exceeds 1000 characters")
	case c.Difficulty < 1 || c.Difficulty > 5:
		return fail("difficulty must be between 1 and 5")
	case len(c.Choices) != ChoiceCount:
		return fail("expected %d choices, got %d", ChoiceCount, len(c.Choices))
	case c.AnswerIndex < 0 || c.AnswerIndex >= len(c.Choices):
		return fail("answer_index %d is out of range", c.AnswerIndex)
	}

	seen := make(map[string]bool, len(c.Choices))
	for i, ch := range c.Choices {
		key := strings.ToLower(strings.TrimSpace(ch))
		if key == "" {
			return fail("choice %d is empty", i+1)
		}
		if len(ch) > 200 {
			return fail("choice %d exceeds 200 characters", i+1)
		}
		if seen[key] {
			return fail("choice %q appears twice", ch)
		}
		seen[key] = true
	}
	return nil
}
