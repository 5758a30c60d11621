package bankgen

import (
	"fmt"
	"strings"
	"unicode"
)

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// normalize folds case and drops punctuation and spacing, so that trivially
// reworded duplicates compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DuplicateValidator rejects candidates whose text repeats a prior question
// or an earlier candidate of the same run. It is stateful: use one per run.
type DuplicateValidator struct {
	seen map[string]bool
}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(c *Candidate, input Input) *ValidationError {
	if v.seen == nil {
		v.seen = make(map[string]bool, len(input.PriorQuestions))
		for _, q := range input.PriorQuestions {
			v.seen[normalize(q)] = true
		}
	}
	key := normalize(c.Text)
	if v.seen[key] {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("question %q is already in the bank", c.Text),
			Retryable: true,
		}
	}
	v.seen[key] = true
	return nil
}
