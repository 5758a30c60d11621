package bankgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an examiner writing multiple-choice questions for timed entrance exams.

Rules:
- Write questions that test the given subject and topic at the given level.
- Each question is self-contained and answerable without a figure.
- Use plain text. No LaTeX and no Markdown. Use / for fractions, * for multiplication and ^ for powers.
- Give exactly 4 options. Exactly one is correct. Distractors reflect common mistakes, not random values.
- Do not repeat the correct answer's position pattern; spread correct answers over all four positions.
- The explanation shows briefly why the correct option is right.
- Do not repeat any question from the "already in the bank" list or from each other.`

// buildUserMessage constructs the user message for one batch of n questions.
func buildUserMessage(input Input, n int, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.Subject.Name)
	if input.Topic != nil {
		fmt.Fprintf(&b, "Topic: %s\n", input.Topic.Name)
	} else {
		b.WriteString("Topic: any topic of the subject\n")
	}
	if input.Level != "" {
		fmt.Fprintf(&b, "Level: %s\n", input.Level)
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", n)

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}
