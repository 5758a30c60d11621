package bankgen

// Config controls the behavior of the Generator.
type Config struct {
	// Validators run in order on every candidate; the first failure
	// rejects it. NewValidators builds a fresh chain per run, since the
	// duplicate check is stateful.
	NewValidators func() []Validator

	// BatchSize is the number of questions asked for per LLM request.
	BatchSize int

	// MaxRounds bounds the number of LLM requests per run.
	MaxRounds int

	// MaxTokens is the token budget for one LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of prior questions
	// to include in the prompt for deduplication.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		NewValidators: func() []Validator {
			return []Validator{
				&StructuralValidator{},
				&ArithmeticValidator{},
				&DuplicateValidator{},
			}
		},
		BatchSize:         10,
		MaxRounds:         8,
		MaxTokens:         4096,
		Temperature:       0.7,
		MaxPriorQuestions: 40,
	}
}
