package bankgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/bank"
	"github.com/abhisek/examly/internal/llm"
)

// ErrNothingGenerated is returned when a run accepts no question at all.
var ErrNothingGenerated = errors.New("no question passed validation")

// Generator produces bank questions using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	log      zerolog.Logger
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config, log zerolog.Logger) *Generator {
	return &Generator{provider: provider, config: cfg, log: log}
}

// Rejection is a candidate that failed validation.
type Rejection struct {
	Text string
	Err  *ValidationError
}

// Report summarizes a generation run.
type Report struct {
	Requested int
	Accepted  int
	Rounds    int
	Rejected  []Rejection
}

// batchOutput is the raw LLM response before validation.
type batchOutput struct {
	Questions []struct {
		QuestionText string   `json:"question_text"`
		Choices      []string `json:"choices"`
		AnswerIndex  int      `json:"answer_index"`
		Difficulty   int      `json:"difficulty"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

// Generate asks the LLM for questions in batches until input.Count
// candidates pass validation or MaxRounds requests were made.
func (g *Generator) Generate(ctx context.Context, input Input) ([]Candidate, Report, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeBankGen)
	report := Report{Requested: input.Count}
	validators := g.config.NewValidators()

	// The prompt's dedup list grows with every accepted question.
	working := input
	working.PriorQuestions = slices.Clone(input.PriorQuestions)

	var accepted []Candidate
	batchSize := g.config.BatchSize
	for len(accepted) < input.Count && report.Rounds < g.config.MaxRounds {
		report.Rounds++
		n := min(batchSize, input.Count-len(accepted))

		batch, err := g.requestBatch(ctx, working, n)
		if errors.Is(err, llm.ErrTruncated) && n > 1 {
			batchSize = max(n/2, 1)
			g.log.Info().Int("batch_size", batchSize).Msg("response truncated, shrinking batch")
			continue
		}
		if err != nil {
			if len(accepted) > 0 {
				g.log.Warn().Err(err).Int("accepted", len(accepted)).Msg("stopping generation early")
				break
			}
			return nil, report, err
		}

		for i := range batch {
			c := &batch[i]
			if verr := runValidators(validators, c, input); verr != nil {
				report.Rejected = append(report.Rejected, Rejection{Text: c.Text, Err: verr})
				g.log.Debug().Str("validator", verr.Validator).Str("reason", verr.Message).Msg("candidate rejected")
				continue
			}
			accepted = append(accepted, *c)
			working.PriorQuestions = append(working.PriorQuestions, c.Text)
			if len(accepted) == input.Count {
				break
			}
		}
		g.log.Info().
			Int("round", report.Rounds).
			Int("accepted", len(accepted)).
			Int("wanted", input.Count).
			Msg("generation round done")
	}

	report.Accepted = len(accepted)
	if len(accepted) == 0 {
		return nil, report, ErrNothingGenerated
	}
	return accepted, report, nil
}

func (g *Generator) requestBatch(ctx context.Context, input Input, n int) ([]Candidate, error) {
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, n, g.config)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := make([]Candidate, len(raw.Questions))
	for i, q := range raw.Questions {
		out[i] = Candidate{
			Text:        strings.TrimSpace(q.QuestionText),
			Choices:     q.Choices,
			AnswerIndex: q.AnswerIndex,
			Difficulty:  q.Difficulty,
			Explanation: strings.TrimSpace(q.Explanation),
		}
	}
	return out, nil
}

func runValidators(vs []Validator, c *Candidate, input Input) *ValidationError {
	for _, v := range vs {
		if verr := v.Validate(c, input); verr != nil {
			return verr
		}
	}
	return nil
}

// Extend generates questions and appends them to b. A nil b starts a new
// bank for input.Subject. Questions already in b are passed to the LLM as
// prior questions. The returned bank passes bank.Check.
func (g *Generator) Extend(ctx context.Context, b *bank.Bank, input Input) (*bank.Bank, Report, error) {
	out := &bank.Bank{Subject: input.Subject}
	if b != nil {
		out.Subject = b.Subject
		out.Topics = slices.Clone(b.Topics)
		out.Questions = slices.Clone(b.Questions)
		input.Subject = b.Subject
	}
	input.PriorQuestions = slices.Clone(input.PriorQuestions)
	for _, q := range out.Questions {
		input.PriorQuestions = append(input.PriorQuestions, q.Text)
	}

	candidates, report, err := g.Generate(ctx, input)
	if err != nil {
		return nil, report, err
	}

	topicID := ""
	if input.Topic != nil {
		topicID = input.Topic.ID
		if !slices.ContainsFunc(out.Topics, func(t assessment.Topic) bool { return t.ID == topicID }) {
			out.Topics = append(out.Topics, *input.Topic)
		}
	}
	prefix := out.Subject.ID
	if topicID != "" {
		prefix = topicID
	}

	ids := newIDSource(prefix, out.Questions)
	for _, c := range candidates {
		out.Questions = append(out.Questions, toBankQuestion(c, ids.next(), topicID))
	}

	if problems := bank.Check(out); len(problems) > 0 {
		return nil, report, fmt.Errorf("%w: %s", bank.ErrInvalidBank, strings.Join(problems, "; "))
	}
	return out, report, nil
}

// optionIDs label the choices of generated questions.
var optionIDs = []string{"a", "b", "c", "d"}

func toBankQuestion(c Candidate, id, topicID string) bank.Question {
	q := bank.Question{
		ID:          id,
		Text:        c.Text,
		TopicID:     topicID,
		Answer:      optionIDs[c.AnswerIndex],
		Explanation: c.Explanation,
	}
	for i, ch := range c.Choices {
		q.Options = append(q.Options, assessment.Option{ID: optionIDs[i], Text: strings.TrimSpace(ch)})
	}
	return q
}

// idSource hands out "<prefix>-<n>" ids not yet used in the bank.
type idSource struct {
	prefix string
	n      int
	taken  map[string]bool
}

func newIDSource(prefix string, existing []bank.Question) *idSource {
	s := &idSource{prefix: prefix, taken: make(map[string]bool, len(existing))}
	for _, q := range existing {
		s.taken[q.ID] = true
	}
	return s
}

func (s *idSource) next() string {
	for {
		s.n++
		id := fmt.Sprintf("%s-%03d", s.prefix, s.n)
		if !s.taken[id] {
			s.taken[id] = true
			return id
		}
	}
}
