package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/bank"
	"github.com/abhisek/examly/internal/bankgen"
	"github.com/abhisek/examly/internal/llm"
	"github.com/abhisek/examly/internal/store"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Validate and generate question banks",
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check bank files against the bank schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			b, err := bank.Load(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s\n  %v\n", path, err)
				continue
			}
			fmt.Fprintf(out, "✓ %s  %s: %d questions, %d topics\n",
				path, b.Subject.Name, len(b.Questions), len(b.Topics))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d banks invalid", failed, len(args))
		}
		return nil
	},
}

var bankGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions with an LLM and add them to a bank file",
	Long: `Generate asks the configured LLM provider for multiple-choice questions and
writes them to --out. An existing bank at --out is extended; questions it
already holds are not repeated.

The provider is chosen by EXAMLY_LLM_PROVIDER with EXAMLY_<PROVIDER>_API_KEY,
or discovered from GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := cliLogger(cfg)
		ctx := cmd.Context()
		f := cmd.Flags()

		outPath, _ := f.GetString("out")
		subjectID, _ := f.GetString("subject-id")
		subjectName, _ := f.GetString("subject-name")
		topicID, _ := f.GetString("topic-id")
		topicName, _ := f.GetString("topic-name")
		level, _ := f.GetString("level")
		count, _ := f.GetInt("count")

		if outPath == "" {
			outPath = filepath.Join(cfg.BankDir, subjectID+".json")
		}
		existing, err := loadExisting(outPath)
		if err != nil {
			return err
		}
		if existing == nil && (subjectID == "" || subjectName == "") {
			return errors.New("a new bank needs --subject-id and --subject-name")
		}

		// LLM requests are recorded in the history store when it is
		// available.
		var repo store.EventRepo
		if st, err := openStore(cfg); err != nil {
			log.Warn().Err(err).Msg("llm requests will not be recorded")
		} else {
			defer st.Close()
			repo = st.EventRepo()
		}

		provider, err := providerFromEnv(ctx, repo, log)
		if err != nil {
			return err
		}

		input := bankgen.Input{
			Subject: assessment.Subject{ID: subjectID, Name: subjectName},
			Level:   level,
			Count:   count,
		}
		if topicID != "" {
			name := topicName
			if name == "" {
				name = topicID
			}
			input.Topic = &assessment.Topic{ID: topicID, Name: name}
		}

		gen := bankgen.New(provider, bankgen.DefaultConfig(), log)
		b, report, err := gen.Extend(ctx, existing, input)
		if err != nil {
			return fmt.Errorf("generate questions: %w", err)
		}
		if err := bank.Write(outPath, b); err != nil {
			return fmt.Errorf("write bank: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s: %d questions (%d new of %d requested, %d rejected, %d rounds)\n",
			outPath, len(b.Questions), report.Accepted, report.Requested, len(report.Rejected), report.Rounds)
		for _, r := range report.Rejected {
			log.Debug().Str("question", r.Text).Err(r.Err).Msg("rejected")
		}
		return nil
	},
}

func init() {
	f := bankGenerateCmd.Flags()
	f.String("out", "", "Bank file to write (default <bank-dir>/<subject-id>.json)")
	f.String("subject-id", "", "Subject ID of a new bank")
	f.String("subject-name", "", "Subject name of a new bank")
	f.String("topic-id", "", "Generate for this topic")
	f.String("topic-name", "", "Topic name, when the topic is new")
	f.String("level", "high school", "Audience level, e.g. \"grade 11\"")
	f.IntP("count", "n", 10, "Number of questions to add")

	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankGenerateCmd)
}

// loadExisting loads the bank at path, or returns nil if there is none.
func loadExisting(path string) (*bank.Bank, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return bank.Load(path)
}

// providerFromEnv builds the LLM provider from EXAMLY_* settings, falling
// back to the standard API key variables when no provider is configured.
func providerFromEnv(ctx context.Context, repo store.EventRepo, log zerolog.Logger) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		if os.Getenv("EXAMLY_LLM_PROVIDER") != "" {
			return nil, fmt.Errorf("llm config: %w", err)
		}
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("no LLM provider configured: %w", err)
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, repo, log)
}
