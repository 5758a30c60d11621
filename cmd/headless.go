package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/countdown"
	"github.com/abhisek/examly/internal/history"
	"github.com/abhisek/examly/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a session without the UI and submit answers from a file",
	Long: `Run starts a session, records the answers from --answers and submits it.

The answers file is a JSON object mapping question IDs to option IDs:

  {"q-1": "b", "q-7": "d"}

Without --answers the session is submitted unanswered, which is useful to
list the questions with --questions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := cliLogger(cfg)
		ctx := cmd.Context()

		mode, _ := cmd.Flags().GetString("mode")
		subjects, _ := cmd.Flags().GetStringSlice("subject")
		topic, _ := cmd.Flags().GetString("topic")
		answersPath, _ := cmd.Flags().GetString("answers")
		showQuestions, _ := cmd.Flags().GetBool("questions")

		sel := session.Selection{Mode: assessment.Mode(mode), SubjectIDs: subjects, TopicID: topic}
		if err := sel.Validate(); err != nil {
			return err
		}

		answers := map[string]string{}
		if answersPath != "" {
			if answers, err = readAnswers(answersPath); err != nil {
				return err
			}
		}

		svc, _, err := buildService(ctx, cfg, log)
		if err != nil {
			return err
		}

		opts := []session.Option{session.WithLogger(log)}
		if st, err := openStore(cfg); err != nil {
			log.Warn().Err(err).Msg("history unavailable")
		} else {
			defer st.Close()
			opts = append(opts, session.WithObserver(history.NewRecorder(st.EventRepo(), log)))
		}

		ctrl := session.NewController(svc, opts...)
		if err := ctrl.Start(ctx, sel); err != nil {
			return fmt.Errorf("start session: %w", err)
		}

		out := cmd.OutOrStdout()
		if showQuestions {
			printQuestions(out, ctrl)
		}
		recordAnswers(ctrl, answers, log)

		result, err := ctrl.Submit(ctx)
		if err != nil {
			return fmt.Errorf("submit session %s: %w", ctrl.SessionID(), err)
		}
		printSummary(out, ctrl.Summary(), result)
		return ctrl.Dismiss()
	},
}

func init() {
	f := runCmd.Flags()
	f.String("mode", string(assessment.ModeMixed), "Session mode: grouped or mixed")
	f.StringSlice("subject", nil, "Subject ID (repeat twice for grouped mode)")
	f.String("topic", "", "Topic ID (mixed mode only)")
	f.String("answers", "", "JSON file mapping question IDs to option IDs")
	f.Bool("questions", false, "Print the session's questions before submitting")
}

func readAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers map[string]string
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}

// recordAnswers records every answer that matches a question of the
// session. Unknown questions or options are logged and skipped.
func recordAnswers(ctrl *session.Controller, answers map[string]string, log zerolog.Logger) {
	for qid, oid := range answers {
		err := ctrl.SelectAnswer(qid, oid)
		switch {
		case err == nil:
		case errors.Is(err, session.ErrInvalidReference):
			log.Warn().Err(err).Str("question_id", qid).Str("option_id", oid).Msg("answer skipped")
		default:
			log.Error().Err(err).Str("question_id", qid).Msg("answer failed")
		}
	}
}

func printQuestions(w io.Writer, ctrl *session.Controller) {
	cat := ctrl.Catalog()
	for i := range cat.Len() {
		q, _ := cat.At(i)
		fmt.Fprintf(w, "%d. [%s] %s  (%s)\n", i+1, q.SubjectName, q.Text, q.ID)
		for _, o := range q.Options {
			fmt.Fprintf(w, "     %s) %s\n", o.ID, o.Text)
		}
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, sum *session.Summary, r *assessment.Result) {
	fmt.Fprintf(w, "Session:   %s\n", sum.Info.SessionID)
	fmt.Fprintf(w, "Answered:  %d of %d\n", sum.Answered, sum.Info.Questions)
	fmt.Fprintf(w, "Time used: %s\n", countdown.Format(int(sum.Elapsed.Seconds())))
	fmt.Fprintf(w, "Correct:   %d\n", r.CorrectAnswers)
	fmt.Fprintf(w, "Wrong:     %d\n", r.WrongAnswers)
	fmt.Fprintf(w, "Score:     %.2f%%\n", r.Score)
}
