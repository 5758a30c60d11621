package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/screens/history"
	"github.com/abhisek/examly/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded sessions and their results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.EventRepo().QuerySessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}
		for _, rec := range recs {
			fmt.Fprintln(out, history.SummaryLine(rec))
		}

		var scored int
		var total float64
		for _, rec := range recs {
			if rec.Result != nil {
				scored++
				total += rec.Result.Score
			}
		}
		fmt.Fprintln(out, strings.Repeat("─", 80))
		if scored > 0 {
			fmt.Fprintf(out, "%d sessions, %d scored, average %.2f%%\n", len(recs), scored, total/float64(scored))
		} else {
			fmt.Fprintf(out, "%d sessions, none scored\n", len(recs))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
