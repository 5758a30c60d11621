package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects, or the topics of one subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := cliLogger(cfg)
		ctx := cmd.Context()

		svc, _, err := buildService(ctx, cfg, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if subjectID, _ := cmd.Flags().GetString("topics"); subjectID != "" {
			topics, err := svc.FetchTopics(ctx, subjectID)
			if err != nil {
				return fmt.Errorf("fetch topics: %w", err)
			}
			if len(topics) == 0 {
				fmt.Fprintf(out, "No topics for %s.\n", subjectID)
				return nil
			}
			fmt.Fprintf(out, "%-20s  %s\n", "ID", "Topic")
			fmt.Fprintln(out, strings.Repeat("─", 50))
			for _, t := range topics {
				fmt.Fprintf(out, "%-20s  %s\n", t.ID, t.Name)
			}
			return nil
		}

		subjects, err := svc.FetchSubjects(ctx)
		if err != nil {
			return fmt.Errorf("fetch subjects: %w", err)
		}
		if len(subjects) == 0 {
			fmt.Fprintln(out, "No subjects available.")
			return nil
		}
		fmt.Fprintf(out, "%-20s  %s\n", "ID", "Subject")
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for _, s := range subjects {
			fmt.Fprintf(out, "%-20s  %s\n", s.ID, s.Name)
		}
		return nil
	},
}

func init() {
	subjectsCmd.Flags().String("topics", "", "List the topics of this subject ID")
}
