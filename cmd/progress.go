package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/report"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show mastery per topic",
}

// withStore loads config, opens the store and runs fn.
func withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mastery records in the order topics were first attempted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			records, err := s.MasteryRepo().ListMastery(cmd.Context(), resolveLearner(cmd))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No quizzes graded yet.")
				return nil
			}

			fmt.Printf("%-28s  %9s  %7s  %7s  %-6s  %s\n",
				"Topic", "Questions", "Correct", "Mastery", "Tier", "Last Attempt")
			fmt.Println(strings.Repeat("─", 88))
			for _, r := range records {
				flag := ""
				if mastery.IsWeak(r.MasteryScore) {
					flag = " (weak)"
				}
				fmt.Printf("%-28s  %9d  %7d  %6d%%  %-6s  %s%s\n",
					truncate(r.Topic, 28), r.TotalQuestions, r.CorrectAnswers, r.MasteryScore,
					r.Difficulty, r.LastAttemptedAt.Local().Format("2006-01-02 15:04"), flag)
			}
			return nil
		})
	},
}

var progressWeakCmd = &cobra.Command{
	Use:   "weak",
	Short: "List topics scoring below 60%",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			records, err := s.MasteryRepo().ListMastery(cmd.Context(), resolveLearner(cmd))
			if err != nil {
				return err
			}
			weak := mastery.WeakTopics(records)
			if len(weak) == 0 {
				fmt.Println("No weak topics.")
				return nil
			}
			for _, t := range weak {
				fmt.Println(t)
			}
			return nil
		})
	},
}

var progressExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export mastery and recent attempts to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("attempts")

		return withStore(cmd, func(s *store.Store) error {
			learner := resolveLearner(cmd)
			records, err := s.MasteryRepo().ListMastery(cmd.Context(), learner)
			if err != nil {
				return err
			}
			attempts, err := s.MasteryRepo().ListAttempts(cmd.Context(), learner, limit)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteProgress(f, records, attempts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Wrote %d topics and %d attempts to %s\n", len(records), len(attempts), out)
			return nil
		})
	},
}

func init() {
	progressExportCmd.Flags().StringP("out", "o", "progress.xlsx", "Output file")
	progressExportCmd.Flags().Int("attempts", 100, "Number of recent attempts to include (0 = all)")

	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressWeakCmd)
	progressCmd.AddCommand(progressExportCmd)
}
