package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quizwise/internal/store"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and view study plans",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a 7-day plan for current weak topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.tutor.StudyPlan(cmd.Context(), resolveLearner(cmd))
		if err != nil {
			return describe(err)
		}
		if len(res.WeakTopics) > 0 {
			fmt.Printf("Weak topics: %s\n\n", strings.Join(res.WeakTopics, ", "))
		}
		fmt.Println(res.Plan)
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the most recent study plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			plan, err := s.PlanRepo().LatestStudyPlan(cmd.Context(), resolveLearner(cmd))
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No study plan yet. Run \"quizwise plan generate\".")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Generated %s for: %s\n", plan.CreatedAt.Local().Format("2006-01-02 15:04"),
				strings.Join(plan.WeakTopics, ", "))
			fmt.Println(strings.Repeat("─", 60))
			fmt.Println(plan.Plan)
			return nil
		})
	},
}

var planGoalCmd = &cobra.Command{
	Use:   "goal [text...]",
	Short: "Show or set the learning goal used in study plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *store.Store) error {
			learner := resolveLearner(cmd)
			if len(args) == 0 {
				goal, err := s.LearnerRepo().LearningGoal(cmd.Context(), learner)
				if err != nil {
					return err
				}
				if goal == "" {
					fmt.Println("No learning goal set.")
				} else {
					fmt.Println(goal)
				}
				return nil
			}
			goal := strings.TrimSpace(strings.Join(args, " "))
			if err := s.LearnerRepo().SetLearningGoal(cmd.Context(), learner, goal); err != nil {
				return err
			}
			fmt.Printf("Learning goal set: %s\n", goal)
			return nil
		})
	},
}

func init() {
	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planGoalCmd)
}
