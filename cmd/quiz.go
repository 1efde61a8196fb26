package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/tutor"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate, take and grade quizzes",
}

var quizNewCmd = &cobra.Command{
	Use:   "new <topic...>",
	Short: "Generate a quiz and print it as JSON",
	Long: `Generate a quiz at the learner's current difficulty and print it as JSON.

Fill in "answers" and pass the file to "quiz submit". Submitting requires the
same session.secret that issued the quiz.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		if a.ephemeralSecret {
			fmt.Fprintln(os.Stderr, "warning: no session.secret configured; this quiz can't be submitted later")
		}

		q, err := a.tutor.StartQuiz(cmd.Context(), resolveLearner(cmd), strings.Join(args, " "))
		if err != nil {
			return describe(err)
		}
		sub := tutor.Submission{IssuedQuiz: *q, Answers: make([]*string, len(q.Questions))}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sub)
	},
}

var quizSubmitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Grade a submission written by \"quiz new\"",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var sub tutor.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return fmt.Errorf("parse submission: %w", err)
		}

		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		if a.ephemeralSecret {
			return fmt.Errorf("session.secret must be configured to submit a saved quiz")
		}

		res, err := a.tutor.SubmitQuiz(cmd.Context(), resolveLearner(cmd), sub)
		if err != nil {
			return describe(err)
		}
		printResult(sub.Topic, res)
		return nil
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take <topic...>",
	Short: "Take a quiz interactively in the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		learner := resolveLearner(cmd)
		topic := strings.Join(args, " ")

		fmt.Printf("Generating a quiz on %q...\n\n", topic)
		q, err := a.tutor.StartQuiz(cmd.Context(), learner, topic)
		if err != nil {
			return describe(err)
		}
		fmt.Printf("Topic: %s (%s, %d questions)\n\n", q.Topic, q.Difficulty, len(q.Questions))

		scanner := bufio.NewScanner(os.Stdin)
		sub := tutor.Submission{IssuedQuiz: *q, Answers: make([]*string, len(q.Questions))}
		for i, question := range q.Questions {
			fmt.Printf("── Question %d/%d ──\n", i+1, len(q.Questions))
			fmt.Println(question.Prompt)
			for j, opt := range question.Options {
				fmt.Printf("  %d) %s\n", j+1, opt)
			}

			fmt.Print("\nYour answer: ")
			if !scanner.Scan() {
				fmt.Println("\n(input closed)")
				break
			}
			choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil || choice < 1 || choice > len(question.Options) {
				fmt.Println("(skipped)")
				fmt.Println()
				continue
			}
			sub.Answers[i] = &question.Options[choice-1]
			fmt.Println()
		}

		res, err := a.tutor.SubmitQuiz(cmd.Context(), learner, sub)
		if err != nil {
			return describe(err)
		}
		for i, ok := range res.Outcomes {
			mark := "\033[32m✓\033[0m"
			if !ok {
				mark = "\033[31m✗\033[0m"
			}
			fmt.Printf("%s %d. %s\n", mark, i+1, q.Questions[i].CorrectAnswer)
		}
		fmt.Println()
		printResult(q.Topic, res)
		return nil
	},
}

func printResult(topic string, res *quiz.GradingResult) {
	m := res.UpdatedMastery
	fmt.Printf("── Summary: %d/%d correct (%d%%) ──\n", res.CorrectCount, len(res.Outcomes), res.RawScorePercent)
	fmt.Printf("Mastery on %s: %d%% over %d questions, next quiz: %s\n",
		topic, m.MasteryScore, m.TotalQuestions, m.Difficulty)
}

func init() {
	quizCmd.AddCommand(quizNewCmd)
	quizCmd.AddCommand(quizSubmitCmd)
	quizCmd.AddCommand(quizTakeCmd)
}
