package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizwise",
	Short: "Adaptive quiz and tutoring service",
	Long: `quizwise issues AI-generated multiple choice quizzes at a difficulty that
tracks each learner's mastery, grades them, and builds study plans for weak topics.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./quizwise.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides database.dsn)")
	rootCmd.PersistentFlags().String("learner", "", "Learner ID for local commands (default: $QUIZWISE_LEARNER or $USER)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveLearner returns the learner ID using --learner (highest priority),
// then QUIZWISE_LEARNER, then the OS user name.
func resolveLearner(cmd *cobra.Command) string {
	if id, _ := cmd.Flags().GetString("learner"); id != "" {
		return id
	}
	if id := os.Getenv("QUIZWISE_LEARNER"); id != "" {
		return id
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
