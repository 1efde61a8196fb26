package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Ask the tutor a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		reply, err := a.tutor.Chat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return describe(err)
		}
		fmt.Println(reply)
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <topic...>",
	Short: "Get a structured explanation of a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.tutor.Explain(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return describe(err)
		}
		fmt.Println(text)
		return nil
	},
}
