package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInsightsCmd() *cobra.Command {
	var userStr string
	var question string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate spending insights from imported expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userStr)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			deps, err := initDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			blocks, err := deps.Analyzer.AnswerQuestion(cmd.Context(), userID, question)
			if err != nil {
				return err
			}

			for _, b := range blocks {
				fmt.Println(b.Main)
				if b.Advice != "" {
					fmt.Printf("  Совет: %s\n", b.Advice)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userStr, "user", "", "owning user id")
	cmd.Flags().StringVar(&question, "question", "", "free-text question routing the report blocks")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
