package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/expenso-app/expenso/internal/domain/statement/parser"
)

func newImportCmd() *cobra.Command {
	var sourceStr string
	var userStr string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement export as expense records",
		Args:  cobra.ExactArgs(1),
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

			source := parser.SourceType(sourceStr)
			if !deps.ImportSvc.Supported(source) {
				return fmt.Errorf("unknown source type %q, supported: %v", sourceStr, deps.ImportSvc.Sources())
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement file: %w", err)
			}
			defer f.Close()

			result, err := deps.ImportSvc.Import(cmd.Context(), source, f, userID)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d expenses, total %s\n", result.Created, result.Total.StringFixed(2))
			if len(result.Skipped) > 0 {
				fmt.Printf("Skipped %d rows\n", len(result.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceStr, "source", "", "statement source type (tbank-csv, sber-xlsx)")
	cmd.Flags().StringVar(&userStr, "user", "", "owning user id")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
