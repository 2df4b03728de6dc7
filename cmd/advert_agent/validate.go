package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/advert-optimiser/internal/schemas"
)

func newValidateCmd() *cobra.Command {
	var (
		jsonPath   string
		schemaPath string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a record against the job advert JSON Schema",
		Long:  "Validate checks a JSON file against the built-in job advert schema, or against --schema when given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if schemaPath == "" {
				err = schemas.ValidateRecordFile(jsonPath)
			} else {
				err = schemas.ValidateJSON(schemaPath, jsonPath)
			}
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed:\n%v\n", err)
				return fmt.Errorf("%s does not match the schema", jsonPath)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to the JSON file to validate")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a JSON Schema file (default: built-in job advert schema)")
	_ = cmd.MarkFlagRequired("json")
	return cmd
}
