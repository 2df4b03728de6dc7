package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newOptimiseCmd(flags *globalFlags) *cobra.Command {
	var (
		inPath  string
		outPath string
		apply   bool
	)

	cmd := &cobra.Command{
		Use:   "optimise",
		Short: "Suggest rewrites for the long-text fields of a saved record",
		Long: `Optimise rewrites every non-empty long-text field of a job-schema.json record.
By default the suggestions are printed as JSON; with --apply the rewritten record is written instead.
Fields whose rewrite failed keep their original text.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, err := readRecordFile(inPath)
			if err != nil {
				return err
			}

			a, err := flags.newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			sess := a.newSession()
			suggestions := sess.ReplaceAll(cmd.Context(), record)
			if a.cfg.Verbose {
				for _, sg := range suggestions {
					a.printer.PrintSuggestion(sg)
				}
			}

			var data []byte
			if apply {
				for _, sg := range suggestions {
					if sg.Degraded {
						continue
					}
					if _, err := sess.ApplySuggestion(sg.Field); err != nil {
						return err
					}
				}
				data, err = sess.Export()
			} else {
				data, err = json.MarshalIndent(suggestions, "", "  ")
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Record to optimise (job-schema.json)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the record with every successful rewrite applied")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
