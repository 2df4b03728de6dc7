package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// recordFileName is the name of an exported record
const recordFileName = "job-schema.json"

func newExtractCmd(flags *globalFlags) *cobra.Command {
	var (
		src    sourceFlags
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a structured job advert record from a document, text or web page",
		Long: `Extract reads a job advert and prints the structured record as JSON.
With --out, the record, the cleaned advert text and the source metadata are written to that directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if src.empty() {
				return fmt.Errorf("one of --file, --text or --url is required")
			}
			source, err := src.source()
			if err != nil {
				return err
			}

			a, err := flags.newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			text, meta, err := a.extractor().Extract(cmd.Context(), source)
			if err != nil {
				return err
			}
			a.printer.PrintMetadata(meta)

			sess := a.newSession()
			snap, err := sess.Extract(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("failed to extract advert: %w", err)
			}
			if a.cfg.Verbose {
				a.printer.PrintRecord(snap.Record, snap.Progress)
			}

			data, err := types.MarshalRecord(snap.Record)
			if err != nil {
				return err
			}

			if outDir == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			if err := ingestion.WriteOutput(outDir, text, meta); err != nil {
				return err
			}
			outPath := filepath.Join(outDir, recordFileName)
			if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d/%d fields\n", snap.Progress.Done, snap.Progress.Total)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", outPath)
			if len(snap.Missing) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Missing: %v\n", snap.Missing)
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write job-schema.json, advert.cleaned.txt and advert.meta.json")
	return cmd
}
