package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/advert-optimiser/internal/observability"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/schemas"
	"github.com/jonathan/advert-optimiser/internal/session"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/validation"
)

func newCompleteCmd(flags *globalFlags) *cobra.Command {
	var (
		src        sourceFlags
		recordPath string
		outPath    string
		optimise   bool
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Interactively fill in the missing fields of a job advert",
		Long: `Complete extracts an advert (or loads a saved record with --record), asks for
each missing field in turn and then offers rewrites of the long-text fields to accept or reject.
The finished record is written to --out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if recordPath != "" && !src.empty() {
				return fmt.Errorf("cannot use --record with --file, --text or --url")
			}

			a, err := flags.newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			in := newLineReader(cmd.InOrStdin())
			printer := observability.NewPrinter(out)
			sess := a.newSession()

			if err := startSession(ctx, sess, recordPath, &src, out); err != nil {
				return err
			}
			snap := sess.Snapshot()
			printer.PrintRecord(snap.Record, snap.Progress)

			if err := runWizard(ctx, sess, in, out); err != nil {
				return err
			}
			if optimise {
				_, _ = fmt.Fprintln(out, "Optimising long-text fields...")
				sess.OptimiseAll(ctx, nil)
			}
			if err := reviewSuggestions(sess, in, out, printer); err != nil {
				return err
			}

			data, err := sess.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}

			snap = sess.Snapshot()
			_, _ = fmt.Fprintf(out, "Saved %s (%d/%d fields)\n", outPath, snap.Progress.Done, snap.Progress.Total)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&recordPath, "record", "", "Start from a saved job-schema.json instead of extracting")
	cmd.Flags().StringVarP(&outPath, "out", "o", recordFileName, "Where to write the finished record")
	cmd.Flags().BoolVar(&optimise, "optimise", true, "Rewrite every long-text field before review")
	return cmd
}

// startSession seeds the session from a saved record or a source.
// A failed structuring step is reported and leaves an empty record to fill in by hand.
func startSession(ctx context.Context, sess *session.Session, recordPath string, src *sourceFlags, out io.Writer) error {
	switch {
	case recordPath != "":
		record, err := readRecordFile(recordPath)
		if err != nil {
			return err
		}
		sess.ReplaceAll(ctx, record)
		return nil
	case !src.empty():
		source, err := src.source()
		if err != nil {
			return err
		}
		_, err = sess.Ingest(ctx, source)
		if errors.Is(err, parsing.ErrExtractionFailed) {
			_, _ = fmt.Fprintf(out, "Could not structure the advert (%v); starting from an empty record.\n", err)
			return nil
		}
		return err
	default:
		return nil
	}
}

// readRecordFile validates and parses an exported record
func readRecordFile(path string) (types.Record, error) {
	if err := schemas.ValidateRecordFile(path); err != nil {
		return types.Record{}, fmt.Errorf("%s is not a valid job advert record: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Record{}, fmt.Errorf("failed to read record: %w", err)
	}
	return types.ParseRecord(data)
}

// runWizard prompts for missing fields until none are left or input ends.
// Rejected answers are explained and asked again.
func runWizard(ctx context.Context, sess *session.Session, in *lineReader, out io.Writer) error {
	for {
		p, ok := sess.Prompt()
		if !ok {
			return nil
		}

		line, ok := in.ask(out, promptText(p))
		if !ok {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintf(out, "Input ended; %d field(s) left missing.\n", len(sess.Snapshot().Missing))
			return nil
		}
		if strings.TrimSpace(line) == "" {
			_, _ = fmt.Fprintln(out, "  A value is needed (end input to stop).")
			continue
		}

		res, err := sess.SubmitAnswer(ctx, p.Field, answerText(p, line))
		var rejected *validation.RejectedError
		if errors.As(err, &rejected) {
			_, _ = fmt.Fprintf(out, "  ✗ %s\n", rejected.Reason)
			continue
		}
		if err != nil {
			return err
		}
		for _, sg := range res.Suggestions {
			if sg.Degraded {
				_, _ = fmt.Fprintf(out, "  Could not rewrite %s; it is kept as written.\n", types.Label(sg.Field))
			}
		}
	}
}

// reviewSuggestions shows each pending suggestion and applies the accepted ones
func reviewSuggestions(sess *session.Session, in *lineReader, out io.Writer, printer *observability.Printer) error {
	for _, sg := range sess.Snapshot().Suggestions {
		printer.PrintSuggestion(sg)
		if sg.Degraded || sg.Text == sg.Original || !in.confirm(out, "Apply this suggestion?") {
			sess.DiscardSuggestion(sg.Field)
			continue
		}
		if _, err := sess.ApplySuggestion(sg.Field); err != nil {
			return err
		}
	}
	return nil
}
