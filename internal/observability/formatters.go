// Package observability provides logging setup and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/store"
	"github.com/jonathan/advert-optimiser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow caps how many lines of a long-text field are printed
	maxLinesToShow = 5
)

// Printer handles formatted output for the interactive commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens line to at most width runes
func clip(line string, width int) string {
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width-3]) + "..."
}

// PrintRecord outputs every field of the record, marking the missing ones.
func (p *Printer) PrintRecord(r types.Record, progress store.Progress) {
	var sb strings.Builder

	for _, f := range types.Schema() {
		value := strings.TrimSpace(r.Get(f.Name))
		if value == "" {
			sb.WriteString(fmt.Sprintf("%-20s (missing)\n", f.Label()+":"))
			continue
		}
		if f.Kind != types.KindLongText {
			sb.WriteString(fmt.Sprintf("%-20s %s\n", f.Label()+":", value))
			continue
		}
		sb.WriteString(f.Label() + ":\n")
		writeIndented(&sb, value)
	}
	sb.WriteString(fmt.Sprintf("\nProgress: %d/%d fields", progress.Done, progress.Total))

	p.printBox("JOB ADVERT", sb.String())
}

// PrintMetadata outputs where the advert text came from.
func (p *Printer) PrintMetadata(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", meta.Source))
	if meta.URL != "" {
		sb.WriteString(fmt.Sprintf("URL:      %s\n", meta.URL))
	}
	if meta.Platform != "" {
		sb.WriteString(fmt.Sprintf("Platform: %s\n", meta.Platform))
	}
	if meta.Filename != "" {
		sb.WriteString(fmt.Sprintf("File:     %s\n", meta.Filename))
	}
	if meta.FromCache {
		sb.WriteString("Cached:   yes\n")
	}
	sb.WriteString(fmt.Sprintf("Chars:    %d", meta.Chars))

	p.printBox("SOURCE", sb.String())
}

// PrintSuggestion outputs the original and rewritten text of one field side by side in sequence.
func (p *Printer) PrintSuggestion(s optimisation.Suggestion) {
	var sb strings.Builder

	if s.Degraded {
		sb.WriteString("⚠ Rewrite unavailable; original text kept\n\n")
	}
	sb.WriteString("Original:\n")
	writeIndented(&sb, s.Original)
	sb.WriteString("\nSuggested:\n")
	writeIndented(&sb, s.Text)

	if len(s.Flags) > 0 {
		sb.WriteString("\nReview:\n")
		for _, flag := range s.Flags {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", flag))
		}
	}

	p.printBox("SUGGESTION: "+strings.ToUpper(types.Label(s.Field)), strings.TrimRight(sb.String(), "\n"))
}

// PrintQuestions outputs generated interview questions. Questions are printed
// below the heading unboxed so that long questions are not clipped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintQuestions(questions []string) {
	if len(questions) == 0 {
		return
	}
	p.printBox("INTERVIEW QUESTIONS", "Core / Behavioural / Scenario")
	for _, q := range questions {
		fmt.Fprintln(p.out, q)
	}
}

func writeIndented(sb *strings.Builder, text string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		if i == maxLinesToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(lines)-maxLinesToShow))
			break
		}
		sb.WriteString("  " + line + "\n")
	}
}
