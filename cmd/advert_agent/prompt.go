package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/wizard"
)

// lineReader reads answers one line at a time from the terminal
type lineReader struct {
	sc *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	return &lineReader{sc: sc}
}

// read returns the next line, false at end of input
func (l *lineReader) read() (string, bool) {
	if !l.sc.Scan() {
		return "", false
	}
	return l.sc.Text(), true
}

// ask prints question and reads the answer
func (l *lineReader) ask(out io.Writer, question string) (string, bool) {
	_, _ = fmt.Fprint(out, question)
	return l.read()
}

// confirm asks a yes/no question; anything but y or yes is no
func (l *lineReader) confirm(out io.Writer, question string) bool {
	answer, ok := l.ask(out, question+" [y/N]: ")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// promptText renders the question for a wizard prompt
func promptText(p wizard.Prompt) string {
	var sb strings.Builder
	sb.WriteString(p.Label)
	switch {
	case p.Hint != "":
		sb.WriteString(" (" + p.Hint + ")")
	case p.Kind == types.KindLongText:
		sb.WriteString(` (use \n for new lines)`)
	}
	sb.WriteString(": ")
	return sb.String()
}

// answerText turns a typed line into a field value
func answerText(p wizard.Prompt, line string) string {
	if p.Kind == types.KindLongText {
		return strings.ReplaceAll(line, `\n`, "\n")
	}
	return line
}
