package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAnswer is returned when a blank answer is submitted
var ErrEmptyAnswer = errors.New("answer must not be empty")

// StepError is returned when an answer is submitted for a step that is not being asked
type StepError struct {
	Step    string
	Current string
}

func (e *StepError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("cannot answer %q: all steps are answered", e.Step)
	}
	return fmt.Sprintf("cannot answer %q: current step is %q", e.Step, e.Current)
}

// Interview walks the structured steps one at a time and generates questions after the last.
// It is not safe for concurrent use.
type Interview struct {
	generator Generator
	cursor    int
	answers   Answers
	questions []string
}

// New creates an interview positioned at the first step
func New(g Generator) *Interview {
	return &Interview{generator: g}
}

// Current returns the step awaiting an answer, false once every step is answered
func (iv *Interview) Current() (Step, bool) {
	if iv.cursor >= len(steps) {
		return Step{}, false
	}
	return steps[iv.cursor], true
}

// Submit answers the current step. After the last step the questions are generated;
// a generation failure is reported as a single apology line, never as an error.
func (iv *Interview) Submit(ctx context.Context, stepID, answer string) (next *Step, questions []string, err error) {
	current, ok := iv.Current()
	if !ok || current.ID != stepID {
		return nil, nil, &StepError{Step: stepID, Current: current.ID}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, nil, ErrEmptyAnswer
	}

	iv.answers.set(stepID, answer)
	iv.cursor++

	if step, ok := iv.Current(); ok {
		return &step, nil, nil
	}

	iv.questions = Questions(ctx, iv.generator, iv.answers)
	return nil, iv.Questions(), nil
}

// Done reports whether every step has been answered
func (iv *Interview) Done() bool {
	return iv.cursor >= len(steps)
}

// Answers returns the answers collected so far
func (iv *Interview) Answers() Answers {
	return iv.answers
}

// Questions returns the generated questions, nil before the last step is answered
func (iv *Interview) Questions() []string {
	if iv.questions == nil {
		return nil
	}
	out := make([]string, len(iv.questions))
	copy(out, iv.questions)
	return out
}

// Reset starts over from the first step
func (iv *Interview) Reset() {
	iv.cursor = 0
	iv.answers = Answers{}
	iv.questions = nil
}
