package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/advert-optimiser/internal/interview"
	"github.com/jonathan/advert-optimiser/internal/observability"
)

func newInterviewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "interview",
		Short: "Draft interview questions for a role",
		Long:  "Interview asks five short questions about the role and then drafts 6-8 interview questions grouped as Core, Behavioural and Scenario.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			in := newLineReader(cmd.InOrStdin())
			iv := interview.New(interview.NewLLMGenerator(a.client))

			for {
				step, ok := iv.Current()
				if !ok {
					break
				}
				answer, ok := in.ask(out, step.Prompt+"\n> ")
				if !ok {
					return fmt.Errorf("input ended before %s was answered", step.ID)
				}

				_, questions, err := iv.Submit(cmd.Context(), step.ID, answer)
				if errors.Is(err, interview.ErrEmptyAnswer) {
					_, _ = fmt.Fprintln(out, "Please enter an answer.")
					continue
				}
				if err != nil {
					return err
				}
				if questions != nil {
					observability.NewPrinter(out).PrintQuestions(questions)
				}
			}
			return nil
		},
	}
}
