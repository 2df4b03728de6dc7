// Package interview collects a few facts about a role and drafts interview questions for it.
package interview

import "strings"

// Step is one structured question asked before generating interview questions
type Step struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// Step IDs, in asking order.
const (
	StepRoleTitle        = "role_title"
	StepGradeLevel       = "grade_level"
	StepCoreCapabilities = "core_capabilities"
	StepExperienceFocus  = "experience_focus"
	StepRoleContext      = "role_context"
)

var steps = []Step{
	{ID: StepRoleTitle, Prompt: "First, what is the job title or role you're recruiting for?"},
	{ID: StepGradeLevel, Prompt: "What level/grade is this role? (e.g. EO, HEO, SEO, or 'mid-level engineer')"},
	{ID: StepCoreCapabilities, Prompt: "What are the core skills or behaviours you want to assess? (e.g. stakeholder management, delivery, problem solving, GOV.UK behaviours)"},
	{ID: StepExperienceFocus, Prompt: "Do you want to prioritise technical experience, situational/judgement questions, or past-behaviour examples?"},
	{ID: StepRoleContext, Prompt: "Tell me a bit about the context: team size, type of service/product, and whether it's user-facing or internal."},
}

// Steps returns the structured steps in asking order
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Answers holds the collected answer for each step
type Answers struct {
	RoleTitle        string `json:"role_title"`
	GradeLevel       string `json:"grade_level"`
	CoreCapabilities string `json:"core_capabilities"`
	ExperienceFocus  string `json:"experience_focus"`
	RoleContext      string `json:"role_context"`
}

// set stores the answer for a step ID; unknown IDs are ignored
func (a *Answers) set(stepID, value string) {
	switch stepID {
	case StepRoleTitle:
		a.RoleTitle = value
	case StepGradeLevel:
		a.GradeLevel = value
	case StepCoreCapabilities:
		a.CoreCapabilities = value
	case StepExperienceFocus:
		a.ExperienceFocus = value
	case StepRoleContext:
		a.RoleContext = value
	}
}

// templateData maps answers onto the prompt placeholders
func (a Answers) templateData() map[string]string {
	roleTitle := strings.TrimSpace(a.RoleTitle)
	if roleTitle == "" {
		roleTitle = "the role"
	}
	return map[string]string{
		"RoleTitle":        roleTitle,
		"GradeLevel":       strings.TrimSpace(a.GradeLevel),
		"CoreCapabilities": strings.TrimSpace(a.CoreCapabilities),
		"ExperienceFocus":  strings.TrimSpace(a.ExperienceFocus),
		"RoleContext":      strings.TrimSpace(a.RoleContext),
	}
}
