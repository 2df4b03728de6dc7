package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get(StructuringFile, "extract-advert")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Template}}")
	assert.Contains(t, prompt, "{{.Text}}")
	assert.Contains(t, prompt, "leave it as an empty string")
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.ErrorContains(t, err, "unknown prompt file")

	_, err = Get(RewritingFile, "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestEveryFileHasSystemPrompt(t *testing.T) {
	for _, f := range []string{StructuringFile, RewritingFile, InterviewFile} {
		assert.NotEmpty(t, System(f), f)
	}
	assert.Empty(t, System("nonexistent.json"))
}

func TestRewritingPrompt_StyleRules(t *testing.T) {
	prompt, err := Get(RewritingFile, "optimise-field")
	require.NoError(t, err)
	assert.Contains(t, prompt, "more than three items")
	assert.Contains(t, prompt, "Do NOT invent or change salary, grade, dates or department")
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, welcome to {{.Department}}!", map[string]string{
		"Name":       "Alice",
		"Department": "HMRC",
	})
	assert.Equal(t, "Hello Alice, welcome to HMRC!", out)

	assert.Equal(t, "{{.B}} b", Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"}))
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestPlaceholders(t *testing.T) {
	missing := Placeholders("{{.A}} {{.B}} {{.A}} {{.C}}", map[string]string{"B": ""})
	assert.Equal(t, []string{"A", "C"}, missing)
	assert.Empty(t, Placeholders("no placeholders", nil))
}

func TestRender(t *testing.T) {
	out, err := Render(RewritingFile, "optimise-field", map[string]string{
		"Label": "Summary",
		"Text":  "Uses {{.Label}} literally",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `Improve the "Summary" section`)
	assert.Contains(t, out, "Uses {{.Label}} literally")
}

func TestRender_MissingValues(t *testing.T) {
	_, err := Render(InterviewFile, "generate-questions", map[string]string{"RoleTitle": "Analyst"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GradeLevel")
	assert.Contains(t, err.Error(), "RoleContext")

	_, err = Render(InterviewFile, "missing", nil)
	assert.Error(t, err)
}
