package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/validation"
	"github.com/jonathan/advert-optimiser/internal/wizard"
)

type fakeStructurer struct {
	payload string
	err     error
	calls   int
}

func (f *fakeStructurer) Structure(_ context.Context, _ string, _ types.Record) (string, error) {
	f.calls++
	return f.payload, f.err
}

type fakeRewriter struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	calls   []string
}

func (f *fakeRewriter) Rewrite(_ context.Context, field, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, field)
	if f.err != nil {
		return "", f.err
	}
	if out, ok := f.answers[text]; ok {
		return out, nil
	}
	return strings.ToUpper(text), nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, src ingestion.Source) (string, *ingestion.Metadata, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, ingestion.NewMetadata(ingestion.SourcePaste, f.text), nil
}

const policyAdvisorPayload = "```json\n" + `{
  "job_title": "",
  "department": "Cabinet Office",
  "location": "London",
  "salary": "£38,000 - £44,000",
  "grade": "SEO",
  "closing_date": "2025-11-07",
  "summary": "Do stuff and things.",
  "responsibilities": ["Draft briefings", "Manage stakeholders"],
  "essential_criteria": "Strong writing",
  "desirable_criteria": "Policy experience",
  "benefits": "ignored"
}` + "\n```"

func newTestSession(structurer *fakeStructurer, rewriter *fakeRewriter) *Session {
	return New(uuid.New(), Deps{Structurer: structurer, Rewriter: rewriter})
}

func TestSession_ExtractThenComplete(t *testing.T) {
	rewriter := &fakeRewriter{}
	s := newTestSession(&fakeStructurer{payload: policyAdvisorPayload}, rewriter)

	snap, err := s.Extract(t.Context(), "Policy Advisor advert text")
	require.NoError(t, err)
	assert.Equal(t, []string{types.FieldJobTitle}, snap.Missing)
	assert.Equal(t, "Draft briefings\nManage stakeholders", snap.Record.Get(types.FieldResponsibilities))
	require.NotNil(t, snap.Prompt)
	assert.Equal(t, types.FieldJobTitle, snap.Prompt.Field)
	assert.Equal(t, "Job Title", snap.Prompt.Label)
	assert.Equal(t, 9, snap.Progress.Done)

	res, err := s.SubmitAnswer(t.Context(), types.FieldJobTitle, "  Policy Advisor ")
	require.NoError(t, err)
	assert.Equal(t, "Policy Advisor", res.Value)
	assert.Empty(t, res.Suggestions)
	assert.Nil(t, res.Prompt)
	assert.Equal(t, 10, res.Progress.Done)

	snap = s.Snapshot()
	assert.True(t, snap.Complete)
	assert.Empty(t, snap.Missing)
	assert.Nil(t, snap.Prompt)
	assert.Equal(t, "Policy Advisor", snap.Record.Get(types.FieldJobTitle))
	assert.Empty(t, rewriter.calls)
}

func TestSession_ExtractIsIdempotent(t *testing.T) {
	structurer := &fakeStructurer{payload: policyAdvisorPayload}
	s := newTestSession(structurer, &fakeRewriter{})

	first, err := s.Extract(t.Context(), "same text")
	require.NoError(t, err)
	second, err := s.Extract(t.Context(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, first.Missing, second.Missing)
	assert.Equal(t, 2, structurer.calls)
}

func TestSession_ExtractFallback(t *testing.T) {
	s := newTestSession(&fakeStructurer{payload: policyAdvisorPayload}, &fakeRewriter{})
	_, err := s.Extract(t.Context(), "advert")
	require.NoError(t, err)
	s.OptimiseAll(t.Context(), nil)
	require.NotEmpty(t, s.Snapshot().Suggestions)

	s.extraction = parsing.NewCoordinator(&fakeStructurer{err: errors.New("service unavailable")}, nil)
	snap, err := s.Extract(t.Context(), "advert")
	require.Error(t, err)
	assert.ErrorIs(t, err, parsing.ErrExtractionFailed)
	assert.True(t, snap.Record.IsEmpty())
	assert.Equal(t, types.FieldNames(), snap.Missing)
	assert.Empty(t, snap.Suggestions)
	require.NotNil(t, snap.Prompt)
	assert.Equal(t, types.FieldJobTitle, snap.Prompt.Field)
}

func TestSession_ExtractUnparseablePayload(t *testing.T) {
	s := newTestSession(&fakeStructurer{payload: "I could not find a job advert."}, &fakeRewriter{})

	snap, err := s.Extract(t.Context(), "advert")
	assert.ErrorIs(t, err, parsing.ErrExtractionFailed)
	assert.True(t, snap.Record.IsEmpty())
}

func TestSession_ExtractEmptyTextChangesNothing(t *testing.T) {
	structurer := &fakeStructurer{payload: policyAdvisorPayload}
	s := newTestSession(structurer, &fakeRewriter{})
	_, err := s.Extract(t.Context(), "advert")
	require.NoError(t, err)
	before := s.Record()

	_, err = s.Extract(t.Context(), "   ")
	assert.ErrorIs(t, err, parsing.ErrSourceMissing)
	assert.Equal(t, before, s.Record())
	assert.Equal(t, 1, structurer.calls)
}

func TestSession_OptimisationScenario(t *testing.T) {
	rewriter := &fakeRewriter{answers: map[string]string{"Do stuff and things.": "Deliver key outcomes."}}
	s := newTestSession(&fakeStructurer{}, rewriter)

	record := types.RecordFromMap(map[string]string{types.FieldSummary: "Do stuff and things."})
	suggestions := s.ReplaceAll(t.Context(), record)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Deliver key outcomes.", suggestions[0].Text)
	assert.Equal(t, "Do stuff and things.", s.Record().Get(types.FieldSummary))

	snap, err := s.ApplySuggestion(types.FieldSummary)
	require.NoError(t, err)
	assert.Equal(t, "Deliver key outcomes.", snap.Record.Get(types.FieldSummary))
	assert.Empty(t, snap.Suggestions)

	_, err = s.ApplySuggestion(types.FieldSummary)
	assert.ErrorIs(t, err, optimisation.ErrNoSuggestion)
}

func TestSession_LongTextAnswerIsOptimised(t *testing.T) {
	rewriter := &fakeRewriter{}
	s := newTestSession(&fakeStructurer{}, rewriter)

	record := types.RecordFromMap(map[string]string{
		types.FieldJobTitle:          "Analyst",
		types.FieldDepartment:        "HMRC",
		types.FieldLocation:          "Leeds",
		types.FieldSalary:            "£30,000",
		types.FieldGrade:             "HEO",
		types.FieldClosingDate:       "2025-12-01",
		types.FieldResponsibilities:  "Analyse data",
		types.FieldEssentialCriteria: "SQL",
		types.FieldDesirableCriteria: "Python",
	})
	s.ReplaceAll(t.Context(), record)
	rewriter.calls = nil

	p, ok := s.Prompt()
	require.True(t, ok)
	assert.Equal(t, types.FieldSummary, p.Field)

	res, err := s.SubmitAnswer(t.Context(), types.FieldSummary, "support the tax team")
	require.NoError(t, err)
	assert.Equal(t, []string{types.FieldSummary}, res.Optimise)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "SUPPORT THE TAX TEAM", res.Suggestions[0].Text)
	assert.Equal(t, []string{types.FieldSummary}, rewriter.calls)

	assert.Equal(t, "support the tax team", s.Record().Get(types.FieldSummary))
}

func TestSession_AnswerBeforePromptIsContractViolation(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})

	_, err := s.SubmitAnswer(t.Context(), types.FieldDepartment, "HMRC")
	var contract *wizard.ContractError
	require.ErrorAs(t, err, &contract)
	assert.Equal(t, types.FieldDepartment, contract.Field)
	assert.True(t, s.Record().IsEmpty())
}

func TestSession_RewriterFailureDoesNotBlockAnswer(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{err: errors.New("rate limited")})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{
		types.FieldJobTitle:    "Analyst",
		types.FieldDepartment:  "HMRC",
		types.FieldLocation:    "Leeds",
		types.FieldSalary:      "£30,000",
		types.FieldGrade:       "HEO",
		types.FieldClosingDate: "2025-12-01",
	}))

	res, err := s.SubmitAnswer(t.Context(), types.FieldSummary, "Support the tax team")
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.True(t, res.Suggestions[0].Degraded)
	assert.Equal(t, "Support the tax team", res.Suggestions[0].Text)
	assert.Equal(t, types.FieldResponsibilities, res.Next)
	assert.Equal(t, "Support the tax team", s.Record().Get(types.FieldSummary))
}

func TestSession_InvalidDateRejected(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{
		types.FieldJobTitle:   "Analyst",
		types.FieldDepartment: "HMRC",
		types.FieldLocation:   "Leeds",
		types.FieldSalary:     "£30,000",
		types.FieldGrade:      "HEO",
	}))

	p, ok := s.Prompt()
	require.True(t, ok)
	require.Equal(t, types.FieldClosingDate, p.Field)
	assert.Equal(t, "format: YYYY-MM-DD", p.Hint)

	_, err := s.SubmitAnswer(t.Context(), types.FieldClosingDate, "07/11/2025")
	var rejected *validation.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, validation.DateReason, rejected.Reason)

	p, ok = s.Prompt()
	require.True(t, ok)
	assert.Equal(t, types.FieldClosingDate, p.Field)
}

func TestSession_ReplaceAllPrunesStaleSuggestions(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{
		types.FieldSummary:          "summary",
		types.FieldResponsibilities: "duties",
	}))
	require.Len(t, s.Snapshot().Suggestions, 2)

	suggestions := s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{types.FieldSummary: "new summary"}))
	require.Len(t, suggestions, 1)

	snap := s.Snapshot()
	require.Len(t, snap.Suggestions, 1)
	assert.Equal(t, types.FieldSummary, snap.Suggestions[0].Field)
	assert.Equal(t, "NEW SUMMARY", snap.Suggestions[0].Text)
}

func TestSession_OptimiseAllAndDiscard(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{
		types.FieldJobTitle:          "Analyst",
		types.FieldSummary:           "summary",
		types.FieldEssentialCriteria: "sql",
	}))

	var seen []string
	results := s.OptimiseAll(t.Context(), func(sg optimisation.Suggestion) {
		seen = append(seen, sg.Field)
	})
	require.Len(t, results, 2)
	assert.Equal(t, types.FieldSummary, results[0].Field)
	assert.Equal(t, types.FieldEssentialCriteria, results[1].Field)
	assert.ElementsMatch(t, []string{types.FieldSummary, types.FieldEssentialCriteria}, seen)

	assert.True(t, s.DiscardSuggestion(types.FieldSummary))
	assert.False(t, s.DiscardSuggestion(types.FieldSummary))
	assert.Len(t, s.Snapshot().Suggestions, 1)
}

func TestSession_Ingest(t *testing.T) {
	s := New(uuid.New(), Deps{
		Structurer: &fakeStructurer{payload: policyAdvisorPayload},
		Rewriter:   &fakeRewriter{},
		Extractor:  &fakeExtractor{text: "Policy Advisor advert"},
	})

	snap, err := s.Ingest(t.Context(), ingestion.Source{Text: "Policy Advisor advert"})
	require.NoError(t, err)
	require.NotNil(t, snap.Source)
	assert.Equal(t, ingestion.SourcePaste, snap.Source.Source)
	assert.Equal(t, "Cabinet Office", snap.Record.Get(types.FieldDepartment))
}

func TestSession_IngestErrors(t *testing.T) {
	noExtractor := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	_, err := noExtractor.Ingest(t.Context(), ingestion.Source{Text: "x"})
	assert.ErrorIs(t, err, ErrNoTextExtractor)

	extractErr := &ingestion.ExtractionError{Source: ingestion.SourceURL, Message: "could not fetch"}
	failing := New(uuid.New(), Deps{
		Structurer: &fakeStructurer{payload: policyAdvisorPayload},
		Rewriter:   &fakeRewriter{},
		Extractor:  &fakeExtractor{err: extractErr},
	})
	_, err = failing.Ingest(t.Context(), ingestion.Source{URL: "example.com"})
	var target *ingestion.ExtractionError
	assert.ErrorAs(t, err, &target)
	assert.True(t, failing.Record().IsEmpty())
}

func TestSession_Export(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	record := types.RecordFromMap(map[string]string{types.FieldJobTitle: "Policy Advisor"})
	s.ReplaceAll(t.Context(), record)

	data, err := s.Export()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"job_title\": \"Policy Advisor\",\n  \"department\": \"\""))

	parsed, err := types.ParseRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
}

func TestSession_CursorInvariantAfterApply(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{types.FieldSummary: "summary"}))

	p, ok := s.Prompt()
	require.True(t, ok)
	assert.Equal(t, types.FieldJobTitle, p.Field)

	snap, err := s.ApplySuggestion(types.FieldSummary)
	require.NoError(t, err)
	require.NotNil(t, snap.Prompt)
	assert.Contains(t, snap.Missing, snap.Prompt.Field)
}

func TestSession_BlankRewriteNeverReopensGap(t *testing.T) {
	s := newTestSession(&fakeStructurer{}, &fakeRewriter{answers: map[string]string{"Lead the team.": "   "}})
	s.ReplaceAll(t.Context(), types.RecordFromMap(map[string]string{
		types.FieldJobTitle:          "Policy Advisor",
		types.FieldDepartment:        "Cabinet Office",
		types.FieldLocation:          "London",
		types.FieldSalary:            "£38,000",
		types.FieldGrade:             "SEO",
		types.FieldClosingDate:       "2025-11-07",
		types.FieldSummary:           "Lead the team.",
		types.FieldResponsibilities:  "Draft briefings",
		types.FieldEssentialCriteria: "Strong writing",
		types.FieldDesirableCriteria: "Policy experience",
	}))
	require.Empty(t, s.Snapshot().Missing)

	s.OptimiseAll(t.Context(), nil)

	snap, err := s.ApplySuggestion(types.FieldSummary)
	require.NoError(t, err)
	assert.Empty(t, snap.Missing)
	assert.Equal(t, "Lead the team.", snap.Record.Get(types.FieldSummary))
}
