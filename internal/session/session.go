// Package session composes extraction, guided completion and optimisation into one user session.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/rewriting"
	"github.com/jonathan/advert-optimiser/internal/store"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/wizard"
)

// TextExtractor turns a user-supplied source into raw advert text
type TextExtractor interface {
	Extract(ctx context.Context, src ingestion.Source) (string, *ingestion.Metadata, error)
}

// Deps are the collaborators shared by every session a Manager creates.
// They must be safe for concurrent use.
type Deps struct {
	Structurer parsing.Structurer
	Rewriter   rewriting.Rewriter
	Extractor  TextExtractor // Optional; Ingest fails without it
	Logger     *zap.Logger
}

// Session owns one record with its store, wizard and suggestion set.
// Every operation holds the session lock, so requests are handled one at a time.
type Session struct {
	id        uuid.UUID
	createdAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	store      *store.Store
	wizard     *wizard.Wizard
	extraction *parsing.Coordinator
	optimiser  *optimisation.Coordinator
	extractor  TextExtractor
	source     *ingestion.Metadata
	logger     *zap.Logger
}

// New creates a session with an empty record
func New(id uuid.UUID, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id.String()))

	st := store.New(types.NewRecord())
	now := time.Now()
	return &Session{
		id:         id,
		createdAt:  now,
		lastActive: now,
		store:      st,
		wizard:     wizard.New(st),
		extraction: parsing.NewCoordinator(deps.Structurer, logger),
		optimiser:  optimisation.NewCoordinator(deps.Rewriter, logger),
		extractor:  deps.Extractor,
		logger:     logger,
	}
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Snapshot is a read-only view of the session state
type Snapshot struct {
	ID          uuid.UUID                 `json:"id"`
	Record      types.Record              `json:"record"`
	Missing     []string                  `json:"missing"`
	Prompt      *wizard.Prompt            `json:"prompt,omitempty"`
	Suggestions []optimisation.Suggestion `json:"suggestions"`
	Progress    store.Progress            `json:"progress"`
	Complete    bool                      `json:"complete"`
	Source      *ingestion.Metadata       `json:"source,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	LastActive  time.Time                 `json:"last_active"`
}

// Snapshot returns the current state. It advances the wizard from idle to the first missing field.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Record:      s.store.Record(),
		Missing:     s.store.Missing(),
		Suggestions: s.optimiser.Suggestions(),
		Progress:    s.store.Progress(),
		Complete:    s.store.Complete(),
		Source:      s.source,
		CreatedAt:   s.createdAt,
		LastActive:  s.lastActive,
	}
	if p, ok := s.wizard.Prompt(); ok {
		snap.Prompt = &p
	}
	return snap
}

// Record returns a copy of the current record
func (s *Session) Record() types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Record()
}

// Extract structures text into the record, replacing it wholesale.
// Empty text returns ErrSourceMissing and changes nothing. A failed extraction
// resets the record to empty and returns an error matching parsing.ErrExtractionFailed.
// Either way the cursor and the suggestion set are cleared.
func (s *Session) Extract(ctx context.Context, text string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	err := s.extract(ctx, text, nil)
	return s.snapshot(), err
}

// Ingest reads src through the TextExtractor and extracts the result
func (s *Session) Ingest(ctx context.Context, src ingestion.Source) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.extractor == nil {
		return s.snapshot(), ErrNoTextExtractor
	}

	text, meta, err := s.extractor.Extract(ctx, src)
	if err != nil {
		s.logger.Warn("text extraction failed", zap.Error(err))
		return s.snapshot(), err
	}

	err = s.extract(ctx, text, meta)
	return s.snapshot(), err
}

func (s *Session) extract(ctx context.Context, text string, meta *ingestion.Metadata) error {
	record, err := s.extraction.Extract(ctx, text)
	if errors.Is(err, parsing.ErrSourceMissing) {
		return err
	}

	s.wizard.Reset(record)
	s.optimiser.Clear()
	s.source = meta
	if err != nil {
		s.logger.Warn("extraction failed, record reset", zap.Error(err))
		return err
	}
	s.logger.Info("advert extracted",
		zap.Int("filled", record.Filled()),
		zap.Int("missing", len(s.store.Missing())))
	return nil
}

// Prompt returns the field awaiting an answer, false when no field is missing
func (s *Session) Prompt() (wizard.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.Prompt()
}

// AnswerResult is the outcome of an accepted answer
type AnswerResult struct {
	wizard.Outcome
	Suggestions []optimisation.Suggestion `json:"suggestions,omitempty"`
	Prompt      *wizard.Prompt            `json:"prompt,omitempty"`
	Progress    store.Progress            `json:"progress"`
}

// SubmitAnswer answers the prompted field, which is the first missing field when
// nothing has been prompted yet. Accepted long-text answers are optimised straight
// away; a failed rewrite only marks the suggestion degraded.
func (s *Session) SubmitAnswer(ctx context.Context, field, raw string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.wizard.Current()
	out, err := s.wizard.Submit(field, raw)
	if err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{Outcome: out}
	for _, f := range out.Optimise {
		res.Suggestions = append(res.Suggestions, s.optimiser.Optimise(ctx, f, s.store.Get(f)))
	}
	if p, ok := s.wizard.Prompt(); ok {
		res.Prompt = &p
	}
	res.Progress = s.store.Progress()
	return res, nil
}

// ReplaceAll overwrites the whole record and optimises every non-empty long-text field
func (s *Session) ReplaceAll(ctx context.Context, r types.Record) []optimisation.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	fields := s.wizard.ReplaceAll(r)
	s.optimiser.Prune(r)

	suggestions := make([]optimisation.Suggestion, 0, len(fields))
	for _, f := range fields {
		suggestions = append(suggestions, s.optimiser.Optimise(ctx, f, r.Get(f)))
	}
	return suggestions
}

// OptimiseAll rewrites every non-empty long-text field, replacing the suggestion set.
// progress, when non-nil, is called as each field completes.
func (s *Session) OptimiseAll(ctx context.Context, progress func(optimisation.Suggestion)) []optimisation.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.optimiser.OptimiseAllWithProgress(ctx, s.store.Record(), progress)
}

// ApplySuggestion writes the pending suggestion for field into the record
func (s *Session) ApplySuggestion(field string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	before := s.store.Missing()
	if err := s.optimiser.Apply(field, s.store); err != nil {
		return s.snapshot(), err
	}
	if !slices.Equal(before, s.store.Missing()) {
		s.wizard.Invalidate()
	}
	return s.snapshot(), nil
}

// DiscardSuggestion drops the pending suggestion for field, reporting whether one existed
func (s *Session) DiscardSuggestion(field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.optimiser.Discard(field)
}

// Export returns the record as indented JSON in schema order
func (s *Session) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.MarshalRecord(s.store.Record())
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// idleSince reports when the session was last used
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
