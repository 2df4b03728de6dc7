// Package optimisation holds rewrite suggestions for long-text advert fields until a person applies them.
package optimisation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/advert-optimiser/internal/rewriting"
	"github.com/jonathan/advert-optimiser/internal/store"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// maxParallelRewrites bounds concurrent rewriter calls in OptimiseAll
const maxParallelRewrites = 4

// Suggestion is a pending, unapplied rewrite of one long-text field
type Suggestion struct {
	Field    string   `json:"field"`
	Original string   `json:"original"`
	Text     string   `json:"text"`
	Degraded bool     `json:"degraded"`        // Rewriter failed; Text equals Original
	Flags    []string `json:"flags,omitempty"` // Advisory review findings
}

// Coordinator calls the Rewriter and keeps the suggestion set.
// Suggestions are never written to the record except through Apply.
// Like the store, it is owned by one session and not safe for concurrent use.
type Coordinator struct {
	rewriter    rewriting.Rewriter
	logger      *zap.Logger
	suggestions map[string]Suggestion
}

// NewCoordinator creates a Coordinator. A nil logger disables logging.
func NewCoordinator(rewriter rewriting.Rewriter, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		rewriter:    rewriter,
		logger:      logger,
		suggestions: make(map[string]Suggestion),
	}
}

// Optimise rewrites one field and stores the result as its suggestion.
// A failed rewrite yields the input text with Degraded set; it is never returned as an error.
// Empty text and fields that are not long-text produce no suggestion.
func (c *Coordinator) Optimise(ctx context.Context, field, text string) Suggestion {
	s := c.rewrite(ctx, field, text)
	if s.Text != "" && types.KindOf(field) == types.KindLongText {
		c.suggestions[field] = s
	}
	return s
}

// OptimiseAll rewrites every non-empty long-text field of r concurrently and
// replaces the suggestion set with the results, in schema order.
func (c *Coordinator) OptimiseAll(ctx context.Context, r types.Record) []Suggestion {
	return c.OptimiseAllWithProgress(ctx, r, nil)
}

// OptimiseAllWithProgress is OptimiseAll with a callback invoked as each field finishes.
// Callbacks are serialised but arrive in completion order.
func (c *Coordinator) OptimiseAllWithProgress(ctx context.Context, r types.Record, progress func(Suggestion)) []Suggestion {
	fields := OptimisableFields(r)
	results := make([]Suggestion, len(fields))

	var progressMu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxParallelRewrites)

	for i, field := range fields {
		g.Go(func() error {
			results[i] = c.rewrite(ctx, field, r.Get(field))
			if progress != nil {
				progressMu.Lock()
				progress(results[i])
				progressMu.Unlock()
			}
			return nil
		})
	}
	// Rewrite failures degrade instead of erroring, so Wait cannot fail
	_ = g.Wait()

	c.suggestions = make(map[string]Suggestion, len(results))
	for _, s := range results {
		c.suggestions[s.Field] = s
	}

	c.logger.Info("optimised advert fields",
		zap.Int("fields", len(results)),
		zap.Int("degraded", countDegraded(results)))
	return results
}

// Apply writes the pending suggestion for field into st and removes it from the set
func (c *Coordinator) Apply(field string, st *store.Store) error {
	s, ok := c.suggestions[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuggestion, field)
	}
	if err := st.Set(field, s.Text); err != nil {
		return err
	}
	delete(c.suggestions, field)
	return nil
}

// Discard drops the suggestion for field, reporting whether one existed
func (c *Coordinator) Discard(field string) bool {
	_, ok := c.suggestions[field]
	delete(c.suggestions, field)
	return ok
}

// Clear drops every suggestion
func (c *Coordinator) Clear() {
	c.suggestions = make(map[string]Suggestion)
}

// Prune drops suggestions for fields that are now empty in r
func (c *Coordinator) Prune(r types.Record) {
	for field := range c.suggestions {
		if strings.TrimSpace(r.Get(field)) == "" {
			delete(c.suggestions, field)
		}
	}
}

// Get returns the pending suggestion for field
func (c *Coordinator) Get(field string) (Suggestion, bool) {
	s, ok := c.suggestions[field]
	return s, ok
}

// Suggestions returns the pending suggestions in schema order
func (c *Coordinator) Suggestions() []Suggestion {
	out := make([]Suggestion, 0, len(c.suggestions))
	for _, field := range types.LongTextFields() {
		if s, ok := c.suggestions[field]; ok {
			out = append(out, s)
		}
	}
	return out
}

// OptimisableFields returns the long-text fields of r that hold a value, in schema order
func OptimisableFields(r types.Record) []string {
	var fields []string
	for _, field := range types.LongTextFields() {
		if strings.TrimSpace(r.Get(field)) != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

func (c *Coordinator) rewrite(ctx context.Context, field, text string) Suggestion {
	s := Suggestion{Field: field, Original: text, Text: text}
	if strings.TrimSpace(text) == "" {
		return s
	}
	if types.KindOf(field) != types.KindLongText {
		c.logger.Warn("refusing to optimise non long-text field", zap.String("field", field))
		s.Degraded = true
		return s
	}

	rewritten, err := c.rewriter.Rewrite(ctx, field, text)
	if err != nil {
		c.logger.Warn("rewrite degraded to original text",
			zap.String("field", field),
			zap.Error(err))
		s.Degraded = true
		return s
	}
	if strings.TrimSpace(rewritten) == "" {
		c.logger.Warn("rewrite returned blank text, keeping original", zap.String("field", field))
		s.Degraded = true
		return s
	}

	s.Text = rewritten
	s.Flags = rewriting.ReviewFlags(text, rewritten)
	return s
}

func countDegraded(suggestions []Suggestion) int {
	n := 0
	for _, s := range suggestions {
		if s.Degraded {
			n++
		}
	}
	return n
}
