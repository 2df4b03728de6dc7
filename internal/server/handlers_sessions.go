package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/db"
	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/schemas"
	"github.com/jonathan/advert-optimiser/internal/session"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/validation"
)

// maxRecordBytes caps the size of a replacement record document
const maxRecordBytes = 1 << 20

// sessionFromPath looks up the session named by the {id} path parameter
func (s *Server) sessionFromPath(r *http.Request) (*session.Session, error) {
	id, err := pathUUID(r, "id")
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(id)
}

// ingest runs src through sess when a source was supplied, writing the response
func (s *Server) ingest(w http.ResponseWriter, r *http.Request, sess *session.Session, src ingestion.Source, okStatus int) {
	if _, ok := src.Kind(); !ok {
		snap := sess.Snapshot()
		if okStatus == http.StatusCreated {
			s.jsonResponse(w, okStatus, snap)
			return
		}
		s.writeError(w, ingestion.ErrSourceMissing, &snap)
		return
	}

	snap, err := sess.Ingest(r.Context(), src)
	if err != nil {
		s.writeError(w, err, &snap)
		return
	}
	s.jsonResponse(w, okStatus, snap)
}

// handleCreateSession creates a session, extracting the advert when a source is supplied
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	src, err := s.readSource(w, r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	sess := s.sessions.Create()
	w.Header().Set("Location", "/sessions/"+sess.ID().String())
	s.ingest(w, r, sess, src, http.StatusCreated)
}

// handleGetSession returns the session snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleDeleteSession discards a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if !s.sessions.Delete(id) {
		s.writeError(w, session.ErrSessionNotFound, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExtract replaces the session record with one extracted from a new source
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	src, err := s.readSource(w, r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.ingest(w, r, sess, src, http.StatusOK)
}

// handleAnswer submits an answer for the prompted field
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	var req answerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	result, err := sess.SubmitAnswer(r.Context(), req.Field, req.Value)
	if err != nil {
		snap := sess.Snapshot()
		s.writeError(w, err, &snap)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// replaceResponse is returned by PUT /sessions/{id}/record
type replaceResponse struct {
	Suggestions []optimisation.Suggestion `json:"suggestions"`
	Session     session.Snapshot          `json:"session"`
}

// handleReplaceRecord overwrites the record with a schema-valid document
func (s *Server) handleReplaceRecord(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "record document too large")
		return
	}
	if err := schemas.ValidateRecord(data); err != nil {
		var docErr *schemas.DocumentError
		if errors.As(err, &docErr) {
			err = &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
		s.writeError(w, err, nil)
		return
	}
	record, err := types.ParseRecord(data)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()}, nil)
		return
	}

	suggestions := sess.ReplaceAll(r.Context(), record)
	s.jsonResponse(w, http.StatusOK, replaceResponse{
		Suggestions: suggestions,
		Session:     sess.Snapshot(),
	})
}

// handleOptimise rewrites every non-empty long-text field
func (s *Server) handleOptimise(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	suggestions := sess.OptimiseAll(r.Context(), nil)
	s.jsonResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// handleOptimiseStream is handleOptimise reporting each field over SSE as it finishes
func (s *Server) handleOptimiseStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	fields := optimisation.OptimisableFields(sess.Record())
	stream := openEventStream(w)
	if err := stream.send("start", map[string]any{"fields": fields}); err != nil {
		s.logger.Debug("optimise stream closed before start", zap.Error(err))
	}

	done := 0
	suggestions := sess.OptimiseAll(r.Context(), func(sg optimisation.Suggestion) {
		done++
		// a closed stream still lets the optimisation finish
		_ = stream.send("suggestion", suggestionEvent{Suggestion: sg, Done: done, Total: len(fields)})
	})

	if err := r.Context().Err(); err != nil {
		stream.fail(fmt.Sprintf("optimisation interrupted: %v", err))
		return
	}
	stream.complete(len(suggestions), countDegraded(suggestions))
}

// suggestionEvent is one progress event of the optimise stream
type suggestionEvent struct {
	optimisation.Suggestion
	Done  int `json:"done"`
	Total int `json:"total"`
}

func countDegraded(suggestions []optimisation.Suggestion) int {
	n := 0
	for _, sg := range suggestions {
		if sg.Degraded {
			n++
		}
	}
	return n
}

// handleApplySuggestion writes a pending suggestion into the record
func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	field := r.PathValue("field")
	if !types.IsField(field) {
		s.writeError(w, &ErrValidation{Field: "field", Message: "unknown field " + field}, nil)
		return
	}

	snap, err := sess.ApplySuggestion(field)
	if err != nil {
		s.writeError(w, err, &snap)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleDiscardSuggestion drops a pending suggestion
func (s *Server) handleDiscardSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	field := r.PathValue("field")
	if !sess.DiscardSuggestion(field) {
		s.writeError(w, fmt.Errorf("%w: %s", optimisation.ErrNoSuggestion, field), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport downloads the record as job-schema.json
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	data, err := sess.Export()
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="job-schema.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// handlePublish saves the current record to the advert store
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if s.adverts == nil {
		s.writeError(w, fmt.Errorf("publishing: %w", ErrNotConfigured), nil)
		return
	}
	sess, err := s.sessionFromPath(r)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	var req publishRequest
	if r.ContentLength != 0 {
		if err := s.decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err, nil)
			return
		}
	}

	snap := sess.Snapshot()
	if rejected := validation.CheckRecord(snap.Record); len(rejected) > 0 {
		s.writeError(w, rejected[0], &snap)
		return
	}
	sourceURL := req.SourceURL
	if sourceURL == "" && snap.Source != nil {
		sourceURL = snap.Source.URL
	}

	advert, err := s.adverts.SaveAdvert(r.Context(), &db.AdvertCreateInput{
		Record:    snap.Record,
		SourceURL: sourceURL,
	})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.logger.Info("advert published",
		zap.String("advert_id", advert.ID.String()),
		zap.String("session_id", snap.ID.String()))
	s.jsonResponse(w, http.StatusCreated, advert)
}
