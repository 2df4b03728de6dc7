package server

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/db"
	"github.com/jonathan/advert-optimiser/internal/interview"
)

// handleListAdverts lists published adverts, newest first
func (s *Server) handleListAdverts(w http.ResponseWriter, r *http.Request) {
	if s.adverts == nil {
		s.writeError(w, fmt.Errorf("published adverts: %w", ErrNotConfigured), nil)
		return
	}

	q := listAdvertsQuery{Department: r.URL.Query().Get("department")}
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: name, Message: "must be an integer"}, nil)
			return
		}
		*dst = n
	}
	if err := s.validate.Struct(q); err != nil {
		s.writeError(w, err, nil)
		return
	}

	adverts, total, err := s.adverts.ListAdverts(r.Context(), db.ListAdvertsOptions{
		Department: q.Department,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if adverts == nil {
		adverts = []db.Advert{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"adverts": adverts,
		"total":   total,
	})
}

// handleGetAdvert returns one published advert
func (s *Server) handleGetAdvert(w http.ResponseWriter, r *http.Request) {
	if s.adverts == nil {
		s.writeError(w, fmt.Errorf("published adverts: %w", ErrNotConfigured), nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	advert, err := s.adverts.GetAdvertByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if advert == nil {
		s.writeError(w, ErrAdvertNotFound, nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, advert)
}

// handleDeleteAdvert withdraws a published advert
func (s *Server) handleDeleteAdvert(w http.ResponseWriter, r *http.Request) {
	if s.adverts == nil {
		s.writeError(w, fmt.Errorf("published adverts: %w", ErrNotConfigured), nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err, nil)
		return
	}

	deleted, err := s.adverts.DeleteAdvert(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if !deleted {
		s.writeError(w, ErrAdvertNotFound, nil)
		return
	}
	s.logger.Info("advert withdrawn", zap.String("advert_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// handleInterviewQuestions generates interview questions from the five interview answers
func (s *Server) handleInterviewQuestions(w http.ResponseWriter, r *http.Request) {
	if s.questions == nil {
		s.writeError(w, fmt.Errorf("interview questions: %w", ErrNotConfigured), nil)
		return
	}

	var req questionsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	questions := interview.Questions(r.Context(), s.questions, interview.Answers{
		RoleTitle:        req.RoleTitle,
		GradeLevel:       req.GradeLevel,
		CoreCapabilities: req.CoreCapabilities,
		ExperienceFocus:  req.ExperienceFocus,
		RoleContext:      req.RoleContext,
	})
	s.jsonResponse(w, http.StatusOK, map[string]any{"questions": questions})
}
