package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/validation"
)

// sourceRequest is the JSON form of an advert source
type sourceRequest struct {
	Text string `json:"text" validate:"max=200000"`
	URL  string `json:"url" validate:"omitempty,max=2048"`
}

// answerRequest answers the currently prompted field
type answerRequest struct {
	Field string `json:"field" validate:"required,advert_field"`
	Value string `json:"value" validate:"max=20000"`
}

// publishRequest optionally overrides the source URL stored with a published advert
type publishRequest struct {
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

// questionsRequest carries the interview answers
type questionsRequest struct {
	RoleTitle        string `json:"role_title" validate:"required,max=200"`
	GradeLevel       string `json:"grade_level" validate:"required,max=200"`
	CoreCapabilities string `json:"core_capabilities" validate:"required,max=2000"`
	ExperienceFocus  string `json:"experience_focus" validate:"required,max=2000"`
	RoleContext      string `json:"role_context" validate:"required,max=2000"`
}

// listAdvertsQuery is the parsed query string of GET /adverts
type listAdvertsQuery struct {
	Department string `validate:"max=200"`
	Limit      int    `validate:"gte=0,lte=100"`
	Offset     int    `validate:"gte=0"`
}

// newValidator returns a validator that reports JSON field names and knows the advert schema
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	//nolint:errcheck // both tags are constants with valid names
	validation.RegisterTags(v)
	return v
}

// decodeJSON reads a JSON body into dst and validates it
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return s.validate.Struct(dst)
}

// readSource builds an ingestion source from a multipart form (field "file",
// optional "text" and "url") or a JSON body. An empty body yields an empty source.
func (s *Server) readSource(w http.ResponseWriter, r *http.Request) (ingestion.Source, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readMultipartSource(w, r)
	}

	if r.ContentLength == 0 {
		return ingestion.Source{}, nil
	}
	var req sourceRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return ingestion.Source{}, err
	}
	return ingestion.Source{Text: req.Text, URL: req.URL}, nil
}

func (s *Server) readMultipartSource(w http.ResponseWriter, r *http.Request) (ingestion.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ingestion.Source{}, &ErrValidation{Field: "file", Message: fmt.Sprintf("upload exceeds %d bytes", s.maxUpload)}
		}
		return ingestion.Source{}, &ErrValidation{Field: "body", Message: "invalid multipart form"}
	}

	src := ingestion.Source{
		Text: r.FormValue("text"),
		URL:  r.FormValue("url"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return src, nil
	}
	if err != nil {
		return ingestion.Source{}, &ErrValidation{Field: "file", Message: err.Error()}
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return ingestion.Source{}, &ErrValidation{Field: "file", Message: "could not read upload"}
	}
	src.Filename = header.Filename
	src.Data = data
	return src, nil
}

// pathUUID parses a path parameter as a UUID
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}
