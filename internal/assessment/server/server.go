// Package server exposes an assessment.Service over the examly REST API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/validation"
)

// APIVersion is reported by GET /api/v1/version.
const APIVersion = "v1.1.0"

// maxBody caps request bodies. A finish payload for a grouped session is a
// few kilobytes.
const maxBody = 1 << 20

type handler struct {
	svc assessment.Service
	log zerolog.Logger
}

type options struct {
	log     zerolog.Logger
	auth    *Auth
	origins []string
}

// Option configures the router.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithAuth requires bearer tokens on every route except the version probe.
func WithAuth(a *Auth) Option {
	return func(o *options) { o.auth = a }
}

// WithAllowedOrigins restricts CORS. No origins means any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(o *options) { o.origins = origins }
}

// NewRouter builds the HTTP handler serving svc.
func NewRouter(svc assessment.Service, opts ...Option) http.Handler {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	origins := o.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &handler{svc: svc, log: o.log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(o.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", h.version)

		r.Group(func(r chi.Router) {
			if o.auth != nil {
				r.Use(o.auth.Middleware)
			}
			r.Get("/subjects", h.listSubjects)
			r.Get("/subjects/{subjectID}/topics", h.listTopics)
			r.Post("/sessions", h.startSession)
			r.Post("/sessions/{sessionID}/finish", h.finishSession)
		})
	})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func (h *handler) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": APIVersion})
}

func (h *handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.FetchSubjects(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.FetchTopics(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

type startBody struct {
	SubjectIDs []string        `json:"subject_ids" validate:"required,min=1,max=2,dive,required"`
	TopicID    string          `json:"topic_id"`
	Mode       assessment.Mode `json:"mode" validate:"required,oneof=grouped mixed"`
	StartTime  time.Time       `json:"start_time" validate:"required"`
	EndTime    time.Time       `json:"end_time" validate:"required,gtfield=StartTime"`
}

func (h *handler) startSession(w http.ResponseWriter, r *http.Request) {
	var body startBody
	if !h.decode(w, r, &body) {
		return
	}
	resp, err := h.svc.StartSession(r.Context(), assessment.StartRequest{
		SubjectIDs: body.SubjectIDs,
		TopicID:    body.TopicID,
		Mode:       body.Mode,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info().
		Str("session_id", resp.SessionID).
		Str("mode", string(body.Mode)).
		Strs("subject_ids", body.SubjectIDs).
		Int("questions", len(resp.Questions)).
		Msg("session started")
	writeJSON(w, http.StatusCreated, resp)
}

type answerBody struct {
	QuestionID       string  `json:"question_id" validate:"required"`
	SelectedOptionID *string `json:"selected_option_id"`
}

type finishBody struct {
	Answers []answerBody `json:"answers" validate:"required,dive"`
}

func (h *handler) finishSession(w http.ResponseWriter, r *http.Request) {
	var body finishBody
	if !h.decode(w, r, &body) {
		return
	}
	answers := make([]assessment.AnswerSubmission, len(body.Answers))
	for i, a := range body.Answers {
		answers[i] = assessment.AnswerSubmission{QuestionID: a.QuestionID, SelectedOptionID: a.SelectedOptionID}
	}
	sessionID := chi.URLParam(r, "sessionID")
	res, err := h.svc.FinishSession(r.Context(), sessionID, answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info().
		Str("session_id", sessionID).
		Int("correct", res.CorrectAnswers).
		Int("total", res.TotalQuestions).
		Float64("score", res.Score).
		Msg("session scored")
	writeJSON(w, http.StatusOK, res)
}

// decode reads and validates a JSON body. On failure it writes the error
// response and returns false.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidPayload, "invalid JSON body: "+err.Error())
		return false
	}
	if err := validation.Struct(dst); err != nil {
		writeFields(w, validation.Fields(err))
		return false
	}
	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	ev := h.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = h.log.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Msg("request failed")
	writeErr(w, status, code, err.Error())
}
