package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raysh454/imola/internal/app"
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/logging"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Server is the HTTP surface: HTML pages plus a small JSON API.
type Server struct {
	cfg    Config
	app    *app.Application
	router chi.Router
	pages  *pages
	logger logging.Logger
}

// NewServer builds the router and parses the page templates.
func NewServer(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: nil application")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	p, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		app:    cfg.App,
		router: chi.NewRouter(),
		pages:  p,
		logger: logger.With(logging.Field{Key: "component", Value: "server"}),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// Pages
	r.Get("/", s.handleIndex)
	r.Get("/doc/{source}/*", s.handleDocument)
	r.Get("/dictionary", s.handleDictionary)
	r.Get("/words", s.handleWords)

	// JSON API
	r.Options("/api/analyze", s.optionsHandler("POST"))
	r.Get("/api/documents", s.handleAPIDocuments)
	r.Get("/api/documents/{source}/*", s.handleAPIDocument)
	r.Get("/api/dictionary", s.handleAPIDictionary)
	r.Get("/api/words", s.handleAPIWords)
	r.Post("/api/analyze", s.handleAPIAnalyze)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler. Every request gets an id, echoed in
// the X-Request-ID header and attached to the request log line.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

	fields := []logging.Field{
		{Key: "request_id", Value: id},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	start := time.Now()
	s.router.ServeHTTP(w, r)
	fields = append(fields, logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()})
	s.logger.Info("http_request", fields...)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps corpus errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, corpus.ErrNotFound), errors.Is(err, corpus.ErrInvalidName):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// listOptions reads sort, page, size and source from the query string.
func listOptions(r *http.Request) (app.ListOptions, error) {
	q := r.URL.Query()
	key, err := corpus.ParseSortKey(q.Get("sort"))
	if err != nil {
		return app.ListOptions{}, err
	}
	opts := app.ListOptions{Source: q.Get("source"), Sort: key, Page: 1}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return app.ListOptions{}, fmt.Errorf("invalid page %q", v)
		}
		opts.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return app.ListOptions{}, fmt.Errorf("invalid size %q", v)
		}
		opts.Size = n
	}
	return opts, nil
}

// --- JSON API handlers ---

func (s *Server) handleAPIDocuments(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := s.app.List(r.Context(), opts)
	if err != nil {
		s.logger.Warn("listing documents", logging.Field{Key: "request_id", Value: requestID(r)}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleAPIDocument(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	name := chi.URLParam(r, "*")

	doc, err := s.app.Document(r.Context(), source, name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Warn("reading document", logging.Field{Key: "source", Value: source}, logging.Field{Key: "name", Value: name}, logging.Field{Key: "error", Value: err.Error()})
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAPIDictionary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dictionaryResponse(s.app.Dictionary))
}

func (s *Server) handleAPIWords(w http.ResponseWriter, r *http.Request) {
	rep, err := s.app.WordReport(r.Context())
	if err != nil {
		s.logger.Warn("counting words", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}

	var req AnalyzeRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("decoding analyze body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res := s.app.Analyze(req.Content)
	s.logger.Debug("analyzed text", logging.Field{Key: "bytes", Value: len(req.Content)}, logging.Field{Key: "score", Value: res.Score})
	writeJSON(w, http.StatusOK, res)
}
