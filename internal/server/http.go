// Package server implements the Local Handler: the HTTP surface that wires
// the Request Validator to the Continuation Codec to the Search Engine for
// a single LogServ instance.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coffersTech/logserv/internal/apierr"
	"github.com/coffersTech/logserv/internal/engine"
	"github.com/coffersTech/logserv/internal/model"
	"github.com/coffersTech/logserv/internal/storage"
	"github.com/coffersTech/logserv/internal/token"
	"github.com/coffersTech/logserv/internal/validate"
)

// Server serves search requests against files under baseDir.
type Server struct {
	baseDir string
	srv     *http.Server
}

// New builds a Server rooted at baseDir, the directory every request's
// path is resolved and traversal-guarded against.
func New(baseDir string) *Server {
	return &Server{baseDir: baseDir}
}

// Start runs the HTTP server on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.logged(s.handleSearch))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, status := s.serve(r)
	writeJSON(w, status, body)
}

// serve implements the Local Handler's wiring: Validator -> Codec ->
// Engine -> response body.
func (s *Server) serve(r *http.Request) (any, int) {
	req, err := validate.ParseRequest(r.Method, r.URL.Path, r.URL.Query(), s.baseDir)
	if err != nil {
		return errorBody(err)
	}

	var opts model.SearchOptions
	if req.Cont != "" {
		resumeFrom, maxResults, q, err := token.DecodeLocal(req.Cont)
		if err != nil {
			return errorBody(err)
		}
		opts = validate.ClampSearchOptions(model.SearchOptions{
			MaxResults: maxResults,
			Query:      q,
			ResumeFrom: &resumeFrom,
		})
	} else {
		opts, err = validate.NormalizeSearchOptions(req.N, req.S)
		if err != nil {
			return errorBody(err)
		}
	}

	result, err := engine.Search(req.Path, opts)
	if err != nil {
		return errorBody(classify(err))
	}

	body := map[string]any{"entries": result.Entries}
	if result.ResumeFrom != nil {
		body["cont"] = token.EncodeLocal(*result.ResumeFrom, opts.MaxResults, opts.Query)
	}
	return body, http.StatusOK
}

// classify maps an error surfaced from storage/engine onto the fixed
// error taxonomy, so the handler boundary never has to guess a status.
func classify(err error) *apierr.Error {
	if e, ok := apierr.As(err); ok {
		return e
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apierr.NotFoundErr()
	case errors.Is(err, storage.ErrInvalidOffset):
		return apierr.Validationf("invalid continuation token")
	default:
		return apierr.Wrap(err)
	}
}

func errorBody(err error) (any, int) {
	e, ok := apierr.As(err)
	if !ok {
		e = apierr.Wrap(err)
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case apierr.Validation:
		status = http.StatusBadRequest
	case apierr.NotFound:
		status = http.StatusNotFound
	}
	if e.Kind == apierr.Unexpected {
		log.Printf("unexpected error: %v", e)
	}
	return map[string]string{"error": e.Message}, status
}

// writeJSON encodes body as two-space-indented JSON with a trailing
// newline, per the wire contract LogServ's clients expect.
func writeJSON(w http.ResponseWriter, status int, body any) {
	raw, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		log.Printf("response encode failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	w.Write(raw)
	w.Write([]byte("\n"))
}
