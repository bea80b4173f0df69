package cluster

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/coffersTech/logserv/internal/apierr"
)

// Server exposes an Aggregator over HTTP, playing the same role the Local
// Handler plays for a single instance: it wires the HTTP surface to the
// Aggregator's fan-out and writes the merged response.
type Server struct {
	baseDir string
	agg     *Aggregator
	srv     *http.Server
}

// NewServer builds an aggregator-mode Server rooted at baseDir, fanning
// out to peers.
func NewServer(baseDir string, peers []string) *Server {
	return &Server{baseDir: baseDir, agg: NewAggregator(peers)}
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
	result, err := s.agg.Search(r, s.baseDir)
	if err != nil {
		body, status := errorBody(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, result)
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
