// Package server exposes generation and run history over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/converters"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/generate"
	"github.com/GabrielNunesIT/loadplan/internal/store"
)

const maxBodyBytes = 32 << 20

// Server wraps the API handlers.
type Server struct {
	log   logger.ILogger
	svc   *generate.Service
	store store.Store
	mux   *http.ServeMux
}

// New constructs a Server with routes registered. st may be nil, in which case
// the run history routes are not served.
func New(log logger.ILogger, svc *generate.Service, st store.Store) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service is nil")
	}

	srv := &Server{
		log:   log,
		svc:   svc,
		store: st,
		mux:   http.NewServeMux(),
	}
	srv.registerRoutes()
	return srv, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	s.log.Infof("Listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/operations", s.handleOperations)

	if s.store != nil {
		s.mux.HandleFunc("/api/runs", s.handleRuns)
		s.mux.HandleFunc("/api/runs/", s.handleRunRoutes)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	Spec         string             `json:"spec"`
	Source       string             `json:"source"`
	Format       string             `json:"format"`
	BaseURL      string             `json:"base_url"`
	CustomPrompt string             `json:"custom_prompt"`
	Load         *domain.LoadConfig `json:"load"`
}

// decodeRequest reads a generation request. Load fields missing from the body
// keep the service defaults.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (generate.Request, error) {
	load := s.svc.LoadDefaults()
	req := generateRequest{Load: &load}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return generate.Request{}, fmt.Errorf("invalid json: %w", err)
	}
	if req.Load == nil {
		req.Load = &load
	}

	return generate.Request{
		Spec:         []byte(req.Spec),
		Source:       req.Source,
		Format:       req.Format,
		BaseURL:      req.BaseURL,
		CustomPrompt: req.CustomPrompt,
		Load:         req.Load,
	}, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := s.decodeRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Format) == "" {
		req.Format = "jmeter"
	}

	var buf bytes.Buffer
	run, err := s.svc.Generate(r.Context(), req, &buf)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", converters.ContentType(run.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, artifactName(run.Title), converters.Extension(run.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if run.ID != "" {
		w.Header().Set("X-Run-ID", run.ID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := s.decodeRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec, err := s.svc.Parse(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generate.Summarize(spec))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := splitPath(r.URL.Path, "/api/runs/")
	if !ok || id == "" || tail != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.store.GetRun(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case http.MethodDelete:
		if err := s.store.DeleteRun(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeError maps err to 400, 404 or 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case generate.IsBadInput(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Errorf("Request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func artifactName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, title)
	if name == "" {
		return "loadplan"
	}
	return name
}

func splitPath(fullPath, prefix string) (string, string, bool) {
	if !strings.HasPrefix(fullPath, prefix) {
		return "", "", false
	}
	rest := strings.Trim(strings.TrimPrefix(fullPath, prefix), "/")
	if rest == "" {
		return "", "", false
	}
	id, tail, _ := strings.Cut(rest, "/")
	return id, tail, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
