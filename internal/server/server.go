// Package server exposes the executor over HTTP: a small JSON API and,
// optionally, the embedded browser terminal.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cmdterm/internal/history"
	"cmdterm/internal/shell"
)

//go:embed webui/*.tmpl
var webTemplates embed.FS

const (
	shutdownTimeout     = 5 * time.Second
	defaultHistoryLimit = 50
	requestIDHeader     = "X-Request-ID"
)

// History is the persistence the server records to and lists from.
type History interface {
	Add(ctx context.Context, e history.Entry) error
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Options configures a Server.
type Options struct {
	Executor *shell.Executor
	History  History
	Logger   *zap.Logger
	// UI serves the browser terminal at "/".
	UI    bool
	Title string
}

// Server routes HTTP requests to a shared Executor.
type Server struct {
	exec      *shell.Executor
	history   History
	logger    *zap.Logger
	ui        bool
	title     string
	templates *template.Template

	// The executor mutates the process working directory, so lines run
	// one at a time.
	mu sync.Mutex
}

type runRequest struct {
	Cmd string `json:"cmd"`
}

type runResponse struct {
	Output string `json:"output"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

// New validates opts and parses the embedded page.
func New(opts Options) (*Server, error) {
	if opts.Executor == nil {
		return nil, errors.New("server requires an executor")
	}
	tmpl, err := template.ParseFS(webTemplates, "webui/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	s := &Server{
		exec:      opts.Executor,
		history:   opts.History,
		logger:    opts.Logger,
		ui:        opts.UI,
		title:     opts.Title,
		templates: tmpl,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.title == "" {
		s.title = "cmdterm"
	}
	return s, nil
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/run", s.handleRun)
	mux.HandleFunc("/api/history", s.handleHistory)
	if s.ui {
		mux.HandleFunc("/", s.handleIndex)
	}
	return s.logRequests(mux)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener and shuts down gracefully when ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", listener.Addr().String()), zap.Bool("ui", s.ui))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	out := s.exec.RunOnce(req.Cmd)
	cwd, _ := s.exec.Context().Dir()
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.Add(r.Context(), history.Entry{
			Source: history.SourceAPI,
			Line:   req.Cmd,
			Cwd:    cwd,
		}); err != nil {
			s.logger.Warn("record history", zap.String("request_id", requestID(r)), zap.Error(err))
		}
	}
	s.writeJSON(w, r, runResponse{Output: out})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries := []history.Entry{}
	if s.history != nil {
		recent, err := s.history.Recent(r.Context(), limit)
		if err != nil {
			s.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("load history: %v", err))
			return
		}
		if recent != nil {
			entries = recent
		}
	}
	s.writeJSON(w, r, historyResponse{Entries: entries})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	data := struct {
		Title   string
		RunPath string
	}{Title: s.title, RunPath: "/run"}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html.tmpl", data); err != nil {
		s.logger.Error("render index", zap.String("request_id", requestID(r)), zap.Error(err))
	}
}

type requestIDKey struct{}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("remote", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Warn("request failed",
		zap.String("request_id", requestID(r)),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("error", message),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", zap.String("request_id", requestID(r)), zap.Error(err))
	}
}
