// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the engagement-letter tools to the local web UI:
// upload routes for rollover, entity checks, PDF printing and signing, the
// settings form, the processing history and the progress websocket.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/engagement-letters/internal/convert"
	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/secrets"
	"github.com/pdiddy/engagement-letters/internal/settings"
	"github.com/pdiddy/engagement-letters/internal/signature"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

const (
	defaultMaxUpload    = 64 << 20
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 10 * time.Minute
	shutdownGrace       = 5 * time.Second
)

// Deps are the collaborators a Server uses. Hub and Processor are
// required. A nil History disables recording; a nil Converter or nil
// Locator/Stamper make the corresponding routes answer 503.
type Deps struct {
	Config    types.AppConfig
	Logger    *slog.Logger
	Hub       *notify.Hub
	Processor *rollover.Processor
	History   *history.Store
	Converter convert.Converter
	Locator   signature.Locator
	Stamper   signature.Stamper
	Secrets   secrets.Secrets
}

// Server holds the HTTP handlers.
type Server struct {
	Deps

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// New creates the server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Secrets == nil {
		deps.Secrets = secrets.Secrets{}
	}
	return &Server{Deps: deps, shutdown: make(chan struct{})}
}

// Routes registers HTTP routes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /settings", s.getSettings)
	mux.HandleFunc("POST /settings", s.postSettings)
	mux.HandleFunc("POST /engagementLetters/document-rollover", s.documentRollover)
	mux.HandleFunc("POST /entityChecker/check-entities", s.checkEntities)
	mux.HandleFunc("POST /pdfPrinter/print-to-pdf", s.printToPDF)
	mux.HandleFunc("POST /pdfSignatures/add-signatures", s.addSignatures)
	mux.HandleFunc("GET /history", s.getHistory)
	mux.HandleFunc("GET /history/runs", s.getRuns)
	mux.Handle("GET /socket", s.Hub.Handler())
	mux.HandleFunc("POST /shutdown", s.postShutdown)
	if dir := s.Config.Paths.FrontendDir; dir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(dir)))
	}
	return s.recoverer(s.logRequests(mux))
}

// ShutdownRequested is closed when POST /shutdown has been accepted.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdown
}

// ListenAndServe serves on the configured host and port until ctx is done
// or a shutdown is requested, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.Config.Server
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.Config.Server
	srv := &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  orDefault(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: orDefault(cfg.WriteTimeout, defaultWriteTimeout),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	case <-s.shutdown:
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (s *Server) postShutdown(w http.ResponseWriter, r *http.Request) {
	if !s.Secrets.Check(secrets.ShutdownToken, r.Header.Get("X-Shutdown-Token")) {
		writeJSON(w, http.StatusForbidden, statusResponse{Status: "error", Message: "invalid shutdown token"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server shutting down...\n"))
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

// statusResponse is the JSON body of simple success and error responses.
type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// processedDir returns the output directory: the PROCESSED_FILES_DIRECTORY
// user setting when present, else paths.processed_dir.
func (s *Server) processedDir() string {
	if list, err := settings.Load(s.Config.Paths.SettingsFile); err == nil {
		if dir, ok := settings.String(list, settings.ProcessedFilesDirectory); ok && dir != "" {
			return dir
		}
	}
	return s.Config.Paths.ProcessedDir
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// sendError emits a process-error event and logs it.
func (s *Server) sendError(process, method, title, msg string) {
	s.Logger.Error(msg, "process", process)
	s.Hub.Send(notify.ProcessError, notify.ErrorDetail{
		Error:   title,
		Message: msg,
		Process: process,
		Method:  method,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes the connection through to the websocket handler.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.Logger.Error("unhandled panic", "method", r.Method, "path", r.URL.Path, "panic", v)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprint(v)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
