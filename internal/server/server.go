// Package server implements the admin endpoint that deployment tooling
// polls for a function descriptor.
//
// Routes:
//
//	GET /__/functions.yaml   descriptor as YAML (text/yaml)
//	GET /__/functions.json   descriptor as indented JSON
//	GET /__/quitquitquit     answers OK, then stops the server
//
// Both descriptor routes carry an ETag equal to the descriptor content hash
// and honour If-None-Match.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
)

const (
	// PortEnv names the environment variable holding the listen port.
	PortEnv = "ADMIN_PORT"
	// DefaultPort is used when PortEnv is unset or empty.
	DefaultPort = "8081"

	shutdownTimeout = 5 * time.Second
)

// Source supplies the descriptor. *functions.Context satisfies it.
type Source interface {
	Manifest() *manifest.Stack
}

// Server serves the descriptor of a Source. It is an http.Handler.
type Server struct {
	src    Source
	ids    IDGenerator
	logger *slog.Logger
	mux    *http.ServeMux

	quit     chan struct{}
	quitOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithIDGenerator sets the request id source. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Server) { s.ids = g }
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server for src.
func New(src Source, opts ...Option) *Server {
	s := &Server{
		src:    src,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
		mux:    http.NewServeMux(),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /__/functions.yaml", s.handleYAML)
	s.mux.HandleFunc("GET /__/functions.json", s.handleJSON)
	s.mux.HandleFunc("GET /__/quitquitquit", s.handleQuit)
	return s
}

// Addr returns the listen address, taking the port from ADMIN_PORT.
func Addr(lookup params.LookupFunc) string {
	port := DefaultPort
	if lookup != nil {
		if p, ok := lookup(PortEnv); ok && p != "" {
			port = p
		}
	}
	return net.JoinHostPort("localhost", port)
}

// Done is closed once /__/quitquitquit has been requested.
func (s *Server) Done() <-chan struct{} {
	return s.quit
}

// ServeHTTP tags the request with an id, dispatches it and logs the result.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := s.ids.Generate()
	w.Header().Set("X-Request-Id", id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	s.logger.Info("admin request",
		"request_id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or
// /__/quitquitquit is requested, then shuts down gracefully.
// A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("admin server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	case <-s.quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("admin server stopped")
	return nil
}

func (s *Server) handleYAML(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, "text/yaml", spec.MarshalYAML)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, "application/json", spec.MarshalJSONIndent)
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, contentType string, marshal func(spec.Value) ([]byte, error)) {
	doc, err := s.src.Manifest().ToSpec()
	if err != nil {
		s.fail(w, err)
		return
	}
	hash, err := spec.ManifestHash(doc)
	if err != nil {
		s.fail(w, err)
		return
	}

	etag := `"` + hash + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, err := marshal(doc)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
	s.quitOnce.Do(func() { close(s.quit) })
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("render descriptor", "error", err)
	http.Error(w, "descriptor unavailable", http.StatusInternalServerError)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
