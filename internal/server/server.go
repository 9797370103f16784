// Package server exposes the formatter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/leapfmt/internal/cache"
	"github.com/leapstack-labs/leapfmt/internal/engine"
	"github.com/leapstack-labs/leapfmt/pkg/format"
	"github.com/leapstack-labs/leapfmt/pkg/parser"
	"github.com/leapstack-labs/leapfmt/pkg/style"
	"golang.org/x/sync/errgroup"
)

// maxSourceBytes bounds a request body.
const maxSourceBytes = 8 << 20

// Server is the HTTP formatting server.
type Server struct {
	engine  *engine.Engine
	cache   *cache.Store
	addr    string
	version string
	logger  *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	// Engine formats requests that do not name a style.
	Engine *engine.Engine
	// Cache is shared by engines built for requests naming another style.
	Cache   *cache.Store
	Addr    string
	Version string
	Logger  *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:  cfg.Engine,
		cache:   cfg.Cache,
		addr:    cfg.Addr,
		version: cfg.Version,
		logger:  logger,
	}
}

// FormatRequest is the body of POST /v1/format.
type FormatRequest struct {
	Source string   `json:"source"`
	Style  string   `json:"style,omitempty"`
	Lines  []string `json:"lines,omitempty"`
}

// FormatResponse is the successful reply of POST /v1/format.
type FormatResponse struct {
	Formatted string `json:"formatted"`
	Changed   bool   `json:"changed"`
	Cached    bool   `json:"cached"`
}

// ErrorResponse is the reply to a failed request. Line and Column are set
// when the error has a position in the source; Column is 1-based.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Handler returns the router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
	)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Post("/format", s.handleFormat)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, style.All())
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	lines := make([]format.LineRange, 0, len(req.Lines))
	for _, l := range req.Lines {
		lr, err := format.ParseLineRange(l)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		lines = append(lines, lr)
	}

	eng, err := s.engineFor(req.Style)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	out, cached, err := eng.Format(r.Context(), req.Source, lines)
	if err != nil {
		status, resp := errorResponse(err)
		s.logger.Debug("format failed", "error", err, "status", status)
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{Formatted: out, Changed: out != req.Source, Cached: cached})
}

// engineFor returns the default engine, or a new one for a named style.
func (s *Server) engineFor(name string) (*engine.Engine, error) {
	if name == "" || style.Name(name) == s.engine.Style().Style {
		return s.engine, nil
	}
	opts, err := style.Lookup(name)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		Style:   opts,
		Cache:   s.cache,
		Version: s.version,
		Logger:  s.logger,
	})
}

// errorResponse maps a formatting error to a status and body. Errors with
// a position in the source are unprocessable input; anything else is a
// server failure.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		lexErr   *parser.LexError
		parseErr *parser.ParseError
		ff       *format.FormattingFault
		cf       *format.ConsistencyFault
	)
	resp := ErrorResponse{Error: err.Error()}
	switch {
	case errors.As(err, &lexErr):
		resp.Kind, resp.Line, resp.Column = "lex-error", lexErr.Pos.Line, lexErr.Pos.Column+1
	case errors.As(err, &parseErr):
		resp.Kind, resp.Line, resp.Column = "parse-error", parseErr.Pos.Line, parseErr.Pos.Column+1
	case errors.As(err, &ff):
		resp.Kind, resp.Line, resp.Column = "formatting-fault", ff.Line, ff.Column+1
	case errors.As(err, &cf):
		resp.Kind, resp.Line, resp.Column = "consistency-fault", cf.Line, cf.Column+1
	default:
		return http.StatusInternalServerError, resp
	}
	return http.StatusUnprocessableEntity, resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
