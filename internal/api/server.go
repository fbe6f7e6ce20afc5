package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/whomstve123/mixing-api/internal/config"
	"github.com/whomstve123/mixing-api/internal/deps"
	"github.com/whomstve123/mixing-api/internal/logging"
	"github.com/whomstve123/mixing-api/internal/mixing"
	"github.com/whomstve123/mixing-api/internal/preflight"
)

// MixRunner executes validated mix requests.
type MixRunner interface {
	Run(ctx context.Context, requestID string, req mixing.Request) (*mixing.Result, error)
	Finish(ctx context.Context, result *mixing.Result)
}

// Server serves the stemmix HTTP API.
type Server struct {
	bind            string
	maxBodyBytes    int64
	allowedOrigins  []string
	shutdownTimeout time.Duration
	version         string
	runner          MixRunner
	checkDeps       func() []deps.Status
	logger          *slog.Logger

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// Option customizes a Server.
type Option func(*Server)

// WithVersion sets the version reported by GET /.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDependencyCheck replaces the binary availability probe.
func WithDependencyCheck(check func() []deps.Status) Option {
	return func(s *Server) {
		if check != nil {
			s.checkDeps = check
		}
	}
}

// NewServer builds the API server from cfg. runner handles POST /mix.
func NewServer(cfg *config.Config, runner MixRunner, opts ...Option) *Server {
	s := &Server{
		bind:            cfg.ListenAddress(),
		maxBodyBytes:    cfg.Server.MaxBodyBytes,
		allowedOrigins:  cfg.Server.AllowedOrigins,
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
		version:         "dev",
		runner:          runner,
		checkDeps:       func() []deps.Status { return preflight.CheckSystemDeps(cfg) },
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "api-server")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /mix", s.handleMix)
	mux.HandleFunc("/mix", s.handleMethodNotAllowed)
	mux.HandleFunc("/", s.handleNotFound)

	s.handler = s.recoverPanics(s.cors(s.logRequests(mux)))
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight mixes to
// finish streaming, up to the configured shutdown timeout.
func (s *Server) Shutdown() error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, RequestID: w.Header().Get(requestIDHeader)})
}
