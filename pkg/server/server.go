package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/protocol"
	"github.com/dna-dev/dna/pkg/registry"
	"github.com/dna-dev/dna/pkg/telemetry"
)

// Server serves element definitions over HTTP and WebSocket.
type Server struct {
	registry *registry.Registry
	config   *Config
	codec    protocol.Codec
	sessions *SessionManager
	upgrader websocket.Upgrader
	router   chi.Router

	// Telemetry
	metrics  *telemetry.Prometheus
	gatherer prometheus.Gatherer
	tracing  telemetry.Recorder
	recorder telemetry.Recorder

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics records element metrics in m and serves g on the metrics path.
// A nil gatherer disables the metrics route.
func WithMetrics(m *telemetry.Prometheus, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTracing adds a span recorder for element render cycles.
func WithTracing(r telemetry.Recorder) Option {
	return func(s *Server) { s.tracing = r }
}

// New creates a server for the definitions in reg. A nil config uses
// DefaultConfig.
func New(reg *registry.Registry, config *Config, opts ...Option) (*Server, error) {
	config = config.withDefaults()
	codec, err := protocol.ForName(config.Encoding)
	if err != nil {
		return nil, err
	}

	s := &Server{
		registry: reg,
		config:   config,
		codec:    codec,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")

	var recorders []telemetry.Recorder
	if s.metrics != nil {
		recorders = append(recorders, s.metrics)
	}
	if s.tracing != nil {
		recorders = append(recorders, s.tracing)
	}
	s.recorder = telemetry.Multi(recorders...)

	s.sessions = NewSessionManager(s.logger)
	if s.metrics != nil {
		s.sessions.SetOnSessionOpen(func(*Session) { s.metrics.SessionOpened() })
		s.sessions.SetOnSessionClose(func(*Session) { s.metrics.SessionClosed() })
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/elements", s.handleElements)
	r.Get("/render/{tag}", s.handleRender)
	r.Get("/ws/{tag}", s.HandleWebSocket)
	if s.gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Run serves on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "address", s.config.Address, "encoding", s.codec.Name())
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown(context.Background())
	})
	return g.Wait()
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down", "sessions", s.sessions.Count())
	s.sessions.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// elementOptions returns the options every hosted element is created with.
func (s *Server) elementOptions(props map[string]any) []component.Option {
	opts := []component.Option{
		component.WithLogger(s.logger),
		component.WithRecorder(s.recorder),
		component.WithProps(props),
	}
	if s.config.MaxPasses > 0 {
		opts = append(opts, component.WithMaxPasses(s.config.MaxPasses))
	}
	return opts
}
