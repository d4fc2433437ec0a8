// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package explainer assembles the code explainer HTTP service.
//
// New wires telemetry, the model handle, the analysis pipeline and the gin
// router from a Config. Run serves until its context is cancelled and then
// shuts down gracefully.
//
//	svc, err := explainer.New(explainer.Config{Port: 8000})
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return svc.Run(ctx)
package explainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/AleutianAI/CodeExplainer/services/explainer/analysis"
	"github.com/AleutianAI/CodeExplainer/services/explainer/middleware"
	"github.com/AleutianAI/CodeExplainer/services/explainer/routes"
	"github.com/AleutianAI/CodeExplainer/services/explainer/telemetry"
	"github.com/AleutianAI/CodeExplainer/services/llm"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

// =============================================================================
// Service Interface
// =============================================================================

// Service is a runnable explainer.
type Service interface {
	// Run serves HTTP until ctx is cancelled or the listener fails.
	//
	// # Description
	//
	// On cancellation the server stops accepting connections and waits up to
	// Config.ShutdownTimeout for in-flight requests. The model handle and
	// telemetry are released before Run returns, in every case.
	//
	// # Outputs
	//
	//   - error: Nil after a clean shutdown. Non-nil if the port could not
	//     be bound or shutdown timed out.
	//
	// # Limitations
	//
	//   - A Service runs once. Calling Run again fails.
	Run(ctx context.Context) error

	// Router returns the configured gin engine for tests.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures New. Zero fields take the defaults noted per field.
type Config struct {
	// Host is the bind address. Default: "0.0.0.0"
	Host string

	// Port is the HTTP port. Default: 8000
	Port int

	// AllowedOrigins is the CORS allow-list.
	// Default: http://localhost:5173 and http://localhost:5174
	AllowedOrigins []string

	// Model selects and configures the summarization backend.
	// Default backend: "none"
	Model llm.Config

	// ModelLoadTimeout bounds a single model load. Default: 2m
	ModelLoadTimeout time.Duration

	// Telemetry configures traces and metrics.
	// Default: telemetry.DefaultConfig()
	Telemetry telemetry.Config

	// RateLimitRPS enables the explain rate limiter when > 0.
	RateLimitRPS float64

	// RateLimitBurst is the limiter bucket size. Default: 10
	RateLimitBurst int

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration

	// GinMode is "debug", "release" or "test". Empty leaves gin's mode alone.
	GinMode string

	// Logger is the service logger. Default: slog.Default()
	Logger *slog.Logger
}

// =============================================================================
// Implementation
// =============================================================================

type service struct {
	config            Config
	logger            *slog.Logger
	router            *gin.Engine
	models            *llm.Handle
	metrics           *telemetry.Metrics
	telemetryShutdown func(context.Context) error
	ran               bool
}

// New builds a Service from cfg.
//
// # Description
//
// Initialization order: telemetry, metrics, model handle, router. The
// model is not loaded here; the first explain request with content loads
// it. Anything started before a failing step is torn down again.
//
// # Outputs
//
//   - Service: Ready to Run.
//   - error: Unknown exporter, unknown backend or missing credentials.
func New(cfg Config) (Service, error) {
	s := &service{config: applyConfigDefaults(cfg)}
	s.logger = s.config.Logger

	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	shutdown, err := telemetry.Init(context.Background(), s.config.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s.telemetryShutdown = shutdown

	s.metrics, err = telemetry.NewMetrics(otel.Meter("explainer"))
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	if err := s.initModel(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	}

	s.initRouter()

	s.logger.Info("Explainer service initialized",
		"backend", string(s.config.Model.Backend),
		"model", s.config.Model.ModelName,
		"traces", s.config.Telemetry.TraceExporter,
		"metrics", s.config.Telemetry.MetricExporter,
	)
	return s, nil
}

func (s *service) Run(ctx context.Context) error {
	if s.ran {
		return errors.New("service already ran")
	}
	s.ran = true

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.cleanup()
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

// serve runs the HTTP server on ln until ctx is done.
func (s *service) serve(ctx context.Context, ln net.Listener) error {
	defer s.cleanup()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting explainer server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down explainer server", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), middleware.DefaultAllowedOrigins...)
	}
	if cfg.Model.Backend == "" {
		cfg.Model.Backend = llm.BackendNone
	}
	if cfg.Model.ModelName == "" {
		cfg.Model.ModelName = llm.DefaultModelName
	}
	if cfg.ModelLoadTimeout <= 0 {
		cfg.ModelLoadTimeout = llm.DefaultLoadTimeout
	}
	if cfg.Telemetry == (telemetry.Config{}) {
		cfg.Telemetry = telemetry.DefaultConfig()
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func (s *service) initModel() error {
	loader, err := llm.NewLoader(s.config.Model)
	if err != nil {
		return err
	}
	s.models = llm.NewHandle(loader,
		llm.WithLoadTimeout(s.config.ModelLoadTimeout),
		llm.WithLogger(s.logger),
		llm.WithLoadObserver(s.metrics.RecordModelLoad),
	)
	return nil
}

func (s *service) initRouter() {
	s.router = gin.New()
	s.router.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		otelgin.Middleware(s.config.Telemetry.ServiceName),
		middleware.RequestLogger(s.logger),
		telemetry.MetricsMiddleware(s.metrics),
		middleware.CORS(middleware.CORSConfig{AllowedOrigins: s.config.AllowedOrigins}),
	)

	var limiter gin.HandlerFunc
	if s.config.RateLimitRPS > 0 {
		limiter = middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   s.config.RateLimitRPS,
			Burst: s.config.RateLimitBurst,
		})
	}

	analyzer := analysis.NewAnalyzer(s.metrics)
	routes.SetupRoutes(s.router, analyzer, s.models, s.metrics, limiter, s.logger)
}

func (s *service) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.models != nil {
		if err := s.models.Close(ctx); err != nil {
			s.logger.Warn("model close error", "error", err)
		}
	}

	if s.telemetryShutdown != nil {
		if err := s.telemetryShutdown(ctx); err != nil {
			s.logger.Warn("telemetry shutdown error", "error", err)
		}
		s.telemetryShutdown = nil
	}
}
