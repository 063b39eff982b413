package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"quizreport/internal/config"
	apierrors "quizreport/internal/errors"
	"quizreport/internal/infrastructure"
	customMiddleware "quizreport/internal/middleware"
	"quizreport/internal/services"
	handlers "quizreport/internal/transport/http"
)

var (
	// Version is overridden at build time with -ldflags
	Version = config.AppVersion
	// BuildTime is set at compile time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config               *config.Config
	Router               *chi.Mux
	Server               *http.Server
	Logger               *slog.Logger
	OTelProviders        *infrastructure.OTelProviders
	Metrics              *infrastructure.ReportMetrics
	ErrorHandler         *apierrors.ErrorHandler
	HealthService        *services.HealthService
	ConsolidationService *services.ConsolidationService
}

// NewApplication loads configuration and logging from the environment and
// builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateReportMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler: apierrors.NewErrorHandler(logger, cfg.Logging.Development).
			WithTraceIDFunc(customMiddleware.TraceID),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.HealthService = services.NewHealthService(Version, BuildTime, a.Config.Report, a.Logger)
	a.ConsolidationService = services.NewConsolidationService(
		a.Config.Report,
		a.Logger,
		a.Metrics,
		a.OTelProviders.Tracer,
	)
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.prometheusHandler(), a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		handlers.NewHealthHandler(a.HealthService, a.Logger).RegisterRoutes(r)

		// Upload routes carry the body cap and the rate limit
		r.Group(func(r chi.Router) {
			if a.Config.Security.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Security.RateLimit.RPS,
					a.Config.Security.RateLimit.Burst,
					a.ErrorHandler,
					a.Logger,
				).Handler)
			}
			r.Use(customMiddleware.MaxBodySize(a.Config.Report.MaxUploadBytes + config.MultipartOverheadBytes))

			handlers.NewReportHandler(a.ConsolidationService, a.Logger, a.ErrorHandler).RegisterRoutes(r)
		})
	})
}

// prometheusHandler returns the exposition handler, nil when metrics are off.
// The explicit nil keeps a nil handler from becoming a non-nil interface.
func (a *Application) prometheusHandler() http.Handler {
	if a.OTelProviders == nil || a.OTelProviders.PrometheusHTTP == nil {
		return nil
	}
	return a.OTelProviders.PrometheusHTTP
}

// getCORSConfig returns CORS configuration for the configured origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.DefaultCORSConfig(a.Config.Security.AllowedOrigins)
	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener and serves in the background. Serve failures
// cancel ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, cancel, listener)
}

// Serve serves on listener in the background
func (a *Application) Serve(ctx context.Context, cancel context.CancelFunc, listener net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.String("address", listener.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", listener.Addr().String()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or ctx is done
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// Shutdown gets a fresh context; ctx is already done
	return a.Stop(context.Background())
}
