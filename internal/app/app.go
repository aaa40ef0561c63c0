package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fruitdash/internal/config"
	"fruitdash/internal/dataprocessing"
	apierrors "fruitdash/internal/errors"
	"fruitdash/internal/infrastructure"
	customMiddleware "fruitdash/internal/middleware"
	"fruitdash/internal/services"
	handlers "fruitdash/internal/transport/http"
	ws "fruitdash/internal/websocket"
	"fruitdash/pkg/contracts"
)

// AppName is reported in startup logs
const AppName = "Fruit Demand Dashboard"

// compressionLevel is the gzip level for HTML and JSON responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Validator     *customMiddleware.Validator
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
}

// NewApplication loads configuration from the environment, initializes
// logging and builds the application
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

// New wires every component for cfg. No data is read until LoadData.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development" && cfg.Logging.Level == "debug"),
		Validator:     customMiddleware.NewValidator(logger),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices creates the dashboard, health and session services
func (a *Application) initializeServices() {
	a.Dashboard = services.NewDashboardService(a.Logger,
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(a.Metrics),
	)
	a.HealthService = services.NewHealthService(a.Dashboard, a.Logger)
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID first so every later log line and problem carries it
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}

		// WebSocket sessions outlive the request, so no timeout or compression
		r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Dashboard, a.Validator,
			a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger, a.ErrorHandler))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))
			r.Use(customMiddleware.Compress(compressionLevel))

			a.setupHTMLRoutes(r)
			a.setupAPIRoutes(r)
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupHTMLRoutes configures the server-rendered page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	htmlHandler := handlers.NewHTMLHandler(a.Dashboard, a.Validator, a.Logger, a.ErrorHandler)
	r.Get("/", htmlHandler.ServeDashboard)
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		handlers.NewDashboardHandler(a.Dashboard, a.Validator, a.Logger, a.ErrorHandler).RegisterRoutes(r)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Post("/client-log", handlers.NewClientLogHandler(a.Validator, a.Logger, a.ErrorHandler).Handle)
	})
}

// createServer builds the HTTP server around the router
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

// LoadData reads both spreadsheets and attaches the dataset. A failure is a
// fatal load error: the caller must not serve.
func (a *Application) LoadData(ctx context.Context) error {
	paths, err := a.Config.GetPaths()
	if err != nil {
		return apierrors.NewConfigError("cannot resolve data paths", err)
	}
	paths.LogPathResolution(a.Logger)

	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{
		Historical: dataprocessing.SourceFile{
			Path:  paths.HistoricalFile,
			Sheet: a.Config.Data.HistoricalSheet,
		},
		Forecast: dataprocessing.SourceFile{
			Path:  paths.ForecastFile,
			Sheet: a.Config.Data.ForecastSheet,
		},
		ForecastYear: a.Config.Data.ForecastYear,
	}, a.Logger, dataprocessing.WithLoadObserver(a.Metrics))

	ds, err := loader.Load(ctx)
	if err != nil {
		attrs := []any{slog.String("error", err.Error())}
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) {
			for k, v := range appErr.Context {
				attrs = append(attrs, slog.Any(k, v))
			}
		}
		a.Logger.ErrorContext(ctx, "Failed to load demand data", attrs...)
		return err
	}

	a.Dashboard.Attach(ds)
	return nil
}

// Start loads the data and starts serving. cancel is called if the listener
// fails after startup. When loading fails nothing is served, but telemetry is
// still flushed so the spans of the failed load are exported.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if err := a.LoadData(ctx); err != nil {
		shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer done()
		if relErr := a.release(shutdownCtx); relErr != nil {
			a.Logger.ErrorContext(ctx, "Error releasing resources after failed load", slog.String("error", relErr.Error()))
		}
		return err
	}

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("level", a.Config.Logging.Level))

	return nil
}

// Stop shuts the server down gracefully and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if err := a.release(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// release flushes telemetry and closes the log file
func (a *Application) release(ctx context.Context) error {
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
