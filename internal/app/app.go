// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/incident-feed/internal/config"
	"github.com/bissquit/incident-feed/internal/dashboard"
	"github.com/bissquit/incident-feed/internal/incidents"
	"github.com/bissquit/incident-feed/internal/incidents/demo"
	"github.com/bissquit/incident-feed/internal/incidents/jsonplaceholder"
	"github.com/bissquit/incident-feed/internal/incidents/redis"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"github.com/bissquit/incident-feed/internal/pkg/httputil"
	"github.com/bissquit/incident-feed/internal/pkg/metrics"
	"github.com/bissquit/incident-feed/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	cache         *redis.Cache
	service       *incidents.Service
	server        *http.Server
	metricsServer *http.Server
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	metrics.RecordBuildInfo(version.Version, version.GitCommit, version.BuildDate)

	app := &App{
		config: cfg,
		logger: logger,
	}

	source, err := app.setupSource()
	if err != nil {
		return nil, fmt.Errorf("setup source: %w", err)
	}

	app.service = incidents.NewService(source, incidents.NewActions(incidents.ActionConfig{
		CreateDelay:  cfg.Actions.CreateDelay,
		ResolveDelay: cfg.Actions.ResolveDelay,
		DeleteDelay:  cfg.Actions.DeleteDelay,
	}))

	router, err := app.setupRouter()
	if err != nil {
		app.closeCache()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"source", a.config.Source.Kind,
		"cache_enabled", a.config.Cache.Enabled,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	if err := a.closeCache(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupSource() (incidents.Source, error) {
	var source incidents.Source

	switch a.config.Source.Kind {
	case config.SourceDemo:
		source = demo.NewSource(a.config.Source.DemoCount)
	case config.SourceHTTP:
		source = jsonplaceholder.NewSource(jsonplaceholder.Config{
			URL:       a.config.Source.URL,
			Timeout:   a.config.Source.Timeout,
			RateLimit: a.config.Source.RateLimit,
			Burst:     a.config.Source.Burst,
		})
	default:
		return nil, fmt.Errorf("unknown source kind: %q", a.config.Source.Kind)
	}

	a.logger.Info("incident source configured",
		"kind", a.config.Source.Kind,
		"url", a.config.Source.URL,
		"timeout", a.config.Source.Timeout,
		"rate_limit", a.config.Source.RateLimit,
		"cache_enabled", a.config.Cache.Enabled,
	)

	if !a.config.Cache.Enabled {
		return source, nil
	}

	cache, err := redis.NewCache(redis.Config{
		Addr:      a.config.Cache.Addr,
		Password:  a.config.Cache.Password,
		DB:        a.config.Cache.DB,
		KeyPrefix: a.config.Cache.KeyPrefix,
		TTL:       a.config.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to cache: %w", err)
	}
	a.cache = cache

	return incidents.NewCachedSource(source, cache), nil
}

func (a *App) closeCache() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

func (a *App) setupRouter() (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Incident Feed API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	incidentsHandler := incidents.NewHandler(a.service, a.config.Dashboard.ExcerptLength)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.NoStore)
		incidentsHandler.RegisterRoutes(r)
	})

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create dashboard renderer: %w", err)
	}

	dashboardHandler := dashboard.NewHandler(a.service, renderer, a.config.Dashboard.ExcerptLength)

	r.Group(func(r chi.Router) {
		r.Use(httputil.NoStore)
		dashboardHandler.RegisterRoutes(r)
	})

	return r, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	if a.cache == nil {
		httputil.Text(w, http.StatusOK, "OK")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.cache.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Cache unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, version.Info())
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
