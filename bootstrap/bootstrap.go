// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file when one is given, otherwise from
// MAILCRAFT_* environment variables and defaults.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/mailcraft/adapters/catalog"
	"github.com/artpar/mailcraft/adapters/clock"
	apihttp "github.com/artpar/mailcraft/adapters/http"
	"github.com/artpar/mailcraft/adapters/idgen"
	"github.com/artpar/mailcraft/adapters/memory"
	"github.com/artpar/mailcraft/adapters/metrics"
	"github.com/artpar/mailcraft/adapters/sqlite"
	"github.com/artpar/mailcraft/app"
	"github.com/artpar/mailcraft/config"
	"github.com/artpar/mailcraft/ports"
)

// Id prefixes for documents and exports. Module ids follow ids.prefix.
const (
	DocumentPrefix = "doc_"
	ExportPrefix   = "exp_"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Catalog   *catalog.Catalog
	Workspace *app.Workspace
	Exports   *app.ExportService

	holder *config.Holder
}

// Options controls application initialization.
type Options struct {
	// ConfigPath is the YAML config file. A missing file falls back to the
	// environment.
	ConfigPath string

	// Version is reported by /version.
	Version string

	// Watch reloads the config file on change and on SIGHUP.
	Watch bool

	// Registry receives the metrics instead of the default Prometheus registry.
	Registry *prometheus.Registry

	// LogOutput overrides stdout for logs.
	LogOutput io.Writer
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(cfg.Logging, out)
	logger.Info().Str("config", opts.ConfigPath).Msg("initializing mailcraft")

	a := &App{Logger: logger, Config: cfg}

	if opts.Watch && opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			h, err := config.NewHolder(opts.ConfigPath, logger)
			if err != nil {
				return nil, err
			}
			a.holder = h
			a.Config = h.Get()
		}
	}

	if cfg.Metrics.Enabled {
		if opts.Registry != nil {
			a.Metrics = metrics.NewWithRegistry(opts.Registry)
		} else {
			a.Metrics = metrics.New()
		}
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initServices(); err != nil {
		a.closeDB()
		return nil, err
	}

	a.initHTTPServer(opts)

	if a.holder != nil {
		a.watchConfig()
	}

	return a, nil
}

// NewServices builds the builder and export services without an HTTP server.
// Used by CLI commands that work on a single document.
func NewServices(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Logger: logger, Config: cfg}
	if err := a.initServices(); err != nil {
		a.closeDB()
		return nil, err
	}
	return a, nil
}

func (a *App) initServices() error {
	cfg := a.Config

	cat, err := catalog.New(catalog.Options{ImageBase: cfg.Catalog.ImageBaseURL})
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	a.Catalog = cat

	// Check the id mode once; each document gets its own generator.
	if _, err := idgen.New(cfg.IDs.Mode, cfg.IDs.Prefix); err != nil {
		return fmt.Errorf("init ids: %w", err)
	}
	moduleIDs := func() ports.IDGenerator {
		g, _ := idgen.New(cfg.IDs.Mode, cfg.IDs.Prefix)
		return g
	}

	exportOpts, err := cfg.Export.Options()
	if err != nil {
		return fmt.Errorf("export options: %w", err)
	}

	archive, err := a.initArchive()
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}

	var bm ports.BuilderMetrics
	if a.Metrics != nil {
		bm = a.Metrics
	}

	a.Workspace = app.NewWorkspace(app.WorkspaceConfig{
		Catalog:     cat,
		Clock:       clock.Real{},
		DocumentIDs: idgen.UUID{Prefix: DocumentPrefix},
		ModuleIDs:   moduleIDs,
		Metrics:     bm,
		Logger:      a.Logger.With().Str("component", "workspace").Logger(),
	})
	a.Exports = app.NewExportService(exportOpts, cat, archive, clock.Real{},
		idgen.UUID{Prefix: ExportPrefix}, a.Logger.With().Str("component", "export").Logger()).
		WithMetrics(bm)

	return nil
}

func (a *App) initArchive() (ports.ExportArchive, error) {
	switch a.Config.Database.Driver {
	case "memory":
		a.Logger.Info().Msg("using in-memory export archive")
		return memory.NewExportStore(), nil
	default:
		dsn := a.Config.Database.DSN
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Logger.Info().Str("dsn", dsn).Msg("database initialized")
		return sqlite.NewExportStore(db), nil
	}
}

func (a *App) initHTTPServer(opts Options) {
	cfg := a.Config

	var health *apihttp.HealthHandler
	if a.DB != nil {
		health = apihttp.NewHealthHandler(a.DB)
	} else {
		health = apihttp.NewHealthHandler(nil)
	}

	routerCfg := apihttp.RouterConfig{
		Version:        opts.Version,
		Metrics:        a.Metrics,
		MetricsPath:    cfg.Metrics.Path,
		EnableOpenAPI:  cfg.OpenAPI.Enabled,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if a.Metrics != nil && opts.Registry != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})
	}

	api := apihttp.NewDocumentHandler(a.Workspace, a.Exports, a.Catalog,
		a.Logger.With().Str("component", "api").Logger())
	router := apihttp.NewRouter(api, health, a.Logger, routerCfg)

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// watchConfig applies reloadable settings whenever the config file changes.
func (a *App) watchConfig() {
	a.holder.OnChange(func(cfg *config.Config) {
		a.applyConfig(cfg)
	})
	a.holder.OnError(func(error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})

	if err := a.holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	a.holder.WatchSignals()
}

// applyConfig updates the export options and the log level in place. Other
// fields take effect on restart.
func (a *App) applyConfig(cfg *config.Config) {
	if opts, err := cfg.Export.Options(); err != nil {
		a.Logger.Error().Err(err).Msg("export options rejected")
	} else {
		a.Exports.UpdateOptions(opts)
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a server error.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
		a.holder = nil
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	a.closeDB()

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) closeDB() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("database close error")
	}
	a.DB = nil
}

// NewLogger builds the process logger and sets the global level.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
