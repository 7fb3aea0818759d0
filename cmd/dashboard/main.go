package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thermo_dashboard/internal/backend"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/handlers"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/pages"
	"thermo_dashboard/internal/repository"
	"thermo_dashboard/internal/repository/db"
	"thermo_dashboard/internal/server"
	"thermo_dashboard/internal/service"

	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

var pageIDs = []string{pages.Home, pages.Temperatures, pages.Settings, pages.PVInfo, pages.TemperatureGraphs}

func main() {
	// load config.yml before the logger so log.level applies
	cfgErr := loadConfig()

	log := logger.Get(viper.GetString("log.level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	loc, err := loadLocation(viper.GetString("display.timezone"))
	if err != nil {
		log.Fatalw("invalid display.timezone", "err", err)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	api := backend.New(backend.Config{
		BaseURL: viper.GetString("backend.base_url"),
		Timeout: viper.GetDuration("backend.timeout"),
	}, log)
	deps := pages.Deps{
		API:          api,
		Fmt:          format.New(loc),
		Log:          log,
		Intervals:    loadIntervals(log),
		SaveCooldown: viper.GetDuration("settings.save_cooldown"),
	}
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, deps, log)
	apiHandler := handlers.NewHandler(services, log, viper.GetStringSlice("ws.allowed_origins")...)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.EventLog.RunRetention(ctx,
		viper.GetDuration("journal.prune_interval"),
		viper.GetDuration("journal.retention"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)
	log.Infow("dashboard started", "port", viper.GetString("port"), "backend", viper.GetString("backend.base_url"))

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "dashboard.db")
	viper.SetDefault("backend.base_url", "http://localhost:8000")
	viper.SetDefault("backend.timeout", "10s")
	viper.SetDefault("display.timezone", "Local")
	viper.SetDefault("settings.save_cooldown", "1s")
	viper.SetDefault("journal.retention", "168h")
	viper.SetDefault("journal.prune_interval", "1h")

	viper.SetEnvPrefix("THERMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		// defaults and environment are enough to run
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// loadIntervals reads intervals.<page> and clamps each to the allowed range.
func loadIntervals(log *logger.Logger) map[string]time.Duration {
	out := make(map[string]time.Duration, len(pageIDs))
	for _, id := range pageIDs {
		raw := viper.GetDuration("intervals." + id)
		d := pages.ClampInterval(raw)
		if raw != 0 && d != raw {
			log.Warnw("interval clamped", "page", id, "configured", raw, "used", d)
		}
		out[id] = d
	}
	return out
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "dashboard.db")
		dbPath = "dashboard.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines and every page session
	cancel()
	services.Sessions.CloseAll()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	_ = log.Sync()
}
