// @title EcoViewer API
// @version 1.0
// @description Live ThingSpeak telemetry dashboards: channel connection, polling sessions and connection log.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "ecoviewer/docs"
	"ecoviewer/internal/cache"
	"ecoviewer/internal/config"
	"ecoviewer/internal/handlers"
	"ecoviewer/internal/logger"
	"ecoviewer/internal/repository"
	"ecoviewer/internal/repository/db"
	"ecoviewer/internal/server"
	"ecoviewer/internal/service"
	"ecoviewer/internal/thingspeak"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml and ECOVIEWER_* overrides
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	deps := service.Deps{
		Feeds:  thingspeak.NewClient(cfg.ThingSpeak.BaseURL, cfg.ThingSpeak.Timeout),
		Logger: log,
		Dashboard: service.DashboardConfig{
			Interval:     cfg.Poll.Interval,
			HistoryLimit: cfg.History.Limit,
			MaxSessions:  cfg.Dashboards.MaxSessions,
		},
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	}

	if views := openViewCache(cfg.Redis, log); views != nil {
		deps.Views = views
		defer func() { _ = views.Close() }()
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, deps)
	apiHandler := handlers.NewHandler(services, log)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(services, srv, log)
}

// openDB initializes the SQLite database.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "ecoviewer.db")
		path = "ecoviewer.db"
	}
	return db.InitDB(path)
}

// openViewCache connects the latest-view cache. It returns nil when redis is not configured
// or unreachable; dashboards then run without it.
func openViewCache(cfg config.RedisConfig, log *logger.Logger) *cache.ViewCache {
	if cfg.Addr == "" {
		return nil
	}
	client, err := cache.NewRedisClient(context.Background(), cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warnw("redis unavailable; view cache disabled", "addr", cfg.Addr, "err", err)
		return nil
	}
	log.Infow("view cache enabled", "addr", cfg.Addr, "ttl", cfg.TTL)
	return cache.NewViewCache(client, cfg.TTL)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains HTTP and stops every dashboard.
func waitForShutdown(services *service.Service, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop polling loops after the websockets are gone
	services.Dashboards.Shutdown()
}
