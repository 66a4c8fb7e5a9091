package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dnsmonitor/internal/adapters/api"
	"dnsmonitor/internal/adapters/api/middleware"
	"dnsmonitor/internal/app"
	"dnsmonitor/internal/application/monitor"
	"dnsmonitor/internal/config"
)

//	@title			dnsmonitor API
//	@version		1.0
//	@description	DNS change monitoring with a bounded snapshot history

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration, with an optional YAML overlay
	cfg := config.LoadConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			log.Fatal().Err(err).Msg("load config file")
		}
	}

	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("domain", cfg.Monitor.Domain).
		Str("db_driver", cfg.Database.Driver).
		Dur("check_interval", cfg.Monitor.CheckInterval).
		Msg("Starting dnsmonitor server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init application")
	}
	defer a.Close()

	// Initialize API handler; its hub streams detected changes to websocket clients
	handler := api.NewHandler(a.Monitor, a.Store)
	a.Monitor.AddNotifier(handler.Hub())

	if cfg.Monitor.CheckInterval > 0 {
		scheduler := monitor.NewScheduler(a.Monitor, cfg.Monitor.CheckInterval, cfg.Monitor.CheckOnStart)
		go func() {
			if err := scheduler.Run(ctx); err != nil {
				log.Error().Err(err).Msg("check scheduler failed")
			}
		}()
	} else {
		log.Warn().Msg("Scheduled checks disabled - checks run only through the API")
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
	}))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown")
		}
	}()

	log.Info().Msgf("Starting dnsmonitor server on port %s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
	log.Info().Msg("dnsmonitor server stopped")
}
