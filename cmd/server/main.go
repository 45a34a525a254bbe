// Command server runs the hackathon certificate service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackboard/hackboard/internal/api"
	adminapi "github.com/hackboard/hackboard/internal/api/admin"
	authapi "github.com/hackboard/hackboard/internal/api/auth"
	certapi "github.com/hackboard/hackboard/internal/api/certificates"
	filesapi "github.com/hackboard/hackboard/internal/api/files"
	hackapi "github.com/hackboard/hackboard/internal/api/hackathons"
	"github.com/hackboard/hackboard/internal/cache"
	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/internal/notify"
	"github.com/hackboard/hackboard/internal/render"
	"github.com/hackboard/hackboard/internal/repository"
	authsvc "github.com/hackboard/hackboard/internal/service/auth"
	certsvc "github.com/hackboard/hackboard/internal/service/certificates"
	"github.com/hackboard/hackboard/internal/service/stats"
	"github.com/hackboard/hackboard/internal/service/sweeper"
	"github.com/hackboard/hackboard/internal/storage"
	"github.com/hackboard/hackboard/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	blobs, err := storage.NewLocalStore(cfg.Storage.RootDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob storage")
	}

	renderer, err := render.NewRenderer(cfg.Certificates.FontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize renderer")
	}

	userRepo := repository.NewUserRepository(db)
	hackathonRepo := repository.NewHackathonRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	certRepo := repository.NewCertificateRepository(db)

	notifier := notify.NewClient(&cfg.Notifier, log)

	authService := authsvc.NewService(userRepo, redisCache, &cfg.Auth, log)
	certService := certsvc.NewService(
		templateRepo, certRepo, hackathonRepo,
		blobs, renderer, notifier,
		cfg.Certificates.PublicBaseURL, log,
	)
	statsService := stats.NewService(userRepo, hackathonRepo, certRepo, log)

	sweep := sweeper.NewService(&cfg.Sweeper, certRepo, blobs, log)
	if err := sweep.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sweeper")
	}
	defer sweep.Stop()

	handlers := &api.Handlers{
		Auth:          authapi.NewHandler(authService, log),
		Hackathons:    hackapi.NewHandler(hackathonRepo, log),
		Certificates:  certapi.NewHandler(certService, hackathonRepo, cfg.Storage.BaseURL, log),
		Admin:         adminapi.NewHandler(statsService, log),
		Files:         filesapi.NewHandler(blobs, log),
		Authenticator: authService,
		DB:            db,
		Log:           log,
	}

	router := api.NewRouter(handlers, cfg.Server.Environment)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Port).Msg("Metrics listener started")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics listener failed")
			}
		}()
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics listener shutdown failed")
		}
	}
}
