package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/config"
	"github.com/Dosada05/bracket-engine/db"
	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/repositories"
	api "github.com/Dosada05/bracket-engine/routes"
	"github.com/Dosada05/bracket-engine/services"
	"github.com/Dosada05/bracket-engine/storage"
	"github.com/go-chi/chi/v5"
)

const schedulerInterval = 30 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	version, err := db.RunMigrations(dbConn)
	if err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.Uint64("schema_version", uint64(version)))

	// Архив сеток в Cloudflare R2 (опционально)
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Объявления в Discord (опционально)
	var announcer services.Announcer
	if cfg.DiscordEnabled() {
		notifier, err := services.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordChannels, logger)
		if err != nil {
			logger.Error("failed to initialize Discord notifier", slog.Any("error", err))
			os.Exit(1)
		}
		announcer = notifier
		logger.Info("Discord notifier initialized", slog.Int("channels", len(cfg.DiscordChannels)))
	}

	// WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	shuffler := brackets.NewRandomShuffler()
	if cfg.ShuffleSeed != nil {
		shuffler = brackets.NewSeededShuffler(*cfg.ShuffleSeed)
		logger.Warn("bracket shuffle is seeded, pairings are reproducible", slog.Uint64("seed", *cfg.ShuffleSeed))
	}

	// Репозитории и сервисы
	store := repositories.NewMemoryTenantStore()
	resultRepo := repositories.NewPostgresResultRepository(dbConn)

	tournamentService := services.NewTournamentService(store, shuffler, logger)
	teamService := services.NewTeamService(store)
	hostService := services.NewHostService(store)
	resultService := services.NewResultService(resultRepo, uploader, announcer, wsHub, logger)

	go runScheduler(ctx, logger, cfg, teamService, resultService)

	// Маршрутизатор
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, resultService, logger)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: tournamentHandler,
		Team:       handlers.NewTeamHandler(teamService),
		Host:       handlers.NewHostHandler(hostService),
		Result:     handlers.NewResultHandler(resultService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, []byte(cfg.JWTSecretKey), cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	// Дожидаемся архивации и объявлений, поставленных в очередь до остановки
	tournamentHandler.Close()
	stop()
	logger.Info("application exited")
}

// runScheduler expires stale team invitations and prunes archived results past retention.
func runScheduler(ctx context.Context, logger *slog.Logger, cfg *config.Config, teams services.TeamService, results services.ResultService) {
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()
	logger.Info("scheduler started", slog.Duration("interval", schedulerInterval))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pruned, err := teams.PruneInvitations(ctx, now.Add(-cfg.InviteTTL))
			if err != nil {
				logger.Error("scheduler: invitation pruning failed", slog.Any("error", err))
			} else if pruned > 0 {
				logger.Info("scheduler: expired invitations removed", slog.Int("count", pruned))
			}

			if cfg.ResultRetention <= 0 {
				continue
			}
			deleted, err := results.PruneHistory(ctx, now.Add(-cfg.ResultRetention))
			if err != nil {
				logger.Error("scheduler: result pruning failed", slog.Any("error", err))
			} else if deleted > 0 {
				logger.Info("scheduler: old results removed", slog.Int64("count", deleted))
			}
		}
	}
}
