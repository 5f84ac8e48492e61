package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/watchcrew/watchcrew-backend/api/controllers"
	"github.com/watchcrew/watchcrew-backend/api/routes"
	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/internal/auth"
	"github.com/watchcrew/watchcrew-backend/internal/catalog"
	"github.com/watchcrew/watchcrew-backend/internal/groups"
	"github.com/watchcrew/watchcrew-backend/internal/invites"
	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	"github.com/watchcrew/watchcrew-backend/internal/schedules"
	"github.com/watchcrew/watchcrew-backend/pkg/auth/session"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/db"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
	"github.com/watchcrew/watchcrew-backend/pkg/metrics"
	"github.com/watchcrew/watchcrew-backend/pkg/migrate"
	"github.com/watchcrew/watchcrew-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	profileRepo := profiles.NewRepository(dbClient.DB())
	groupRepo := groups.NewRepository(dbClient.DB())
	scheduleRepo := schedules.NewRepository(dbClient.DB())
	inviteRepo := invites.NewRepository(dbClient.DB())
	activityRepo := activity.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo: profileRepo,
		Sessions:    sessionManager,
		JWT:         cfg.JWT,
		Password:    cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	profileService, err := profiles.NewService(profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	groupService, err := groups.NewService(groups.ServiceParams{
		GroupRepo:   groupRepo,
		ProfileRepo: profileRepo,
		Tx:          dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create group service", err)
		os.Exit(1)
	}

	scheduleService, err := schedules.NewService(schedules.ServiceParams{
		ScheduleRepo: scheduleRepo,
		Members:      groupService,
		Tx:           dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	inviteService, err := invites.NewService(invites.ServiceParams{
		InviteRepo: inviteRepo,
		GroupRepo:  groupRepo,
		Members:    groupService,
		Tx:         dbClient,
		Config:     cfg.Invites,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invite service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activityRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Client: catalogClient,
		Cache:  redisClient,
		Logger: logg,
		Config: cfg.Catalog,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Sessions:         sessionManager,
		IdempotencyStore: redisClient,
		Auth:             authService,
		Profiles:         profileService,
		Groups:           groupService,
		Schedules:        scheduleService,
		Invites:          inviteService,
		Activity:         activityService,
		Catalog:          catalogService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
