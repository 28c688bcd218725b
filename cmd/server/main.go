package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/cache"
	"github.com/almlcv/sharanga-backend-sub001/internal/config"
	"github.com/almlcv/sharanga-backend-sub001/internal/repository/mongodb"
	"github.com/almlcv/sharanga-backend-sub001/internal/repository/sheets"
	"github.com/almlcv/sharanga-backend-sub001/internal/scheduler"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/handlers"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/router"
	fgstocksvc "github.com/almlcv/sharanga-backend-sub001/internal/service/fgstock"
	hourlysvc "github.com/almlcv/sharanga-backend-sub001/internal/service/hourly"
	plansvc "github.com/almlcv/sharanga-backend-sub001/internal/service/plans"
	reportingsvc "github.com/almlcv/sharanga-backend-sub001/internal/service/reporting"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/shifts"
	"github.com/almlcv/sharanga-backend-sub001/pkg/clients/webhook"
	"github.com/almlcv/sharanga-backend-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Factory.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Factory.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid factory timezone", zap.String("timezone", cfg.Factory.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	var planCache cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, baseLogger.Named("cache.redis"))
		if err != nil {
			baseLogger.Warn("redis unavailable, using in-process plan cache", zap.Error(err))
		} else {
			planCache = redisStore
			defer func() { _ = redisStore.Close() }()
		}
	}

	resolver := shifts.NewResolver(mongoRepo.Shifts(), loc, baseLogger.Named("svc.shifts"))
	planSvc := plansvc.NewService(mongoRepo.Plans(), mongoRepo.Parts(), planCache, baseLogger.Named("svc.plans"))
	stockSvc := fgstocksvc.NewService(mongoRepo.Stock(), mongoRepo.Parts(), planSvc, mongoRepo.Hourly(), baseLogger.Named("svc.fgstock"))
	hourlySvc := hourlysvc.NewService(mongoRepo.Hourly(), resolver, baseLogger.Named("svc.hourly"), hourlysvc.WithStockSyncer(stockSvc))
	reportingSvc := reportingsvc.NewService(mongoRepo.Hourly(), mongoRepo.Stock(), planSvc, mongoRepo.Parts(), baseLogger.Named("svc.reporting"))

	// Optional outputs stay nil interfaces when disabled.
	var reportSink reportingsvc.DailyReportSink
	sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
	switch {
	case errors.Is(err, sheets.ErrDisabled):
		baseLogger.Info("google sheets export disabled")
	case err != nil:
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	default:
		reportSink = sheetsRepo
	}

	var poster scheduler.SummaryPoster
	if cfg.Webhook.Enabled() {
		poster = webhook.NewClient(cfg.Webhook)
	} else {
		baseLogger.Info("report webhook disabled")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, loc, stockSvc, reportingSvc, reportSink, poster, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Hourly:  handlers.NewHourlyHandler(hourlySvc, baseLogger.Named("handlers.hourly")),
		Stock:   handlers.NewStockHandler(stockSvc, baseLogger.Named("handlers.fgstock")),
		Plans:   handlers.NewPlanHandler(planSvc, baseLogger.Named("handlers.plans")),
		Reports: handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Health:  handlers.NewHealthHandler(mongoRepo, baseLogger.Named("handlers.health")),
	}, cfg.Auth.JWTSecret, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
