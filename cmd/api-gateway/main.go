package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// @title SMA Timetable API
// @version 0.1.0
// @description Weekly timetable generation for classes, teachers and rooms
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.JWT.Disabled && cfg.JWT.Secret == "" {
		logr.Fatal("JWT_SECRET is required unless DISABLE_AUTH is set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var (
		db      *sqlx.DB
		catalog *repository.CatalogRepository
	)
	if cfg.Catalog.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect catalog database", zap.Error(err))
		}
		defer db.Close()
		if cfg.Catalog.ApplySchema {
			if err := database.ApplyCatalogSchema(ctx, db); err != nil {
				logr.Fatal("failed to apply catalog schema", zap.Error(err))
			}
		}
		catalog = repository.NewCatalogRepository(db, metrics)
	}

	renderers := map[string]service.Renderer{}
	if cfg.Exports.Enabled {
		renderers["csv"] = export.NewCSVExporter()
		renderers["pdf"] = export.NewPDFExporter(cfg.Exports.PDFTitle)
	}

	generatorCfg := service.TimetableGeneratorConfig{
		MaxClasses:           cfg.Scheduler.MaxClasses,
		MaxSubjectsPerClass:  cfg.Scheduler.MaxSubjectsPerClass,
		MaxPeriodsPerDay:     cfg.Scheduler.MaxPeriodsPerDay,
		DefaultPeriodsPerDay: cfg.Scheduler.DefaultPeriodsPerDay,
		CatalogTimeout:       cfg.Scheduler.CatalogTimeout,
	}
	var generator *service.TimetableGeneratorService
	if catalog != nil {
		generator = service.NewTimetableGeneratorService(catalog, validator.New(), logr.Named("timetable"), metrics, renderers, generatorCfg)
	} else {
		generator = service.NewTimetableGeneratorService(nil, validator.New(), logr.Named("timetable"), metrics, renderers, generatorCfg)
	}

	deps := handler.RouterDeps{
		Config:    cfg,
		Logger:    logr,
		Metrics:   metrics,
		Verifier:  service.NewTokenVerifier(service.TokenVerifierConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		Timetable: handler.NewTimetableHandler(generator),
	}
	if db != nil {
		deps.Catalog = db
	}
	router := handler.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "catalog", cfg.Catalog.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
