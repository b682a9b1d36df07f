package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"floorplan3d/internal/common/config"
	"floorplan3d/internal/common/logging"
	"floorplan3d/internal/common/middleware"
	"floorplan3d/internal/converter/handlers"
	"floorplan3d/internal/converter/mapper"
	"floorplan3d/internal/converter/repository"
	"floorplan3d/internal/converter/storage"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Conversion Service
// ============================================================

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	opts, out, err := mapper.OptionsFromConfig(cfg)
	if err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}

	db, err := repository.OpenSQLite(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		logger.Fatal("init db", zap.Error(err))
	}

	runStorage := storage.NewRunStorage(cfg.Storage.RunsDir)
	convertHandler := handlers.NewConvertHandler(repo, runStorage, opts, out, cfg.Geometry.FrameDepth, logger)
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "Floorplan Conversion Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	healthHandler.Register(app)
	convertHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("starting conversion service",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Environment),
		zap.String("runs_dir", cfg.Storage.RunsDir),
	)

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
