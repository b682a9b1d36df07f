package main

import (
	"context"
	"log"
	"os"

	"floorplan3d/internal/common/config"
	"floorplan3d/internal/common/logging"
	"floorplan3d/internal/converter/cad/meshcad"
	"floorplan3d/internal/converter/mapper"
	"floorplan3d/internal/converter/models"
	"floorplan3d/internal/converter/parser"
	"floorplan3d/internal/converter/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Converter CLI
// ============================================================

// The converter takes no flags: everything comes from the config file named
// by FLOORPLAN_CONFIG (or ./config.yaml) and the environment.
func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID))

	opts, out, err := mapper.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	db, err := repository.OpenSQLite(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := repository.New(db)
	if err := repo.Init(ctx); err != nil {
		return err
	}
	if err := repo.CreateRun(ctx, runID, cfg.Input.Annotations, cfg.Output.Dir); err != nil {
		return err
	}

	scene, err := convert(cfg, opts, out, logger)
	if err != nil {
		if ferr := repo.FailRun(ctx, runID, err); ferr != nil {
			logger.Warn("record failure", zap.Error(ferr))
		}
		return err
	}
	return repo.FinishRun(ctx, runID, len(scene.Walls()), len(scene.Openings()))
}

func convert(cfg *config.Config, opts mapper.Options, out mapper.OutputOptions, logger *zap.Logger) (*models.Scene, error) {
	doc, err := parser.LoadAnnotations(cfg.Input.Annotations)
	if err != nil {
		return nil, err
	}
	logger.Info("annotations loaded",
		zap.String("path", cfg.Input.Annotations),
		zap.Int("shapes", len(doc.Shapes)),
		zap.Int("image_width", doc.ImageWidth),
		zap.Int("image_height", doc.ImageHeight),
	)

	backend := meshcad.New(logger, cfg.Geometry.FrameDepth)
	scene, art, err := mapper.New(backend, opts, logger).Run(doc, cfg.Output.Dir, out)
	if err != nil {
		return nil, err
	}

	logger.Info("conversion done",
		zap.Strings("artifacts", art.Files()),
	)
	return scene, nil
}
