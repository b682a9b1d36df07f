package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"floorplan3d/internal/converter/cad/meshcad"
	"floorplan3d/internal/converter/mapper"
	"floorplan3d/internal/converter/models"
	"floorplan3d/internal/converter/parser"
	"floorplan3d/internal/converter/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunStore persists the history of conversion runs.
type RunStore interface {
	CreateRun(ctx context.Context, id, inputName, outputDir string) error
	FinishRun(ctx context.Context, id string, walls, openings int) error
	FailRun(ctx context.Context, id string, cause error) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
}

// ============================================================
// Convert Handler
// ============================================================

type ConvertHandler struct {
	runs       RunStore
	storage    *storage.RunStorage
	opts       mapper.Options
	out        mapper.OutputOptions
	frameDepth float64
	logger     *zap.Logger
}

func NewConvertHandler(runs RunStore, store *storage.RunStorage, opts mapper.Options, out mapper.OutputOptions, frameDepth float64, logger *zap.Logger) *ConvertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConvertHandler{
		runs:       runs,
		storage:    store,
		opts:       opts,
		out:        out,
		frameDepth: frameDepth,
		logger:     logger.Named("handlers"),
	}
}

type convertResponse struct {
	ID       string           `json:"id"`
	Status   models.RunStatus `json:"status"`
	Walls    int              `json:"walls"`
	Openings int              `json:"openings"`
	Files    []string         `json:"files"`
}

// Convert accepts an annotation document as multipart "file" and runs one
// conversion with its own backend and output directory.
func (h *ConvertHandler) Convert(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required in multipart/form-data"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	ctx := context.Background()
	runID := uuid.NewString()
	logger := h.logger.With(zap.String("run", runID), zap.String("input", fileHeader.Filename))

	if _, err := h.storage.SaveInput(runID, data); err != nil {
		logger.Error("save input", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store input"})
	}
	outDir := h.storage.OutputDir(runID)
	if err := h.runs.CreateRun(ctx, runID, fileHeader.Filename, outDir); err != nil {
		logger.Error("create run", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record run"})
	}

	scene, err := h.run(data, outDir, logger)
	if err != nil {
		logger.Warn("conversion failed", zap.Error(err))
		if ferr := h.runs.FailRun(ctx, runID, err); ferr != nil {
			logger.Error("record failure", zap.Error(ferr))
		}
		return c.Status(StatusFor(err)).JSON(fiber.Map{
			"id":     runID,
			"status": models.RunFailed,
			"error":  err.Error(),
		})
	}

	walls, openings := len(scene.Walls()), len(scene.Openings())
	if err := h.runs.FinishRun(ctx, runID, walls, openings); err != nil {
		logger.Error("finish run", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record run"})
	}

	files, err := h.storage.Artifacts(runID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Info("conversion done", zap.Int("walls", walls), zap.Int("openings", openings))
	return c.Status(http.StatusCreated).JSON(convertResponse{
		ID:       runID,
		Status:   models.RunSucceeded,
		Walls:    walls,
		Openings: openings,
		Files:    files,
	})
}

func (h *ConvertHandler) run(data []byte, outDir string, logger *zap.Logger) (*models.Scene, error) {
	doc, err := parser.ParseAnnotations(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	backend := meshcad.New(logger, h.frameDepth)
	scene, _, err := mapper.New(backend, h.opts, logger).Run(doc, outDir, h.out)
	return scene, err
}

// StatusFor maps a conversion error to an HTTP status: bad input is 400,
// geometry that cannot be built is 422, anything else is 500.
func StatusFor(err error) int {
	var dge *models.DegenerateGeometryError
	switch {
	case errors.Is(err, models.ErrMalformedDocument), errors.Is(err, models.ErrInvalidPointCount):
		return http.StatusBadRequest
	case errors.As(err, &dge), errors.Is(err, models.ErrNoHostAvailable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
