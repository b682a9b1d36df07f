package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"floorplan3d/internal/converter/repository"

	"github.com/gofiber/fiber/v3"
)

// Register mounts the conversion and run history routes.
func (h *ConvertHandler) Register(router fiber.Router) {
	router.Post("/convert", h.Convert)
	router.Get("/runs", h.ListRuns)
	router.Get("/runs/:id", h.GetRun)
	router.Get("/runs/:id/plan.svg", h.GetPlanSVG)
	router.Get("/runs/:id/files/:name", h.GetFile)
}

// ============================================================
// Run History
// ============================================================

// ListRuns returns recent runs, newest first. ?limit caps the count.
func (h *ConvertHandler) ListRuns(c fiber.Ctx) error {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(context.Background(), limit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

func (h *ConvertHandler) GetRun(c fiber.Ctx) error {
	run, err := h.runs.GetRun(context.Background(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Failed runs may have left no output directory.
	files, _ := h.storage.Artifacts(run.ID)
	return c.JSON(fiber.Map{"run": run, "files": files})
}

// GetPlanSVG serves the rendered plan preview of a run.
func (h *ConvertHandler) GetPlanSVG(c fiber.Ctx) error {
	return h.sendArtifact(c, c.Params("id"), h.out.PlanSVG)
}

// GetFile serves any artifact of a run by file name.
func (h *ConvertHandler) GetFile(c fiber.Ctx) error {
	return h.sendArtifact(c, c.Params("id"), c.Params("name"))
}

func (h *ConvertHandler) sendArtifact(c fiber.Ctx, runID, name string) error {
	if _, err := h.runs.GetRun(context.Background(), runID); err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	path, err := h.storage.ArtifactPath(runID, name)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := os.Stat(path); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
	}

	c.Set("Content-Type", contentTypeFor(path))
	return c.SendFile(path)
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	case ".obj", ".mtl":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
