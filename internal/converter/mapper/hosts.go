package mapper

import (
	"fmt"
	"math"

	"floorplan3d/internal/converter/cad"
	"floorplan3d/internal/converter/models"

	"go.uber.org/zap"
)

// ============================================================
// Host assignment
// ============================================================

// HostAssigner resolves inferred hosts once every wall of the phase exists.
type HostAssigner struct {
	backend cad.Backend
	logger  *zap.Logger
}

func NewHostAssigner(backend cad.Backend, logger *zap.Logger) *HostAssigner {
	return &HostAssigner{backend: backend, logger: logger}
}

// Nearest scans the walls in creation order and returns the first one at
// minimal distance from the opening.
func (a *HostAssigner) Nearest(scene *models.Scene, opening models.OpeningElement) (models.WallRef, float64, error) {
	walls := scene.Walls()
	if len(walls) == 0 {
		return models.NoHost, 0, fmt.Errorf("%s: %w", opening.Name(), models.ErrNoHostAvailable)
	}

	best := models.NoHost
	minDist := math.Inf(1)
	for i, wall := range walls {
		dist, err := a.backend.DistanceBetween(opening.Ref, wall.Ref)
		if err != nil {
			return models.NoHost, 0, fmt.Errorf("distance %s to %s: %w", opening.Name(), wall.Name(), err)
		}
		if dist < minDist {
			minDist = dist
			best = models.WallRef(i)
		}
	}
	if best == models.NoHost {
		return models.NoHost, 0, fmt.Errorf("%s: %w: no finite distance", opening.Name(), models.ErrNoHostAvailable)
	}
	return best, minDist, nil
}

// AssignInferred hosts every listed opening in its nearest wall.
func (a *HostAssigner) AssignInferred(scene *models.Scene, positions []int) error {
	openings := scene.Openings()
	for _, pos := range positions {
		opening := openings[pos]
		ref, dist, err := a.Nearest(scene, opening)
		if err != nil {
			return err
		}
		wall, _ := scene.Wall(ref)
		if err := a.backend.SetHost(opening.Ref, wall.Ref); err != nil {
			return fmt.Errorf("host %s in %s: %w", opening.Name(), wall.Name(), err)
		}
		if err := scene.AssignHost(pos, ref); err != nil {
			return err
		}
		a.logger.Debug("host inferred",
			zap.String("opening", opening.Name()),
			zap.String("wall", wall.Name()),
			zap.Float64("distance", dist),
		)
	}
	return nil
}
