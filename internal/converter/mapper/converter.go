package mapper

import (
	"errors"
	"fmt"

	"floorplan3d/internal/converter/cad"
	"floorplan3d/internal/converter/geometry"
	"floorplan3d/internal/converter/models"

	"go.uber.org/zap"
)

// ============================================================
// Converter
// ============================================================

// Converter turns one annotation document into a scene. It is single-use
// state for one run: element indices keep counting across phases.
type Converter struct {
	backend cad.Backend
	opts    Options
	hosts   *HostAssigner
	logger  *zap.Logger
	next    int
}

func New(backend cad.Backend, opts Options, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("converter")
	return &Converter{
		backend: backend,
		opts:    opts,
		hosts:   NewHostAssigner(backend, logger),
		logger:  logger,
	}
}

// Convert runs the wall, window, door and curve door phases in that order,
// then adds the image plane. Any failure aborts the whole run.
func (c *Converter) Convert(doc *models.Document) (*models.Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", models.ErrMalformedDocument)
	}
	if doc.ImageWidth <= 0 || doc.ImageHeight <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", models.ErrMalformedDocument, doc.ImageWidth, doc.ImageHeight)
	}

	width, height := float64(doc.ImageWidth), float64(doc.ImageHeight)
	scene := models.NewScene(width, height)

	// Model space everywhere below.
	shapes := make([]models.Annotation, len(doc.Shapes))
	for i, a := range doc.Shapes {
		shapes[i] = a.Transformed(height)
	}

	c.logger.Info("phase", zap.String("name", "walls"))
	if err := c.wallPhase(scene, shapes); err != nil {
		return nil, err
	}
	if err := c.barrier("walls"); err != nil {
		return nil, err
	}

	c.logger.Info("phase", zap.String("name", "windows"))
	if err := c.openingPhase(scene, shapes, models.LabelWindow, models.KindWindow); err != nil {
		return nil, err
	}

	c.logger.Info("phase", zap.String("name", "doors"))
	if err := c.openingPhase(scene, shapes, models.LabelDoor, models.KindDoor); err != nil {
		return nil, err
	}
	if err := c.curveDoorPhase(scene, shapes); err != nil {
		return nil, err
	}
	if err := c.barrier("doors"); err != nil {
		return nil, err
	}

	plane, err := c.backend.CreateImagePlane(width, height)
	if err != nil {
		return nil, fmt.Errorf("create image plane: %w", err)
	}
	scene.ImagePlane = plane
	if err := c.barrier("image"); err != nil {
		return nil, err
	}

	c.logger.Info("scene built",
		zap.Int("walls", len(scene.Walls())),
		zap.Int("openings", len(scene.Openings())),
	)
	return scene, nil
}

func (c *Converter) barrier(phase string) error {
	if err := c.backend.Recompute(); err != nil {
		return fmt.Errorf("recompute after %s: %w", phase, err)
	}
	return nil
}

func (c *Converter) wallPhase(scene *models.Scene, shapes []models.Annotation) error {
	for i, shape := range shapes {
		if shape.Label != models.LabelWall {
			continue
		}
		line, err := geometry.ExtractCenterline(shape.Points)
		if err != nil {
			return shapeError(i, shape.Label, err)
		}
		if _, err := c.addWall(scene, line, c.next); err != nil {
			return shapeError(i, shape.Label, err)
		}
		c.next++
	}
	return nil
}

// openingPhase handles rectangle-annotated windows or doors. Explicit mode
// creates a hosting wall segment per opening; inferred mode waits for the
// phase barrier and picks the nearest wall.
func (c *Converter) openingPhase(scene *models.Scene, shapes []models.Annotation, label string, kind models.Kind) error {
	mode := c.opts.opening(kind).HostMode
	var pending []int

	for i, shape := range shapes {
		if shape.Label != label {
			continue
		}
		line, err := geometry.ExtractCenterline(shape.Points)
		if err != nil {
			return shapeError(i, shape.Label, err)
		}

		plan := openingPlan{kind: kind, index: c.next, p1: line.P1, p2: line.P2, host: models.NoHost, mode: mode}
		if mode == models.HostExplicit {
			ref, err := c.addWall(scene, line, c.next)
			if err != nil {
				return shapeError(i, shape.Label, err)
			}
			plan.host = ref
		}

		pos, err := c.placeOpening(scene, plan)
		if err != nil {
			return shapeError(i, shape.Label, err)
		}
		if mode == models.HostInferred {
			pending = append(pending, pos)
		}
		c.next++
	}

	if len(pending) == 0 {
		return nil
	}
	if err := c.barrier(label); err != nil {
		return err
	}
	return c.hosts.AssignInferred(scene, pending)
}

// curveDoorPhase creates a wall segment from the near-wall point to the hinge
// center and a door hosted in it, mirrored when the swing turns clockwise.
func (c *Converter) curveDoorPhase(scene *models.Scene, shapes []models.Annotation) error {
	for i, shape := range shapes {
		if shape.Label != models.LabelCurveDoor {
			continue
		}
		swing, err := geometry.SwingFromCurveDoor(shape.Points)
		if err != nil {
			return shapeError(i, shape.Label, err)
		}

		ref, err := c.addWall(scene, models.Centerline{P1: swing.NearWall, P2: swing.Center}, c.next)
		if err != nil {
			return shapeError(i, shape.Label, err)
		}
		_, err = c.placeOpening(scene, openingPlan{
			kind:  models.KindDoor,
			index: c.next,
			p1:    swing.Center,
			p2:    swing.NearWall,
			host:  ref,
			mode:  models.HostExplicit,
			swing: &swing,
		})
		if err != nil {
			return shapeError(i, shape.Label, err)
		}
		c.next++
	}
	return nil
}

func (c *Converter) addWall(scene *models.Scene, line models.Centerline, index int) (models.WallRef, error) {
	wall := models.WallElement{
		Idx:        index,
		Centerline: line,
		Width:      c.opts.WallWidth,
		Height:     c.opts.WallHeight,
	}

	lineHandle, err := c.backend.CreateWallLine(line.P1, line.P2)
	if err != nil {
		return models.NoHost, fmt.Errorf("create line for %s: %w", wall.Name(), err)
	}
	wallHandle, err := c.backend.CreateWall(lineHandle, wall.Width, wall.Height)
	if err != nil {
		return models.NoHost, fmt.Errorf("create %s: %w", wall.Name(), err)
	}
	wall.Line = lineHandle
	wall.Ref = wallHandle

	c.logger.Debug("wall added", zap.String("name", wall.Name()), zap.String("handle", string(wallHandle)))
	return scene.AddWall(wall), nil
}

func shapeError(i int, label string, err error) error {
	var dge *models.DegenerateGeometryError
	if errors.As(err, &dge) && dge.Label == "" {
		dge.Label = fmt.Sprintf("%s shape %d", label, i)
	}
	return fmt.Errorf("shape %d (%s): %w", i, label, err)
}
