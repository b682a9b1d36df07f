package mapper

import (
	"fmt"
	"math"

	"floorplan3d/internal/converter/cad"
	"floorplan3d/internal/converter/geometry"
	"floorplan3d/internal/converter/models"

	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Opening placement
// ============================================================

// PlaceOpening stands an opening of the given width upright on the segment
// p1-p2: the local frame starts at (-width/2, 0, 0), turns 90° about +X,
// then by angle about +Z, then moves to the segment midpoint at height z.
func PlaceOpening(p1, p2 models.Point, width, z, angle float64) models.Placement {
	upright := r3.NewRotation(math.Pi/2, r3.Vec{X: 1})
	turn := r3.NewRotation(angle*math.Pi/180, r3.Vec{Z: 1})

	mid := models.Midpoint(p1, p2)
	return models.Placement{
		Position: r3.Add(turn.Rotate(r3.Vec{X: -width / 2}), mid.Vec(z)),
		Rotation: r3.Rotation(quat.Mul(quat.Number(turn), quat.Number(upright))),
		Angle:    angle,
	}
}

// openingPlan is everything needed to create one opening.
type openingPlan struct {
	kind  models.Kind
	index int
	p1    models.Point
	p2    models.Point
	host  models.WallRef
	mode  models.HostMode
	swing *models.Swing
}

// placeOpening sizes and positions an opening, creates it in the backend and
// records it in the scene. An explicit host is set immediately.
func (c *Converter) placeOpening(scene *models.Scene, plan openingPlan) (int, error) {
	opts := c.opts.opening(plan.kind)

	width := planar.Distance(plan.p1.Orb(), plan.p2.Orb()) * opts.ScaleFactor
	height := c.opts.WallHeight * opts.HeightFraction
	z := (c.opts.WallHeight - height) / 2
	if plan.kind == models.KindDoor {
		z = 0
	}

	angle := c.opts.AnglePolicy.Angle(plan.p1, plan.p2)
	placement := PlaceOpening(plan.p1, plan.p2, width, z, angle)
	if plan.swing != nil && geometry.Clockwise(plan.swing.Center, plan.swing.NearWall, plan.swing.Far) {
		placement.Mirror = &models.MirrorLine{A: plan.p1, B: plan.p2}
	}

	opening := models.OpeningElement{
		Idx:       plan.index,
		Type:      plan.kind,
		Width:     width,
		Height:    height,
		Placement: placement,
		Host:      models.NoHost,
		HostMode:  plan.mode,
	}

	req := cad.OpeningRequest{
		Kind:      plan.kind,
		Preset:    cad.PresetWindow,
		Name:      opening.Name(),
		Width:     width,
		Height:    height,
		Hinge:     cad.DefaultHingeParams(),
		Placement: placement,
		CutsHost:  true,
	}
	if plan.kind == models.KindDoor {
		req.Preset = cad.PresetDoor
		req.SymbolPlan = true
		req.OpeningPercent = 50
	}

	handle, err := c.backend.CreateOpeningPreset(req)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", opening.Name(), err)
	}
	opening.Ref = handle

	if plan.host != models.NoHost {
		wall, ok := scene.Wall(plan.host)
		if !ok {
			return 0, fmt.Errorf("%s: host wall %d does not exist", opening.Name(), plan.host)
		}
		if err := c.backend.SetHost(handle, wall.Ref); err != nil {
			return 0, fmt.Errorf("host %s in %s: %w", opening.Name(), wall.Name(), err)
		}
		opening.Host = plan.host
	}

	pos := scene.AddOpening(opening)
	c.logger.Debug("opening placed",
		zap.String("name", opening.Name()),
		zap.Float64("width", width),
		zap.Float64("height", height),
		zap.Float64("angle", angle),
		zap.Bool("mirrored", placement.Mirror != nil),
		zap.String("host_mode", string(plan.mode)),
	)
	return pos, nil
}
