package geometry

import (
	"fmt"
	"math"
	"sort"

	"floorplan3d/internal/converter/models"

	"github.com/paulmach/orb/planar"
)

// ============================================================
// Tolerances
// ============================================================

const (
	degenerateTolerance = 1e-2 // shortest rectangle edge below this is a line
	verticalTolerance   = 1e-2 // |dx| below this counts as vertical
)

// ============================================================
// Coordinate transform
// ============================================================

// Transform maps an image-space point (y down) into model space (y up).
// It is its own inverse.
func Transform(p models.Point, imageHeight float64) models.Point {
	return p.FlipY(imageHeight)
}

// ============================================================
// Centerline
// ============================================================

type edge struct {
	a, b   models.Point
	length float64
}

// Corners expands an annotation to its four corners. Two points are
// opposite corners of an axis-aligned rectangle.
func Corners(points []models.Point) ([4]models.Point, error) {
	switch len(points) {
	case 2:
		pMin, pMax := points[0], points[1]
		return [4]models.Point{
			pMin,
			{X: pMin.X, Y: pMax.Y},
			pMax,
			{X: pMax.X, Y: pMin.Y},
		}, nil
	case 4:
		return [4]models.Point{points[0], points[1], points[2], points[3]}, nil
	}
	return [4]models.Point{}, fmt.Errorf("%w: got %d, want 2 or 4", models.ErrInvalidPointCount, len(points))
}

// ExtractCenterline joins the midpoints of the two shortest edges of a
// rectangle annotation, giving the axis along its long side.
func ExtractCenterline(points []models.Point) (models.Centerline, error) {
	c, err := Corners(points)
	if err != nil {
		return models.Centerline{}, err
	}

	edges := make([]edge, 4)
	for i := range c {
		a, b := c[i], c[(i+1)%4]
		edges[i] = edge{a: a, b: b, length: planar.Distance(a.Orb(), b.Orb())}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].length < edges[j].length
	})

	if edges[0].length < degenerateTolerance {
		return models.Centerline{}, &models.DegenerateGeometryError{Length: edges[0].length}
	}

	line := models.Centerline{
		P1: models.Midpoint(edges[0].a, edges[0].b),
		P2: models.Midpoint(edges[1].a, edges[1].b),
	}
	if l := planar.Distance(line.P1.Orb(), line.P2.Orb()); l < degenerateTolerance {
		return models.Centerline{}, &models.DegenerateGeometryError{Length: l}
	}
	return line, nil
}

// ============================================================
// Orientation
// ============================================================

type AnglePolicy string

const (
	SignedSlope AnglePolicy = "signed_slope"
	DotProduct  AnglePolicy = "dot_product"
)

func ParseAnglePolicy(s string) (AnglePolicy, error) {
	switch AnglePolicy(s) {
	case SignedSlope, DotProduct:
		return AnglePolicy(s), nil
	case "":
		return SignedSlope, nil
	}
	return "", fmt.Errorf("unknown angle policy %q", s)
}

// Angle returns the angle in degrees between p1->p2 and the x axis.
func (p AnglePolicy) Angle(p1, p2 models.Point) float64 {
	if p == DotProduct {
		return unsignedAngle(p1, p2)
	}
	return signedSlopeAngle(p1, p2)
}

// signedSlopeAngle is in (-90, 90].
func signedSlopeAngle(p1, p2 models.Point) float64 {
	dx := p2.X - p1.X
	if math.Abs(dx) < verticalTolerance {
		return 90
	}
	return math.Atan((p2.Y-p1.Y)/dx) * 180 / math.Pi
}

// unsignedAngle is in [0, 180] and drops the direction sign.
func unsignedAngle(p1, p2 models.Point) float64 {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return 0
	}
	cos := math.Max(-1, math.Min(1, dx/n))
	return math.Acos(cos) * 180 / math.Pi
}

// ============================================================
// Winding
// ============================================================

func Cross(p1, p2, p3 models.Point) float64 {
	return (p2.X-p1.X)*(p3.Y-p1.Y) - (p2.Y-p1.Y)*(p3.X-p1.X)
}

// Clockwise reports whether p1, p2, p3 turn clockwise in a y-up frame.
func Clockwise(p1, p2, p3 models.Point) bool {
	return Cross(p1, p2, p3) < 0
}

// SwingFromCurveDoor reads a curve door annotation [far, arc, nearWall, center].
func SwingFromCurveDoor(points []models.Point) (models.Swing, error) {
	if len(points) != 4 {
		return models.Swing{}, fmt.Errorf("%w: curve door has %d points, want 4", models.ErrInvalidPointCount, len(points))
	}
	swing := models.Swing{Center: points[3], NearWall: points[2], Far: points[0]}
	if l := planar.Distance(swing.Center.Orb(), swing.NearWall.Orb()); l < degenerateTolerance {
		return models.Swing{}, &models.DegenerateGeometryError{Length: l}
	}
	return swing, nil
}
