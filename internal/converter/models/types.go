package models

import (
	"path/filepath"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Annotation input
// ============================================================

const (
	LabelWall      = "wall"
	LabelWindow    = "window"
	LabelDoor      = "door"
	LabelCurveDoor = "curve_door"
)

type Annotation struct {
	Label     string  `json:"label"`
	ShapeType string  `json:"shape_type,omitempty"`
	Points    []Point `json:"points"`
}

// Transformed returns a copy with every point mapped into model space.
func (a Annotation) Transformed(imageHeight float64) Annotation {
	out := Annotation{Label: a.Label, ShapeType: a.ShapeType, Points: make([]Point, len(a.Points))}
	for i, p := range a.Points {
		out.Points[i] = p.FlipY(imageHeight)
	}
	return out
}

type Document struct {
	ImageWidth  int          `json:"imageWidth"`
	ImageHeight int          `json:"imageHeight"`
	ImagePath   string       `json:"imagePath,omitempty"`
	Shapes      []Annotation `json:"shapes"`

	// SourcePath is the file the document was loaded from, if any.
	SourcePath string `json:"-"`
}

// ImageFile resolves ImagePath against the document's directory. It is
// empty when the image location is unknown.
func (d *Document) ImageFile() string {
	if d.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(d.ImagePath) {
		return d.ImagePath
	}
	if d.SourcePath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(d.SourcePath), d.ImagePath)
}

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FlipY maps between image space (y down) and model space (y up).
func (p Point) FlipY(imageHeight float64) Point {
	return Point{X: p.X, Y: imageHeight - p.Y}
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func (p Point) Vec(z float64) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: z}
}

func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

type Centerline struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Swing is the explicit point triple of a curve door.
type Swing struct {
	Center   Point `json:"center"`
	NearWall Point `json:"near_wall"`
	Far      Point `json:"far"`
}

// MirrorLine is a vertical reflection plane through A and B.
type MirrorLine struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Placement positions an opening's local frame in model space.
type Placement struct {
	Position r3.Vec      `json:"position"`
	Rotation r3.Rotation `json:"-"`
	Angle    float64     `json:"angle"`
	Mirror   *MirrorLine `json:"mirror,omitempty"`
}

// Apply maps a point of the opening's local frame into model space.
func (pl Placement) Apply(local r3.Vec) r3.Vec {
	v := r3.Add(pl.Rotation.Rotate(local), pl.Position)
	if pl.Mirror != nil {
		v = pl.Mirror.Reflect(v)
	}
	return v
}

// Reflect mirrors v across the vertical plane through the line.
func (m MirrorLine) Reflect(v r3.Vec) r3.Vec {
	dx, dy := m.B.X-m.A.X, m.B.Y-m.A.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return v
	}
	t := ((v.X-m.A.X)*dx + (v.Y-m.A.Y)*dy) / l2
	fx, fy := m.A.X+t*dx, m.A.Y+t*dy
	return r3.Vec{X: 2*fx - v.X, Y: 2*fy - v.Y, Z: v.Z}
}
