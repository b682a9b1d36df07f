// Package meshcad is an in-process cad.Backend that models every object as
// a triangulated box or plane. It does not cut holes or build real presets;
// it exists so a conversion can run without an external modeler.
package meshcad

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"floorplan3d/internal/converter/cad"
	"floorplan3d/internal/converter/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Objects
// ============================================================

type objectType string

const (
	typeLine    objectType = "line"
	typeWall    objectType = "wall"
	typeOpening objectType = "opening"
	typePlane   objectType = "plane"
)

type object struct {
	Name      string         `json:"name"`
	Type      objectType     `json:"type"`
	Label     string         `json:"label,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Host      models.Handle  `json:"host,omitempty"`
	Width     float64        `json:"width,omitempty"`
	Height    float64        `json:"height,omitempty"`
	CutsHost  bool           `json:"cuts_host,omitempty"`
	Line      models.Handle  `json:"line,omitempty"`
	Endpoints []models.Point `json:"endpoints,omitempty"`

	vertices  []r3.Vec
	faces     [][3]int
	footprint orb.Ring
}

// ============================================================
// Backend
// ============================================================

type Backend struct {
	logger     *zap.Logger
	frameDepth float64
	objects    map[models.Handle]*object
	order      []models.Handle
	counters   map[string]int
	dirty      bool
}

var _ cad.Backend = (*Backend)(nil)

// New returns an empty document. frameDepth is the thickness given to
// window and door boxes.
func New(logger *zap.Logger, frameDepth float64) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if frameDepth <= 0 {
		frameDepth = 5
	}
	return &Backend{
		logger:     logger.Named("meshcad"),
		frameDepth: frameDepth,
		objects:    make(map[models.Handle]*object),
		counters:   make(map[string]int),
	}
}

func (b *Backend) add(prefix string, obj *object) models.Handle {
	b.counters[prefix]++
	name := prefix
	if n := b.counters[prefix]; n > 1 {
		name = fmt.Sprintf("%s%03d", prefix, n-1)
	}
	obj.Name = name
	h := models.Handle(name)
	b.objects[h] = obj
	b.order = append(b.order, h)
	b.dirty = true
	return h
}

func (b *Backend) get(h models.Handle) (*object, error) {
	obj, ok := b.objects[h]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownHandle, h)
	}
	return obj, nil
}

func (b *Backend) CreateWallLine(p1, p2 models.Point) (models.Handle, error) {
	if p1 == p2 {
		return "", &models.DegenerateGeometryError{Label: "wall line"}
	}
	return b.add("Wire", &object{Type: typeLine, Endpoints: []models.Point{p1, p2}}), nil
}

func (b *Backend) CreateWall(line models.Handle, width, height float64) (models.Handle, error) {
	l, err := b.get(line)
	if err != nil {
		return "", err
	}
	if l.Type != typeLine {
		return "", fmt.Errorf("%s is a %s, not a line", line, l.Type)
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("wall dimensions must be positive: %gx%g", width, height)
	}

	p1, p2 := l.Endpoints[0], l.Endpoints[1]
	dir := r3.Unit(r3.Sub(p2.Vec(0), p1.Vec(0)))
	side := r3.Scale(width/2, r3.Vec{X: -dir.Y, Y: dir.X})

	base := []r3.Vec{
		r3.Add(p1.Vec(0), side),
		r3.Add(p2.Vec(0), side),
		r3.Sub(p2.Vec(0), side),
		r3.Sub(p1.Vec(0), side),
	}
	obj := &object{
		Type:   typeWall,
		Line:   line,
		Width:  width,
		Height: height,
	}
	obj.vertices, obj.faces = extrude(base, height)
	obj.footprint = ring(base)
	return b.add("Wall", obj), nil
}

func (b *Backend) CreateOpeningPreset(req cad.OpeningRequest) (models.Handle, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return "", fmt.Errorf("%s dimensions must be positive: %gx%g", req.Preset, req.Width, req.Height)
	}

	// Local frame: the preset is drawn in XY and given depth along Z.
	d := b.frameDepth / 2
	local := []r3.Vec{
		{X: 0, Y: 0, Z: -d}, {X: req.Width, Y: 0, Z: -d}, {X: req.Width, Y: 0, Z: d}, {X: 0, Y: 0, Z: d},
		{X: 0, Y: req.Height, Z: -d}, {X: req.Width, Y: req.Height, Z: -d}, {X: req.Width, Y: req.Height, Z: d}, {X: 0, Y: req.Height, Z: d},
	}
	world := make([]r3.Vec, len(local))
	for i, v := range local {
		world[i] = req.Placement.Apply(v)
	}

	obj := &object{
		Type:     typeOpening,
		Label:    req.Name,
		Kind:     req.Kind.String(),
		Width:    req.Width,
		Height:   req.Height,
		CutsHost: req.CutsHost,
		vertices: world,
		faces:    boxFaces(),
	}
	// After standing upright the local y=0 edge loop is the floor footprint.
	obj.footprint = ring(world[:4])

	prefix := "Window"
	if req.Kind == models.KindDoor {
		prefix = "Door"
	}
	return b.add(prefix, obj), nil
}

func (b *Backend) SetHost(opening, wall models.Handle) error {
	o, err := b.get(opening)
	if err != nil {
		return err
	}
	w, err := b.get(wall)
	if err != nil {
		return err
	}
	if o.Type != typeOpening || w.Type != typeWall {
		return fmt.Errorf("cannot host %s (%s) in %s (%s)", opening, o.Type, wall, w.Type)
	}
	o.Host = wall
	b.dirty = true
	return nil
}

// DistanceBetween is the planar distance between two footprints; zero when
// they overlap.
func (b *Backend) DistanceBetween(a, c models.Handle) (float64, error) {
	oa, err := b.get(a)
	if err != nil {
		return 0, err
	}
	oc, err := b.get(c)
	if err != nil {
		return 0, err
	}
	if len(oa.footprint) == 0 || len(oc.footprint) == 0 {
		return 0, fmt.Errorf("distance between %s and %s: object without shape", a, c)
	}
	return footprintDistance(oa.footprint, oc.footprint), nil
}

func (b *Backend) CreateImagePlane(width, height float64) (models.Handle, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("image plane dimensions must be positive: %gx%g", width, height)
	}
	base := []r3.Vec{{}, {X: width}, {X: width, Y: height}, {Y: height}}
	obj := &object{
		Type:      typePlane,
		Label:     "image",
		Width:     width,
		Height:    height,
		vertices:  base,
		faces:     [][3]int{{0, 1, 2}, {0, 2, 3}},
		footprint: ring(base),
	}
	return b.add("Rectangle", obj), nil
}

func (b *Backend) Recompute() error {
	for _, h := range b.order {
		obj := b.objects[h]
		if obj.Host == "" {
			continue
		}
		if _, ok := b.objects[obj.Host]; !ok {
			return fmt.Errorf("recompute %s: %w: host %q", h, models.ErrUnknownHandle, obj.Host)
		}
	}
	b.dirty = false
	b.logger.Debug("recomputed", zap.Int("objects", len(b.order)))
	return nil
}

// ============================================================
// Persistence
// ============================================================

type document struct {
	Objects []*object `json:"objects"`
}

func (b *Backend) SaveDocument(path string) error {
	if b.dirty {
		if err := b.Recompute(); err != nil {
			return err
		}
	}
	doc := document{Objects: make([]*object, 0, len(b.order))}
	for _, h := range b.order {
		doc.Objects = append(doc.Objects, b.objects[h])
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir document dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	b.logger.Info("document saved", zap.String("path", path), zap.Int("objects", len(doc.Objects)))
	return nil
}

// ExportMesh writes the objects as position/normal/face text records.
func (b *Backend) ExportMesh(handles []models.Handle, path string) error {
	objs := make([]*object, 0, len(handles))
	for _, h := range handles {
		obj, err := b.get(h)
		if err != nil {
			return err
		}
		if len(obj.faces) == 0 {
			return fmt.Errorf("export %s: %s has no mesh", h, obj.Type)
		}
		objs = append(objs, obj)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir mesh dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mesh: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# floorplan3d mesh export\n")
	fmt.Fprintf(w, "# objects: %d\n", len(objs))

	vOffset, nOffset := 1, 1
	for _, obj := range objs {
		fmt.Fprintf(w, "o %s\n", obj.Name)
		for _, v := range obj.vertices {
			fmt.Fprintf(w, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
		}
		for _, face := range obj.faces {
			n := faceNormal(obj.vertices, face)
			fmt.Fprintf(w, "vn %s %s %s\n", formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z))
		}
		for i, face := range obj.faces {
			ni := nOffset + i
			fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n",
				vOffset+face[0], ni, vOffset+face[1], ni, vOffset+face[2], ni)
		}
		vOffset += len(obj.vertices)
		nOffset += len(obj.faces)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	b.logger.Info("mesh exported", zap.String("path", path), zap.Int("objects", len(objs)))
	return nil
}

// ============================================================
// Geometry helpers
// ============================================================

// extrude lifts a 4-point base loop into a closed box.
func extrude(base []r3.Vec, height float64) ([]r3.Vec, [][3]int) {
	vertices := make([]r3.Vec, 0, 8)
	vertices = append(vertices, base...)
	for _, v := range base {
		vertices = append(vertices, r3.Vec{X: v.X, Y: v.Y, Z: v.Z + height})
	}
	return vertices, boxFaces()
}

// boxFaces triangulates a box whose vertices 0-3 are the bottom loop and
// 4-7 the matching top loop.
func boxFaces() [][3]int {
	return [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
}

func faceNormal(vertices []r3.Vec, face [3]int) r3.Vec {
	n := r3.Cross(r3.Sub(vertices[face[1]], vertices[face[0]]), r3.Sub(vertices[face[2]], vertices[face[0]]))
	if r3.Norm(n) == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Unit(n)
}

// ring projects a loop onto the floor and closes it.
func ring(loop []r3.Vec) orb.Ring {
	r := make(orb.Ring, 0, len(loop)+1)
	for _, v := range loop {
		r = append(r, orb.Point{v.X, v.Y})
	}
	return append(r, r[0])
}

func footprintDistance(a, b orb.Ring) float64 {
	for _, p := range a {
		if planar.RingContains(b, p) {
			return 0
		}
	}
	for _, p := range b {
		if planar.RingContains(a, p) {
			return 0
		}
	}
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsCross(a[i], a[i+1], b[j], b[j+1]) {
				return 0
			}
		}
	}

	best := math.Inf(1)
	for _, p := range a {
		best = math.Min(best, planar.DistanceFrom(orb.LineString(b), p))
	}
	for _, p := range b {
		best = math.Min(best, planar.DistanceFrom(orb.LineString(a), p))
	}
	return best
}

func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func formatFloat(val float64) string {
	if math.Abs(val) < 1e-9 {
		val = 0
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}
