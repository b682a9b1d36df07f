package models

import (
	"fmt"
)

// ============================================================
// Scene elements
// ============================================================

type Kind int

const (
	KindWall Kind = iota
	KindWindow
	KindDoor
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindWindow:
		return "window"
	case KindDoor:
		return "door"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind accepts the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "wall":
		return KindWall, nil
	case "window":
		return KindWindow, nil
	case "door":
		return KindDoor, nil
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}

// HostMode selects how an opening gets its host wall.
type HostMode string

const (
	HostExplicit HostMode = "explicit"
	HostInferred HostMode = "inferred"
)

// Handle identifies an object inside the CAD backend.
type Handle string

// WallRef indexes Scene.Walls.
type WallRef int

const NoHost WallRef = -1

type Element interface {
	Kind() Kind
	Index() int
	Handle() Handle
	Name() string
}

type WallElement struct {
	Idx        int        `json:"index"`
	Centerline Centerline `json:"centerline"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Line       Handle     `json:"line"`
	Ref        Handle     `json:"handle"`
}

func (w WallElement) Kind() Kind     { return KindWall }
func (w WallElement) Index() int     { return w.Idx }
func (w WallElement) Handle() Handle { return w.Ref }
func (w WallElement) Name() string   { return fmt.Sprintf("wall%d", w.Idx) }

type OpeningElement struct {
	Idx       int       `json:"index"`
	Type      Kind      `json:"kind"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Placement Placement `json:"placement"`
	Host      WallRef   `json:"host"`
	HostMode  HostMode  `json:"host_mode"`
	Ref       Handle    `json:"handle"`
}

func (o OpeningElement) Kind() Kind     { return o.Type }
func (o OpeningElement) Index() int     { return o.Idx }
func (o OpeningElement) Handle() Handle { return o.Ref }
func (o OpeningElement) Name() string   { return fmt.Sprintf("%s%d", o.Type, o.Idx) }

// ============================================================
// Scene
// ============================================================

type elementRef struct {
	wall bool
	pos  int
}

// Scene is the append-only result of one conversion run.
type Scene struct {
	ImageWidth  float64
	ImageHeight float64
	ImagePlane  Handle

	walls    []WallElement
	openings []OpeningElement
	order    []elementRef
}

func NewScene(imageWidth, imageHeight float64) *Scene {
	return &Scene{ImageWidth: imageWidth, ImageHeight: imageHeight}
}

func (s *Scene) AddWall(w WallElement) WallRef {
	s.walls = append(s.walls, w)
	s.order = append(s.order, elementRef{wall: true, pos: len(s.walls) - 1})
	return WallRef(len(s.walls) - 1)
}

// AddOpening appends o and returns its position in Openings.
func (s *Scene) AddOpening(o OpeningElement) int {
	s.openings = append(s.openings, o)
	s.order = append(s.order, elementRef{pos: len(s.openings) - 1})
	return len(s.openings) - 1
}

// AssignHost resolves the host of an opening that has none yet.
func (s *Scene) AssignHost(opening int, wall WallRef) error {
	if opening < 0 || opening >= len(s.openings) {
		return fmt.Errorf("opening %d out of range", opening)
	}
	if wall < 0 || int(wall) >= len(s.walls) {
		return fmt.Errorf("wall %d out of range", wall)
	}
	o := &s.openings[opening]
	if o.Host != NoHost {
		return fmt.Errorf("%s already hosted by %s", o.Name(), s.walls[o.Host].Name())
	}
	o.Host = wall
	return nil
}

func (s *Scene) Walls() []WallElement {
	return append([]WallElement(nil), s.walls...)
}

func (s *Scene) Openings() []OpeningElement {
	return append([]OpeningElement(nil), s.openings...)
}

func (s *Scene) Wall(ref WallRef) (WallElement, bool) {
	if ref < 0 || int(ref) >= len(s.walls) {
		return WallElement{}, false
	}
	return s.walls[ref], true
}

// Elements returns walls and openings in creation order.
func (s *Scene) Elements() []Element {
	out := make([]Element, 0, len(s.order))
	for _, ref := range s.order {
		if ref.wall {
			out = append(out, s.walls[ref.pos])
		} else {
			out = append(out, s.openings[ref.pos])
		}
	}
	return out
}

// Handles returns backend handles of the elements whose kind is listed.
func (s *Scene) Handles(kinds ...Kind) []Handle {
	var out []Handle
	for _, e := range s.Elements() {
		for _, k := range kinds {
			if e.Kind() == k {
				out = append(out, e.Handle())
				break
			}
		}
	}
	return out
}
