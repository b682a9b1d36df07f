package mapper

import (
	"strings"
	"testing"

	"floorplan3d/internal/converter/models"
)

func TestRenderer_Render(t *testing.T) {
	scene := models.NewScene(100, 50)
	ref := scene.AddWall(models.WallElement{
		Idx:        0,
		Centerline: models.Centerline{P1: models.Point{X: 0, Y: 40}, P2: models.Point{X: 100, Y: 40}},
		Width:      20,
	})
	scene.AddOpening(models.OpeningElement{
		Idx:       1,
		Type:      models.KindDoor,
		Width:     8,
		Placement: PlaceOpening(models.Point{X: 10, Y: 40}, models.Point{X: 20, Y: 40}, 8, 0, 0),
		Host:      ref,
	})

	svg, err := NewRenderer().Render(scene)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Model y=40 is image y=10.
	wantLine := `<line id="wall0" x1="0.000" y1="10.000" x2="100.000" y2="10.000" stroke="#000" stroke-width="20.000"`
	if !strings.Contains(svg, wantLine) {
		t.Errorf("svg missing wall line:\n%s", svg)
	}
	if !strings.Contains(svg, `<path id="door1" d="M 11.000 `) {
		t.Errorf("svg missing door outline:\n%s", svg)
	}
	if !strings.Contains(svg, `stroke="#d62728"`) {
		t.Error("door not drawn in door color")
	}
	if !strings.Contains(svg, `viewBox="0 0 100.000 50.000"`) {
		t.Error("viewBox does not match image size")
	}
}

func TestRenderer_RenderErrors(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil); err == nil {
		t.Error("nil scene: expected error")
	}
	if _, err := r.Render(models.NewScene(0, 10)); err == nil {
		t.Error("zero width: expected error")
	}
}
