package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"floorplan3d/internal/converter/models"
)

const sample = `{
  "imageWidth": 800,
  "imageHeight": 600,
  "imagePath": "A_879715.png",
  "shapes": [
    {"label": "wall", "points": [[10, 20], [410, 40]], "shape_type": "rectangle"},
    {"label": "windows", "points": [[100, 15], [180, 45]]},
    {"label": "curve_door", "points": [[0, 0], [1, 1], [2, 2], [3, 3]]},
    {"label": "sofa", "points": [[5, 5]]}
  ]
}`

func TestParseAnnotations(t *testing.T) {
	doc, err := ParseAnnotations(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if doc.ImageWidth != 800 || doc.ImageHeight != 600 || doc.ImagePath != "A_879715.png" {
		t.Errorf("unexpected header: %+v", doc)
	}
	if len(doc.Shapes) != 4 {
		t.Fatalf("expected 4 shapes, got %d", len(doc.Shapes))
	}

	labels := []string{models.LabelWall, models.LabelWindow, models.LabelCurveDoor, "sofa"}
	for i, want := range labels {
		if doc.Shapes[i].Label != want {
			t.Errorf("shape %d: label %q, want %q", i, doc.Shapes[i].Label, want)
		}
	}
	if doc.Shapes[0].Points[1] != (models.Point{X: 410, Y: 40}) {
		t.Errorf("unexpected point: %+v", doc.Shapes[0].Points[1])
	}
	if doc.Shapes[0].ShapeType != "rectangle" {
		t.Errorf("shape_type lost: %q", doc.Shapes[0].ShapeType)
	}
	// Without a source file the image cannot be located.
	if got := doc.ImageFile(); got != "" {
		t.Errorf("image file = %q, want empty", got)
	}
}

func TestParseAnnotations_malformed(t *testing.T) {
	tests := map[string]string{
		"not json":       `{"imageWidth":`,
		"missing width":  `{"imageHeight": 10, "shapes": []}`,
		"zero height":    `{"imageWidth": 10, "imageHeight": 0, "shapes": []}`,
		"missing shapes": `{"imageWidth": 10, "imageHeight": 10}`,
		"missing label":  `{"imageWidth": 10, "imageHeight": 10, "shapes": [{"points": [[0,0],[1,1]]}]}`,
		"3d point":       `{"imageWidth": 10, "imageHeight": 10, "shapes": [{"label": "wall", "points": [[0,0,0],[1,1]]}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnnotations(strings.NewReader(input))
			if !errors.Is(err, models.ErrMalformedDocument) {
				t.Errorf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestLoadAnnotations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadAnnotations(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Shapes) != 4 {
		t.Errorf("expected 4 shapes, got %d", len(doc.Shapes))
	}
	want := filepath.Join(filepath.Dir(path), "A_879715.png")
	if got := doc.ImageFile(); got != want {
		t.Errorf("image file = %q, want %q", got, want)
	}

	if _, err := LoadAnnotations(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
