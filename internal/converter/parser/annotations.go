package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"floorplan3d/internal/converter/models"
)

// ============================================================
// JSON Structures
// ============================================================

type rawDocument struct {
	ImageWidth  *int       `json:"imageWidth"`
	ImageHeight *int       `json:"imageHeight"`
	ImagePath   string     `json:"imagePath"`
	Shapes      []rawShape `json:"shapes"`
}

type rawShape struct {
	Label     *string     `json:"label"`
	ShapeType string      `json:"shape_type"`
	Points    [][]float64 `json:"points"`
}

// ============================================================
// Parser
// ============================================================

// ParseAnnotations decodes a segmentation document. Shapes keep their input
// order; labels are normalized but not filtered.
func ParseAnnotations(r io.Reader) (*models.Document, error) {
	var raw rawDocument
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	if raw.ImageWidth == nil || raw.ImageHeight == nil {
		return nil, fmt.Errorf("%w: imageWidth and imageHeight are required", models.ErrMalformedDocument)
	}
	if *raw.ImageWidth <= 0 || *raw.ImageHeight <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", models.ErrMalformedDocument, *raw.ImageWidth, *raw.ImageHeight)
	}
	if raw.Shapes == nil {
		return nil, fmt.Errorf("%w: shapes are required", models.ErrMalformedDocument)
	}

	doc := &models.Document{
		ImageWidth:  *raw.ImageWidth,
		ImageHeight: *raw.ImageHeight,
		ImagePath:   raw.ImagePath,
		Shapes:      make([]models.Annotation, 0, len(raw.Shapes)),
	}

	for i, shape := range raw.Shapes {
		if shape.Label == nil {
			return nil, fmt.Errorf("%w: shape %d has no label", models.ErrMalformedDocument, i)
		}
		points := make([]models.Point, 0, len(shape.Points))
		for j, p := range shape.Points {
			if len(p) != 2 {
				return nil, fmt.Errorf("%w: shape %d point %d has %d coordinates", models.ErrMalformedDocument, i, j, len(p))
			}
			points = append(points, models.Point{X: p[0], Y: p[1]})
		}
		doc.Shapes = append(doc.Shapes, models.Annotation{
			Label:     normalizeLabel(*shape.Label),
			ShapeType: shape.ShapeType,
			Points:    points,
		})
	}

	return doc, nil
}

// LoadAnnotations reads a segmentation document from disk.
func LoadAnnotations(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()

	doc, err := ParseAnnotations(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.SourcePath = path
	return doc, nil
}

func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	switch strings.ToLower(label) {
	case "wall", "walls":
		return models.LabelWall
	case "window", "windows":
		return models.LabelWindow
	case "door", "doors":
		return models.LabelDoor
	case "curve_door", "curve-door":
		return models.LabelCurveDoor
	}
	return label
}
