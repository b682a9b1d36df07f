package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"floorplan3d/internal/converter/models"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws a converted scene as an SVG preview in image space, so it
// overlays the source floorplan.
func (r *Renderer) Render(scene *models.Scene) (string, error) {
	if scene == nil {
		return "", fmt.Errorf("scene is nil")
	}
	if scene.ImageWidth <= 0 || scene.ImageHeight <= 0 {
		return "", fmt.Errorf("scene has no image extents")
	}

	var elements []string
	elements = append(elements, r.renderWalls(scene)...)
	elements = append(elements, r.renderOpenings(scene)...)

	width, height := scene.ImageWidth, scene.ImageHeight

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderWalls(scene *models.Scene) []string {
	var out []string

	for _, wall := range scene.Walls() {
		p1 := wall.Centerline.P1.FlipY(scene.ImageHeight)
		p2 := wall.Centerline.P2.FlipY(scene.ImageHeight)
		out = append(out, fmt.Sprintf(`<line id="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#000" stroke-width="%s" stroke-opacity="0.5" />`,
			wall.Name(), formatFloat(p1.X), formatFloat(p1.Y), formatFloat(p2.X), formatFloat(p2.Y), formatFloat(wall.Width)))
	}

	return out
}

func (r *Renderer) renderOpenings(scene *models.Scene) []string {
	var out []string

	for _, opening := range scene.Openings() {
		depth := 10.0
		if wall, ok := scene.Wall(opening.Host); ok {
			depth = wall.Width
		}

		// Floor outline of the opening in its local frame.
		local := []r3.Vec{
			{X: 0, Z: -depth / 2},
			{X: opening.Width, Z: -depth / 2},
			{X: opening.Width, Z: depth / 2},
			{X: 0, Z: depth / 2},
		}
		points := make([]models.Point, len(local))
		for i, v := range local {
			w := opening.Placement.Apply(v)
			points[i] = models.Point{X: w.X, Y: w.Y}.FlipY(scene.ImageHeight)
		}

		stroke := "#1f77b4"
		if opening.Kind() == models.KindDoor {
			stroke = "#d62728"
		}

		var path strings.Builder
		path.WriteString(`<path id="`)
		path.WriteString(opening.Name())
		path.WriteString(`" d="M `)
		path.WriteString(formatPoint(points[0]))
		for _, p := range points[1:] {
			path.WriteString(" L ")
			path.WriteString(formatPoint(p))
		}
		path.WriteString(` Z" fill="none" stroke="`)
		path.WriteString(stroke)
		path.WriteString(`" />`)

		out = append(out, path.String())
	}

	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', 3, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
