// Package cad describes the modeling backend the converter drives.
package cad

import (
	"floorplan3d/internal/converter/models"
)

// ============================================================
// Backend
// ============================================================

// Backend builds solids from 2D points and scalar dimensions. Every
// operation fails fast; the converter aborts the run on the first error.
type Backend interface {
	CreateWallLine(p1, p2 models.Point) (models.Handle, error)
	CreateWall(line models.Handle, width, height float64) (models.Handle, error)
	CreateOpeningPreset(req OpeningRequest) (models.Handle, error)
	SetHost(opening, wall models.Handle) error
	DistanceBetween(a, b models.Handle) (float64, error)
	CreateImagePlane(width, height float64) (models.Handle, error)
	Recompute() error
	SaveDocument(path string) error
	ExportMesh(handles []models.Handle, path string) error
}

// ============================================================
// Opening presets
// ============================================================

const (
	PresetWindow = "Open 1-pane"
	PresetDoor   = "Simple door"
)

// HingeParams are the frame and panel dimensions of a preset.
type HingeParams struct {
	H1, H2, H3 float64
	W1, W2     float64
	O1, O2     float64
}

func DefaultHingeParams() HingeParams {
	return HingeParams{H1: 1, H2: 1, H3: 1, W1: 1, W2: 1, O1: 1, O2: 1}
}

type OpeningRequest struct {
	Kind      models.Kind
	Preset    string
	Name      string
	Width     float64
	Height    float64
	Hinge     HingeParams
	Placement models.Placement

	// CutsHost marks the opening as subtracting its volume from the host wall.
	CutsHost   bool
	SymbolPlan bool
	// OpeningPercent is the drawn swing of a door leaf.
	OpeningPercent float64
}
