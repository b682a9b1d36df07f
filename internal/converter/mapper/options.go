package mapper

import (
	"fmt"

	"floorplan3d/internal/common/config"
	"floorplan3d/internal/converter/geometry"
	"floorplan3d/internal/converter/models"
)

// ============================================================
// Options
// ============================================================

type OpeningOptions struct {
	ScaleFactor    float64
	HeightFraction float64
	HostMode       models.HostMode
}

type Options struct {
	WallWidth   float64
	WallHeight  float64
	Window      OpeningOptions
	Door        OpeningOptions
	AnglePolicy geometry.AnglePolicy
}

func DefaultOptions() Options {
	return Options{
		WallWidth:   20,
		WallHeight:  200,
		Window:      OpeningOptions{ScaleFactor: 0.8, HeightFraction: 0.5, HostMode: models.HostExplicit},
		Door:        OpeningOptions{ScaleFactor: 0.8, HeightFraction: 0.7, HostMode: models.HostInferred},
		AnglePolicy: geometry.SignedSlope,
	}
}

func (o Options) opening(kind models.Kind) OpeningOptions {
	if kind == models.KindDoor {
		return o.Door
	}
	return o.Window
}

type OutputOptions struct {
	Document    string
	ArchMesh    string
	ImageMesh   string
	MaterialLib string
	Material    string
	PlanSVG     string
	ExportKinds []models.Kind
	// Texture is the image referenced by the material library.
	Texture string
}

func DefaultOutputOptions() OutputOptions {
	return OutputOptions{
		Document:    "out.json",
		ArchMesh:    "roomplan.obj",
		ImageMesh:   "image.obj",
		MaterialLib: "out.mtl",
		Material:    "image",
		PlanSVG:     "plan.svg",
		ExportKinds: []models.Kind{models.KindWall, models.KindDoor},
	}
}

// OptionsFromConfig maps validated configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) (Options, OutputOptions, error) {
	policy, err := geometry.ParseAnglePolicy(cfg.Geometry.AnglePolicy)
	if err != nil {
		return Options{}, OutputOptions{}, err
	}

	opts := Options{
		WallWidth:  cfg.Wall.Width,
		WallHeight: cfg.Wall.Height,
		Window: OpeningOptions{
			ScaleFactor:    cfg.Openings.Window.ScaleFactor,
			HeightFraction: cfg.Openings.Window.HeightFraction,
			HostMode:       models.HostMode(cfg.Openings.Window.HostAssignment),
		},
		Door: OpeningOptions{
			ScaleFactor:    cfg.Openings.Door.ScaleFactor,
			HeightFraction: cfg.Openings.Door.HeightFraction,
			HostMode:       models.HostMode(cfg.Openings.Door.HostAssignment),
		},
		AnglePolicy: policy,
	}

	out := OutputOptions{
		Document:    cfg.Output.Document,
		ArchMesh:    cfg.Output.ArchMesh,
		ImageMesh:   cfg.Output.ImageMesh,
		MaterialLib: cfg.Output.MaterialLib,
		Material:    cfg.Output.Material,
		PlanSVG:     cfg.Output.PlanSVG,
		Texture:     cfg.Input.Texture,
	}
	for _, name := range cfg.Output.ExportKinds {
		k, err := models.ParseKind(name)
		if err != nil {
			return Options{}, OutputOptions{}, fmt.Errorf("export kinds: %w", err)
		}
		out.ExportKinds = append(out.ExportKinds, k)
	}
	return opts, out, nil
}
