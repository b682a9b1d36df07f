package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3001"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.BodyLimitMB == 0 {
		cfg.Server.BodyLimitMB = 16
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Input.Annotations == "" {
		cfg.Input.Annotations = "annotations.json"
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}
	if cfg.Output.Document == "" {
		cfg.Output.Document = "out.json"
	}
	if cfg.Output.ArchMesh == "" {
		cfg.Output.ArchMesh = "roomplan.obj"
	}
	if cfg.Output.ImageMesh == "" {
		cfg.Output.ImageMesh = "image.obj"
	}
	if cfg.Output.MaterialLib == "" {
		cfg.Output.MaterialLib = "out.mtl"
	}
	if cfg.Output.Material == "" {
		cfg.Output.Material = "image"
	}
	if cfg.Output.PlanSVG == "" {
		cfg.Output.PlanSVG = "plan.svg"
	}
	if cfg.Output.ExportKinds == nil {
		cfg.Output.ExportKinds = []string{"wall", "door"}
	}

	if cfg.Wall.Width == 0 {
		cfg.Wall.Width = 20
	}
	if cfg.Wall.Height == 0 {
		cfg.Wall.Height = 200
	}

	applyOpeningDefaults(&cfg.Openings.Window, 0.8, 0.5, "explicit")
	applyOpeningDefaults(&cfg.Openings.Door, 0.8, 0.7, "inferred")

	if cfg.Geometry.AnglePolicy == "" {
		cfg.Geometry.AnglePolicy = "signed_slope"
	}
	if cfg.Geometry.FrameDepth == 0 {
		cfg.Geometry.FrameDepth = 5
	}

	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "data/db/runs.db"
	}
	if cfg.Storage.RunsDir == "" {
		cfg.Storage.RunsDir = "data/runs"
	}
}

func applyOpeningDefaults(o *OpeningConfig, scale, height float64, mode string) {
	if o.ScaleFactor == 0 {
		o.ScaleFactor = scale
	}
	if o.HeightFraction == 0 {
		o.HeightFraction = height
	}
	if o.HostAssignment == "" {
		o.HostAssignment = mode
	}
}
