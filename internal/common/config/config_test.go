package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Wall.Width != 20 || cfg.Wall.Height != 200 {
		t.Errorf("unexpected wall defaults: %+v", cfg.Wall)
	}
	if cfg.Openings.Window.ScaleFactor != 0.8 || cfg.Openings.Window.HeightFraction != 0.5 {
		t.Errorf("unexpected window defaults: %+v", cfg.Openings.Window)
	}
	if cfg.Openings.Door.HeightFraction != 0.7 || cfg.Openings.Door.HostAssignment != "inferred" {
		t.Errorf("unexpected door defaults: %+v", cfg.Openings.Door)
	}
	if cfg.Geometry.AnglePolicy != "signed_slope" {
		t.Errorf("unexpected angle policy %q", cfg.Geometry.AnglePolicy)
	}
	if len(cfg.Output.ExportKinds) != 2 {
		t.Errorf("unexpected export kinds %v", cfg.Output.ExportKinds)
	}
}

func TestLoad_file(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
input:
  annotations: "./plans/A_879715.json"
output:
  dir: "/tmp/out"
openings:
  window:
    scale_factor: 1.0
    host_assignment: inferred
geometry:
  angle_policy: dot_product
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if want := filepath.Join(dir, "plans", "A_879715.json"); cfg.Input.Annotations != want {
		t.Errorf("annotations = %q, want %q", cfg.Input.Annotations, want)
	}
	if cfg.Output.Dir != "/tmp/out" {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
	if cfg.Openings.Window.ScaleFactor != 1.0 || cfg.Openings.Window.HostAssignment != "inferred" {
		t.Errorf("window = %+v", cfg.Openings.Window)
	}
	if cfg.Openings.Window.HeightFraction != 0.5 {
		t.Errorf("unset height_fraction should default, got %v", cfg.Openings.Window.HeightFraction)
	}
	if cfg.Geometry.AnglePolicy != "dot_product" {
		t.Errorf("angle policy = %q", cfg.Geometry.AnglePolicy)
	}
}

func TestLoad_env(t *testing.T) {
	t.Setenv("ANNOTATIONS_PATH", "/data/plan.json")
	t.Setenv("PORT", "9000")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input.Annotations != "/data/plan.json" || cfg.Server.Port != "9000" {
		t.Errorf("env not applied: %+v %+v", cfg.Input, cfg.Server)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := map[string]string{
		"host mode":       "openings:\n  door:\n    host_assignment: nearest\n",
		"height fraction": "openings:\n  window:\n    height_fraction: 1.5\n",
		"angle policy":    "geometry:\n  angle_policy: arccos\n",
		"export kind":     "output:\n  export_kinds: [wall, sofa]\n",
		"negative wall":   "wall:\n  width: -1\n",
		"bad yaml":        "wall: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv("FLOORPLAN_CONFIG", "")
	if got := Path(); got != "" {
		t.Errorf("Path() without file = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Path(); got != "config.yaml" {
		t.Errorf("Path() = %q, want config.yaml", got)
	}

	t.Setenv("FLOORPLAN_CONFIG", "/etc/floorplan.yaml")
	if got := Path(); got != "/etc/floorplan.yaml" {
		t.Errorf("Path() = %q, want env value", got)
	}
}
