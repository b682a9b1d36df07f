// Package config loads converter settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Wall     WallConfig     `yaml:"wall"`
	Openings OpeningsConfig `yaml:"openings"`
	Geometry GeometryConfig `yaml:"geometry"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Port         string   `yaml:"port"`
	Environment  string   `yaml:"environment"`
	ReadTimeout  int      `yaml:"read_timeout"`
	WriteTimeout int      `yaml:"write_timeout"`
	BodyLimitMB  int      `yaml:"body_limit_mb"`
	CORSOrigins  []string `yaml:"cors_origins"`
}

type InputConfig struct {
	Annotations string `yaml:"annotations"`
	// Texture overrides the imagePath of the annotation document in the
	// material library.
	Texture string `yaml:"texture"`
}

type OutputConfig struct {
	Dir         string   `yaml:"dir"`
	Document    string   `yaml:"document"`
	ArchMesh    string   `yaml:"arch_mesh"`
	ImageMesh   string   `yaml:"image_mesh"`
	MaterialLib string   `yaml:"material_lib"`
	Material    string   `yaml:"material"`
	PlanSVG     string   `yaml:"plan_svg"`
	ExportKinds []string `yaml:"export_kinds"`
}

type WallConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type OpeningsConfig struct {
	Window OpeningConfig `yaml:"window"`
	Door   OpeningConfig `yaml:"door"`
}

type OpeningConfig struct {
	ScaleFactor    float64 `yaml:"scale_factor"`
	HeightFraction float64 `yaml:"height_fraction"`
	HostAssignment string  `yaml:"host_assignment"`
}

type GeometryConfig struct {
	AnglePolicy string  `yaml:"angle_policy"`
	FrameDepth  float64 `yaml:"frame_depth"`
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	RunsDir      string `yaml:"runs_dir"`
}

// ============================================================
// Loading
// ============================================================

// Path returns $FLOORPLAN_CONFIG, else ./config.yaml when it exists, else
// "" (defaults and environment only).
func Path() string {
	if path := os.Getenv("FLOORPLAN_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// Load reads the YAML file at path (skipped when path is empty), overlays
// environment variables and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir := filepath.Dir(path)
		cfg.Input.Annotations = expandPath(cfg.Input.Annotations, configDir)
		cfg.Input.Texture = expandPath(cfg.Input.Texture, configDir)
		cfg.Output.Dir = expandPath(cfg.Output.Dir, configDir)
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
		cfg.Storage.RunsDir = expandPath(cfg.Storage.RunsDir, configDir)
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the converter cannot run with.
func (c *Config) Validate() error {
	if c.Wall.Width <= 0 || c.Wall.Height <= 0 {
		return fmt.Errorf("wall dimensions must be positive")
	}
	for name, o := range map[string]OpeningConfig{"window": c.Openings.Window, "door": c.Openings.Door} {
		if o.ScaleFactor <= 0 {
			return fmt.Errorf("openings.%s.scale_factor must be positive", name)
		}
		if o.HeightFraction <= 0 || o.HeightFraction > 1 {
			return fmt.Errorf("openings.%s.height_fraction must be in (0, 1]", name)
		}
		switch o.HostAssignment {
		case "explicit", "inferred":
		default:
			return fmt.Errorf("openings.%s.host_assignment must be explicit or inferred, got %q", name, o.HostAssignment)
		}
	}
	switch c.Geometry.AnglePolicy {
	case "signed_slope", "dot_product":
	default:
		return fmt.Errorf("geometry.angle_policy must be signed_slope or dot_product, got %q", c.Geometry.AnglePolicy)
	}
	for _, k := range c.Output.ExportKinds {
		switch k {
		case "wall", "window", "door":
		default:
			return fmt.Errorf("output.export_kinds: unknown kind %q", k)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Environment = getEnv("ENV", cfg.Server.Environment)
	cfg.Server.ReadTimeout = getEnvAsInt("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Input.Annotations = getEnv("ANNOTATIONS_PATH", cfg.Input.Annotations)
	cfg.Input.Texture = getEnv("TEXTURE_PATH", cfg.Input.Texture)
	cfg.Output.Dir = getEnv("OUTPUT_DIR", cfg.Output.Dir)
	cfg.Storage.DatabasePath = getEnv("RUNS_DB_PATH", cfg.Storage.DatabasePath)
	cfg.Storage.RunsDir = getEnv("RUNS_DIR", cfg.Storage.RunsDir)
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// expandPath resolves "./" paths against the config file's directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
