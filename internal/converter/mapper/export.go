package mapper

import (
	"fmt"
	"os"
	"path/filepath"

	"floorplan3d/internal/converter/models"
	"floorplan3d/internal/converter/objuv"

	"go.uber.org/zap"
)

// ============================================================
// Export
// ============================================================

type Artifacts struct {
	Document    string `json:"document"`
	ArchMesh    string `json:"arch_mesh"`
	ImageMesh   string `json:"image_mesh"`
	MaterialLib string `json:"material_lib"`
	PlanSVG     string `json:"plan_svg"`
}

// Files lists artifact paths in write order.
func (a Artifacts) Files() []string {
	return []string{a.Document, a.ArchMesh, a.ImageMesh, a.MaterialLib, a.PlanSVG}
}

// Export saves the document, exports both meshes, then rewrites their
// texture coordinates. Meshes are complete before the rewrite starts.
func (c *Converter) Export(scene *models.Scene, dir string, out OutputOptions) (Artifacts, error) {
	if scene.ImagePlane == "" {
		return Artifacts{}, fmt.Errorf("scene has no image plane")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("mkdir output dir: %w", err)
	}

	art := Artifacts{
		Document:    filepath.Join(dir, out.Document),
		ArchMesh:    filepath.Join(dir, out.ArchMesh),
		ImageMesh:   filepath.Join(dir, out.ImageMesh),
		MaterialLib: filepath.Join(dir, out.MaterialLib),
		PlanSVG:     filepath.Join(dir, out.PlanSVG),
	}

	if err := c.backend.Recompute(); err != nil {
		return Artifacts{}, fmt.Errorf("recompute before save: %w", err)
	}
	if err := c.backend.SaveDocument(art.Document); err != nil {
		return Artifacts{}, fmt.Errorf("save document: %w", err)
	}

	handles := scene.Handles(out.ExportKinds...)
	if len(handles) == 0 {
		c.logger.Warn("no elements to export, writing empty mesh",
			zap.String("path", art.ArchMesh),
			zap.Stringers("kinds", out.ExportKinds),
		)
	}
	if err := c.backend.ExportMesh(handles, art.ArchMesh); err != nil {
		return Artifacts{}, fmt.Errorf("export %s: %w", out.ArchMesh, err)
	}
	if err := c.backend.ExportMesh([]models.Handle{scene.ImagePlane}, art.ImageMesh); err != nil {
		return Artifacts{}, fmt.Errorf("export %s: %w", out.ImageMesh, err)
	}

	rewriter := objuv.Rewriter{
		ImageWidth:  scene.ImageWidth,
		ImageHeight: scene.ImageHeight,
		MaterialLib: out.MaterialLib,
		Material:    out.Material,
	}
	for _, path := range []string{art.ArchMesh, art.ImageMesh} {
		if err := rewriter.RewriteFile(path); err != nil {
			return Artifacts{}, err
		}
	}
	if err := objuv.WriteMaterialLibrary(art.MaterialLib, out.Material, relativeTo(filepath.Dir(art.MaterialLib), out.Texture)); err != nil {
		return Artifacts{}, err
	}

	svg, err := NewRenderer().Render(scene)
	if err != nil {
		return Artifacts{}, fmt.Errorf("render plan: %w", err)
	}
	if err := os.WriteFile(art.PlanSVG, []byte(svg), 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("write plan: %w", err)
	}

	c.logger.Info("artifacts written",
		zap.String("dir", dir),
		zap.Int("exported", len(handles)),
	)
	return art, nil
}

// Run converts doc and writes every artifact into dir.
func (c *Converter) Run(doc *models.Document, dir string, out OutputOptions) (*models.Scene, Artifacts, error) {
	scene, err := c.Convert(doc)
	if err != nil {
		return nil, Artifacts{}, err
	}
	if out.Texture == "" {
		out.Texture = doc.ImageFile()
	}
	art, err := c.Export(scene, dir, out)
	if err != nil {
		return nil, Artifacts{}, err
	}
	return scene, art, nil
}

// relativeTo rewrites path so it resolves from dir. Paths that cannot be
// made relative are returned absolute.
func relativeTo(dir, path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(absDir, abs)
	if err != nil {
		return abs
	}
	return rel
}
