package objuv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteMaterialLibrary writes the .mtl file named by a rewritten mesh
// header. texture may be empty, in which case the material is flat white.
func WriteMaterialLibrary(path, material, texture string) error {
	if material == "" {
		return fmt.Errorf("material name is required")
	}

	var b strings.Builder
	b.WriteString("# floorplan3d material library\n")
	fmt.Fprintf(&b, "newmtl %s\n", material)
	b.WriteString("Ka 1.0 1.0 1.0\n")
	b.WriteString("Kd 1.0 1.0 1.0\n")
	b.WriteString("Ks 0.0 0.0 0.0\n")
	b.WriteString("d 1.0\n")
	b.WriteString("illum 1\n")
	if texture != "" {
		fmt.Fprintf(&b, "map_Kd %s\n", filepath.ToSlash(texture))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir material dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write material library: %w", err)
	}
	return nil
}
