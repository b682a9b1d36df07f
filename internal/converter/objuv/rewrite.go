// Package objuv adds floorplan texture coordinates to exported meshes.
package objuv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ============================================================
// UV Rewriter
// ============================================================

// Rewriter projects every vertex onto the floorplan image: u = x/W, v = y/H.
type Rewriter struct {
	ImageWidth  float64
	ImageHeight float64
	MaterialLib string
	Material    string
}

func (r Rewriter) validate() error {
	if r.ImageWidth <= 0 || r.ImageHeight <= 0 {
		return fmt.Errorf("image extents must be positive: %gx%g", r.ImageWidth, r.ImageHeight)
	}
	if r.MaterialLib == "" || r.Material == "" {
		return fmt.Errorf("material library and material name are required")
	}
	return nil
}

// UV maps a world position to texture space. True division: the image
// plane spans [0,W]x[0,H] so results stay within [0,1].
func (r Rewriter) UV(x, y float64) (float64, float64) {
	return x / r.ImageWidth, y / r.ImageHeight
}

// Rewrite copies src to dst, pairing each vertex record with a texture
// record and pointing every face's texture slot at its position index.
func (r Rewriter) Rewrite(src io.Reader, dst io.Writer) error {
	if err := r.validate(); err != nil {
		return err
	}

	w := bufio.NewWriter(dst)
	fmt.Fprintf(w, "mtllib %s\n", r.MaterialLib)
	fmt.Fprintf(w, "usemtl %s\n", r.Material)

	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "v "):
			u, v, err := r.vertexUV(trimmed)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			fmt.Fprintln(w, line)
			fmt.Fprintf(w, "vt %s %s\n", formatFloat(u), formatFloat(v))
		case strings.HasPrefix(trimmed, "f "):
			face, err := rewriteFace(trimmed)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			fmt.Fprintln(w, face)
		default:
			fmt.Fprintln(w, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read mesh: %w", err)
	}
	return w.Flush()
}

// RewriteFile rewrites a mesh file in place.
func (r Rewriter) RewriteFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mesh: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp mesh: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.Rewrite(src, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp mesh: %w", err)
	}
	src.Close()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace mesh: %w", err)
	}
	return nil
}

func (r Rewriter) vertexUV(record string) (float64, float64, error) {
	fields := strings.Fields(record)
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("vertex record %q has fewer than two coordinates", record)
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex y: %w", err)
	}
	u, v := r.UV(x, y)
	return u, v, nil
}

// rewriteFace sets the texture slot of each v/vt/vn group to v.
func rewriteFace(record string) (string, error) {
	fields := strings.Fields(record)
	if len(fields) < 4 {
		return "", fmt.Errorf("face record %q has fewer than three vertices", record)
	}
	out := make([]string, 0, len(fields))
	out = append(out, "f")
	for _, group := range fields[1:] {
		parts := strings.Split(group, "/")
		if parts[0] == "" {
			return "", fmt.Errorf("face group %q has no position index", group)
		}
		switch len(parts) {
		case 1, 2:
			out = append(out, parts[0]+"/"+parts[0])
		default:
			parts[1] = parts[0]
			out = append(out, strings.Join(parts, "/"))
		}
	}
	return strings.Join(out, " "), nil
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
