package objuv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newRewriter() Rewriter {
	return Rewriter{ImageWidth: 10, ImageHeight: 10, MaterialLib: "out.mtl", Material: "image"}
}

func TestUV_trueDivision(t *testing.T) {
	u, v := newRewriter().UV(5, 3)
	if u != 0.5 || v != 0.3 {
		t.Errorf("got (%v, %v), want (0.5, 0.3)", u, v)
	}
	// Floor division would collapse interior points to the origin.
	if u == 0 && v == 0 {
		t.Error("UV collapsed to origin: floor division regression")
	}
}

func TestRewrite(t *testing.T) {
	src := strings.Join([]string{
		"# exported",
		"o Rectangle",
		"v 5 3 0",
		"v 10 10 0",
		"vn 0 0 1",
		"f 1//1 2//1 3//1",
		"f 1 2 3",
		"f 4/9 5/9 6/9",
		"f 1/7/2 2/8/2 3/9/2",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := newRewriter().Rewrite(strings.NewReader(src), &out); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"mtllib out.mtl",
		"usemtl image",
		"# exported",
		"o Rectangle",
		"v 5 3 0",
		"vt 0.5 0.3",
		"v 10 10 0",
		"vt 1 1",
		"vn 0 0 1",
		"f 1/1/1 2/2/1 3/3/1",
		"f 1/1 2/2 3/3",
		"f 4/4 5/5 6/6",
		"f 1/1/2 2/2/2 3/3/2",
	}, "\n") + "\n"
	if out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRewrite_errors(t *testing.T) {
	tests := map[string]string{
		"bad vertex":  "v a b c\n",
		"short face":  "f 1 2\n",
		"empty index": "f /1 2 3\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := newRewriter().Rewrite(strings.NewReader(src), &out); err == nil {
				t.Error("expected error")
			}
		})
	}

	r := newRewriter()
	r.ImageWidth = 0
	if err := r.Rewrite(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error for zero image width")
	}
}

func TestRewriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.obj")
	if err := os.WriteFile(path, []byte("v 2 8 0\nf 1//1 1//1 1//1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := newRewriter().RewriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "vt 0.2 0.8\n") || !strings.HasPrefix(string(data), "mtllib out.mtl\n") {
		t.Errorf("unexpected output:\n%s", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestWriteMaterialLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mtl")
	if err := WriteMaterialLibrary(path, "image", "plan.png"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "newmtl image\n") || !strings.Contains(string(data), "map_Kd plan.png\n") {
		t.Errorf("unexpected material library:\n%s", data)
	}
}
