package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"floorplan3d/internal/converter/mapper"
	"floorplan3d/internal/converter/models"
	"floorplan3d/internal/converter/repository"
	"floorplan3d/internal/converter/storage"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const validDoc = `{
  "imageWidth": 100,
  "imageHeight": 100,
  "imagePath": "plan.png",
  "shapes": [
    {"label": "wall", "points": [[0, 10], [100, 30]]},
    {"label": "window", "points": [[10, 40], [50, 44]]},
    {"label": "door", "points": [[40, 18], [60, 22]]}
  ]
}`

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()

	db, err := repository.OpenSQLite(filepath.Join(dir, "db", "runs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	h := NewConvertHandler(repo, storage.NewRunStorage(filepath.Join(dir, "runs")),
		mapper.DefaultOptions(), mapper.DefaultOutputOptions(), 5, zap.NewNop())

	app := fiber.New()
	h.Register(app)
	return app
}

func uploadRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "plan.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(part, body); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testRequest(app *fiber.App, req *http.Request) (*http.Response, error) {
	return app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestConvert_success(t *testing.T) {
	app := newTestApp(t)

	resp, err := testRequest(app, uploadRequest(t, validDoc))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var out convertResponse
	decode(t, resp, &out)
	if out.ID == "" || out.Status != models.RunSucceeded {
		t.Errorf("response = %+v", out)
	}
	if out.Walls != 2 || out.Openings != 2 {
		t.Errorf("walls/openings = %d/%d, want 2/2", out.Walls, out.Openings)
	}
	if len(out.Files) != 5 {
		t.Errorf("files = %v, want 5 artifacts", out.Files)
	}

	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d", resp.StatusCode)
	}
	var got struct {
		Run models.Run `json:"run"`
	}
	decode(t, resp, &got)
	if got.Run.Status != models.RunSucceeded || got.Run.InputName != "plan.json" {
		t.Errorf("run = %+v", got.Run)
	}

	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID+"/plan.svg", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("plan.svg status = %d, want 200", resp.StatusCode)
	}

	// Uploads carry no image, so the material library must not point at one.
	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID+"/files/out.mtl", nil))
	if err != nil {
		t.Fatal(err)
	}
	mtl, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || bytes.Contains(mtl, []byte("map_Kd")) {
		t.Errorf("out.mtl status = %d, body = %q", resp.StatusCode, mtl)
	}

	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID+"/files/.hidden", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("hidden file status = %d, want 400", resp.StatusCode)
	}

	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID+"/files/missing.obj", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", resp.StatusCode)
	}
}

func TestConvert_withoutElements(t *testing.T) {
	app := newTestApp(t)

	body := `{"imageWidth": 100, "imageHeight": 100, "shapes": [{"label": "text", "points": [[1, 1]]}]}`
	resp, err := testRequest(app, uploadRequest(t, body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var out convertResponse
	decode(t, resp, &out)
	if out.Walls != 0 || out.Openings != 0 || len(out.Files) != 5 {
		t.Errorf("response = %+v, want empty scene with 5 artifacts", out)
	}
}

func TestConvert_failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"imageWidth": 100,`, http.StatusBadRequest},
		{"missing size", `{"shapes": []}`, http.StatusBadRequest},
		{"bad point count", `{"imageWidth": 10, "imageHeight": 10, "shapes": [{"label": "wall", "points": [[0,0],[1,1],[2,2]]}]}`, http.StatusBadRequest},
		{"degenerate wall", `{"imageWidth": 10, "imageHeight": 10, "shapes": [{"label": "wall", "points": [[5,5],[5,5]]}]}`, http.StatusUnprocessableEntity},
		{"door without walls", `{"imageWidth": 100, "imageHeight": 100, "shapes": [{"label": "door", "points": [[40,18],[60,22]]}]}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			resp, err := testRequest(app, uploadRequest(t, tt.body))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}

			var out struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			decode(t, resp, &out)
			if out.Status != string(models.RunFailed) {
				t.Errorf("status = %q, want failed", out.Status)
			}

			resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs/"+out.ID, nil))
			if err != nil {
				t.Fatal(err)
			}
			var got struct {
				Run models.Run `json:"run"`
			}
			decode(t, resp, &got)
			if got.Run.Status != models.RunFailed || got.Run.Error == "" {
				t.Errorf("recorded run = %+v", got.Run)
			}
		})
	}
}

func TestConvert_missingFile(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/convert", nil)
	resp, err := testRequest(app, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListRuns(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		resp, err := testRequest(app, uploadRequest(t, validDoc))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	resp, err := testRequest(app, httptest.NewRequest(http.MethodGet, "/runs?limit=2", nil))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Runs []models.Run `json:"runs"`
	}
	decode(t, resp, &out)
	if len(out.Runs) != 2 {
		t.Errorf("runs = %d, want 2", len(out.Runs))
	}

	resp, err = testRequest(app, httptest.NewRequest(http.MethodGet, "/runs?limit=zero", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestGetRun_notFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/runs/missing", "/runs/missing/plan.svg"} {
		resp, err := testRequest(app, httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("parse: %w", models.ErrMalformedDocument), http.StatusBadRequest},
		{fmt.Errorf("shape 0: %w", models.ErrInvalidPointCount), http.StatusBadRequest},
		{fmt.Errorf("shape 0: %w", &models.DegenerateGeometryError{Length: 0}), http.StatusUnprocessableEntity},
		{fmt.Errorf("door0: %w", models.ErrNoHostAvailable), http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
