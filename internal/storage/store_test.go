package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/export"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/sim"
)

func testResult(t *testing.T, p dynamo.Params) *sim.Result {
	t.Helper()
	s, err := sim.FromParams(p, [2]float64{1.1, -0.3}, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), sim.RunConfig{Steps: 40, RecordEvery: 4})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestStoreSaveLoadRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := dynamo.DefaultParams()
	p.Masses = [2]float64{2, 3}
	result := testResult(t, p)
	result.Metrics["flips_outer"] = 1

	id, err := st.SaveRun(Metadata{Params: p, Dt: 0.01, Angles: [2]float64{1.1, -0.3}}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindRun {
		t.Errorf("kind = %q, want %q", meta.Kind, KindRun)
	}
	if meta.Steps != 40 {
		t.Errorf("steps = %d, want 40", meta.Steps)
	}
	if meta.Params != p {
		t.Errorf("params = %+v, want %+v", meta.Params, p)
	}
	if meta.Metrics["flips_outer"] != 1 {
		t.Errorf("metric flips_outer = %v", meta.Metrics["flips_outer"])
	}

	snaps, err := st.LoadTrajectory(id)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(snaps) != len(result.Snapshots) {
		t.Fatalf("got %d snapshots, want %d", len(snaps), len(result.Snapshots))
	}
	for i := range snaps {
		if snaps[i] != result.Snapshots[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, snaps[i], result.Snapshots[i])
		}
	}
}

func TestStoreSaveRender(t *testing.T) {
	st := New(t.TempDir())
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 2, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	view := field.DefaultViewport(4, 3)

	id, err := st.SaveRender(Metadata{Params: dynamo.DefaultParams(), View: &view}, img, export.TIFF)
	if err != nil {
		t.Fatalf("save render failed: %v", err)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Image != "field.tiff" || meta.View == nil || *meta.View != view {
		t.Errorf("metadata = %+v", meta)
	}

	got, err := st.LoadImage(id)
	if err != nil {
		t.Fatalf("load image failed: %v", err)
	}
	r, g, b, _ := got.At(1, 2).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 30 {
		t.Errorf("pixel = (%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	if _, err := st.LoadTrajectory(id); err == nil {
		t.Error("expected error loading a trajectory from a render")
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "data"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list of missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 entries, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	p := dynamo.DefaultParams()
	first, _ := st.SaveRun(Metadata{Params: p, Dt: 0.01}, testResult(t, p))
	second, _ := st.SaveRender(Metadata{Params: p}, image.NewRGBA(image.Rect(0, 0, 1, 1)), export.PNG)
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	p := dynamo.DefaultParams()

	id, err := st.SaveRun(Metadata{Params: p, Dt: 0.01}, testResult(t, p))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "trajectory.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, id, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	p := dynamo.DefaultParams()
	id, err := st.SaveRun(Metadata{Params: p, Dt: 0.01}, testResult(t, p))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, id); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if data.Metadata.ID != id || len(data.Snapshots) != 11 {
		t.Errorf("id %s, %d snapshots", data.Metadata.ID, len(data.Snapshots))
	}

	if err := st.ExportJSON(&buf, "missing"); err == nil {
		t.Error("expected error for missing entry")
	}
}
