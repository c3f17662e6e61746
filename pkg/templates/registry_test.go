package templates

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/lastwar-tools/truckbot/internal/cv"
)

const testYAML = `templates:
  - name: truck_icon
    path: truck_icon.png
    threshold: 0.40
  - name: squad_anchor
    path: squad_anchor.png
    region:
      x1: 10
      y1: 20
      x2: 110
      y2: 220
`

func writeTestAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "game.yaml"), []byte(testYAML), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 128, 255})
		}
	}
	for _, name := range []string{"truck_icon.png", "squad_anchor.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatalf("failed to encode %s: %v", name, err)
		}
		f.Close()
	}
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeTestAssets(t)
	registry := NewRegistry(dir)

	if err := registry.LoadFromFile(filepath.Join(dir, "game.yaml")); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	truck, ok := registry.Get("truck_icon")
	if !ok {
		t.Fatal("truck_icon not registered")
	}
	if truck.Threshold != 0.40 {
		t.Errorf("truck threshold = %v, want 0.40", truck.Threshold)
	}
	if truck.Region != nil {
		t.Error("truck_icon should have no region")
	}

	anchor, ok := registry.Get("squad_anchor")
	if !ok {
		t.Fatal("squad_anchor not registered")
	}
	if anchor.Threshold != 0.8 {
		t.Errorf("default threshold = %v, want 0.8", anchor.Threshold)
	}
	want := image.Rect(10, 20, 110, 220)
	if anchor.Region == nil || *anchor.Region != want {
		t.Errorf("anchor region = %v, want %v", anchor.Region, want)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := writeTestAssets(t)
	registry := NewRegistry(dir)

	if err := registry.LoadFromDirectory(dir); err != nil {
		t.Fatalf("LoadFromDirectory failed: %v", err)
	}
	if len(registry.List()) != 2 {
		t.Errorf("got templates %v, want 2 entries", registry.List())
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	bad := "templates:\n  - path: x.png\n"
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}

	if err := NewRegistry(dir).LoadFromFile(path); err == nil {
		t.Error("expected error for nameless template")
	}
}

func TestImageCaching(t *testing.T) {
	dir := writeTestAssets(t)
	registry := NewRegistry(dir)
	if err := registry.LoadFromFile(filepath.Join(dir, "game.yaml")); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	first, err := registry.Image("truck_icon")
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	second, err := registry.Image("truck_icon")
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if first != second {
		t.Error("second load should come from cache")
	}

	if _, err := registry.Image("missing"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRegisterProgrammatic(t *testing.T) {
	registry := NewRegistry(t.TempDir())

	if err := registry.Register(cv.Template{}); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := registry.Register(cv.Template{Name: "manual", Path: "manual.png", Threshold: 0.5}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !registry.Has("manual") {
		t.Error("registered template not found")
	}
}
