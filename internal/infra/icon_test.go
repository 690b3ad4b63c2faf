package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestIconRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	r, err := NewIconRenderer(dir)
	if err != nil {
		t.Fatalf("NewIconRenderer failed: %v", err)
	}

	path, err := r.Render("LUNA")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if path != filepath.Join(dir, "luna.png") {
		t.Errorf("Unexpected path %s", path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("Expected %dx%d icon, got %v", iconSize, iconSize, b)
	}

	// second call is a cache hit
	info, _ := os.Stat(path)
	again, err := r.Render("LUNA")
	if err != nil || again != path {
		t.Fatalf("Second render = %s, %v", again, err)
	}
	info2, _ := os.Stat(path)
	if !info.ModTime().Equal(info2.ModTime()) {
		t.Error("Cached icon should not be rewritten")
	}
}

func TestIconRenderer_RejectsTraversal(t *testing.T) {
	r, err := NewIconRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewIconRenderer failed: %v", err)
	}

	if _, err := r.Render("../"); err == nil {
		t.Error("Expected error for symbol without safe characters")
	}
	if got := sanitizeSymbol("../etc/PASSWD"); got != "etcPASSWD" {
		t.Errorf("sanitizeSymbol = %q", got)
	}
}

func TestPaletteFor_Deterministic(t *testing.T) {
	bg1, fg1 := paletteFor("FRGE")
	bg2, fg2 := paletteFor("frge")
	if bg1 != bg2 || fg1 != fg2 {
		t.Error("Palette should be case-insensitive and deterministic")
	}
}
