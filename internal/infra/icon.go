package infra

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const iconSize = 24

// IconRenderer draws placeholder token avatars and caches them on disk.
// The same symbol always yields the same colors.
type IconRenderer struct {
	basePath string
}

// NewIconRenderer creates a renderer writing into dir
func NewIconRenderer(dir string) (*IconRenderer, error) {
	if dir == "" {
		return nil, fmt.Errorf("icon directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create icon directory: %w", err)
	}
	return &IconRenderer{basePath: dir}, nil
}

// Render returns the path of the symbol's icon, drawing it if missing.
func (r *IconRenderer) Render(symbol string) (string, error) {
	// Security: Sanitize symbol to prevent path traversal
	safeSymbol := sanitizeSymbol(symbol)
	if safeSymbol == "" {
		return "", fmt.Errorf("invalid symbol: %s", symbol)
	}

	filePath := r.IconPath(safeSymbol)
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache Hit
	}

	bg, fg := paletteFor(safeSymbol)
	canvas := imaging.New(iconSize*2, iconSize*2, bg)
	canvas = imaging.PasteCenter(canvas, imaging.New(iconSize, iconSize, fg))

	// Downscale with Lanczos for smooth edges
	icon := imaging.Resize(canvas, iconSize, iconSize, imaging.Lanczos)

	if err := imaging.Save(icon, filePath); err != nil {
		return "", fmt.Errorf("failed to save icon: %w", err)
	}
	return filePath, nil
}

// IconPath returns the local path for a symbol's icon
func (r *IconRenderer) IconPath(symbol string) string {
	return filepath.Join(r.basePath, strings.ToLower(sanitizeSymbol(symbol))+".png")
}

func paletteFor(symbol string) (color.NRGBA, color.NRGBA) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToUpper(symbol)))
	sum := h.Sum32()

	bg := color.NRGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
	fg := color.NRGBA{R: 255 - bg.R, G: 255 - bg.G, B: 255 - bg.B, A: 255}
	return bg, fg
}

func sanitizeSymbol(symbol string) string {
	res := make([]rune, 0, len(symbol))
	for _, r := range symbol {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			res = append(res, r)
		}
	}
	return string(res)
}
