package cv

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
)

// Template describes a reference image to locate on screen.
type Template struct {
	Name      string
	Path      string
	Threshold float64
	Region    *image.Rectangle // Optional search region
}

// LoadImage reads the template's PNG from disk as RGBA.
func (t Template) LoadImage() (*image.RGBA, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", t.Name, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", t.Name, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
