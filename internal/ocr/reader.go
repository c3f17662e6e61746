package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract/v2"

	"github.com/lastwar-tools/truckbot/internal/cv"
)

// PageSegMode selects the Tesseract page segmentation strategy
type PageSegMode int

const (
	ModeBlock      PageSegMode = 6 // Uniform block of text
	ModeSingleLine PageSegMode = 7
	ModeSingleWord PageSegMode = 8
)

// Recognizer turns an image into text
type Recognizer interface {
	Text(img image.Image, mode PageSegMode) (string, error)
	Close() error
}

// TesseractClient is a Recognizer backed by a gosseract client.
// Safe for use from multiple goroutines.
type TesseractClient struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractClient creates a client reading English and German text.
func NewTesseractClient() (*TesseractClient, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng", "deu"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR languages: %w", err)
	}
	return &TesseractClient{client: client}, nil
}

// Text recognizes the text in img using the given segmentation mode.
func (t *TesseractClient) Text(img image.Image, mode PageSegMode) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode OCR input: %w", err)
	}

	if err := t.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load OCR input: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return text, nil
}

// Close releases the underlying Tesseract handle.
func (t *TesseractClient) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Reader reads text out of screen regions, with pre-processing tuned for
// small in-game labels.
type Reader struct {
	recognizer Recognizer
}

// NewReader creates a region reader on top of a Recognizer.
func NewReader(recognizer Recognizer) *Reader {
	return &Reader{recognizer: recognizer}
}

// ReadRegion crops region out of img and tries each segmentation mode in
// order, returning the first non-empty trimmed result.
func (r *Reader) ReadRegion(img *image.RGBA, region image.Rectangle, modes ...PageSegMode) string {
	if len(modes) == 0 {
		modes = []PageSegMode{ModeSingleLine}
	}
	crop := cv.CropRegion(img, region)
	if crop.Bounds().Empty() {
		return ""
	}
	for _, mode := range modes {
		text, err := r.recognizer.Text(crop, mode)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ReadStrength reads a strength label such as "12.5M". The in-game font
// confuses line segmentation, so single line, single word and block modes
// are tried in turn; a result without the million marker is discarded.
func (r *Reader) ReadStrength(img *image.RGBA, region image.Rectangle) string {
	crop := cv.CropRegion(img, region)
	if crop.Bounds().Empty() {
		return ""
	}
	for _, mode := range []PageSegMode{ModeSingleLine, ModeSingleWord, ModeBlock} {
		text, err := r.recognizer.Text(crop, mode)
		if err != nil {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed != "" && strings.ContainsAny(trimmed, "mM") {
			return trimmed
		}
	}
	return ""
}

// ReadRegionEnhanced reads a low-contrast region: grayscale, 4x bicubic
// upscale, binarize at 180 and pad with a white border before recognition.
func (r *Reader) ReadRegionEnhanced(img *image.RGBA, region image.Rectangle, modes ...PageSegMode) string {
	if len(modes) == 0 {
		modes = []PageSegMode{ModeSingleLine}
	}
	crop := cv.CropRegion(img, region)
	if crop.Bounds().Empty() {
		return ""
	}
	prepared := prepare(crop)
	for _, mode := range modes {
		text, err := r.recognizer.Text(prepared, mode)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func prepare(crop *image.RGBA) *image.RGBA {
	gray := cv.ToGrayscale(crop)
	scaled := resize.Resize(uint(gray.Bounds().Dx()*4), uint(gray.Bounds().Dy()*4), gray, resize.Bicubic)
	rgba := image.NewRGBA(scaled.Bounds())
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			rgba.Set(x, y, scaled.At(x, y))
		}
	}
	return cv.AddBorder(cv.Binarize(rgba, 180), 10, color.White)
}
