package cv

import (
	"image"
	"math"
)

// MatchResult contains the best template match found in a frame
type MatchResult struct {
	Found      bool
	Location   image.Point
	Bounds     image.Rectangle // Bounding box of the matched template
	Confidence float64
}

// MatchConfig configures template matching
type MatchConfig struct {
	Threshold    float64          // 0.0-1.0, higher = more strict
	SearchRegion *image.Rectangle // Optional: limit search area
}

// DefaultMatchConfig returns the settings used for icon anchoring
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		Threshold: 0.80,
	}
}

// FindTemplate finds the single best placement of needle within haystack.
// Confidence is normalized cross-correlation over the RGB channels.
func FindTemplate(haystack, needle *image.RGBA, config *MatchConfig) *MatchResult {
	if config == nil {
		config = DefaultMatchConfig()
	}
	if haystack == nil || needle == nil {
		return &MatchResult{Found: false}
	}

	needleWidth := needle.Bounds().Dx()
	needleHeight := needle.Bounds().Dy()

	searchBounds, ok := searchArea(haystack, needle, config.SearchRegion)
	if !ok {
		return &MatchResult{Found: false}
	}

	bestScore := 0.0
	bestLocation := image.Point{}
	found := false

	maxY := searchBounds.Max.Y - needleHeight
	maxX := searchBounds.Max.X - needleWidth

	for y := searchBounds.Min.Y; y <= maxY; y++ {
		for x := searchBounds.Min.X; x <= maxX; x++ {
			score := correlationAt(haystack, needle, x, y)
			if score > bestScore {
				bestScore = score
				bestLocation = image.Point{x, y}
				if score >= config.Threshold {
					found = true
				}
			}
		}
	}

	return &MatchResult{
		Found:      found,
		Location:   bestLocation,
		Bounds:     image.Rect(bestLocation.X, bestLocation.Y, bestLocation.X+needleWidth, bestLocation.Y+needleHeight),
		Confidence: bestScore,
	}
}

// FindAllLocations returns every placement whose correlation meets threshold,
// in raster scan order (row-major). Downstream use of the first element is an
// arbitrary tie-break, not a best-match selection.
func FindAllLocations(haystack, needle *image.RGBA, threshold float64) []image.Point {
	if haystack == nil || needle == nil {
		return nil
	}

	searchBounds, ok := searchArea(haystack, needle, nil)
	if !ok {
		return nil
	}

	needleWidth := needle.Bounds().Dx()
	needleHeight := needle.Bounds().Dy()
	maxY := searchBounds.Max.Y - needleHeight
	maxX := searchBounds.Max.X - needleWidth

	var locations []image.Point
	for y := searchBounds.Min.Y; y <= maxY; y++ {
		for x := searchBounds.Min.X; x <= maxX; x++ {
			if correlationAt(haystack, needle, x, y) >= threshold {
				locations = append(locations, image.Point{x, y})
			}
		}
	}
	return locations
}

// searchArea computes the valid search bounds, or false when the template
// cannot fit (including unreadable/degenerate inputs).
func searchArea(haystack, needle *image.RGBA, region *image.Rectangle) (image.Rectangle, bool) {
	haystackBounds := haystack.Bounds()
	needleBounds := needle.Bounds()

	if needleBounds.Empty() || haystackBounds.Empty() {
		return image.Rectangle{}, false
	}
	if needleBounds.Dx() > haystackBounds.Dx() || needleBounds.Dy() > haystackBounds.Dy() {
		return image.Rectangle{}, false
	}

	searchBounds := haystackBounds
	if region != nil {
		searchBounds = region.Intersect(haystackBounds)
		if searchBounds.Empty() {
			return image.Rectangle{}, false
		}
	}

	if searchBounds.Max.Y-needleBounds.Dy() < searchBounds.Min.Y ||
		searchBounds.Max.X-needleBounds.Dx() < searchBounds.Min.X {
		return image.Rectangle{}, false
	}

	return searchBounds, true
}

// correlationAt computes the normalized cross-correlation of needle against
// haystack at offset (x, y), mapped from [-1, 1] to [0, 1].
func correlationAt(haystack, needle *image.RGBA, x, y int) float64 {
	width := needle.Bounds().Dx()
	height := needle.Bounds().Dy()

	var sumH, sumN, sumHN, sumHH, sumNN float64
	pixelCount := float64(width * height * 3)

	hb := haystack.Bounds()

	for ny := 0; ny < height; ny++ {
		for nx := 0; nx < width; nx++ {
			hIdx := (y+ny-hb.Min.Y)*haystack.Stride + (x+nx-hb.Min.X)*4
			nIdx := ny*needle.Stride + nx*4

			for c := 0; c < 3; c++ {
				h := float64(haystack.Pix[hIdx+c])
				n := float64(needle.Pix[nIdx+c])

				sumH += h
				sumN += n
				sumHN += h * n
				sumHH += h * h
				sumNN += n * n
			}
		}
	}

	numerator := sumHN - (sumH * sumN / pixelCount)
	denomH := math.Sqrt(sumHH - (sumH * sumH / pixelCount))
	denomN := math.Sqrt(sumNN - (sumN * sumN / pixelCount))

	if denomH == 0 || denomN == 0 {
		// Correlation is undefined on flat regions. A flat-on-flat pair with
		// equal means still counts as a perfect match so solid-color
		// templates can anchor.
		if denomH == 0 && denomN == 0 && math.Abs(sumH-sumN) < 1e-6 {
			return 1.0
		}
		return 0
	}

	correlation := numerator / (denomH * denomN)
	return (correlation + 1.0) / 2.0
}
