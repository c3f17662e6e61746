package cv

import (
	"image"
	"image/color"
	"testing"
)

// fill creates a solid-color RGBA image of the given size.
func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// stamp copies src onto dst at (x, y).
func stamp(dst, src *image.RGBA, x, y int) {
	b := src.Bounds()
	for sy := 0; sy < b.Dy(); sy++ {
		for sx := 0; sx < b.Dx(); sx++ {
			dst.Set(x+sx, y+sy, src.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
}

// pattern creates a small checkered template so correlation has variance.
func pattern(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{220, 40, 40, 255})
			} else {
				img.Set(x, y, color.RGBA{30, 30, 200, 255})
			}
		}
	}
	return img
}

func TestFindTemplateExactMatch(t *testing.T) {
	screen := fill(60, 40, color.RGBA{10, 10, 10, 255})
	tmpl := pattern(8, 8)
	stamp(screen, tmpl, 21, 13)

	result := FindTemplate(screen, tmpl, nil)
	if !result.Found {
		t.Fatalf("expected match, got confidence %.3f", result.Confidence)
	}
	if result.Location != (image.Point{21, 13}) {
		t.Errorf("location = %v, want (21,13)", result.Location)
	}
	want := image.Rect(21, 13, 29, 21)
	if result.Bounds != want {
		t.Errorf("bounds = %v, want %v", result.Bounds, want)
	}
	if result.Confidence < 0.99 {
		t.Errorf("confidence = %.3f, want near 1.0", result.Confidence)
	}
}

func TestFindTemplateNoMatch(t *testing.T) {
	screen := fill(60, 40, color.RGBA{10, 10, 10, 255})
	tmpl := pattern(8, 8)

	result := FindTemplate(screen, tmpl, &MatchConfig{Threshold: 0.95})
	if result.Found {
		t.Errorf("expected no match on blank screen, confidence %.3f at %v", result.Confidence, result.Location)
	}
}

func TestFindTemplateLargerThanScreen(t *testing.T) {
	screen := fill(10, 10, color.RGBA{0, 0, 0, 255})
	tmpl := pattern(20, 20)

	result := FindTemplate(screen, tmpl, nil)
	if result.Found {
		t.Error("oversized template must never match")
	}
}

func TestFindTemplateNilInputs(t *testing.T) {
	tmpl := pattern(4, 4)
	if FindTemplate(nil, tmpl, nil).Found {
		t.Error("nil screen must not match")
	}
	if FindTemplate(fill(10, 10, color.RGBA{}), nil, nil).Found {
		t.Error("nil template must not match")
	}
}

func TestFindTemplateSearchRegion(t *testing.T) {
	screen := fill(100, 60, color.RGBA{10, 10, 10, 255})
	tmpl := pattern(8, 8)
	stamp(screen, tmpl, 70, 30)

	region := image.Rect(0, 0, 40, 40)
	result := FindTemplate(screen, tmpl, &MatchConfig{Threshold: 0.95, SearchRegion: &region})
	if result.Found {
		t.Error("match outside the search region must be ignored")
	}

	region = image.Rect(60, 20, 100, 60)
	result = FindTemplate(screen, tmpl, &MatchConfig{Threshold: 0.95, SearchRegion: &region})
	if !result.Found || result.Location != (image.Point{70, 30}) {
		t.Errorf("expected match at (70,30) inside region, got %+v", result)
	}
}

func TestFindAllLocationsRasterOrder(t *testing.T) {
	screen := fill(80, 60, color.RGBA{10, 10, 10, 255})
	tmpl := pattern(6, 6)
	// Lower-left placement comes later in raster order despite smaller x.
	stamp(screen, tmpl, 50, 10)
	stamp(screen, tmpl, 5, 40)

	locations := FindAllLocations(screen, tmpl, 0.95)
	if len(locations) != 2 {
		t.Fatalf("got %d locations, want 2: %v", len(locations), locations)
	}
	if locations[0] != (image.Point{50, 10}) {
		t.Errorf("first location = %v, want (50,10) (row-major order)", locations[0])
	}
	if locations[1] != (image.Point{5, 40}) {
		t.Errorf("second location = %v, want (5,40)", locations[1])
	}
}

func TestFindAllLocationsEmptyOnBlank(t *testing.T) {
	screen := fill(40, 40, color.RGBA{200, 200, 200, 255})
	tmpl := pattern(6, 6)

	if got := FindAllLocations(screen, tmpl, 0.95); len(got) != 0 {
		t.Errorf("expected no locations, got %v", got)
	}
}

func TestCropRegionClipsToBounds(t *testing.T) {
	img := fill(20, 20, color.RGBA{50, 60, 70, 255})

	crop := CropRegion(img, image.Rect(15, 15, 30, 30))
	if crop.Bounds().Dx() != 5 || crop.Bounds().Dy() != 5 {
		t.Errorf("clipped crop = %v, want 5x5", crop.Bounds())
	}

	crop = CropRegion(img, image.Rect(100, 100, 120, 120))
	if !crop.Bounds().Empty() {
		t.Errorf("out-of-bounds crop should be empty, got %v", crop.Bounds())
	}
}

func TestBinarizeInverts(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{250, 250, 250, 255}) // bright
	img.Set(1, 0, color.RGBA{20, 20, 20, 255})    // dark

	out := Binarize(img, 180)

	bright := color.GrayModel.Convert(out.At(0, 0)).(color.Gray)
	dark := color.GrayModel.Convert(out.At(1, 0)).(color.Gray)
	if bright.Y != 0 {
		t.Errorf("bright pixel should become black, got %d", bright.Y)
	}
	if dark.Y != 255 {
		t.Errorf("dark pixel should become white, got %d", dark.Y)
	}
}

func TestAddBorder(t *testing.T) {
	img := fill(4, 4, color.RGBA{0, 0, 0, 255})
	out := AddBorder(img, 3, color.White)

	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 10 {
		t.Fatalf("bordered size = %v, want 10x10", out.Bounds())
	}
	edge := color.GrayModel.Convert(out.At(0, 0)).(color.Gray)
	if edge.Y != 255 {
		t.Errorf("border pixel should be white, got %d", edge.Y)
	}
	center := color.GrayModel.Convert(out.At(5, 5)).(color.Gray)
	if center.Y != 0 {
		t.Errorf("interior pixel should be black, got %d", center.Y)
	}
}
