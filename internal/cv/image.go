package cv

import (
	"image"
	"image/color"
	"image/draw"
)

// CropRegion extracts a sub-image as a standalone RGBA copy.
// Regions outside the source are clipped; a fully out-of-bounds region
// yields an empty image.
func CropRegion(img *image.RGBA, region image.Rectangle) *image.RGBA {
	clipped := region.Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, clipped.Dx(), clipped.Dy()))
	if clipped.Empty() {
		return out
	}
	draw.Draw(out, out.Bounds(), img, clipped.Min, draw.Src)
	return out
}

// ToGrayscale converts an RGBA image to grayscale, keeping the RGBA layout
// so the result feeds back into matching and cropping.
func ToGrayscale(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{c.Y, c.Y, c.Y, 255})
		}
	}
	return out
}

// Binarize thresholds a grayscale image, inverting so dark glyphs on a
// bright background come out as dark-on-white for OCR. Pixels at or above
// threshold become black, the rest white.
func Binarize(img *image.RGBA, threshold uint8) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			v := uint8(255)
			if c.Y >= threshold {
				v = 0
			}
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{v, v, v, 255})
		}
	}
	return out
}

// AddBorder pads the image with a uniform border of the given color.
func AddBorder(img *image.RGBA, width int, c color.Color) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx()+2*width, bounds.Dy()+2*width))
	draw.Draw(out, out.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(width, width, width+bounds.Dx(), width+bounds.Dy()), img, bounds.Min, draw.Src)
	return out
}
