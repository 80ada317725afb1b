package assetsvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	// Supported values: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear".
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// fitSize returns the size of a width x height image scaled down so that
// its longest side is at most maxDim. Smaller images keep their size.
func fitSize(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height
	}

	if width >= height {
		return maxDim, max(1, height*maxDim/width)
	}

	return max(1, width*maxDim/height), maxDim
}

// fitImage draws original onto a new RGBA bitmap bounded by maxDim.
func fitImage(original image.Image, maxDim int, interpol draw.Interpolator) image.Image {
	bounds := original.Bounds()
	width, height := fitSize(bounds.Dx(), bounds.Dy(), maxDim)

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))

	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(bitmap, bitmap.Bounds(), original, bounds.Min, draw.Src)
	} else {
		interpol.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Src, nil)
	}

	return bitmap
}

// encodePNG encodes bitmap as PNG.
func encodePNG(bitmap image.Image) ([]byte, error) {
	var buffer bytes.Buffer

	if err := png.Encode(&buffer, bitmap); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buffer.Bytes(), nil
}
