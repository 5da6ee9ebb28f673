package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrOutOfBounds is returned when a crop region does not lie inside the
// image. Callers cropping detector output treat it as a logic defect.
var ErrOutOfBounds = errors.New("crop region outside image bounds")

// Crop extracts the exact pixels of rect from img.
//
// The region must be non-empty and fully inside img's bounds; it is never
// clamped. The result has its origin at (0, 0).
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !rect.In(bounds) {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d), image (%d,%d)-(%d,%d)",
			ErrOutOfBounds, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region: (%d,%d)-(%d,%d) is empty",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
	}

	return imaging.Crop(img, rect), nil
}
