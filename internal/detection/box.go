package detection

import (
	"encoding/json"
	"fmt"
	"image"
)

// BoundingBox is an axis-aligned rectangle in page pixel coordinates.
//
// (X, Y) is the top-left corner; the box covers columns [X, X+Width) and
// rows [Y, Y+Height). In JSON a box is the array [x, y, w, h].
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FromRect converts an image rectangle into a bounding box.
func FromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the box as an image rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns Width × Height.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Within reports whether the box lies inside a width × height page.
func (b BoundingBox) Within(width, height int) bool {
	return b.X >= 0 && b.Y >= 0 && b.Width >= 0 && b.Height >= 0 &&
		b.X+b.Width <= width && b.Y+b.Height <= height
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", b.X, b.Y, b.Width, b.Height)
}

// MarshalJSON encodes the box as [x, y, w, h].
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X, b.Y, b.Width, b.Height})
}

// UnmarshalJSON decodes a box from [x, y, w, h].
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("bbox: expected 4 values, got %d", len(v))
	}
	*b = BoundingBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	return nil
}
