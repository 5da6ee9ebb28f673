package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is one annotated rectangle of an overlay.
type Box struct {
	Rect  image.Rectangle
	Label string
	Color color.Color
}

// labelFace is the fixed-size face used for box labels.
var labelFace = basicfont.Face7x13

// Overlay draws each box outline with its label on a copy of img.
//
// Outlines are thickness pixels wide and centred on the rectangle edges,
// from (Min.X, Min.Y) to (Max.X, Max.Y) inclusive. Labels are drawn in the
// box colour with their baseline 6 pixels above the top edge, starting 5
// pixels right of the left edge; when that would put the label above the
// image, it is drawn just inside the top edge instead. Everything is
// clipped to the image. The source image is never modified.
func Overlay(img image.Image, boxes []Box, thickness int) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for _, b := range boxes {
		drawOutline(result, b.Rect, thickness, b.Color)
		if b.Label != "" {
			drawLabel(result, b.Rect, b.Label, b.Color)
		}
	}
	return result
}

// drawOutline paints the four edges of r with the given stroke width.
func drawOutline(img *image.NRGBA, r image.Rectangle, thickness int, c color.Color) {
	before := thickness / 2
	after := thickness - before - 1
	src := image.NewUniform(c)

	edges := []image.Rectangle{
		// top and bottom
		image.Rect(r.Min.X-before, r.Min.Y-before, r.Max.X+after+1, r.Min.Y+after+1),
		image.Rect(r.Min.X-before, r.Max.Y-before, r.Max.X+after+1, r.Max.Y+after+1),
		// left and right
		image.Rect(r.Min.X-before, r.Min.Y-before, r.Min.X+after+1, r.Max.Y+after+1),
		image.Rect(r.Max.X-before, r.Min.Y-before, r.Max.X+after+1, r.Max.Y+after+1),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel renders text next to the top-left corner of r.
func drawLabel(img *image.NRGBA, r image.Rectangle, text string, c color.Color) {
	ascent := labelFace.Metrics().Ascent.Ceil()
	baseline := r.Min.Y - 6
	if baseline-ascent < 0 {
		baseline = r.Min.Y + ascent + 4
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(r.Min.X+5, baseline),
	}
	d.DrawString(text)
}

// ParseHexColor parses a colour string like "#00FF00" into an opaque colour.
func ParseHexColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
