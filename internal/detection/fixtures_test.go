package detection

import (
	"image"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
)

const (
	paper = 255
	ink   = 0
)

// createPlane creates a uniform gray plane
func createPlane(width, height int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// fillRect paints r with v, clipped to the plane
func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[y*g.Stride+x] = v
		}
	}
}

// strokeRect draws a rectangle outline of the given thickness inside r
func strokeRect(g *image.Gray, r image.Rectangle, thickness int, v uint8) {
	fillRect(g, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), v)
	fillRect(g, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), v)
	fillRect(g, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), v)
	fillRect(g, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), v)
}

// Geometry of the synthetic drawing built by createDrawingPlane.
var (
	drawingSize = image.Pt(1200, 1600)

	drawingViews = []image.Rectangle{
		image.Rect(100, 500, 400, 800),
		image.Rect(450, 500, 750, 800),
		image.Rect(800, 500, 1100, 800),
	}

	drawingFooter = image.Rect(500, 1350, 1150, 1450)

	// 15 text lines, 6 pixels high every 12 pixels
	drawingNotesTop    = 150
	drawingNotesBottom = 150 + 14*12 + 6
)

// createDrawingPlane creates a page with three view outlines, a footer table
// and a dense 15-line paragraph in the upper third.
//
// The outlines are drawn lighter than the paper so that only the paragraph
// is ink to the notes detector; the edge-based detectors see both.
func createDrawingPlane() *image.Gray {
	const (
		background = 128
		line       = 200
	)
	g := createPlane(drawingSize.X, drawingSize.Y, background)

	for i := 0; i < 15; i++ {
		y := drawingNotesTop + i*12
		fillRect(g, image.Rect(100, y, 1100, y+6), ink)
	}

	for _, v := range drawingViews {
		strokeRect(g, v, 2, line)
	}

	strokeRect(g, drawingFooter, 2, line)
	fillRect(g, image.Rect(820, drawingFooter.Min.Y, 822, drawingFooter.Max.Y), line)
	fillRect(g, image.Rect(820, 1400, drawingFooter.Max.X, 1402), line)

	return g
}

func defaultViewParams() ViewParams {
	return ViewParamsFrom(config.Default().Views)
}

func defaultNotesParams() NotesParams {
	return NotesParamsFrom(config.Default().Notes)
}

func defaultTitleBlockParams() TitleBlockParams {
	return TitleBlockParamsFrom(config.Default().TitleBlock)
}

// expand grows r by n pixels on every side
func expand(r image.Rectangle, n int) image.Rectangle {
	return image.Rect(r.Min.X-n, r.Min.Y-n, r.Max.X+n, r.Max.Y+n)
}
