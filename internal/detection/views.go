package detection

import (
	"image"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// ViewParams configures DetectViews.
type ViewParams struct {
	// CannyLow and CannyHigh are the hysteresis thresholds of the edge map.
	CannyLow  int
	CannyHigh int

	// KernelWidth × KernelHeight is the dilation rectangle, applied
	// Iterations times to close the gaps between strokes of one view.
	KernelWidth  int
	KernelHeight int
	Iterations   int

	// MinArea is the exclusive lower bound on bounding box area.
	MinArea int

	// MinAspect and MaxAspect bound width/height, both exclusive.
	MinAspect float64
	MaxAspect float64
}

// ViewParamsFrom builds detector parameters from configuration.
func ViewParamsFrom(c config.Views) ViewParams {
	return ViewParams{
		CannyLow:     c.Canny.Low,
		CannyHigh:    c.Canny.High,
		KernelWidth:  c.Dilation.Width,
		KernelHeight: c.Dilation.Height,
		Iterations:   c.Dilation.Iterations,
		MinArea:      c.MinArea,
		MinAspect:    c.MinAspect,
		MaxAspect:    c.MaxAspect,
	}
}

// DetectViews finds candidate orthographic views on a page.
//
// # Algorithm
//
//  1. Edge Detection: Canny on the luminance plane
//  2. Grouping: rectangular dilation fuses the strokes of a view into one blob
//  3. Contour Finding: outermost components only, one bounding box each
//  4. Filtering: keep boxes with area > MinArea and MinAspect < w/h < MaxAspect
//
// Boxes are neither merged nor ranked; overlapping views stay separate.
// The result order is the raster order of the contours, which is stable
// for a given page.
//
// # Limitations
//
// The title block and the drawing frame pass the same filters when they
// are large enough, so they may also be reported as views.
func DetectViews(gray *image.Gray, p ViewParams) []BoundingBox {
	edges := imaging.Canny(gray, p.CannyLow, p.CannyHigh)
	blobs := imaging.Dilate(edges, p.KernelWidth, p.KernelHeight, p.Iterations)

	views := make([]BoundingBox, 0)
	for _, r := range ExternalContours(blobs) {
		box := FromRect(r)
		if box.Area() <= p.MinArea {
			continue
		}
		aspect := float64(box.Width) / float64(box.Height)
		if aspect <= p.MinAspect || aspect >= p.MaxAspect {
			continue
		}
		views = append(views, box)
	}
	return views
}
