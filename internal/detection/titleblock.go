package detection

import (
	"image"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// TitleBlockParams configures DetectTitleBlock.
type TitleBlockParams struct {
	// BandFraction is where the searched bottom band starts, as a fraction
	// of the page height.
	BandFraction float64

	CannyLow  int
	CannyHigh int

	KernelWidth  int
	KernelHeight int
	Iterations   int

	// MinArea and MinWidthFraction are exclusive lower bounds on a
	// candidate's area and on its width relative to the page.
	MinArea          int
	MinWidthFraction float64
}

// TitleBlockParamsFrom builds detector parameters from configuration.
func TitleBlockParamsFrom(c config.TitleBlock) TitleBlockParams {
	return TitleBlockParams{
		BandFraction:     c.BandFraction,
		CannyLow:         c.Canny.Low,
		CannyHigh:        c.Canny.High,
		KernelWidth:      c.Dilation.Width,
		KernelHeight:     c.Dilation.Height,
		Iterations:       c.Dilation.Iterations,
		MinArea:          c.MinArea,
		MinWidthFraction: c.MinWidthFraction,
	}
}

// DetectTitleBlock finds the title block in the bottom band of a page.
//
// The band covers rows [int(BandFraction·H), H). Its edge map is dilated
// with a wide, short rectangle so the cells of the title block fuse, and
// every outermost contour larger than MinArea and wider than
// MinWidthFraction of the page is a candidate. The result is the union of
// all candidates in page coordinates, so it always lies inside the band.
// It returns false when there is no candidate.
func DetectTitleBlock(gray *image.Gray, p TitleBlockParams) (BoundingBox, bool) {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bandStart := int(p.BandFraction * float64(height))
	if bandStart >= height {
		return BoundingBox{}, false
	}
	band := gray.SubImage(image.Rect(bounds.Min.X, bounds.Min.Y+bandStart, bounds.Max.X, bounds.Max.Y)).(*image.Gray)

	edges := imaging.Canny(band, p.CannyLow, p.CannyHigh)
	blobs := imaging.Dilate(edges, p.KernelWidth, p.KernelHeight, p.Iterations)

	var union image.Rectangle
	found := false
	for _, r := range ExternalContours(blobs) {
		if r.Dx()*r.Dy() <= p.MinArea {
			continue
		}
		if float64(r.Dx()) <= p.MinWidthFraction*float64(width) {
			continue
		}
		union = union.Union(r)
		found = true
	}
	if !found {
		return BoundingBox{}, false
	}

	return FromRect(union.Add(image.Pt(0, bandStart))), true
}
