package detection

import (
	"image"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// NotesParams configures DetectNotes.
type NotesParams struct {
	// BlockSize is the odd side of the adaptive threshold window and Offset
	// the constant subtracted from the local mean.
	BlockSize int
	Offset    int

	// RowDensity is the exclusive lower bound on a row's ink count relative
	// to the densest row.
	RowDensity float64

	// MaxHeightFraction rejects spans as tall as this fraction of the page.
	MaxHeightFraction float64
}

// NotesParamsFrom builds detector parameters from configuration.
func NotesParamsFrom(c config.Notes) NotesParams {
	return NotesParams{
		BlockSize:         c.BlockSize,
		Offset:            c.Offset,
		RowDensity:        c.RowDensity,
		MaxHeightFraction: c.MaxHeightFraction,
	}
}

// DetectNotes locates the horizontal band of general notes by row ink
// density. It returns false when no band qualifies.
//
// Ink is found with an inverse adaptive mean threshold. Every row whose ink
// count exceeds RowDensity times the densest row qualifies; the band runs
// from the first to the last qualifying row and spans the full page width.
// Disjoint dense bands are not separated. A band reaching
// MaxHeightFraction of the page height is rejected, as is a band of a
// single row.
func DetectNotes(gray *image.Gray, p NotesParams) (BoundingBox, bool) {
	ink := imaging.AdaptiveThresholdInv(gray, p.BlockSize, p.Offset)
	counts := imaging.RowCounts(ink)

	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	// Blank page
	if peak == 0 {
		return BoundingBox{}, false
	}

	first, last := -1, -1
	for y, c := range counts {
		if float64(c)/float64(peak) > p.RowDensity {
			if first < 0 {
				first = y
			}
			last = y
		}
	}
	if first < 0 {
		return BoundingBox{}, false
	}

	width := ink.Bounds().Dx()
	height := ink.Bounds().Dy()
	span := last - first
	if float64(span) >= p.MaxHeightFraction*float64(height) {
		return BoundingBox{}, false
	}
	if span == 0 {
		return BoundingBox{}, false
	}

	return BoundingBox{X: 0, Y: first, Width: width, Height: span}, true
}
