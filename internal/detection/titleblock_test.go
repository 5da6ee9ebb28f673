package detection

import (
	"image"
	"testing"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

func TestDetectTitleBlock_BridgedCells(t *testing.T) {
	// Two bordered cells 12 pixels apart in the footer
	g := createPlane(1000, 1000, paper)
	left := image.Rect(200, 800, 480, 950)
	right := image.Rect(492, 800, 800, 950)
	strokeRect(g, left, 2, ink)
	strokeRect(g, right, 2, ink)

	p := defaultTitleBlockParams()
	box, ok := DetectTitleBlock(g, p)
	if !ok {
		t.Fatal("expected a title block")
	}

	got := box.Rect()
	if !left.In(got) || !right.In(got) {
		t.Errorf("title block %v should span both cells", got)
	}

	// The wide kernel fuses the cells into a single contour
	band := g.SubImage(image.Rect(0, 720, 1000, 1000)).(*image.Gray)
	edges := imaging.Canny(band, p.CannyLow, p.CannyHigh)
	contours := ExternalContours(imaging.Dilate(edges, p.KernelWidth, p.KernelHeight, p.Iterations))
	if len(contours) != 1 {
		t.Errorf("footer contours: got %d, want 1", len(contours))
	}
}

func TestDetectTitleBlock_SeparateCellsUnioned(t *testing.T) {
	// Cells too far apart to fuse are still reported as one block
	g := createPlane(1200, 1000, paper)
	left := image.Rect(50, 800, 400, 950)
	right := image.Rect(700, 800, 1100, 950)
	strokeRect(g, left, 2, ink)
	strokeRect(g, right, 2, ink)

	box, ok := DetectTitleBlock(g, defaultTitleBlockParams())
	if !ok {
		t.Fatal("expected a title block")
	}
	if got := box.Rect(); !left.In(got) || !right.In(got) {
		t.Errorf("title block %v should enclose both cells", got)
	}
}

func TestDetectTitleBlock_BandConstraint(t *testing.T) {
	tests := []struct {
		name   string
		rect   image.Rectangle
		wantOK bool
	}{
		{"above the band", image.Rect(100, 200, 900, 600), false},
		{"straddling the band", image.Rect(100, 600, 900, 900), true},
		{"inside the band", image.Rect(100, 780, 900, 960), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := createPlane(1000, 1000, paper)
			strokeRect(g, tt.rect, 2, ink)

			box, ok := DetectTitleBlock(g, defaultTitleBlockParams())
			if ok != tt.wantOK {
				t.Fatalf("found: got %v (%v), want %v", ok, box, tt.wantOK)
			}
			if !ok {
				return
			}
			if box.Y < 720 {
				t.Errorf("title block %v starts above the band at 720", box)
			}
			if !box.Within(1000, 1000) {
				t.Errorf("title block %v outside the page", box)
			}
		})
	}
}

func TestDetectTitleBlock_Filters(t *testing.T) {
	tests := []struct {
		name string
		draw func(*image.Gray)
	}{
		{"narrower than a quarter page", func(g *image.Gray) {
			strokeRect(g, image.Rect(440, 780, 560, 980), 2, ink)
		}},
		{"thin rule below the area", func(g *image.Gray) {
			fillRect(g, image.Rect(100, 900, 900, 902), ink)
		}},
		{"blank", func(g *image.Gray) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := createPlane(1000, 1000, paper)
			tt.draw(g)
			if box, ok := DetectTitleBlock(g, defaultTitleBlockParams()); ok {
				t.Errorf("expected no title block, got %v", box)
			}
		})
	}
}

func TestDetectTitleBlock_Scenario(t *testing.T) {
	box, ok := DetectTitleBlock(createDrawingPlane(), defaultTitleBlockParams())
	if !ok {
		t.Fatal("expected a title block")
	}

	got := box.Rect()
	if !drawingFooter.In(got) {
		t.Errorf("title block %v should contain the footer %v", got, drawingFooter)
	}
	bandStart := int(0.72 * float64(drawingSize.Y))
	if box.Y < bandStart {
		t.Errorf("title block %v starts above the band at %d", box, bandStart)
	}
	if !box.Within(drawingSize.X, drawingSize.Y) {
		t.Errorf("title block %v outside the page", box)
	}
}

func TestDetectTitleBlock_OffsetOrigin(t *testing.T) {
	// Detection on a sub-image reports coordinates relative to its origin
	full := createPlane(1200, 1200, paper)
	strokeRect(full, image.Rect(300, 980, 1000, 1130), 2, ink)
	sub := full.SubImage(image.Rect(100, 100, 1200, 1200)).(*image.Gray)

	box, ok := DetectTitleBlock(sub, defaultTitleBlockParams())
	if !ok {
		t.Fatal("expected a title block")
	}
	if !image.Rect(200, 880, 900, 1030).In(box.Rect()) {
		t.Errorf("title block %v should contain the footer in sub-image coordinates", box)
	}
	if !box.Within(1100, 1100) {
		t.Errorf("title block %v outside the sub-image", box)
	}
}
