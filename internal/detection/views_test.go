package detection

import (
	"image"
	"testing"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// createShapesPlane creates a white page with one view-sized square and
// three shapes that each fail one of the view filters
func createShapesPlane() *image.Gray {
	g := createPlane(1000, 1000, paper)
	strokeRect(g, image.Rect(100, 100, 400, 400), 2, ink) // view
	strokeRect(g, image.Rect(600, 100, 650, 150), 2, ink) // too small
	strokeRect(g, image.Rect(700, 100, 760, 700), 2, ink) // too tall
	strokeRect(g, image.Rect(100, 800, 900, 860), 2, ink) // too wide
	return g
}

func TestDetectViews(t *testing.T) {
	views := DetectViews(createShapesPlane(), defaultViewParams())

	if len(views) != 1 {
		t.Fatalf("views: got %v, want exactly one", views)
	}

	outline := image.Rect(100, 100, 400, 400)
	got := views[0].Rect()
	if !outline.In(got) {
		t.Errorf("view %v should contain the outline %v", got, outline)
	}
	if !got.In(expand(outline, 20)) {
		t.Errorf("view %v should hug the outline %v", got, outline)
	}
}

func TestDetectViews_FilterSubset(t *testing.T) {
	gray := createShapesPlane()
	p := defaultViewParams()

	views := DetectViews(gray, p)

	edges := imaging.Canny(gray, p.CannyLow, p.CannyHigh)
	contours := ExternalContours(imaging.Dilate(edges, p.KernelWidth, p.KernelHeight, p.Iterations))
	if len(contours) != 4 {
		t.Fatalf("contours: got %d, want one per shape", len(contours))
	}

	passing := make([]BoundingBox, 0)
	for _, r := range contours {
		b := FromRect(r)
		aspect := float64(b.Width) / float64(b.Height)
		if b.Area() > p.MinArea && aspect > p.MinAspect && aspect < p.MaxAspect {
			passing = append(passing, b)
		}
	}

	if len(views) != len(passing) {
		t.Fatalf("views: got %v, want %v", views, passing)
	}
	for i := range views {
		if views[i] != passing[i] {
			t.Errorf("view %d: got %v, want %v", i, views[i], passing[i])
		}
	}
}

func TestDetectViews_Thresholds(t *testing.T) {
	gray := createShapesPlane()

	tests := []struct {
		name   string
		modify func(*ViewParams)
		want   int
	}{
		{"defaults", func(p *ViewParams) {}, 1},
		{"area above every shape", func(p *ViewParams) { p.MinArea = 200000 }, 0},
		{"small shapes allowed", func(p *ViewParams) { p.MinArea = 1000 }, 2},
		{"tall shapes allowed", func(p *ViewParams) { p.MinAspect = 0.1 }, 2},
		{"wide shapes allowed", func(p *ViewParams) { p.MaxAspect = 20 }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultViewParams()
			tt.modify(&p)
			if got := DetectViews(gray, p); len(got) != tt.want {
				t.Errorf("views: got %d (%v), want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestDetectViews_Order(t *testing.T) {
	// The right-hand view starts higher, so it comes first
	g := createPlane(1000, 600, paper)
	strokeRect(g, image.Rect(100, 150, 400, 450), 2, ink)
	strokeRect(g, image.Rect(600, 100, 900, 400), 2, ink)

	views := DetectViews(g, defaultViewParams())
	if len(views) != 2 {
		t.Fatalf("views: got %v, want two", views)
	}
	if views[0].X < views[1].X {
		t.Errorf("order: got %v, want the upper view first", views)
	}
}

func TestDetectViews_NotMerged(t *testing.T) {
	// Two views side by side stay two boxes
	g := createPlane(1000, 600, paper)
	strokeRect(g, image.Rect(50, 100, 350, 400), 2, ink)
	strokeRect(g, image.Rect(550, 100, 850, 400), 2, ink)

	views := DetectViews(g, defaultViewParams())
	if len(views) != 2 {
		t.Fatalf("views: got %v, want two", views)
	}
	if views[0].Rect().Overlaps(views[1].Rect()) {
		t.Errorf("separate outlines should give disjoint boxes, got %v", views)
	}
}

func TestDetectViews_Scenario(t *testing.T) {
	gray := createDrawingPlane()

	views := DetectViews(gray, defaultViewParams())
	if len(views) != len(drawingViews) {
		t.Fatalf("views: got %v, want %d", views, len(drawingViews))
	}

	for i, outline := range drawingViews {
		got := views[i].Rect()
		if !outline.In(got) || !got.In(expand(outline, 20)) {
			t.Errorf("view %d: got %v, want a box around %v", i+1, got, outline)
		}
		if !views[i].Within(drawingSize.X, drawingSize.Y) {
			t.Errorf("view %d %v outside the page", i+1, views[i])
		}
	}
}

func TestDetectViews_Blank(t *testing.T) {
	if views := DetectViews(createPlane(800, 600, paper), defaultViewParams()); len(views) != 0 {
		t.Errorf("blank page: got %v, want no views", views)
	}
}
