package segment

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/imaging"
)

// File names inside an output directory.
const (
	ManifestFile = "blocks.json"
	OverlayFile  = "segmented_blocks.png"
)

// BlockImageFile returns the file name of a block's crop.
func BlockImageFile(id string) string {
	return id + ".png"
}

// OverlayStyle selects the debug overlay colours.
type OverlayStyle struct {
	ViewColor  color.Color
	OtherColor color.Color
	Thickness  int
}

// StyleFrom parses the overlay configuration.
func StyleFrom(c config.Overlay) (OverlayStyle, error) {
	view, err := imaging.ParseHexColor(c.ViewColor)
	if err != nil {
		return OverlayStyle{}, fmt.Errorf("overlay view colour: %w", err)
	}
	other, err := imaging.ParseHexColor(c.OtherColor)
	if err != nil {
		return OverlayStyle{}, fmt.Errorf("overlay colour: %w", err)
	}
	return OverlayStyle{ViewColor: view, OtherColor: other, Thickness: c.Thickness}, nil
}

// Persist writes the artifacts of one page into dir:
//   - <id>.png: the exact pixels of each block
//   - blocks.json: the manifest
//   - segmented_blocks.png: the page with every block outlined and labelled
//
// The manifest is validated against the page first; a box outside the page
// fails with ErrBoundsViolation before anything is written.
func Persist(page *imaging.Page, m Manifest, dir string, style OverlayStyle) error {
	if err := m.Validate(page.Width, page.Height); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, b := range m {
		crop, err := imaging.Crop(page.Image, b.BBox.Rect())
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrBoundsViolation, b.ID, err)
		}
		path := filepath.Join(dir, BlockImageFile(b.ID))
		if err := imgio.Save(path, crop, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	overlay := imaging.Overlay(page.Image, overlayBoxes(m, style), style.Thickness)
	if err := imgio.Save(filepath.Join(dir, OverlayFile), overlay, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}

func overlayBoxes(m Manifest, style OverlayStyle) []imaging.Box {
	boxes := make([]imaging.Box, 0, len(m))
	for _, b := range m {
		c := style.OtherColor
		if b.Type == TypeView {
			c = style.ViewColor
		}
		boxes = append(boxes, imaging.Box{Rect: b.BBox.Rect(), Label: b.ID, Color: c})
	}
	return boxes
}
