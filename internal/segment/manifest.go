// Package segment turns a drawing page into an ordered manifest of blocks
// and persists the cropped block images, the manifest and a debug overlay.
//
// The manifest written as blocks.json is the only contract between
// segmentation and inspection:
//
//	[
//	  {"id": "TITLE_BLOCK", "type": "TITLE_BLOCK", "bbox": [x, y, w, h]},
//	  {"id": "NOTES", "type": "NOTES", "bbox": [x, y, w, h]},
//	  {"id": "VIEW_1", "type": "VIEW", "bbox": [x, y, w, h]}
//	]
package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/detection"
)

// ErrBoundsViolation is returned when a block's box leaves the page. It
// means a detector produced an impossible box; boxes are never clamped.
var ErrBoundsViolation = errors.New("block outside page bounds")

// BlockType classifies a block.
type BlockType string

const (
	TypeTitleBlock BlockType = "TITLE_BLOCK"
	TypeNotes      BlockType = "NOTES"
	TypeView       BlockType = "VIEW"
)

// Block is one labelled region of the page.
type Block struct {
	// ID is TITLE_BLOCK, NOTES or VIEW_<n> with n counting from 1 in
	// detection order.
	ID   string                `json:"id"`
	Type BlockType             `json:"type"`
	BBox detection.BoundingBox `json:"bbox"`

	// ViewType is reserved for a view classification (front, top, ...)
	// supplied downstream. Segmentation leaves it empty.
	ViewType string `json:"view_type,omitempty"`
}

// Manifest is the ordered list of blocks of one page: the title block
// first, then the notes, then the views.
type Manifest []Block

// Detection gathers the detector outputs for one page. A nil title block
// or notes box means the detector found none.
type Detection struct {
	TitleBlock *detection.BoundingBox
	Notes      *detection.BoundingBox
	Views      []detection.BoundingBox
}

// Assemble orders the detector outputs into a manifest.
func Assemble(d Detection) Manifest {
	m := make(Manifest, 0, len(d.Views)+2)
	if d.TitleBlock != nil {
		m = append(m, Block{ID: string(TypeTitleBlock), Type: TypeTitleBlock, BBox: *d.TitleBlock})
	}
	if d.Notes != nil {
		m = append(m, Block{ID: string(TypeNotes), Type: TypeNotes, BBox: *d.Notes})
	}
	for i, v := range d.Views {
		m = append(m, Block{ID: fmt.Sprintf("VIEW_%d", i+1), Type: TypeView, BBox: v})
	}
	return m
}

// Validate checks every box against a width × height page and that ids
// are unique.
func (m Manifest) Validate(width, height int) error {
	seen := make(map[string]bool, len(m))
	for _, b := range m {
		if seen[b.ID] {
			return fmt.Errorf("duplicate block id %s", b.ID)
		}
		seen[b.ID] = true

		if !b.BBox.Within(width, height) {
			return fmt.Errorf("%w: %s %v on a %dx%d page", ErrBoundsViolation, b.ID, b.BBox, width, height)
		}
	}
	return nil
}

// Views returns the view blocks in order.
func (m Manifest) Views() []Block {
	views := make([]Block, 0, len(m))
	for _, b := range m {
		if b.Type == TypeView {
			views = append(views, b)
		}
	}
	return views
}

// Find returns the block with the given id.
func (m Manifest) Find(id string) (Block, bool) {
	for _, b := range m {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Encode renders the manifest as indented JSON. Equal manifests always
// encode to the same bytes.
func (m Manifest) Encode() ([]byte, error) {
	if m == nil {
		m = Manifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// ReadManifest loads a manifest written by Persist.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}
