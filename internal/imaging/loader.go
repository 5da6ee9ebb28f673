package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	// ErrNoPages is returned when a source document has no renderable page.
	ErrNoPages = errors.New("source has no renderable pages")

	// ErrUnsupportedSource is returned for file types the loader cannot read.
	ErrUnsupportedSource = errors.New("unsupported source type")

	// ErrEmptyPage is returned when the margin crop leaves no pixels.
	ErrEmptyPage = errors.New("page is empty after margin crop")
)

// LoadOptions controls how a source document is turned into a Page.
type LoadOptions struct {
	// DPI is the rasterization resolution for PDF sources. Raster image
	// sources are used at their native resolution.
	DPI int

	// MarginRatio is the fraction of each dimension cropped from both sides
	// of that axis (0.03 removes 3% on the left, 3% on the right, and so on).
	MarginRatio float64
}

// Page is a normalized drawing page: rasterized, flattened onto an opaque
// white background and margin-cropped.
//
// A Page is immutable once produced. Image and Gray both have their origin
// at (0, 0) and share the same dimensions.
type Page struct {
	// Image is the colour page. Alpha is always 255.
	Image *image.NRGBA

	// Gray is the 8-bit luminance plane of Image.
	Gray *image.Gray

	// Width and Height are the page dimensions after the margin crop.
	Width  int
	Height int
}

// LoadPage reads the first page of a source document and normalizes it.
//
// Parameters:
//   - path: A PDF, or a PNG/JPEG/GIF raster of a single page.
//   - opts: Rasterization DPI and margin ratio.
//
// Returns:
//   - *Page: The normalized page.
//   - error: Non-nil if the source cannot be read or rendered. There is no
//     partial result; a failed load means there is nothing to segment.
//
// # PDF Sources
//
// The page count is checked with pdfcpu before rendering so that a document
// without pages fails with ErrNoPages rather than a renderer error. Only
// page 1 is rasterized (with MuPDF through go-fitz).
func LoadPage(path string, opts LoadOptions) (*Page, error) {
	var raw image.Image
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		raw, err = rasterizePDF(path, opts.DPI)
	case ".png", ".jpg", ".jpeg", ".gif":
		raw, err = imgio.Open(path)
		if err != nil {
			err = fmt.Errorf("failed to decode image: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
	if err != nil {
		return nil, err
	}

	return NewPage(raw, opts.MarginRatio)
}

// rasterizePDF renders page 1 of a PDF at the requested resolution.
func rasterizePDF(path string, dpi int) (image.Image, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %d", dpi)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if count == 0 {
		return nil, ErrNoPages
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrNoPages
	}

	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page 1: %w", err)
	}
	return img, nil
}

// NewPage normalizes an already decoded raster into a Page.
//
// The raster is composited onto white (so transparent PDF backgrounds read
// as paper), then int(dimension × marginRatio) pixels are removed from both
// ends of each axis.
func NewPage(raw image.Image, marginRatio float64) (*Page, error) {
	b := raw.Bounds()
	w0, h0 := b.Dx(), b.Dy()
	if w0 == 0 || h0 == 0 {
		return nil, ErrNoPages
	}

	canvas := imaging.New(w0, h0, color.White)
	canvas = imaging.Overlay(canvas, raw, image.Pt(0, 0), 1.0)

	mx := int(float64(w0) * marginRatio)
	my := int(float64(h0) * marginRatio)
	rect := image.Rect(mx, my, w0-mx, h0-my)
	if rect.Empty() {
		return nil, fmt.Errorf("%w: %dx%d with margin ratio %v", ErrEmptyPage, w0, h0, marginRatio)
	}

	img := imaging.Crop(canvas, rect)
	return &Page{
		Image:  img,
		Gray:   Grayscale(img),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

// Grayscale converts an image to an 8-bit luminance plane using ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B). The result has its origin at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// pageKey identifies a cached page; the same file loaded with different
// options yields a different page.
type pageKey struct {
	path string
	opts LoadOptions
}

// PageCache provides thread-safe caching of loaded pages to avoid redundant
// rasterization.
//
// Rasterizing a drawing at 400 DPI dominates the cost of a detection run,
// so a long-running process (the MCP server) keeps loaded pages keyed by
// path and load options. Pages are immutable, so a cached page can be
// handed to concurrent callers.
//
// # Memory Management
//
// Cached pages remain in memory until explicitly removed via Evict() or
// Clear(). A 400 DPI A4 page costs roughly 75 MB (colour plus gray).
type PageCache struct {
	mu    sync.RWMutex
	pages map[pageKey]*Page
}

// NewPageCache creates an empty page cache.
func NewPageCache() *PageCache {
	return &PageCache{
		pages: make(map[pageKey]*Page),
	}
}

// Load returns the cached page for (path, opts) or loads it with LoadPage.
//
// The page is cached using the exact path string provided. Different paths
// to the same file result in separate entries. Failed loads are not cached.
func (c *PageCache) Load(path string, opts LoadOptions) (*Page, error) {
	key := pageKey{path: path, opts: opts}

	c.mu.RLock()
	if page, ok := c.pages[key]; ok {
		c.mu.RUnlock()
		return page, nil
	}
	c.mu.RUnlock()

	page, err := LoadPage(path, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages[key] = page
	c.mu.Unlock()

	return page, nil
}

// Evict removes every cached page loaded from path, whatever its options.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	for key := range c.pages {
		if key.path == path {
			delete(c.pages, key)
		}
	}
	c.mu.Unlock()
}

// Clear removes all pages from the cache.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[pageKey]*Page)
	c.mu.Unlock()
}

// Len reports the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
