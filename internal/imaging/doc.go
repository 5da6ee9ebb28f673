// Package imaging provides the raster primitives the drawing segmenter is
// built from.
//
// This package loads a drawing page (rasterizing PDFs at a fixed DPI),
// normalizes it, and implements the classical image-processing operations
// the detectors compose: grayscale conversion, Canny edge detection,
// rectangular dilation, adaptive mean thresholding, exact cropping and the
// debug overlay. All operations take and return standard Go image types.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (Min.X, Min.Y) is inclusive and (Max.X, Max.Y) is exclusive
//
// Binary masks (edge maps, dilated maps, threshold masks) are *image.Gray
// values whose foreground is 255 and background 0. Every mask produced by
// this package has its origin at (0, 0), whatever the origin of its input.
//
// # Thread Safety
//
// The PageCache type is safe for concurrent use. Individual operations are
// stateless and never mutate their inputs, so a loaded Page can be shared
// by any number of goroutines.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Sources with no renderable page (ErrNoPages)
//   - Unsupported file types (ErrUnsupportedSource)
//   - Margins that leave nothing of the page (ErrEmptyPage)
//   - Crop regions outside the image bounds (ErrOutOfBounds)
//
// # Performance Considerations
//
// A page rasterized at 400 DPI is roughly 3300×4700 pixels for A4. The
// dilation and thresholding passes are separable running-window filters, so
// their cost does not grow with the kernel size.
package imaging
