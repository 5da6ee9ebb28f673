// Package detection locates the blocks of an engineering drawing page.
//
// Three independent detectors read the same luminance plane:
//
//   - DetectViews: orthographic views, from dilated edge contours
//   - DetectNotes: the general notes band, from row ink density
//   - DetectTitleBlock: the title block, from contours in the bottom band
//
// Each detector is a pure function of the page and its parameters, so they
// may run concurrently on the same plane.
//
// # Algorithm Overview
//
// The contour-based detectors follow the same pipeline:
//
//  1. Edge Detection: Canny with fixed hysteresis thresholds
//  2. Grouping: dilation with a rectangular kernel closes gaps between strokes
//  3. Contour Finding: bounding boxes of the outermost connected components
//  4. Filtering: area, aspect ratio and width thresholds
//
// The notes detector instead thresholds ink against the local mean and
// keeps the vertical span of the densest rows.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - A BoundingBox covers [X, X+Width) × [Y, Y+Height)
//
// # Limitations
//
// These are heuristics tuned for clean, high-contrast scans of mechanical
// drawings. Views may overlap and are never merged; two separate notes
// paragraphs are reported as one band; the drawing frame can qualify as a
// view on pages where it survives the margin crop.
package detection
