package imaging

import (
	"image"
)

// tan(22.5°) and tan(67.5°) in 15-bit fixed point, the sector bounds used by
// non-maximum suppression.
const (
	tg22 = 13573 // 0.4142135623730950488016887242097 * (1 << 15)
	tg67 = 79109 // 2.4142135623730950488016887242097 * (1 << 15)
)

// Canny performs Canny edge detection on a grayscale plane.
//
// Parameters:
//   - gray: Source luminance plane. Any origin is accepted.
//   - thresholdLow: Weak-edge threshold on the gradient magnitude scale.
//   - thresholdHigh: Strong-edge threshold on the gradient magnitude scale.
//
// Returns a binary mask (255 = edge) with its origin at (0, 0).
//
// # Algorithm
//
//  1. Gradient computation: 3×3 Sobel operators with replicated borders.
//     The magnitude is the L1 norm |Gx| + |Gy|, so for 8-bit input it ranges
//     over [0, 2040]. There is no pre-blur; drawings are clean line art.
//
//  2. Non-maximum suppression: a pixel survives only if it is a local
//     maximum along its gradient direction, quantized to 0°, 45°, 90° and
//     135° sectors. Pixels outside the image count as zero magnitude.
//
//  3. Hysteresis thresholding:
//     - Survivors above thresholdHigh are strong edges (always kept)
//     - Survivors above thresholdLow are weak edges, kept only if they
//     connect (8-neighbourhood, transitively) to a strong edge
//     - Everything else is discarded
//
// # Threshold Selection
//
// The thresholds use the same scale as OpenCV's Canny, so the classic
// 50/150 pair for clean drawings carries over unchanged.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	pix, width, height := plane(gray)
	edges := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return edges
	}

	gx := make([]int32, width*height)
	gy := make([]int32, width*height)
	mag := make([]int32, width*height)

	for y := 0; y < height; y++ {
		up := clamp(y-1, 0, height-1) * width
		mid := y * width
		down := clamp(y+1, 0, height-1) * width
		for x := 0; x < width; x++ {
			left := clamp(x-1, 0, width-1)
			right := clamp(x+1, 0, width-1)

			dx := -int32(pix[up+left]) + int32(pix[up+right]) -
				2*int32(pix[mid+left]) + 2*int32(pix[mid+right]) -
				int32(pix[down+left]) + int32(pix[down+right])
			dy := -int32(pix[up+left]) - 2*int32(pix[up+x]) - int32(pix[up+right]) +
				int32(pix[down+left]) + 2*int32(pix[down+x]) + int32(pix[down+right])

			i := mid + x
			gx[i] = dx
			gy[i] = dy
			mag[i] = abs32(dx) + abs32(dy)
		}
	}

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return mag[y*width+x]
	}

	// 0 = not an edge, 1 = weak candidate, 2 = strong edge
	state := make([]uint8, width*height)
	stack := make([]int, 0, 1024)
	low := int32(thresholdLow)
	high := int32(thresholdHigh)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := mag[i]
			if m <= low {
				continue
			}

			dx, dy := gx[i], gy[i]
			ax, ay := int64(abs32(dx)), int64(abs32(dy))
			tg22x := ax * tg22
			ayShifted := ay << 15

			isMax := false
			if ayShifted < tg22x {
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			} else if ayShifted > ax*tg67 {
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			} else {
				s := 1
				if (dx < 0) != (dy < 0) {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	// Grow strong edges through connected weak candidates
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for ny := y - 1; ny <= y+1; ny++ {
			if ny < 0 || ny >= height {
				continue
			}
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= width {
					continue
				}
				j := ny*width + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}

	for i, s := range state {
		if s == 2 {
			edges.Pix[i] = 255
		}
	}
	return edges
}

// plane returns the pixels of a gray image as a tightly packed row-major
// slice. The image's own buffer is reused when it is already packed at the
// origin; otherwise the pixels are copied.
func plane(gray *image.Gray) ([]uint8, int, int) {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	if b.Min == (image.Point{}) && gray.Stride == width {
		return gray.Pix[:width*height], width, height
	}
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*width:(y+1)*width], gray.Pix[off:off+width])
	}
	return pix, width, height
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
