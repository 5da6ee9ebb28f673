package imaging

import "image"

// Dilate applies morphological dilation with a kernelWidth × kernelHeight
// rectangular structuring element, repeated iterations times.
//
// The input is treated as binary (any non-zero pixel is foreground) and the
// output is a binary mask (255 = foreground) with its origin at (0, 0).
// The anchor is the kernel centre, (kernelWidth/2, kernelHeight/2), so for
// even sizes the window extends one pixel further before the anchor than
// after it. Pixels outside the image never contribute.
//
// A rectangle is separable: the pass is a horizontal running window
// followed by a vertical one, each counting foreground pixels with a prefix
// sum, so the cost per pixel is constant in the kernel size.
func Dilate(mask *image.Gray, kernelWidth, kernelHeight, iterations int) *image.Gray {
	pix, width, height := plane(mask)

	cur := make([]uint8, width*height)
	for i, v := range pix {
		if v != 0 {
			cur[i] = 255
		}
	}

	tmp := make([]uint8, width*height)
	prefix := make([]int, maxInt(width, height)+1)

	for iter := 0; iter < iterations; iter++ {
		// Horizontal pass: cur -> tmp
		for y := 0; y < height; y++ {
			row := cur[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				prefix[x+1] = prefix[x]
				if row[x] != 0 {
					prefix[x+1]++
				}
			}
			out := tmp[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				lo, hi := windowAt(x, kernelWidth, width)
				if prefix[hi]-prefix[lo] > 0 {
					out[x] = 255
				} else {
					out[x] = 0
				}
			}
		}

		// Vertical pass: tmp -> cur
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				prefix[y+1] = prefix[y]
				if tmp[y*width+x] != 0 {
					prefix[y+1]++
				}
			}
			for y := 0; y < height; y++ {
				lo, hi := windowAt(y, kernelHeight, height)
				if prefix[hi]-prefix[lo] > 0 {
					cur[y*width+x] = 255
				} else {
					cur[y*width+x] = 0
				}
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	copy(out.Pix, cur)
	return out
}

// windowAt returns the half-open index range [lo, hi) covered by a kernel of
// the given size anchored at its centre over position pos, clipped to
// [0, length).
func windowAt(pos, size, length int) (int, int) {
	anchor := size / 2
	lo := pos - anchor
	hi := lo + size
	if lo < 0 {
		lo = 0
	}
	if hi > length {
		hi = length
	}
	return lo, hi
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
