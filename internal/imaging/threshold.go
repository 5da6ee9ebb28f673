package imaging

import "image"

// AdaptiveThresholdInv binarizes a grayscale plane against its local mean,
// marking dark "ink" pixels as foreground.
//
// Parameters:
//   - gray: Source luminance plane. Any origin is accepted.
//   - blockSize: Odd side length of the square neighbourhood whose mean is
//     the local threshold.
//   - offset: Constant subtracted from the mean.
//
// A pixel is foreground (255) when its value is at most
// round(mean) − offset, and background (0) otherwise. The neighbourhood
// replicates the border pixels, so pages do not grow a dark frame.
//
// The mean is computed with separable running box sums; the cost per pixel
// does not depend on blockSize.
func AdaptiveThresholdInv(gray *image.Gray, blockSize, offset int) *image.Gray {
	pix, width, height := plane(gray)
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}

	radius := blockSize / 2
	area := blockSize * blockSize

	// Horizontal box sums with replicated borders
	rowSums := make([]int32, width*height)
	for y := 0; y < height; y++ {
		row := pix[y*width : (y+1)*width]
		var sum int32
		for i := -radius; i <= radius; i++ {
			sum += int32(row[clamp(i, 0, width-1)])
		}
		sums := rowSums[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			sums[x] = sum
			sum += int32(row[clamp(x+radius+1, 0, width-1)]) - int32(row[clamp(x-radius, 0, width-1)])
		}
	}

	// Vertical box sums over the row sums, then compare
	for x := 0; x < width; x++ {
		var sum int64
		for i := -radius; i <= radius; i++ {
			sum += int64(rowSums[clamp(i, 0, height-1)*width+x])
		}
		for y := 0; y < height; y++ {
			mean := int((2*sum + int64(area)) / int64(2*area))
			if int(pix[y*width+x]) <= mean-offset {
				out.Pix[y*out.Stride+x] = 255
			}
			sum += int64(rowSums[clamp(y+radius+1, 0, height-1)*width+x]) -
				int64(rowSums[clamp(y-radius, 0, height-1)*width+x])
		}
	}

	return out
}

// RowCounts returns, for each row of a binary mask, the number of
// foreground pixels.
func RowCounts(mask *image.Gray) []int {
	pix, width, height := plane(mask)
	counts := make([]int, height)
	for y := 0; y < height; y++ {
		n := 0
		for _, v := range pix[y*width : (y+1)*width] {
			if v != 0 {
				n++
			}
		}
		counts[y] = n
	}
	return counts
}
