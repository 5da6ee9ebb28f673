package detection

import "image"

// ExternalContours returns the bounding rectangle of every outermost
// foreground component of a binary mask (non-zero = foreground).
//
// Foreground components are 8-connected. A component is outermost when it
// touches the image border or the background that surrounds the whole
// drawing; components sitting inside another component's hole are skipped.
// The background is 4-connected, so a diagonal seam in a closed outline
// does not let the outside leak into the hole.
//
// Rectangles are returned in raster order of each component's first pixel
// (top-most row, then left-most column), relative to the mask's origin.
func ExternalContours(mask *image.Gray) []image.Rectangle {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	fg := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			fg[y*width+x] = v != 0
		}
	}

	outside := outerBackground(fg, width, height)

	visited := make([]bool, width*height)
	stack := make([]int, 0, 64)
	rects := make([]image.Rectangle, 0)

	for start := range fg {
		if !fg[start] || visited[start] {
			continue
		}

		// Flood fill one 8-connected component
		minX, minY := width, height
		maxX, maxY := -1, -1
		external := false

		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%width, idx/width

			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			if !external && touchesOutside(outside, x, y, width, height) {
				external = true
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					n := ny*width + nx
					if fg[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		if external {
			rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
		}
	}

	return rects
}

// outerBackground marks the 4-connected background reachable from the
// image border.
func outerBackground(fg []bool, width, height int) []bool {
	outside := make([]bool, width*height)
	stack := make([]int, 0, 2*(width+height))

	seed := func(x, y int) {
		i := y*width + x
		if !fg[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < width; x++ {
		seed(x, 0)
		seed(x, height-1)
	}
	for y := 0; y < height; y++ {
		seed(0, y)
		seed(width-1, y)
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%width, idx/width
		if x > 0 {
			seed(x-1, y)
		}
		if x < width-1 {
			seed(x+1, y)
		}
		if y > 0 {
			seed(x, y-1)
		}
		if y < height-1 {
			seed(x, y+1)
		}
	}
	return outside
}

// touchesOutside reports whether the foreground pixel (x, y) lies on the
// image border or has a 4-neighbour in the outer background.
func touchesOutside(outside []bool, x, y, width, height int) bool {
	if x == 0 || y == 0 || x == width-1 || y == height-1 {
		return true
	}
	i := y*width + x
	return outside[i-1] || outside[i+1] || outside[i-width] || outside[i+width]
}
