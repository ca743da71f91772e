package editor

import "math"

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mirror selects which canvas axes a brush stamp is reflected about.
type Mirror struct {
	X bool
	Y bool
}

// BrushPoints returns the cells covered by a square brush of side size
// stamped at center, clipped to a width x height canvas. With mirroring
// enabled the stamp is also emitted reflected about the vertical center axis
// (width-1-x), the horizontal axis (height-1-y), or both; each reflection is
// clipped independently. Duplicates are harmless since pixel writes are
// idempotent.
func BrushPoints(center Point, size, width, height int, mirror Mirror) []Point {
	if size < 1 {
		size = 1
	}
	half := size / 2
	var pts []Point
	add := func(x, y int) {
		if x >= 0 && x < width && y >= 0 && y < height {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x := center.X + dx
			y := center.Y + dy
			add(x, y)
			if mirror.X {
				add(width-1-x, y)
			}
			if mirror.Y {
				add(x, height-1-y)
			}
			if mirror.X && mirror.Y {
				add(width-1-x, height-1-y)
			}
		}
	}
	return pts
}

// LinePoints returns every cell the segment p0..p1 crosses, inclusive of both
// endpoints, exactly once each (integer Bresenham). A degenerate segment
// yields the single point p0.
func LinePoints(p0, p1 Point) []Point {
	x0, y0 := p0.X, p0.Y
	x1, y1 := p1.X, p1.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy

	var pts []Point
	for {
		pts = append(pts, Point{X: x0, Y: y0})
		if x0 == x1 && y0 == y1 {
			return pts
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// RectPoints returns the outline cells of the axis-aligned bounding box of
// p0 and p1. The interior is not filled. Corner cells appear in both the
// horizontal and vertical passes; callers tolerate duplicates.
func RectPoints(p0, p1 Point) []Point {
	minX, maxX := minMax(p0.X, p1.X)
	minY, maxY := minMax(p0.Y, p1.Y)

	var pts []Point
	for x := minX; x <= maxX; x++ {
		pts = append(pts, Point{X: x, Y: minY}, Point{X: x, Y: maxY})
	}
	for y := minY; y <= maxY; y++ {
		pts = append(pts, Point{X: minX, Y: y}, Point{X: maxX, Y: y})
	}
	return pts
}

// CirclePoints returns the outline cells of the circle centered at center
// passing through edge, radius floored to an integer (midpoint algorithm,
// 8-way symmetric points per step). Points may fall outside the canvas;
// callers clip.
func CirclePoints(center, edge Point) []Point {
	dx := float64(edge.X - center.X)
	dy := float64(edge.Y - center.Y)
	r := int(math.Floor(math.Sqrt(dx*dx + dy*dy)))

	var pts []Point
	octants := func(x, y int) {
		cx, cy := center.X, center.Y
		pts = append(pts,
			Point{cx + x, cy + y}, Point{cx - x, cy + y},
			Point{cx + x, cy - y}, Point{cx - x, cy - y},
			Point{cx + y, cy + x}, Point{cx - y, cy + x},
			Point{cx + y, cy - x}, Point{cx - y, cy - x},
		)
	}

	x, y := 0, r
	d := 3 - 2*r
	for y >= x {
		octants(x, y)
		x++
		if d > 0 {
			y--
			d += 4*(x-y) + 10
		} else {
			d += 4*x + 6
		}
	}
	return pts
}

// FloodFill returns a copy of grid with the 4-connected region of start's
// original color repainted in fill. Cells whose color differs from the seed
// color are never touched. When the seed already has the fill color the grid
// is returned unchanged, preventing redundant writes and infinite toggling.
// The input grid is never mutated.
func FloodFill(grid PixelGrid, start Point, fill Color) PixelGrid {
	if !grid.InBounds(start.X, start.Y) {
		return grid
	}
	target := grid.At(start.X, start.Y)
	if target == fill {
		return grid
	}

	out := grid.Clone()
	visited := make(map[Point]bool)
	stack := []Point{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p] || !out.InBounds(p.X, p.Y) {
			continue
		}
		if out[p.Y][p.X] != target {
			continue
		}
		visited[p] = true
		out[p.Y][p.X] = fill
		stack = append(stack,
			Point{p.X + 1, p.Y}, Point{p.X - 1, p.Y},
			Point{p.X, p.Y + 1}, Point{p.X, p.Y - 1},
		)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minMax(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}
