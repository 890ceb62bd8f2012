// Package geometry provides coordinate primitives and pure functions over
// the fixed logical slide canvas. All positions and sizes are expressed in
// logical pixels on a 1920x1080 (16:9) canvas; physical unit conversion is
// the responsibility of the export backends.
package geometry

// Logical canvas dimensions in pixels.
const (
	CanvasWidth  = 1920.0
	CanvasHeight = 1080.0
)

// AspectRatio is the canvas width/height ratio (16:9).
const AspectRatio = CanvasWidth / CanvasHeight

// Coordinates describes an axis-aligned box in logical pixels.
// X and Y may be negative or exceed the canvas: objects are allowed to sit
// partially off-canvas while being edited. Width and Height must be positive.
type Coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in logical pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform holds optional visual transforms applied around an object's own
// box, independent of its Coordinates.
type Transform struct {
	Rotation float64 `json:"rotation,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	SkewX    float64 `json:"skewX,omitempty"`
	SkewY    float64 `json:"skewY,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
}

// Valid reports whether the box has positive extent.
func (c Coordinates) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// Scale scales the box uniformly around the origin.
func Scale(c Coordinates, s float64) Coordinates {
	return ScaleXY(c, s, s)
}

// ScaleXY scales the box by independent horizontal and vertical factors
// around the origin. No bounds checking is performed.
func ScaleXY(c Coordinates, sx, sy float64) Coordinates {
	return Coordinates{
		X:      c.X * sx,
		Y:      c.Y * sy,
		Width:  c.Width * sx,
		Height: c.Height * sy,
	}
}

// Translate moves the box by the given deltas. No bounds checking.
func Translate(c Coordinates, dx, dy float64) Coordinates {
	return Coordinates{X: c.X + dx, Y: c.Y + dy, Width: c.Width, Height: c.Height}
}

// ContainsPoint reports whether the point lies inside the box, inclusive on
// all four edges.
func ContainsPoint(c Coordinates, x, y float64) bool {
	return x >= c.X && x <= c.X+c.Width && y >= c.Y && y <= c.Y+c.Height
}

// Center returns the center point of the box.
func Center(c Coordinates) Point {
	return Point{X: c.X + c.Width/2, Y: c.Y + c.Height/2}
}

// BoundingBox returns the minimal rectangle enclosing all input boxes.
// An empty input yields the zero rectangle.
func BoundingBox(rects []Coordinates) Coordinates {
	if len(rects) == 0 {
		return Coordinates{}
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height
	for _, r := range rects[1:] {
		if r.X < minX {
			minX = r.X
		}
		if r.Y < minY {
			minY = r.Y
		}
		if r.X+r.Width > maxX {
			maxX = r.X + r.Width
		}
		if r.Y+r.Height > maxY {
			maxY = r.Y + r.Height
		}
	}
	return Coordinates{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Overlap reports whether two boxes share interior area. The test is
// half-open: rectangles that merely touch edges do not overlap.
func Overlap(a, b Coordinates) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// ConstrainToSlide clamps a box into the canvas. Oversized boxes are first
// shrunk to exactly fill the exceeded dimension, then the box is repositioned
// so it lies fully within the canvas, keeping the top-left corner as close to
// its original position as possible. The function is idempotent.
func ConstrainToSlide(c Coordinates) Coordinates {
	if c.Width > CanvasWidth {
		c.Width = CanvasWidth
	}
	if c.Height > CanvasHeight {
		c.Height = CanvasHeight
	}
	c.X = clamp(c.X, 0, CanvasWidth-c.Width)
	c.Y = clamp(c.Y, 0, CanvasHeight-c.Height)
	return c
}

// FullyInsideCanvas reports strict containment within the canvas bounds.
func FullyInsideCanvas(c Coordinates) bool {
	return c.X >= 0 && c.Y >= 0 &&
		c.X+c.Width <= CanvasWidth && c.Y+c.Height <= CanvasHeight
}

// FitPreservingAspect shrinks a box of the given natural aspect ratio
// (width/height) into the target box without distortion, centering it along
// the freed axis. The returned box always has the requested aspect ratio.
func FitPreservingAspect(box Coordinates, aspect float64) Coordinates {
	if aspect <= 0 || !box.Valid() {
		return box
	}
	boxAspect := box.Width / box.Height
	fitted := box
	if boxAspect > aspect {
		// Box is wider than the content: width constrained by height.
		fitted.Width = box.Height * aspect
		fitted.X = box.X + (box.Width-fitted.Width)/2
	} else if boxAspect < aspect {
		// Box is taller than the content: height constrained by width.
		fitted.Height = box.Width / aspect
		fitted.Y = box.Y + (box.Height-fitted.Height)/2
	}
	return fitted
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
