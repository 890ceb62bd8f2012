package geometry

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"pgregory.net/rapid"
)

func genBox(t *rapid.T) Coordinates {
	return Coordinates{
		X:      rapid.Float64Range(-4000, 4000).Draw(t, "x"),
		Y:      rapid.Float64Range(-4000, 4000).Draw(t, "y"),
		Width:  rapid.Float64Range(1, 5000).Draw(t, "w"),
		Height: rapid.Float64Range(1, 5000).Draw(t, "h"),
	}
}

// ConstrainToSlide must land every box fully inside the canvas and must be a
// fixed point on its own output.
func TestConstrainToSlideIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genBox(t)
		once := ConstrainToSlide(c)
		if !FullyInsideCanvas(once) {
			t.Fatalf("ConstrainToSlide(%+v) = %+v is not inside the canvas", c, once)
		}
		twice := ConstrainToSlide(once)
		if twice != once {
			t.Fatalf("not idempotent: %+v then %+v", once, twice)
		}
	})
}

func TestConstrainToSlideShrinksOversized(t *testing.T) {
	c := ConstrainToSlide(Coordinates{X: -50, Y: 100, Width: 4000, Height: 2000})
	if c.Width != CanvasWidth || c.Height != CanvasHeight {
		t.Fatalf("oversized box not shrunk to canvas: %+v", c)
	}
	if c.X != 0 || c.Y != 0 {
		t.Fatalf("oversized box not anchored at origin: %+v", c)
	}
}

func TestConstrainToSlideKeepsInteriorBoxes(t *testing.T) {
	c := Coordinates{X: 100, Y: 200, Width: 300, Height: 150}
	if got := ConstrainToSlide(c); got != c {
		t.Fatalf("interior box moved: %+v", got)
	}
}

func TestOverlapSymmetric(t *testing.T) {
	f := func(a, b Coordinates) bool {
		return Overlap(a, b) == Overlap(b, a)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestOverlapTouchingEdges(t *testing.T) {
	a := Coordinates{X: 0, Y: 0, Width: 100, Height: 100}
	cases := []struct {
		name string
		b    Coordinates
		want bool
	}{
		{"shared vertical edge", Coordinates{X: 100, Y: 0, Width: 50, Height: 100}, false},
		{"shared horizontal edge", Coordinates{X: 0, Y: 100, Width: 100, Height: 50}, false},
		{"shared corner", Coordinates{X: 100, Y: 100, Width: 10, Height: 10}, false},
		{"one pixel of interior", Coordinates{X: 99, Y: 99, Width: 10, Height: 10}, true},
		{"contained", Coordinates{X: 10, Y: 10, Width: 10, Height: 10}, true},
		{"identical", a, true},
		{"disjoint", Coordinates{X: 500, Y: 500, Width: 10, Height: 10}, false},
	}
	for _, tc := range cases {
		if got := Overlap(a, tc.b); got != tc.want {
			t.Errorf("%s: Overlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBoundingBoxProperties(t *testing.T) {
	genCoord := gopter.CombineGens(
		gen.Float64Range(-2000, 2000),
		gen.Float64Range(-2000, 2000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
	).Map(func(vs []interface{}) Coordinates {
		return Coordinates{
			X:      vs[0].(float64),
			Y:      vs[1].(float64),
			Width:  vs[2].(float64),
			Height: vs[3].(float64),
		}
	})

	properties := gopter.NewProperties(nil)
	properties.Property("encloses every input box", prop.ForAll(
		func(rects []Coordinates) bool {
			bb := BoundingBox(rects)
			for _, r := range rects {
				if r.X < bb.X || r.Y < bb.Y ||
					r.X+r.Width > bb.X+bb.Width ||
					r.Y+r.Height > bb.Y+bb.Height {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCoord),
	))
	properties.Property("singleton input is returned unchanged", prop.ForAll(
		func(r Coordinates) bool {
			return BoundingBox([]Coordinates{r}) == r
		},
		genCoord,
	))
	properties.TestingRun(t)
}

func TestBoundingBoxEmpty(t *testing.T) {
	if got := BoundingBox(nil); got != (Coordinates{}) {
		t.Fatalf("empty input: got %+v, want zero rectangle", got)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genBox(t)
		s := rapid.Float64Range(0.1, 10).Draw(t, "s")
		back := Scale(Scale(c, s), 1/s)
		const eps = 1e-6
		if math.Abs(back.X-c.X) > eps || math.Abs(back.Y-c.Y) > eps ||
			math.Abs(back.Width-c.Width) > eps || math.Abs(back.Height-c.Height) > eps {
			t.Fatalf("round trip drifted: %+v -> %+v", c, back)
		}
	})
}

func TestScaleXY(t *testing.T) {
	c := Coordinates{X: 10, Y: 20, Width: 100, Height: 50}
	got := ScaleXY(c, 2, 0.5)
	want := Coordinates{X: 20, Y: 10, Width: 200, Height: 25}
	if got != want {
		t.Fatalf("ScaleXY = %+v, want %+v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	c := Coordinates{X: 10, Y: 20, Width: 100, Height: 50}
	got := Translate(c, -5, 30)
	want := Coordinates{X: 5, Y: 50, Width: 100, Height: 50}
	if got != want {
		t.Fatalf("Translate = %+v, want %+v", got, want)
	}
}

func TestContainsPointInclusiveEdges(t *testing.T) {
	c := Coordinates{X: 0, Y: 0, Width: 100, Height: 50}
	for _, p := range []Point{{0, 0}, {100, 50}, {100, 0}, {0, 50}, {50, 25}} {
		if !ContainsPoint(c, p.X, p.Y) {
			t.Errorf("point %+v should be inside", p)
		}
	}
	for _, p := range []Point{{-0.001, 0}, {100.001, 0}, {50, 50.001}} {
		if ContainsPoint(c, p.X, p.Y) {
			t.Errorf("point %+v should be outside", p)
		}
	}
}

func TestCenter(t *testing.T) {
	got := Center(Coordinates{X: 100, Y: 100, Width: 200, Height: 50})
	if got != (Point{X: 200, Y: 125}) {
		t.Fatalf("Center = %+v", got)
	}
}

// A 4:3 image in a 800x450 (16:9) box keeps the full height, scales the
// width to 600 and centers with 100px margins on each side.
func TestFitPreservingAspectWiderBox(t *testing.T) {
	box := Coordinates{X: 0, Y: 0, Width: 800, Height: 450}
	got := FitPreservingAspect(box, 4.0/3.0)
	if math.Abs(got.Width-600) > 1e-9 || math.Abs(got.Height-450) > 1e-9 {
		t.Fatalf("fitted size = %gx%g, want 600x450", got.Width, got.Height)
	}
	if math.Abs(got.X-100) > 1e-9 || got.Y != 0 {
		t.Fatalf("fitted origin = (%g,%g), want (100,0)", got.X, got.Y)
	}
}

func TestFitPreservingAspectTallerBox(t *testing.T) {
	box := Coordinates{X: 50, Y: 50, Width: 300, Height: 600}
	got := FitPreservingAspect(box, 2) // wide content in a tall box
	if math.Abs(got.Height-150) > 1e-9 || math.Abs(got.Width-300) > 1e-9 {
		t.Fatalf("fitted size = %gx%g, want 300x150", got.Width, got.Height)
	}
	if math.Abs(got.Y-275) > 1e-9 {
		t.Fatalf("fitted Y = %g, want 275 (centered)", got.Y)
	}
}

func TestFitPreservingAspectProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		box := Coordinates{
			X:      rapid.Float64Range(-500, 500).Draw(t, "x"),
			Y:      rapid.Float64Range(-500, 500).Draw(t, "y"),
			Width:  rapid.Float64Range(1, 2000).Draw(t, "w"),
			Height: rapid.Float64Range(1, 2000).Draw(t, "h"),
		}
		aspect := rapid.Float64Range(0.05, 20).Draw(t, "aspect")
		got := FitPreservingAspect(box, aspect)

		const eps = 1e-6
		if got.Width-box.Width > eps || got.Height-box.Height > eps {
			t.Fatalf("fitted box %+v exceeds target %+v", got, box)
		}
		if math.Abs(got.Width/got.Height-aspect) > eps*math.Max(1, aspect) {
			t.Fatalf("aspect %g not preserved: %g", aspect, got.Width/got.Height)
		}
		// Centered along the freed axis.
		wantCx := box.X + box.Width/2
		wantCy := box.Y + box.Height/2
		c := Center(got)
		if math.Abs(c.X-wantCx) > eps || math.Abs(c.Y-wantCy) > eps {
			t.Fatalf("not centered: center %+v, want (%g,%g)", c, wantCx, wantCy)
		}
	})
}

func TestFullyInsideCanvas(t *testing.T) {
	cases := []struct {
		c    Coordinates
		want bool
	}{
		{Coordinates{0, 0, CanvasWidth, CanvasHeight}, true},
		{Coordinates{-1, 0, 100, 100}, false},
		{Coordinates{1900, 0, 100, 100}, false},
		{Coordinates{100, 1000, 100, 100}, false},
		{Coordinates{10, 10, 100, 100}, true},
	}
	for _, tc := range cases {
		if got := FullyInsideCanvas(tc.c); got != tc.want {
			t.Errorf("FullyInsideCanvas(%+v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}
