package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"slideforge/canvas"
	"slideforge/geometry"
)

type memLoader struct {
	data []byte
	err  error
}

func (m *memLoader) Load(_ context.Context, _ string) ([]byte, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.data, "image/png", nil
}

func solidPNG(t *testing.T, w, h int, col color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, col)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func rgbaAt(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRenderSlideDimensions(t *testing.T) {
	r := NewRasterizer(nil, nil)
	img, err := r.RenderSlide(context.Background(), &canvas.Slide{ID: "s"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 960 || b.Dy() != 540 {
		t.Fatalf("raster = %dx%d, want 960x540", b.Dx(), b.Dy())
	}

	r.Width = 320
	img, err = r.RenderSlide(context.Background(), &canvas.Slide{ID: "s"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("raster = %dx%d, want 320x180", b.Dx(), b.Dy())
	}
}

func TestRenderSlideRejectsUnusableWidth(t *testing.T) {
	r := NewRasterizer(nil, nil)
	r.Width = -5
	// Negative widths fall back to the default rather than erroring.
	img, err := r.RenderSlide(context.Background(), &canvas.Slide{ID: "s"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != DefaultWidth {
		t.Fatalf("width = %d, want default %d", img.Bounds().Dx(), DefaultWidth)
	}
}

func TestRenderBackgroundColor(t *testing.T) {
	s := &canvas.Slide{
		ID:         "s",
		Background: &canvas.Background{Type: canvas.BackgroundColor, Value: "#ff0000"},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(t, img, 480, 270)
	if got.R != 255 || got.G != 0 || got.B != 0 {
		t.Fatalf("background pixel = %+v, want red", got)
	}
}

func TestRenderBackgroundGradientEndpoints(t *testing.T) {
	s := &canvas.Slide{
		ID:         "s",
		Background: &canvas.Background{Type: canvas.BackgroundGradient, Value: "#000000,#ffffff"},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	top := rgbaAt(t, img, 480, 0)
	bottom := rgbaAt(t, img, 480, img.Bounds().Dy()-1)
	if top.R > 8 {
		t.Fatalf("gradient top = %+v, want near black", top)
	}
	if bottom.R < 247 {
		t.Fatalf("gradient bottom = %+v, want near white", bottom)
	}
}

func TestRenderBackgroundVideoFallsBackToDarkFill(t *testing.T) {
	s := &canvas.Slide{
		ID:         "s",
		Background: &canvas.Background{Type: canvas.BackgroundVideo, Value: "intro.mp4"},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(t, img, 10, 10)
	if got != colorVideoBG {
		t.Fatalf("video background pixel = %+v, want %+v", got, colorVideoBG)
	}
}

func TestRenderPlaceholderImageTint(t *testing.T) {
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ImageObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "img",
					Coordinates: geometry.Coordinates{X: 0, Y: 0, Width: 1920, Height: 1080},
				},
				Src: "placeholder://chart-1",
				Alt: "coming soon",
			},
		},
	}
	loader := &memLoader{err: context.DeadlineExceeded}
	img, err := NewRasterizer(nil, loader).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(t, img, 5, 5)
	if got != colorPlaceholder {
		t.Fatalf("placeholder pixel = %+v, want %+v", got, colorPlaceholder)
	}
}

func TestRenderImageObjectFill(t *testing.T) {
	green := color.RGBA{0, 200, 0, 255}
	loader := &memLoader{data: solidPNG(t, 20, 20, green)}
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ImageObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "img",
					Coordinates: geometry.Coordinates{X: 480, Y: 270, Width: 960, Height: 540},
				},
				Src: "/assets/green.png",
				Fit: canvas.FitFill,
			},
		},
	}
	img, err := NewRasterizer(nil, loader).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Box center in device pixels at scale 0.5: (480, 270).
	got := rgbaAt(t, img, 480, 270)
	if got.G < 150 || got.R > 60 {
		t.Fatalf("image pixel = %+v, want green", got)
	}
	// Outside the box stays the white canvas.
	outside := rgbaAt(t, img, 10, 10)
	if outside != colorCanvas {
		t.Fatalf("outside pixel = %+v, want canvas white", outside)
	}
}

func TestRenderImageLoadFailureTints(t *testing.T) {
	loader := &memLoader{err: context.Canceled}
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ImageObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "img",
					Coordinates: geometry.Coordinates{X: 0, Y: 0, Width: 400, Height: 400},
				},
				Src: "/assets/missing.png",
			},
		},
	}
	img, err := NewRasterizer(nil, loader).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(t, img, 5, 5); got != colorPlaceholder {
		t.Fatalf("pixel = %+v, want placeholder tint", got)
	}
}

func TestRenderShapeFill(t *testing.T) {
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ShapeObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "rect",
					Coordinates: geometry.Coordinates{X: 0, Y: 0, Width: 200, Height: 200},
				},
				Shape: canvas.ShapeRectangle,
				Fill:  "#00ff00",
			},
		},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(t, img, 50, 50)
	if got.G != 255 || got.R != 0 {
		t.Fatalf("shape pixel = %+v, want green", got)
	}
}

func TestRenderCircleLeavesCornersUntouched(t *testing.T) {
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ShapeObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "c",
					Coordinates: geometry.Coordinates{X: 0, Y: 0, Width: 400, Height: 400},
				},
				Shape: canvas.ShapeCircle,
				Fill:  "#0000ff",
			},
		},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	center := rgbaAt(t, img, 100, 100)
	if center.B != 255 {
		t.Fatalf("circle center = %+v, want blue", center)
	}
	corner := rgbaAt(t, img, 1, 1)
	if corner != colorCanvas {
		t.Fatalf("circle corner = %+v, want canvas white", corner)
	}
}

func TestRenderInvisibleObjectSkipped(t *testing.T) {
	hidden := false
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ShapeObject{
				ObjectBase: canvas.ObjectBase{
					ID:          "rect",
					Coordinates: geometry.Coordinates{X: 0, Y: 0, Width: 200, Height: 200},
					Visible:     &hidden,
				},
				Shape: canvas.ShapeRectangle,
				Fill:  "#00ff00",
			},
		},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(t, img, 50, 50); got != colorCanvas {
		t.Fatalf("hidden object drew pixel %+v", got)
	}
}

func TestRenderZOrderLastOnTop(t *testing.T) {
	box := geometry.Coordinates{X: 0, Y: 0, Width: 200, Height: 200}
	s := &canvas.Slide{
		ID: "s",
		Objects: []canvas.Object{
			&canvas.ShapeObject{
				ObjectBase: canvas.ObjectBase{ID: "top", Coordinates: box, ZIndex: 5},
				Shape:      canvas.ShapeRectangle,
				Fill:       "#ff0000",
			},
			&canvas.ShapeObject{
				ObjectBase: canvas.ObjectBase{ID: "bottom", Coordinates: box, ZIndex: 1},
				Shape:      canvas.ShapeRectangle,
				Fill:       "#0000ff",
			},
		},
	}
	img, err := NewRasterizer(nil, nil).RenderSlide(context.Background(), s, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := rgbaAt(t, img, 50, 50)
	if got.R != 255 || got.B != 0 {
		t.Fatalf("top pixel = %+v, want the higher z-index fill", got)
	}
}

func TestRenderMasterElementsFromTemplate(t *testing.T) {
	tpl := &canvas.Template{
		Layouts: map[canvas.SlideType]*canvas.SlideLayout{},
		MasterElements: []canvas.MasterElement{
			{
				ID:          "band",
				Kind:        canvas.MasterFooter,
				Coordinates: geometry.Coordinates{X: 0, Y: 1000, Width: 1920, Height: 80},
				Fill:        "#112233",
			},
		},
	}
	img, err := NewRasterizer(tpl, nil).RenderSlide(context.Background(), &canvas.Slide{ID: "s"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// y=1040 canvas px maps to 520 device px at scale 0.5.
	got := rgbaAt(t, img, 480, 520)
	want := color.RGBA{0x11, 0x22, 0x33, 255}
	if got != want {
		t.Fatalf("footer band pixel = %+v, want %+v", got, want)
	}
}

func TestGradientStops(t *testing.T) {
	from, to := gradientStops("#102030,#405060")
	if (from != color.RGBA{0x10, 0x20, 0x30, 255}) {
		t.Fatalf("from = %+v", from)
	}
	if (to != color.RGBA{0x40, 0x50, 0x60, 255}) {
		t.Fatalf("to = %+v", to)
	}

	from, to = gradientStops("#102030:#405060")
	if (from != color.RGBA{0x10, 0x20, 0x30, 255}) || (to != color.RGBA{0x40, 0x50, 0x60, 255}) {
		t.Fatalf("colon separator: from=%+v to=%+v", from, to)
	}

	from, to = gradientStops("garbage")
	if from != colorCanvas {
		t.Fatalf("unparseable start should keep the default, got %+v", from)
	}
	_ = to
}
