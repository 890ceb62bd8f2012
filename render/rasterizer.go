// Package render ships the default slide rasterizer: it draws a slide's
// background, master decorations and objects onto an RGBA image. The
// paginated export backend takes any RenderSlideFunc; this is the one the
// CLI and tests plug in.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"slideforge/canvas"
	"slideforge/export"
	"slideforge/geometry"
	"slideforge/layout"
)

// DefaultWidth is the output raster width in pixels when none is set.
const DefaultWidth = 960

var (
	colorCanvas       = color.RGBA{255, 255, 255, 255}
	colorText         = color.RGBA{31, 41, 55, 255}
	colorPlaceholder  = color.RGBA{226, 232, 240, 255}
	colorPlaceholderT = color.RGBA{100, 116, 139, 255}
	colorShapeDefault = color.RGBA{59, 130, 246, 255}
	colorGridLine     = color.RGBA{203, 213, 225, 255}
	colorVideoBG      = color.RGBA{15, 23, 42, 255}
)

// Rasterizer renders slides at a fixed pixel width, mapping the logical
// canvas onto the output with a single scale factor.
type Rasterizer struct {
	Width  int
	Loader export.AssetLoader
	Engine *layout.Engine
}

// NewRasterizer creates a rasterizer for the given template. tpl and loader
// may be nil; nil loader selects the default chain loader.
func NewRasterizer(tpl *canvas.Template, loader export.AssetLoader) *Rasterizer {
	if loader == nil {
		loader = &export.ChainLoader{}
	}
	return &Rasterizer{Width: DefaultWidth, Loader: loader, Engine: layout.NewEngine(tpl)}
}

// RenderSlide implements export.RenderSlideFunc. Object-level problems
// degrade to placeholder tints on the raster; the error return is reserved
// for an unusable output size.
func (r *Rasterizer) RenderSlide(ctx context.Context, s *canvas.Slide, index int) (image.Image, error) {
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	height := int(math.Round(float64(width) * geometry.CanvasHeight / geometry.CanvasWidth))
	if height <= 0 {
		return nil, fmt.Errorf("render: width %d yields empty raster", width)
	}

	c := &slideCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		scale: float64(width) / geometry.CanvasWidth,
	}
	c.fill(c.img.Bounds(), colorCanvas)

	r.drawBackground(ctx, c, s)
	for _, m := range r.Engine.MasterElements(s.Type, index+1) {
		r.drawMasterElement(ctx, c, m, index+1)
	}
	for _, obj := range exportableObjects(s) {
		r.drawObject(ctx, c, obj)
	}
	return c.img, nil
}

func exportableObjects(s *canvas.Slide) []canvas.Object {
	sorted := canvas.SortedObjects(s.Objects)
	out := sorted[:0]
	for _, obj := range sorted {
		if obj.Base().IsVisible() {
			out = append(out, obj)
		}
	}
	return out
}

func (r *Rasterizer) drawBackground(ctx context.Context, c *slideCanvas, s *canvas.Slide) {
	bg := r.Engine.Background(s)
	if bg == nil {
		return
	}
	full := c.img.Bounds()
	switch bg.Type {
	case canvas.BackgroundColor:
		if col, ok := canvas.ParseHexColor(bg.Value); ok {
			c.fill(full, col)
		}
	case canvas.BackgroundGradient:
		from, to := gradientStops(bg.Value)
		c.fillVerticalGradient(full, from, to)
	case canvas.BackgroundImage:
		data, _, err := r.Loader.Load(ctx, bg.Value)
		if err != nil {
			c.fill(full, colorPlaceholder)
			return
		}
		src, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			c.fill(full, colorPlaceholder)
			return
		}
		xdraw.ApproxBiLinear.Scale(c.img, full, src, src.Bounds(), xdraw.Over, nil)
	case canvas.BackgroundVideo:
		// Stills of video backgrounds are out of reach here; a dark fill
		// keeps foreground text readable.
		c.fill(full, colorVideoBG)
	}
}

func gradientStops(value string) (color.RGBA, color.RGBA) {
	from, to := colorCanvas, color.RGBA{15, 23, 42, 255}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ':' })
	if len(parts) > 0 {
		if col, ok := canvas.ParseHexColor(parts[0]); ok {
			from = col
		}
	}
	if len(parts) > 1 {
		if col, ok := canvas.ParseHexColor(parts[1]); ok {
			to = col
		}
	}
	return from, to
}

func (r *Rasterizer) drawMasterElement(ctx context.Context, c *slideCanvas, m canvas.MasterElement, slideNumber int) {
	rect := c.rect(m.Coordinates)
	if m.Fill != "" {
		if col, ok := canvas.ParseHexColor(m.Fill); ok {
			c.fill(rect, col)
		}
	}
	switch m.Kind {
	case canvas.MasterLogo:
		if m.Content == "" {
			c.fill(rect, colorPlaceholder)
			return
		}
		if data, _, err := r.Loader.Load(ctx, m.Content); err == nil {
			if src, _, derr := image.Decode(bytes.NewReader(data)); derr == nil {
				c.drawImageFit(src, m.Coordinates, canvas.FitContain)
				return
			}
		}
		c.fill(rect, colorPlaceholder)
	case canvas.MasterPageNumber:
		text := m.Content
		if text == "" {
			text = "{n}"
		}
		text = strings.ReplaceAll(text, "{n}", fmt.Sprintf("%d", slideNumber))
		c.drawStringCentered(text, masterColor(m), rect)
	default:
		if m.Content != "" {
			c.drawStringCentered(m.Content, masterColor(m), rect)
		}
	}
}

func masterColor(m canvas.MasterElement) color.RGBA {
	if col, ok := canvas.ParseHexColor(m.Color); ok {
		return col
	}
	return colorPlaceholderT
}

func (r *Rasterizer) drawObject(ctx context.Context, c *slideCanvas, obj canvas.Object) {
	switch o := obj.(type) {
	case *canvas.TextObject:
		c.drawText(o)
	case *canvas.ImageObject:
		r.drawImageObject(ctx, c, o)
	case *canvas.ShapeObject:
		c.drawShape(o)
	case *canvas.TableObject:
		c.drawTable(o)
	case *canvas.ChartObject:
		c.drawChart(o)
	}
}

func (r *Rasterizer) drawImageObject(ctx context.Context, c *slideCanvas, o *canvas.ImageObject) {
	rect := c.rect(o.Coordinates)
	if export.IsPlaceholderSrc(o.Src) {
		c.fill(rect, colorPlaceholder)
		if o.Alt != "" {
			c.drawStringCentered(o.Alt, colorPlaceholderT, rect)
		}
		return
	}
	data, _, err := r.Loader.Load(ctx, o.Src)
	if err != nil {
		c.fill(rect, colorPlaceholder)
		c.drawStringCentered("image unavailable", colorPlaceholderT, rect)
		return
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.fill(rect, colorPlaceholder)
		c.drawStringCentered("image unavailable", colorPlaceholderT, rect)
		return
	}
	c.drawImageFit(src, o.Coordinates, o.Fit)
}

// slideCanvas wraps the output raster with logical-px to device-px mapping.
type slideCanvas struct {
	img   *image.RGBA
	scale float64
}

func (c *slideCanvas) px(v float64) int {
	return int(math.Round(v * c.scale))
}

func (c *slideCanvas) rect(box geometry.Coordinates) image.Rectangle {
	return image.Rect(c.px(box.X), c.px(box.Y), c.px(box.X+box.Width), c.px(box.Y+box.Height))
}

func (c *slideCanvas) fill(rect image.Rectangle, col color.Color) {
	xdraw.Draw(c.img, rect, &image.Uniform{col}, image.Point{}, xdraw.Over)
}

func (c *slideCanvas) fillVerticalGradient(rect image.Rectangle, from, to color.RGBA) {
	h := rect.Dy()
	if h <= 0 {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		t := float64(y-rect.Min.Y) / float64(h)
		col := color.RGBA{
			R: lerp8(from.R, to.R, t),
			G: lerp8(from.G, to.G, t),
			B: lerp8(from.B, to.B, t),
			A: 255,
		}
		line := image.Rect(rect.Min.X, y, rect.Max.X, y+1)
		xdraw.Draw(c.img, line, &image.Uniform{col}, image.Point{}, xdraw.Src)
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// drawImageFit scales the source into the box honoring the fit mode.
func (c *slideCanvas) drawImageFit(src image.Image, box geometry.Coordinates, fit canvas.FitMode) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || !box.Valid() {
		return
	}
	aspect := float64(sb.Dx()) / float64(sb.Dy())

	target := box
	srcRect := sb
	switch fit {
	case canvas.FitFill:
		// Stretch.
	case canvas.FitNone:
		target = geometry.Coordinates{
			X:      box.X + (box.Width-float64(sb.Dx()))/2,
			Y:      box.Y + (box.Height-float64(sb.Dy()))/2,
			Width:  float64(sb.Dx()),
			Height: float64(sb.Dy()),
		}
	case canvas.FitScaleDown:
		if float64(sb.Dx()) <= box.Width && float64(sb.Dy()) <= box.Height {
			target = geometry.Coordinates{
				X:      box.X + (box.Width-float64(sb.Dx()))/2,
				Y:      box.Y + (box.Height-float64(sb.Dy()))/2,
				Width:  float64(sb.Dx()),
				Height: float64(sb.Dy()),
			}
		} else {
			target = geometry.FitPreservingAspect(box, aspect)
		}
	case canvas.FitCover:
		boxAspect := box.Width / box.Height
		cw, ch := sb.Dx(), sb.Dy()
		if aspect > boxAspect {
			cw = int(math.Round(float64(ch) * boxAspect))
		} else {
			ch = int(math.Round(float64(cw) / boxAspect))
		}
		x0 := sb.Min.X + (sb.Dx()-cw)/2
		y0 := sb.Min.Y + (sb.Dy()-ch)/2
		srcRect = image.Rect(x0, y0, x0+cw, y0+ch)
	default: // contain
		target = geometry.FitPreservingAspect(box, aspect)
	}
	xdraw.ApproxBiLinear.Scale(c.img, c.rect(target), src, srcRect, xdraw.Over, nil)
}

func (c *slideCanvas) drawText(o *canvas.TextObject) {
	rect := c.rect(o.Coordinates)
	col := colorText
	if o.Style != nil && o.Style.Color != "" {
		if parsed, ok := canvas.ParseHexColor(o.Style.Color); ok {
			col = parsed
		}
	}
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil() + 2

	y := rect.Min.Y + face.Metrics().Ascent.Ceil() + 2
	for _, line := range strings.Split(o.Content, "\n") {
		if y > rect.Max.Y {
			break
		}
		text := export.JoinRuns(export.SplitBoldRuns(line))
		if o.Role == canvas.RoleBullets && strings.TrimSpace(text) != "" {
			text = "• " + text
		}
		x := rect.Min.X + 2
		if o.Style != nil {
			switch o.Style.Align {
			case "center":
				x = rect.Min.X + (rect.Dx()-font.MeasureString(face, text).Ceil())/2
			case "right":
				x = rect.Max.X - font.MeasureString(face, text).Ceil() - 2
			}
		}
		d := &font.Drawer{
			Dst:  c.img,
			Src:  &image.Uniform{col},
			Face: face,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(text)
		y += lineH
	}
}

func (c *slideCanvas) drawShape(o *canvas.ShapeObject) {
	rect := c.rect(o.Coordinates)
	fill := colorShapeDefault
	if parsed, ok := canvas.ParseHexColor(o.Fill); ok {
		fill = parsed
	}
	stroke := fill
	if parsed, ok := canvas.ParseHexColor(o.Stroke); ok {
		stroke = parsed
	}

	switch o.Shape {
	case canvas.ShapeCircle:
		c.fillEllipse(rect, fill)
	case canvas.ShapeTriangle:
		c.fillTriangle(rect, fill)
	case canvas.ShapeLine:
		width := int(math.Round(o.StrokeWidth * c.scale))
		if width < 1 {
			width = 1
		}
		c.drawLine(rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, stroke, width)
	default: // rectangle, arrow, custom
		c.fill(rect, fill)
	}
}

func (c *slideCanvas) drawTable(o *canvas.TableObject) {
	rect := c.rect(o.Coordinates)
	cols := len(o.Headers)
	for _, row := range o.Data {
		if len(row) > cols {
			cols = len(row)
		}
	}
	rows := len(o.Data)
	if len(o.Headers) > 0 {
		rows++
	}
	if rows == 0 || cols == 0 {
		return
	}
	c.fill(rect, colorCanvas)

	headerFill := colorShapeDefault
	if o.Style != nil {
		if parsed, ok := canvas.ParseHexColor(o.Style.HeaderFill); ok {
			headerFill = parsed
		}
	}
	rowH := rect.Dy() / rows
	if len(o.Headers) > 0 && rowH > 0 {
		c.fill(image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+rowH), headerFill)
	}
	for i := 0; i <= rows; i++ {
		y := rect.Min.Y + i*rect.Dy()/rows
		c.drawLine(rect.Min.X, y, rect.Max.X-1, y, colorGridLine, 1)
	}
	for j := 0; j <= cols; j++ {
		x := rect.Min.X + j*rect.Dx()/cols
		c.drawLine(x, rect.Min.Y, x, rect.Max.Y-1, colorGridLine, 1)
	}
}

// drawChart renders a compact bar digest of the series, whatever the chart
// kind. The deck backend carries the real chart; the raster only needs a
// recognizable visual.
func (c *slideCanvas) drawChart(o *canvas.ChartObject) {
	rect := c.rect(o.Coordinates)
	values := o.Data.Values
	c.fill(rect, colorCanvas)
	c.drawRectOutline(rect, colorGridLine, 1)
	if len(values) == 0 || rect.Dx() <= 2 || rect.Dy() <= 2 {
		return
	}
	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return
	}
	inner := rect.Inset(2)
	barW := inner.Dx() / len(values)
	if barW < 1 {
		return
	}
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		h := int(float64(inner.Dy()) * v / maxVal)
		x0 := inner.Min.X + i*barW
		bar := image.Rect(x0+1, inner.Max.Y-h, x0+barW-1, inner.Max.Y)
		c.fill(bar, colorShapeDefault)
	}
}

func (c *slideCanvas) drawStringCentered(text string, col color.RGBA, rect image.Rectangle) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()
	lineH := face.Metrics().Height.Ceil()
	d := &font.Drawer{
		Dst:  c.img,
		Src:  &image.Uniform{col},
		Face: face,
		Dot:  fixed.P(rect.Min.X+(rect.Dx()-textW)/2, rect.Min.Y+(rect.Dy()+lineH)/2),
	}
	d.DrawString(text)
}

func (c *slideCanvas) drawRectOutline(rect image.Rectangle, col color.RGBA, width int) {
	for i := 0; i < width; i++ {
		c.drawLine(rect.Min.X, rect.Min.Y+i, rect.Max.X-1, rect.Min.Y+i, col, 1)
		c.drawLine(rect.Min.X, rect.Max.Y-1-i, rect.Max.X-1, rect.Max.Y-1-i, col, 1)
		c.drawLine(rect.Min.X+i, rect.Min.Y, rect.Min.X+i, rect.Max.Y-1, col, 1)
		c.drawLine(rect.Max.X-1-i, rect.Min.Y, rect.Max.X-1-i, rect.Max.Y-1, col, 1)
	}
}

// drawLine is Bresenham with a square pen.
func (c *slideCanvas) drawLine(x1, y1, x2, y2 int, col color.RGBA, width int) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	e := dx - dy
	for {
		c.setPen(x1, y1, col, width)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x1 += sx
		}
		if e2 < dx {
			e += dx
			y1 += sy
		}
	}
}

func (c *slideCanvas) setPen(x, y int, col color.RGBA, width int) {
	half := width / 2
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			c.setPixel(x+ox, y+oy, col)
		}
	}
}

func (c *slideCanvas) setPixel(x, y int, col color.RGBA) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.SetRGBA(x, y, col)
	}
}

func (c *slideCanvas) fillEllipse(rect image.Rectangle, col color.RGBA) {
	cx := float64(rect.Min.X+rect.Max.X) / 2
	cy := float64(rect.Min.Y+rect.Max.Y) / 2
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			nx := (float64(x) + 0.5 - cx) / rx
			ny := (float64(y) + 0.5 - cy) / ry
			if nx*nx+ny*ny <= 1 {
				c.setPixel(x, y, col)
			}
		}
	}
}

// fillTriangle draws an upward-pointing isoceles triangle spanning the box.
func (c *slideCanvas) fillTriangle(rect image.Rectangle, col color.RGBA) {
	h := rect.Dy()
	if h <= 0 || rect.Dx() <= 0 {
		return
	}
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		halfWidth := t * float64(rect.Dx()) / 2
		cx := float64(rect.Min.X+rect.Max.X) / 2
		x0 := int(math.Round(cx - halfWidth))
		x1 := int(math.Round(cx + halfWidth))
		for x := x0; x <= x1; x++ {
			c.setPixel(x, rect.Min.Y+y, col)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
