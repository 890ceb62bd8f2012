package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"slideforge/canvas"
	"slideforge/geometry"
	"slideforge/layout"
)

// Physical deck geometry. The 1920x1080 logical canvas maps onto a
// 10in x 5.625in 16:9 slide, so a single conversion factor covers both axes.
const (
	deckSlideWidthIn  = 10.0
	deckSlideHeightIn = 5.625

	emuPerInch = 914400

	// emuPerCanvasPixel converts logical canvas pixels to EMU.
	emuPerCanvasPixel = deckSlideWidthIn * emuPerInch / geometry.CanvasWidth

	// pointsPerCanvasPixel converts logical-pixel font sizes to points:
	// (10in * 72pt) / 1920px = 0.375.
	pointsPerCanvasPixel = deckSlideWidthIn * 72 / geometry.CanvasWidth
)

// Deck color defaults (AARRGGBB).
const (
	deckDefaultTextColor   = "FF1F2937"
	deckDefaultShapeFill   = "FF3B82F6"
	deckPlaceholderFill    = "FFE2E8F0"
	deckPlaceholderBorder  = "FF94A3B8"
	deckPlaceholderText    = "FF64748B"
	deckTableHeaderFill    = "FF3B82F6"
	deckTableHeaderColor   = "FFFFFFFF"
	deckTableAltRowFill    = "FFF8FAFC"
	deckMasterDefaultColor = "FF94A3B8"
)

func pxToEMU(px float64) int64 {
	return int64(math.Round(px * emuPerCanvasPixel))
}

func pxToPoints(px float64) int {
	pt := int(math.Round(px * pointsPerCanvasPixel))
	if pt < 1 {
		pt = 1
	}
	return pt
}

// roleFontSizes are the default font sizes per content role, in logical
// canvas pixels, applied when the object carries no explicit size.
var roleFontSizes = map[canvas.ContentRole]float64{
	canvas.RoleTitle:    72,
	canvas.RoleSubtitle: 40,
	canvas.RoleBody:     28,
	canvas.RoleBullets:  28,
	canvas.RoleCaption:  20,
	canvas.RoleQuote:    48,
	canvas.RoleFooter:   16,
}

const defaultFontSizePx = 28.0

// DeckService exports a canvas deck to an editable PPTX presentation.
// Every run builds a fresh native document; the service itself is stateless
// and safe for concurrent use.
type DeckService struct {
	Loader  AssetLoader
	Logger  func(string)
	Title   string
	Creator string
}

// NewDeckService creates a deck exporter. A nil loader selects the default
// chain loader.
func NewDeckService(loader AssetLoader, logger func(string)) *DeckService {
	if loader == nil {
		loader = &ChainLoader{}
	}
	return &DeckService{Loader: loader, Logger: logger, Creator: "slideforge"}
}

// Export builds a PPTX from the slides under the given template. tpl may be
// nil. onProgress is optional.
func (s *DeckService) Export(ctx context.Context, slides []*canvas.Slide, tpl *canvas.Template, onProgress ProgressFunc) (*Result, error) {
	b := &deckBuilder{
		loader:  s.Loader,
		engine:  layout.NewEngine(tpl),
		title:   s.Title,
		creator: s.Creator,
	}
	c := &Coordinator{Logger: s.Logger, OnProgress: onProgress}
	return c.Run(ctx, slides, b)
}

// deckBuilder holds the native document state for exactly one export run.
type deckBuilder struct {
	loader  AssetLoader
	engine  *layout.Engine
	title   string
	creator string

	pres *ppt.Presentation
	used int
}

func (b *deckBuilder) Name() string { return "deck" }

func (b *deckBuilder) Begin(_ context.Context, _ int) error {
	b.pres = ppt.New()
	b.pres.GetLayout().SetCustomLayout(ppt.Inch(deckSlideWidthIn), ppt.Inch(deckSlideHeightIn))
	props := b.pres.GetDocumentProperties()
	if b.title != "" {
		props.Title = b.title
	}
	if b.creator != "" {
		props.Creator = b.creator
	}
	return nil
}

// nextSlide returns the native slide for the next canvas slide. A new
// presentation already carries one slide, so the first call reuses it.
func (b *deckBuilder) nextSlide() *ppt.Slide {
	b.used++
	if b.used == 1 {
		return b.pres.GetActiveSlide()
	}
	return b.pres.CreateSlide()
}

func (b *deckBuilder) AddSlide(ctx context.Context, s *canvas.Slide, index int) ([]Warning, error) {
	native := b.nextSlide()
	slideNumber := index + 1
	var warnings []Warning

	if bg := b.engine.Background(s); bg != nil {
		b.applyBackground(ctx, native, s, bg, &warnings)
	}

	// Master decorations sit beneath authored content: shapes stack in
	// creation order.
	for _, m := range b.engine.MasterElements(s.Type, slideNumber) {
		b.addMasterElement(ctx, native, s, m, slideNumber, &warnings)
	}

	for _, obj := range visibleSorted(s) {
		if err := b.addObject(ctx, native, obj, &warnings); err != nil {
			b.placeholderBox(native, obj.Base().Coordinates, placeholderLabel(obj))
			warnings = append(warnings, Warning{
				SlideID:  s.ID,
				ObjectID: obj.Base().ID,
				Message:  fmt.Sprintf("%s object replaced with placeholder: %v", obj.Type(), err),
			})
		}
	}

	if s.Notes != "" {
		native.SetNotes(s.Notes)
	}
	return warnings, nil
}

func (b *deckBuilder) Finalize() ([]byte, error) {
	w, err := ppt.NewWriter(b.pres, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize presentation: %w", err)
	}
	return buf.Bytes(), nil
}

// addObject dispatches one object to its encoder. The switch covers every
// member of the object union; a non-nil error means the caller substitutes
// a placeholder.
func (b *deckBuilder) addObject(ctx context.Context, native *ppt.Slide, obj canvas.Object, warnings *[]Warning) error {
	switch o := obj.(type) {
	case *canvas.TextObject:
		return b.encodeText(native, o)
	case *canvas.ImageObject:
		return b.encodeImage(ctx, native, o)
	case *canvas.ShapeObject:
		return b.encodeShape(native, o, warnings)
	case *canvas.TableObject:
		return b.encodeTable(native, o)
	case *canvas.ChartObject:
		return b.encodeChart(native, o)
	default:
		return fmt.Errorf("unsupported object type %q", obj.Type())
	}
}

func (b *deckBuilder) encodeText(native *ppt.Slide, o *canvas.TextObject) error {
	shape := native.CreateRichTextShape()
	placeShape(shape.SetPosition, shape.SetSize, o.Coordinates)

	sizePx := roleFontSizes[o.Role]
	if sizePx == 0 {
		sizePx = defaultFontSizePx
	}
	baseBold := false
	colorARGB := deckDefaultTextColor
	var alignment *ppt.Alignment
	if st := o.Style; st != nil {
		if st.FontSize > 0 {
			sizePx = st.FontSize
		}
		baseBold = st.FontWeight == "bold"
		if st.Color != "" {
			colorARGB = canvas.ToARGB(st.Color, deckDefaultTextColor)
		}
		switch st.Align {
		case "center":
			alignment = ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter)
		case "right":
			alignment = ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight)
		}
	}
	if o.Role == canvas.RoleTitle {
		baseBold = true
	}
	sizePt := pxToPoints(sizePx)

	for i, line := range strings.Split(o.Content, "\n") {
		para := shape.GetActiveParagraph()
		if i > 0 {
			para = shape.CreateParagraph()
		}
		if alignment != nil {
			para.SetAlignment(alignment)
		}
		if o.Role == canvas.RoleBullets {
			bullet := ppt.NewBullet()
			bullet.SetCharBullet("•", "Arial")
			para.SetBullet(bullet)
		}
		for _, run := range SplitBoldRuns(line) {
			tr := para.CreateTextRun(run.Text)
			tr.SetFont(ppt.NewFont().
				SetSize(sizePt).
				SetBold(baseBold || run.Bold).
				SetColor(ppt.NewColor(colorARGB)))
		}
	}
	return nil
}

func (b *deckBuilder) encodeImage(ctx context.Context, native *ppt.Slide, o *canvas.ImageObject) error {
	if IsPlaceholderSrc(o.Src) {
		label := o.Alt
		if label == "" {
			label = "image pending"
		}
		b.placeholderBox(native, o.Coordinates, label)
		return nil
	}

	data, mimeType, err := b.loader.Load(ctx, o.Src)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.Src, err)
	}
	w, h, err := ProbeImageSize(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", o.Src, err)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image %s has no pixels", o.Src)
	}
	aspect := float64(w) / float64(h)

	box := o.Coordinates
	target := box
	switch o.Fit {
	case canvas.FitFill:
		// Stretch to the box, distorting if needed.
	case canvas.FitNone:
		target = centerNatural(box, float64(w), float64(h))
	case canvas.FitScaleDown:
		if float64(w) <= box.Width && float64(h) <= box.Height {
			target = centerNatural(box, float64(w), float64(h))
		} else {
			target = geometry.FitPreservingAspect(box, aspect)
		}
	case canvas.FitCover:
		cropped, croppedMime, cropErr := cropToAspect(data, box.Width/box.Height)
		if cropErr == nil {
			data, mimeType = cropped, croppedMime
		}
		// On crop failure the uncropped image fills the box.
	default: // contain
		target = geometry.FitPreservingAspect(box, aspect)
	}

	shape := native.CreateDrawingShape()
	shape.SetImageData(data, mimeType)
	shape.SetOffsetX(pxToEMU(target.X)).SetOffsetY(pxToEMU(target.Y))
	shape.SetWidth(pxToEMU(target.Width)).SetHeight(pxToEMU(target.Height))
	if o.Alt != "" {
		shape.SetDescription(o.Alt)
	}
	return nil
}

// centerNatural places content of natural size nw x nh (logical px) centered
// in the box without scaling.
func centerNatural(box geometry.Coordinates, nw, nh float64) geometry.Coordinates {
	return geometry.Coordinates{
		X:      box.X + (box.Width-nw)/2,
		Y:      box.Y + (box.Height-nh)/2,
		Width:  nw,
		Height: nh,
	}
}

// cropToAspect center-crops an encoded image to the given aspect ratio and
// re-encodes it as PNG.
func cropToAspect(data []byte, aspect float64) ([]byte, string, error) {
	if aspect <= 0 {
		return nil, "", fmt.Errorf("invalid aspect %v", aspect)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cw, ch := w, h
	if float64(w)/float64(h) > aspect {
		cw = int(math.Round(float64(h) * aspect))
	} else {
		ch = int(math.Round(float64(w) / aspect))
	}
	if cw < 1 || ch < 1 {
		return nil, "", fmt.Errorf("degenerate crop %dx%d", cw, ch)
	}
	x0 := bounds.Min.X + (w-cw)/2
	y0 := bounds.Min.Y + (h-ch)/2

	out := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(out, out.Bounds(), img, image.Pt(x0, y0), draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}

// autoShapeKinds maps model shapes onto native auto shape geometry.
var autoShapeKinds = map[canvas.ShapeKind]ppt.AutoShapeType{
	canvas.ShapeRectangle: ppt.AutoShapeRectangle,
	canvas.ShapeCircle:    ppt.AutoShapeEllipse,
	canvas.ShapeTriangle:  ppt.AutoShapeTriangle,
	canvas.ShapeArrow:     ppt.AutoShapeArrowRight,
}

func (b *deckBuilder) encodeShape(native *ppt.Slide, o *canvas.ShapeObject, warnings *[]Warning) error {
	if o.Shape == canvas.ShapeLine {
		line := native.CreateLineShape()
		placeShape(line.SetPosition, line.SetSize, o.Coordinates)
		line.SetLineStyle(ppt.BorderSolid)
		line.SetLineColor(ppt.NewColor(canvas.ToARGB(o.Stroke, deckDefaultShapeFill)))
		widthPx := o.StrokeWidth
		if widthPx <= 0 {
			widthPx = 2
		}
		line.SetLineWidth(pxToPoints(widthPx))
		return nil
	}

	kind, ok := autoShapeKinds[o.Shape]
	if !ok {
		// Custom paths and unknown kinds degrade to a rectangle of the same
		// footprint rather than failing the object.
		kind = ppt.AutoShapeRectangle
		if o.Shape == canvas.ShapeCustom {
			*warnings = append(*warnings, Warning{
				ObjectID: o.ID,
				Message:  "custom shape path approximated as rectangle",
			})
		}
	}
	shape := native.CreateAutoShape()
	shape.SetAutoShapeType(kind)
	placeShape(shape.SetPosition, shape.SetSize, o.Coordinates)
	if o.Fill != "" {
		shape.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(canvas.ToARGB(o.Fill, deckDefaultShapeFill))))
	}
	if o.Stroke != "" {
		widthPx := o.StrokeWidth
		if widthPx <= 0 {
			widthPx = 1
		}
		shape.SetBorder(&ppt.Border{
			Style: ppt.BorderSolid,
			Width: int(pxToEMU(widthPx)),
			Color: ppt.NewColor(canvas.ToARGB(o.Stroke, deckDefaultTextColor)),
		})
	}
	return nil
}

func (b *deckBuilder) encodeTable(native *ppt.Slide, o *canvas.TableObject) error {
	headerRows := 0
	if len(o.Headers) > 0 {
		headerRows = 1
	}
	cols := len(o.Headers)
	for _, row := range o.Data {
		if len(row) > cols {
			cols = len(row)
		}
	}
	rows := headerRows + len(o.Data)
	if rows == 0 || cols == 0 {
		return fmt.Errorf("table has no cells")
	}

	headerFill := deckTableHeaderFill
	altRowFill := deckTableAltRowFill
	if st := o.Style; st != nil {
		if st.HeaderFill != "" {
			headerFill = canvas.ToARGB(st.HeaderFill, deckTableHeaderFill)
		}
		if st.AltRowFill != "" {
			altRowFill = canvas.ToARGB(st.AltRowFill, deckTableAltRowFill)
		}
	}

	table := native.CreateTableShape(rows, cols)
	placeShape(table.SetPosition, func(w, h int64) *ppt.BaseShape {
		table.SetWidth(w)
		table.SetHeight(h)
		return nil
	}, o.Coordinates)

	for c, head := range o.Headers {
		cell := table.GetCell(0, c)
		cell.SetText(head)
		cell.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(headerFill)))
	}
	for r, row := range o.Data {
		for c := 0; c < cols; c++ {
			cell := table.GetCell(headerRows+r, c)
			if c < len(row) {
				cell.SetText(canvas.CellString(row[c]))
			}
			if r%2 == 1 {
				cell.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(altRowFill)))
			}
		}
	}
	return nil
}

func (b *deckBuilder) encodeChart(native *ppt.Slide, o *canvas.ChartObject) error {
	labels := o.Data.Labels
	values := o.Data.Values
	if len(labels) == 0 || len(values) == 0 {
		return fmt.Errorf("chart has no data")
	}
	if len(labels) != len(values) {
		return fmt.Errorf("chart labels/values length mismatch: %d vs %d", len(labels), len(values))
	}

	chart := native.CreateChartShape()
	placeShape(chart.SetPosition, chart.SetSize, o.Coordinates)
	series := ppt.NewChartSeriesOrdered("Series 1", labels, values)

	var chartType ppt.ChartType
	switch o.ChartType {
	case canvas.ChartLine:
		chartType = ppt.NewLineChart().AddSeries(series)
	case canvas.ChartPie:
		chartType = ppt.NewPieChart().AddSeries(series)
	case canvas.ChartArea:
		chartType = ppt.NewAreaChart().AddSeries(series)
	case canvas.ChartScatter:
		chartType = ppt.NewScatterChart().AddSeries(series)
	default: // bar and anything unrecognized
		chartType = ppt.NewBarChart().AddSeries(series)
	}
	chart.GetPlotArea().SetType(chartType)
	return nil
}

func (b *deckBuilder) applyBackground(ctx context.Context, native *ppt.Slide, s *canvas.Slide, bg *canvas.Background, warnings *[]Warning) {
	switch bg.Type {
	case canvas.BackgroundColor:
		native.SetBackground(ppt.NewFill().SetSolid(ppt.NewColor(argbWithOpacity(bg.Value, bg.Opacity, "FFFFFFFF"))))
	case canvas.BackgroundGradient:
		from, to, ok := splitGradient(bg.Value)
		if !ok {
			native.SetBackground(ppt.NewFill().SetSolid(ppt.NewColor(canvas.ToARGB(bg.Value, "FFFFFFFF"))))
			return
		}
		fill := ppt.NewFill().SetGradientLinear(
			ppt.NewColor(canvas.ToARGB(from, "FFFFFFFF")),
			ppt.NewColor(canvas.ToARGB(to, "FF000000")),
			90)
		native.SetBackground(fill)
	case canvas.BackgroundImage:
		data, mimeType, err := b.loader.Load(ctx, bg.Value)
		if err != nil {
			*warnings = append(*warnings, Warning{
				SlideID: s.ID,
				Message: fmt.Sprintf("background image unavailable: %v", err),
			})
			return
		}
		shape := native.CreateDrawingShape()
		shape.SetImageData(data, mimeType)
		shape.SetOffsetX(0).SetOffsetY(0)
		shape.SetWidth(ppt.Inch(deckSlideWidthIn)).SetHeight(ppt.Inch(deckSlideHeightIn))
	case canvas.BackgroundVideo:
		*warnings = append(*warnings, Warning{
			SlideID: s.ID,
			Message: "video background is not representable in a slide deck; skipped",
		})
	}
}

func (b *deckBuilder) addMasterElement(ctx context.Context, native *ppt.Slide, s *canvas.Slide, m canvas.MasterElement, slideNumber int, warnings *[]Warning) {
	switch m.Kind {
	case canvas.MasterLogo:
		if m.Content == "" {
			b.placeholderBox(native, m.Coordinates, "logo")
			return
		}
		data, mimeType, err := b.loader.Load(ctx, m.Content)
		if err != nil {
			b.placeholderBox(native, m.Coordinates, "logo")
			*warnings = append(*warnings, Warning{
				SlideID: s.ID,
				Message: fmt.Sprintf("logo asset unavailable: %v", err),
			})
			return
		}
		shape := native.CreateDrawingShape()
		shape.SetImageData(data, mimeType)
		target := m.Coordinates
		if w, h, perr := ProbeImageSize(data); perr == nil && h > 0 {
			target = geometry.FitPreservingAspect(m.Coordinates, float64(w)/float64(h))
		}
		shape.SetOffsetX(pxToEMU(target.X)).SetOffsetY(pxToEMU(target.Y))
		shape.SetWidth(pxToEMU(target.Width)).SetHeight(pxToEMU(target.Height))
	case canvas.MasterPageNumber:
		text := m.Content
		if text == "" {
			text = "{n}"
		}
		text = strings.ReplaceAll(text, "{n}", fmt.Sprintf("%d", slideNumber))
		b.masterTextBox(native, m, text)
	default: // footer and free-form decorations
		b.masterTextBox(native, m, m.Content)
	}
}

func (b *deckBuilder) masterTextBox(native *ppt.Slide, m canvas.MasterElement, text string) {
	shape := native.CreateRichTextShape()
	placeShape(shape.SetPosition, shape.SetSize, m.Coordinates)
	if m.Fill != "" {
		shape.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(canvas.ToARGB(m.Fill, deckPlaceholderFill))))
	}
	if text == "" {
		return
	}
	sizePx := m.FontSize
	if sizePx <= 0 {
		sizePx = roleFontSizes[canvas.RoleFooter]
	}
	run := shape.GetActiveParagraph().CreateTextRun(text)
	run.SetFont(ppt.NewFont().
		SetSize(pxToPoints(sizePx)).
		SetColor(ppt.NewColor(canvas.ToARGB(m.Color, deckMasterDefaultColor))))
}

// placeholderBox draws the neutral substitute box used for missing assets
// and failed objects: a tinted rectangle with a centered label.
func (b *deckBuilder) placeholderBox(native *ppt.Slide, box geometry.Coordinates, label string) {
	shape := native.CreateAutoShape()
	shape.SetAutoShapeType(ppt.AutoShapeRectangle)
	placeShape(shape.SetPosition, shape.SetSize, box)
	shape.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(deckPlaceholderFill)))
	shape.SetBorder(&ppt.Border{
		Style: ppt.BorderDash,
		Width: int(pxToEMU(2)),
		Color: ppt.NewColor(deckPlaceholderBorder),
	})
	if label == "" {
		return
	}
	shape.SetText(label)
	for _, para := range shape.GetParagraphs() {
		para.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
		for _, el := range para.GetElements() {
			if tr, ok := el.(*ppt.TextRun); ok {
				tr.SetFont(ppt.NewFont().
					SetSize(pxToPoints(roleFontSizes[canvas.RoleCaption])).
					SetColor(ppt.NewColor(deckPlaceholderText)))
			}
		}
	}
}

func placeholderLabel(obj canvas.Object) string {
	switch o := obj.(type) {
	case *canvas.ImageObject:
		if o.Alt != "" {
			return o.Alt
		}
	case *canvas.ChartObject:
		return "chart unavailable"
	case *canvas.TableObject:
		return "table unavailable"
	}
	return fmt.Sprintf("%s unavailable", obj.Type())
}

// placeShape converts logical coordinates and applies them through the
// shape's position and size setters.
func placeShape(setPos func(x, y int64) *ppt.BaseShape, setSize func(w, h int64) *ppt.BaseShape, c geometry.Coordinates) {
	setPos(pxToEMU(c.X), pxToEMU(c.Y))
	setSize(pxToEMU(c.Width), pxToEMU(c.Height))
}

// argbWithOpacity folds a background opacity into the color's alpha byte.
func argbWithOpacity(value string, opacity float64, fallback string) string {
	argb := canvas.ToARGB(value, fallback)
	if opacity <= 0 || opacity >= 1 {
		return argb
	}
	alpha := int(math.Round(opacity * 255))
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[alpha>>4], digits[alpha&0x0f]}) + argb[2:]
}

// splitGradient parses a "from,to" or "from:to" gradient value.
func splitGradient(value string) (from, to string, ok bool) {
	for _, sep := range []string{",", ":"} {
		if parts := strings.SplitN(value, sep, 2); len(parts) == 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
		}
	}
	return "", "", false
}
