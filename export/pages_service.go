package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/signintech/gopdf"
	"golang.org/x/sync/errgroup"

	"slideforge/canvas"
	"slideforge/config"
	"slideforge/geometry"
)

// A4 page geometry in points (1 point = 1/72 inch).
const (
	pageA4Width  = 595.28
	pageA4Height = 841.89

	pageMarginLeft   = 36.0
	pageMarginRight  = 36.0
	pageMarginTop    = 45.0
	pageMarginBottom = 45.0

	// pageGutter separates grid cells.
	pageGutter = 18.0

	// slideAspect is the fixed canvas aspect ratio.
	slideAspect = geometry.CanvasWidth / geometry.CanvasHeight

	// notesFraction caps the slide image to this share of the cell height
	// when speaker notes are included, leaving the rest for note text.
	notesFraction = 0.70

	// minNotesHeight is the smallest reserved area worth drawing notes
	// into. Anything smaller is skipped silently.
	minNotesHeight = 24.0

	pageLabelFontSize = 8.0
	pageNotesFontSize = 9.0
	pageNotesLineGap  = 12.0
)

// RenderSlideFunc rasterizes one slide to an image. The paginated backend
// never rasterizes itself; the renderer is an injected collaborator.
type RenderSlideFunc func(ctx context.Context, s *canvas.Slide, index int) (image.Image, error)

// PageService exports a canvas deck as a paginated PDF handout: slides are
// rasterized and composited onto a fixed grid per page.
type PageService struct {
	Render  RenderSlideFunc
	Presets *config.Presets
	Logger  func(string)
}

// NewPageService creates a paginated exporter around the given renderer.
func NewPageService(render RenderSlideFunc, presets *config.Presets, logger func(string)) *PageService {
	if presets == nil {
		presets = config.NewPresets()
	}
	return &PageService{Render: render, Presets: presets, Logger: logger}
}

// Export builds the PDF. Unknown preset ids fall back to the default preset
// with a warning rather than failing. cfg.Workers > 1 rasterizes slides
// concurrently; pages are always composited in slide order.
func (s *PageService) Export(ctx context.Context, slides []*canvas.Slide, cfg config.ExportConfig, onProgress ProgressFunc) (*Result, error) {
	cfg = cfg.Normalize()
	preset, known := s.Presets.Get(cfg.Preset)

	render := s.Render
	if cfg.Workers > 1 {
		render = s.prefetch(ctx, slides, cfg.Workers)
	}

	b := &pageBuilder{
		render: render,
		cfg:    cfg,
		preset: preset,
	}
	if !known {
		b.pending = append(b.pending, Warning{
			Message: fmt.Sprintf("unknown preset %q, using %q", cfg.Preset, preset.ID),
		})
	}
	c := &Coordinator{Logger: s.Logger, OnProgress: onProgress}
	return c.Run(ctx, slides, b)
}

type renderResult struct {
	img image.Image
	err error
}

// prefetch rasterizes every slide up front with bounded concurrency and
// returns a renderer that replays the results by index. Render errors stay
// slide-scoped; they surface later as warnings, never as group failures.
func (s *PageService) prefetch(ctx context.Context, slides []*canvas.Slide, workers int) RenderSlideFunc {
	sorted := canvas.SortSlides(slides)
	results := make([]renderResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sl := range sorted {
		i, sl := i, sl
		g.Go(func() error {
			img, err := s.Render(gctx, sl, i)
			results[i] = renderResult{img: img, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return func(_ context.Context, _ *canvas.Slide, index int) (image.Image, error) {
		if index < 0 || index >= len(results) {
			return nil, fmt.Errorf("no prefetched raster for slide %d", index)
		}
		r := results[index]
		return r.img, r.err
	}
}

// pageBuilder holds the PDF document state for one export run.
type pageBuilder struct {
	render  RenderSlideFunc
	cfg     config.ExportConfig
	preset  config.PagePreset
	pending []Warning

	pdf    *gopdf.GoPdf
	fontOK bool

	pageW, pageH float64
	cellW, cellH float64
}

func (b *pageBuilder) Name() string { return "pages" }

func (b *pageBuilder) Begin(_ context.Context, _ int) error {
	b.pageW, b.pageH = pageA4Width, pageA4Height
	if b.preset.Orientation == config.Landscape {
		b.pageW, b.pageH = pageA4Height, pageA4Width
	}

	cols, rows := b.preset.Columns, b.preset.Rows
	usableW := b.pageW - pageMarginLeft - pageMarginRight - float64(cols-1)*pageGutter
	usableH := b.pageH - pageMarginTop - pageMarginBottom - float64(rows-1)*pageGutter
	b.cellW = usableW / float64(cols)
	b.cellH = usableH / float64(rows)
	if b.cellW <= 0 || b.cellH <= 0 {
		return fmt.Errorf("preset %q grid %dx%d leaves no usable area", b.preset.ID, cols, rows)
	}

	b.pdf = &gopdf.GoPdf{}
	b.pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: b.pageW, H: b.pageH}})

	if b.cfg.FontPath != "" {
		if err := b.pdf.AddTTFFont(b.cfg.FontName, b.cfg.FontPath); err != nil {
			b.pending = append(b.pending, Warning{
				Message: fmt.Sprintf("font %s unavailable, text stamping disabled: %v", b.cfg.FontPath, err),
			})
		} else {
			b.fontOK = true
		}
	}
	return nil
}

func (b *pageBuilder) AddSlide(ctx context.Context, s *canvas.Slide, index int) ([]Warning, error) {
	warnings := b.pending
	b.pending = nil

	perPage := b.preset.SlidesPerPage()
	slot := index % perPage
	if slot == 0 {
		b.pdf.AddPage()
	}

	col := slot % b.preset.Columns
	row := slot / b.preset.Columns
	cell := geometry.Coordinates{
		X:      pageMarginLeft + float64(col)*(b.cellW+pageGutter),
		Y:      pageMarginTop + float64(row)*(b.cellH+pageGutter),
		Width:  b.cellW,
		Height: b.cellH,
	}

	slideArea := cell
	if b.cfg.IncludeNotes {
		slideArea.Height = cell.Height * notesFraction
	}
	imgBox := geometry.FitPreservingAspect(slideArea, slideAspect)

	img, err := b.render(ctx, s, index)
	if err != nil || img == nil {
		b.drawPlaceholderSlot(imgBox)
		msg := "renderer returned no image"
		if err != nil {
			msg = fmt.Sprintf("slide rasterization failed: %v", err)
		}
		warnings = append(warnings, Warning{SlideID: s.ID, Message: msg})
	} else if werr := b.drawSlideImage(img, imgBox); werr != nil {
		b.drawPlaceholderSlot(imgBox)
		warnings = append(warnings, Warning{
			SlideID: s.ID,
			Message: fmt.Sprintf("slide compositing failed: %v", werr),
		})
	}

	b.stampLabel(imgBox, index+1)

	if b.cfg.IncludeNotes && s.Notes != "" {
		b.drawNotes(cell, imgBox, s.Notes)
	}
	return warnings, nil
}

func (b *pageBuilder) Finalize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSlideImage encodes the raster (JPEG at the configured quality, PNG
// when quality is 0) and places it in the computed box.
func (b *pageBuilder) drawSlideImage(img image.Image, box geometry.Coordinates) error {
	var buf bytes.Buffer
	if b.cfg.Quality > 0 {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: b.cfg.Quality}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
	} else {
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	holder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		return fmt.Errorf("image holder: %w", err)
	}
	return b.pdf.ImageByHolder(holder, box.X, box.Y, &gopdf.Rect{W: box.Width, H: box.Height})
}

func (b *pageBuilder) drawPlaceholderSlot(box geometry.Coordinates) {
	b.pdf.SetFillColor(226, 232, 240)
	b.pdf.RectFromUpperLeftWithStyle(box.X, box.Y, box.Width, box.Height, "F")
	b.pdf.SetStrokeColor(148, 163, 184)
	b.pdf.RectFromUpperLeftWithStyle(box.X, box.Y, box.Width, box.Height, "D")
}

// stampLabel draws the slide number in the image's lower-left corner. No
// font, no label.
func (b *pageBuilder) stampLabel(box geometry.Coordinates, number int) {
	if !b.fontOK {
		return
	}
	if err := b.pdf.SetFont(b.cfg.FontName, "", pageLabelFontSize); err != nil {
		return
	}
	b.pdf.SetTextColor(100, 116, 139)
	b.pdf.SetX(box.X + 4)
	b.pdf.SetY(box.Y + box.Height - pageLabelFontSize - 4)
	_ = b.pdf.Cell(nil, strconv.Itoa(number))
}

// drawNotes wraps the note text into the area below the slide image,
// truncating when the area runs out. Too-small areas and missing fonts skip
// the notes without a warning.
func (b *pageBuilder) drawNotes(cell, imgBox geometry.Coordinates, notes string) {
	if !b.fontOK {
		return
	}
	top := imgBox.Y + imgBox.Height + 6
	avail := cell.Y + cell.Height - top
	if avail < minNotesHeight {
		return
	}
	if err := b.pdf.SetFont(b.cfg.FontName, "", pageNotesFontSize); err != nil {
		return
	}
	b.pdf.SetTextColor(71, 85, 105)

	lines := b.wrapText(notes, cell.Width)
	y := top
	for _, line := range lines {
		if y+pageNotesLineGap > cell.Y+cell.Height {
			break
		}
		b.pdf.SetX(cell.X)
		b.pdf.SetY(y)
		_ = b.pdf.Cell(nil, line)
		y += pageNotesLineGap
	}
}

// wrapText greedily wraps on word boundaries using measured widths. Words
// wider than the line stand alone.
func (b *pageBuilder) wrapText(text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			candidate := cur + " " + w
			width, err := b.pdf.MeasureTextWidth(candidate)
			if err == nil && width > maxWidth {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = candidate
		}
		lines = append(lines, cur)
	}
	return lines
}
