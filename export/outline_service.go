package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"slideforge/canvas"
)

// OutlineService exports a text-centric handout: one section per slide with
// its number, title, body digest and speaker notes. Non-text objects appear
// as bracketed summaries.
type OutlineService struct {
	Logger func(string)
	Title  string
}

// NewOutlineService creates an outline exporter.
func NewOutlineService(logger func(string)) *OutlineService {
	return &OutlineService{Logger: logger}
}

// Export builds the outline PDF.
func (s *OutlineService) Export(ctx context.Context, slides []*canvas.Slide, onProgress ProgressFunc) (*Result, error) {
	b := &outlineBuilder{title: s.Title}
	c := &Coordinator{Logger: s.Logger, OnProgress: onProgress}
	return c.Run(ctx, slides, b)
}

type outlineBuilder struct {
	title string
	m     core.Maroto
}

func (b *outlineBuilder) Name() string { return "outline" }

func (b *outlineBuilder) Begin(_ context.Context, _ int) error {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()
	b.m = maroto.New(cfg)

	title := b.title
	if title == "" {
		title = "Presentation Outline"
	}
	b.m.AddRow(14,
		col.New(12).Add(
			text.New(title, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: &props.Color{Red: 59, Green: 130, Blue: 246},
			}),
		),
	)
	b.m.AddRow(6)
	return nil
}

func (b *outlineBuilder) AddSlide(_ context.Context, s *canvas.Slide, index int) ([]Warning, error) {
	number := index + 1
	objects := visibleSorted(s)
	title := outlineTitle(objects, number)

	b.m.AddRow(9,
		col.New(1).Add(
			text.New(fmt.Sprintf("%d", number), props.Text{
				Size:  11,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: &props.Color{Red: 100, Green: 116, Blue: 139},
			}),
		),
		col.New(11).Add(
			text.New(title, props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Left:  3,
			}),
		),
	)

	var warnings []Warning
	for _, line := range outlineBody(objects, title) {
		b.m.AddRow(5,
			col.New(1),
			col.New(11).Add(
				text.New(line, props.Text{Size: 9, Left: 3}),
			),
		)
	}

	if s.Notes != "" {
		b.m.AddRow(5,
			col.New(1),
			col.New(11).Add(
				text.New("Notes: "+strings.ReplaceAll(s.Notes, "\n", " "), props.Text{
					Size:  8,
					Style: fontstyle.Italic,
					Left:  3,
					Color: &props.Color{Red: 100, Green: 116, Blue: 139},
				}),
			),
		)
	}
	b.m.AddRow(4)
	return warnings, nil
}

func (b *outlineBuilder) Finalize() ([]byte, error) {
	document, err := b.m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate document: %w", err)
	}
	return document.GetBytes(), nil
}

// outlineTitle picks the slide heading: the first title-role text object,
// then any text object, then a numbered fallback.
func outlineTitle(objects []canvas.Object, number int) string {
	var firstText string
	for _, obj := range objects {
		t, ok := obj.(*canvas.TextObject)
		if !ok {
			continue
		}
		plain := firstLine(JoinRuns(SplitBoldRuns(t.Content)))
		if plain == "" {
			continue
		}
		if t.Role == canvas.RoleTitle {
			return plain
		}
		if firstText == "" {
			firstText = plain
		}
	}
	if firstText != "" {
		return firstText
	}
	return fmt.Sprintf("Slide %d", number)
}

// outlineBody digests the slide's objects into handout lines. The object
// used as the heading is not repeated.
func outlineBody(objects []canvas.Object, title string) []string {
	var lines []string
	titleUsed := false
	for _, obj := range objects {
		switch o := obj.(type) {
		case *canvas.TextObject:
			plain := JoinRuns(SplitBoldRuns(o.Content))
			if !titleUsed && firstLine(plain) == title {
				titleUsed = true
				continue
			}
			for _, l := range strings.Split(plain, "\n") {
				l = strings.TrimSpace(l)
				if l == "" {
					continue
				}
				if o.Role == canvas.RoleBullets {
					l = "- " + l
				}
				lines = append(lines, l)
			}
		case *canvas.ImageObject:
			if o.Alt != "" {
				lines = append(lines, fmt.Sprintf("[image: %s]", o.Alt))
			} else {
				lines = append(lines, "[image]")
			}
		case *canvas.TableObject:
			rows := len(o.Data)
			cols := len(o.Headers)
			for _, r := range o.Data {
				if len(r) > cols {
					cols = len(r)
				}
			}
			lines = append(lines, fmt.Sprintf("[table: %d rows x %d cols]", rows, cols))
		case *canvas.ChartObject:
			kind := o.ChartType
			if kind == "" {
				kind = canvas.ChartBar
			}
			lines = append(lines, fmt.Sprintf("[%s chart: %d points]", kind, len(o.Data.Values)))
		case *canvas.ShapeObject:
			// Decorative; omitted from the outline.
		}
	}
	return lines
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
