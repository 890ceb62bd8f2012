// Package export materializes a canvas deck into physical artifacts: an
// editable PPTX slide deck, a paginated PDF document, or a text-centric
// outline handout. A backend-agnostic coordinator owns ordering, progress,
// cancellation and warning aggregation; each backend owns unit conversion
// and per-object encoding.
package export

import (
	"context"
	"fmt"

	"slideforge/canvas"
)

// Warning records a recoverable, object- or slide-scoped degradation that
// happened during export. The artifact is still produced.
type Warning struct {
	SlideID  string `json:"slideId,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
	Message  string `json:"message"`
}

// Result is a finished export: the binary artifact plus any warnings
// accumulated along the way. The caller owns any save/download side effect.
type Result struct {
	Data     []byte
	Warnings []Warning
}

// Backend builds one artifact from slides handed over in final order.
// AddSlide returns slide-local warnings; a non-nil error is fatal and aborts
// the export. Implementations own all document state for exactly one run.
type Backend interface {
	Name() string
	Begin(ctx context.Context, totalSlides int) error
	AddSlide(ctx context.Context, s *canvas.Slide, index int) ([]Warning, error)
	Finalize() ([]byte, error)
}

// ProgressFunc receives fractions in [0,1], monotonically non-decreasing,
// at least once per slide.
type ProgressFunc func(fraction float64)

// Coordinator drives a Backend over an immutable slide snapshot. The zero
// value is usable; Logger and OnProgress are optional.
type Coordinator struct {
	Logger     func(string)
	OnProgress ProgressFunc
}

// Run exports the slides through the backend. Slides are sorted by Order
// (array position is never trusted); cancellation is checked between
// slides, never between objects, so no slide is left half-encoded.
func (c *Coordinator) Run(ctx context.Context, slides []*canvas.Slide, b Backend) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sorted := canvas.SortSlides(slides)
	total := len(sorted)

	if err := b.Begin(ctx, total); err != nil {
		return nil, wrapErr(b.Name(), "init", fmt.Errorf("%w: %v", ErrDocumentInit, err))
	}

	var warnings []Warning
	for i, s := range sorted {
		if err := ctx.Err(); err != nil {
			c.logf("export cancelled after %d/%d slides", i, total)
			return nil, wrapErr(b.Name(), "slide", ErrExportCancelled)
		}
		ws, err := b.AddSlide(ctx, s, i)
		warnings = append(warnings, ws...)
		if err != nil {
			return nil, wrapErr(b.Name(), "slide", err)
		}
		for _, w := range ws {
			c.logf("slide %s: %s", w.SlideID, w.Message)
		}
		c.progress(float64(i+1) / float64(total))
	}
	if total == 0 {
		c.progress(1)
	}

	data, err := b.Finalize()
	if err != nil {
		return nil, wrapErr(b.Name(), "finalize", fmt.Errorf("%w: %v", ErrFinalize, err))
	}
	return &Result{Data: data, Warnings: warnings}, nil
}

func (c *Coordinator) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger(fmt.Sprintf(format, args...))
	}
}

func (c *Coordinator) progress(f float64) {
	if c.OnProgress != nil {
		c.OnProgress(f)
	}
}

// visibleSorted returns the slide's exportable objects: sorted by ZIndex
// (stable) with invisible objects dropped.
func visibleSorted(s *canvas.Slide) []canvas.Object {
	sorted := canvas.SortedObjects(s.Objects)
	out := sorted[:0]
	for _, obj := range sorted {
		if obj.Base().IsVisible() {
			out = append(out, obj)
		}
	}
	return out
}
