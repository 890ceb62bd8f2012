// Package layout resolves template layouts for slides: which zones a slide
// type offers, which master elements decorate it, and the stacking order the
// backends must honor.
package layout

import (
	"slideforge/canvas"
	"slideforge/geometry"
)

// Engine answers layout questions against one active template. A nil or
// empty template degrades to blank layouts; resolution never fails.
type Engine struct {
	tpl *canvas.Template
}

// NewEngine creates an engine for the given template. tpl may be nil.
func NewEngine(tpl *canvas.Template) *Engine {
	return &Engine{tpl: tpl}
}

// BlankLayout is the fallback layout: a single full-canvas zone accepting
// any content.
func BlankLayout(t canvas.SlideType) *canvas.SlideLayout {
	return &canvas.SlideLayout{
		Type: t,
		Zones: []canvas.Zone{{
			ID:   "canvas",
			Role: canvas.RoleBody,
			Coordinates: geometry.Coordinates{
				Width:  geometry.CanvasWidth,
				Height: geometry.CanvasHeight,
			},
		}},
	}
}

// Resolve returns the layout for a slide type. Unrecognized types fall back
// to a blank custom layout; this never returns nil and never errors.
func (e *Engine) Resolve(t canvas.SlideType) *canvas.SlideLayout {
	if e == nil || e.tpl == nil {
		return BlankLayout(t)
	}
	if l, ok := e.tpl.Layouts[t]; ok && l != nil {
		return l
	}
	if l, ok := e.tpl.Layouts[canvas.SlideCustom]; ok && l != nil {
		return l
	}
	return BlankLayout(t)
}

// Background returns the effective background for a slide: the slide's own
// background wins, then the layout's, then the template's.
func (e *Engine) Background(s *canvas.Slide) *canvas.Background {
	if s.Background != nil {
		return s.Background
	}
	l := e.Resolve(s.Type)
	if l.Background != nil {
		return l.Background
	}
	if e != nil && e.tpl != nil {
		return e.tpl.Background
	}
	return nil
}

// MasterElements returns the decorations visible on the given slide,
// evaluated against the slide type and 1-based slide number. Template-wide
// elements come first, then layout-level ones; within each group the
// authored order is preserved.
func (e *Engine) MasterElements(t canvas.SlideType, slideNumber int) []canvas.MasterElement {
	if e == nil || e.tpl == nil {
		return nil
	}
	var out []canvas.MasterElement
	for _, m := range e.tpl.MasterElements {
		if masterVisible(m, t, slideNumber) {
			out = append(out, m)
		}
	}
	if l, ok := e.tpl.Layouts[t]; ok && l != nil {
		for _, m := range l.MasterElements {
			if masterVisible(m, t, slideNumber) {
				out = append(out, m)
			}
		}
	}
	return out
}

// masterVisible applies the visibility rules: slide-number lists, when
// present, take precedence over the type filters.
func masterVisible(m canvas.MasterElement, t canvas.SlideType, slideNumber int) bool {
	if len(m.ExcludeSlides) > 0 && containsInt(m.ExcludeSlides, slideNumber) {
		return false
	}
	if len(m.IncludeSlides) > 0 {
		return containsInt(m.IncludeSlides, slideNumber)
	}
	if containsType(m.ExcludeFrom, t) {
		return false
	}
	if len(m.VisibleOn) > 0 && !containsType(m.VisibleOn, t) {
		return false
	}
	return true
}

func containsType(list []canvas.SlideType, t canvas.SlideType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
