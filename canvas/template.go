package canvas

import (
	"fmt"

	"slideforge/geometry"
)

// Zone is a named, template-defined rectangular region that content of a
// given role may occupy. Zone coordinates must lie fully inside the canvas;
// violating that is a template-authoring error caught by Template.Validate.
type Zone struct {
	ID            string               `json:"id"`
	Role          ContentRole          `json:"role"`
	Coordinates   geometry.Coordinates `json:"coordinates"`
	AcceptedTypes []ObjectType         `json:"acceptedTypes,omitempty"`
	Required      bool                 `json:"required,omitempty"`
	MinItems      int                  `json:"minItems,omitempty"`
	MaxItems      int                  `json:"maxItems,omitempty"`
	StyleRole     string               `json:"styleRole,omitempty"`
}

// Accepts reports whether the zone admits objects of the given type.
// A zone with no accepted-type list admits everything.
func (z Zone) Accepts(t ObjectType) bool {
	if len(z.AcceptedTypes) == 0 {
		return true
	}
	for _, at := range z.AcceptedTypes {
		if at == t {
			return true
		}
	}
	return false
}

// MasterKind enumerates decorative master element kinds.
type MasterKind string

const (
	MasterLogo       MasterKind = "logo"
	MasterPageNumber MasterKind = "pageNumber"
	MasterFooter     MasterKind = "footer"
)

// MasterElement is a decoration applied across slides per template rules.
// Visibility: hidden when ExcludeFrom contains the slide type, or when
// VisibleOn is non-empty and does not contain it; slide-number include and
// exclude lists, when present, override both.
type MasterElement struct {
	ID            string               `json:"id"`
	Kind          MasterKind           `json:"kind"`
	Coordinates   geometry.Coordinates `json:"coordinates"`
	ZIndex        int                  `json:"zIndex,omitempty"`
	Content       string               `json:"content,omitempty"`
	Fill          string               `json:"fill,omitempty"`
	Color         string               `json:"color,omitempty"`
	FontSize      float64              `json:"fontSize,omitempty"`
	VisibleOn     []SlideType          `json:"visibleOn,omitempty"`
	ExcludeFrom   []SlideType          `json:"excludeFrom,omitempty"`
	IncludeSlides []int                `json:"includeSlides,omitempty"`
	ExcludeSlides []int                `json:"excludeSlides,omitempty"`
}

// SlideLayout lists the zones a slide type offers, plus optional layout-level
// background and decorations.
type SlideLayout struct {
	Type           SlideType       `json:"type"`
	Zones          []Zone          `json:"zones"`
	Background     *Background     `json:"background,omitempty"`
	MasterElements []MasterElement `json:"masterElements,omitempty"`
}

// Template maps slide types to layouts and carries deck-wide master
// elements.
type Template struct {
	Name           string                      `json:"name,omitempty"`
	Layouts        map[SlideType]*SlideLayout  `json:"layouts"`
	MasterElements []MasterElement             `json:"masterElements,omitempty"`
	Background     *Background                 `json:"background,omitempty"`
}

// Validate checks every zone of every layout for full canvas containment.
// All violations are reported, not just the first.
func (t *Template) Validate() error {
	var bad []string
	for st, l := range t.Layouts {
		if l == nil {
			continue
		}
		for _, z := range l.Zones {
			if !z.Coordinates.Valid() || !geometry.FullyInsideCanvas(z.Coordinates) {
				bad = append(bad, fmt.Sprintf("%s/%s", st, z.ID))
			}
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("canvas: template %q has out-of-canvas zones: %v", t.Name, bad)
	}
	return nil
}
