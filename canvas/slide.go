package canvas

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SlideType is the semantic slide type a template layout is resolved from.
type SlideType string

const (
	SlideTitle   SlideType = "title"
	SlideContent SlideType = "content"
	SlideBullets SlideType = "bullets"
	SlideQuote   SlideType = "quote"
	SlideCustom  SlideType = "custom"
)

// BackgroundType discriminates slide/layout backgrounds.
type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
	BackgroundVideo    BackgroundType = "video"
)

// Background describes a slide or layout background.
type Background struct {
	Type    BackgroundType `json:"type"`
	Value   string         `json:"value"`
	Opacity float64        `json:"opacity,omitempty"`
}

// Slide is one canvas of positioned objects. Order is the authoritative
// position among slides; the array index a slide happens to occupy is never
// trusted by export.
type Slide struct {
	ID         string      `json:"id"`
	Type       SlideType   `json:"type"`
	Objects    []Object    `json:"objects"`
	Order      int         `json:"order"`
	Background *Background `json:"background,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
}

// NewSlide creates an empty slide of the given type and order.
func NewSlide(t SlideType, order int) *Slide {
	now := time.Now()
	return &Slide{
		ID:        uuid.NewString(),
		Type:      t,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddObject appends an object, assigning an ID when absent.
func (s *Slide) AddObject(obj Object) {
	if obj.Base().ID == "" {
		obj.Base().ID = uuid.NewString()
	}
	s.Objects = append(s.Objects, obj)
	s.UpdatedAt = time.Now()
}

// EnsureIDs assigns fresh UUIDs to the slide and any objects missing one.
func (s *Slide) EnsureIDs() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for _, obj := range s.Objects {
		if obj.Base().ID == "" {
			obj.Base().ID = uuid.NewString()
		}
	}
}

// SortSlides returns the slides ordered by Order ascending, stable on ties.
// The input slice is not modified.
func SortSlides(slides []*Slide) []*Slide {
	out := make([]*Slide, len(slides))
	copy(out, slides)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
