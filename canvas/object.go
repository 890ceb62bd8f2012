// Package canvas defines the slide canvas object model: slides, the typed
// object union placed on them, and templates describing per-slide-type
// layouts. The editing layer produces this model; the export packages consume
// it as an immutable snapshot.
package canvas

import (
	"fmt"
	"sort"
	"strconv"

	"slideforge/geometry"
)

// ObjectType discriminates the object union.
type ObjectType string

const (
	ObjectText  ObjectType = "text"
	ObjectImage ObjectType = "image"
	ObjectShape ObjectType = "shape"
	ObjectTable ObjectType = "table"
	ObjectChart ObjectType = "chart"
)

// ContentRole is the semantic purpose of an object within a layout,
// distinct from its concrete type.
type ContentRole string

const (
	RoleTitle    ContentRole = "title"
	RoleSubtitle ContentRole = "subtitle"
	RoleBody     ContentRole = "body"
	RoleBullets  ContentRole = "bullets"
	RoleCaption  ContentRole = "caption"
	RoleQuote    ContentRole = "quote"
	RoleFooter   ContentRole = "footer"
)

// Object is the closed sum type of everything that can be placed on a slide.
// The unexported method seals the union so the export dispatch switch stays
// exhaustive.
type Object interface {
	Base() *ObjectBase
	Type() ObjectType
	sealedObject()
}

// ObjectBase carries the fields shared by every object variant.
type ObjectBase struct {
	ID          string                `json:"id"`
	Coordinates geometry.Coordinates  `json:"coordinates"`
	ZIndex      int                   `json:"zIndex,omitempty"`
	Transform   *geometry.Transform   `json:"transform,omitempty"`
	Locked      bool                  `json:"locked,omitempty"`
	Visible     *bool                 `json:"visible,omitempty"`
}

// IsVisible reports the effective visibility; absent means visible.
func (b *ObjectBase) IsVisible() bool {
	return b.Visible == nil || *b.Visible
}

// TextStyle holds optional per-instance overrides of the role defaults.
type TextStyle struct {
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"`
}

// TextObject is a block of text. Content may embed **bold** run markers.
type TextObject struct {
	ObjectBase
	Content string      `json:"content"`
	Role    ContentRole `json:"role,omitempty"`
	Style   *TextStyle  `json:"style,omitempty"`
}

func (o *TextObject) Base() *ObjectBase { return &o.ObjectBase }
func (o *TextObject) Type() ObjectType  { return ObjectText }
func (o *TextObject) sealedObject()     {}

// FitMode controls how an image is placed inside its box.
type FitMode string

const (
	FitCover     FitMode = "cover"
	FitContain   FitMode = "contain"
	FitFill      FitMode = "fill"
	FitNone      FitMode = "none"
	FitScaleDown FitMode = "scale-down"
)

// ImageFilters holds optional raster adjustments. They round-trip through
// the model; export backends may ignore them.
type ImageFilters struct {
	Brightness float64 `json:"brightness,omitempty"`
	Contrast   float64 `json:"contrast,omitempty"`
	Saturation float64 `json:"saturation,omitempty"`
	Blur       float64 `json:"blur,omitempty"`
}

// ImageObject references a raster asset by source URL. An empty Src (or a
// placeholder:// URL) marks an asset that was never generated; export
// substitutes a tinted placeholder box instead of failing.
//
// Variants, HeroIndex and CycleIntervalMS drive presentation-time image
// rotation. They are outside export scope but must survive a model
// round-trip unchanged.
type ImageObject struct {
	ObjectBase
	Src             string        `json:"src"`
	Alt             string        `json:"alt,omitempty"`
	Fit             FitMode       `json:"fit,omitempty"`
	Filters         *ImageFilters `json:"filters,omitempty"`
	Variants        []string      `json:"variants,omitempty"`
	HeroIndex       int           `json:"heroIndex,omitempty"`
	CycleIntervalMS int           `json:"cycleIntervalMs,omitempty"`
}

func (o *ImageObject) Base() *ObjectBase { return &o.ObjectBase }
func (o *ImageObject) Type() ObjectType  { return ObjectImage }
func (o *ImageObject) sealedObject()     {}

// ShapeKind enumerates the supported vector shapes.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeArrow     ShapeKind = "arrow"
	ShapeLine      ShapeKind = "line"
	ShapeCustom    ShapeKind = "custom"
)

// ShapeObject is a vector shape. CustomPath is an SVG path string, only
// meaningful when Shape is ShapeCustom.
type ShapeObject struct {
	ObjectBase
	Shape       ShapeKind `json:"shape"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	CustomPath  string    `json:"customPath,omitempty"`
}

func (o *ShapeObject) Base() *ObjectBase { return &o.ObjectBase }
func (o *ShapeObject) Type() ObjectType  { return ObjectShape }
func (o *ShapeObject) sealedObject()     {}

// TableStyle holds presentation hints for table rendering.
type TableStyle struct {
	HeaderFill  string  `json:"headerFill,omitempty"`
	HeaderColor string  `json:"headerColor,omitempty"`
	AltRowFill  string  `json:"altRowFill,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
}

// TableObject is a grid of cells. Cells may be strings or numbers; use
// CellString to normalize. Headers is optional: without it only data rows
// are produced.
type TableObject struct {
	ObjectBase
	Headers []string        `json:"headers,omitempty"`
	Data    [][]interface{} `json:"data"`
	Style   *TableStyle     `json:"style,omitempty"`
}

func (o *TableObject) Base() *ObjectBase { return &o.ObjectBase }
func (o *TableObject) Type() ObjectType  { return ObjectTable }
func (o *TableObject) sealedObject()     {}

// ChartKind enumerates the supported chart types.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
	ChartArea    ChartKind = "area"
)

// ChartData is a single labelled series.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ChartObject is a chart bound to one series of label/value pairs.
type ChartObject struct {
	ObjectBase
	ChartType ChartKind `json:"chartType"`
	Data      ChartData `json:"data"`
}

func (o *ChartObject) Base() *ObjectBase { return &o.ObjectBase }
func (o *ChartObject) Type() ObjectType  { return ObjectChart }
func (o *ChartObject) sealedObject()     {}

// CellString normalizes a table cell value to its display string. Floats
// with no fractional part render without a decimal point.
func CellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// SortedObjects returns the slide's objects ordered by ZIndex ascending,
// stable on ties (list order wins). The input slice is not modified.
func SortedObjects(objects []Object) []Object {
	out := make([]Object, len(objects))
	copy(out, objects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Base().ZIndex < out[j].Base().ZIndex
	})
	return out
}
