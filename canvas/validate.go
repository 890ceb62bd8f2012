package canvas

import (
	"fmt"

	"slideforge/geometry"
)

// ValidateObject enforces the strict full-containment check used by
// final-render sanity passes. It must not be applied during interactive
// editing, where partially off-canvas objects are legal.
func ValidateObject(obj Object) error {
	b := obj.Base()
	if !b.Coordinates.Valid() {
		return fmt.Errorf("canvas: object %s has non-positive size %gx%g",
			b.ID, b.Coordinates.Width, b.Coordinates.Height)
	}
	if !geometry.FullyInsideCanvas(b.Coordinates) {
		return fmt.Errorf("canvas: object %s extends outside the canvas", b.ID)
	}
	return nil
}

// ObjectsInZone returns every object whose box overlaps the zone rectangle.
// Membership is overlap-based, not containment-based: a single object may
// belong to zero or several zones.
func ObjectsInZone(s *Slide, zone geometry.Coordinates) []Object {
	var out []Object
	for _, obj := range s.Objects {
		if geometry.Overlap(obj.Base().Coordinates, zone) {
			out = append(out, obj)
		}
	}
	return out
}
