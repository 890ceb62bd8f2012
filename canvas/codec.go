package canvas

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalObject encodes an object with its "type" discriminator inlined.
func MarshalObject(o Object) ([]byte, error) {
	switch v := o.(type) {
	case *TextObject:
		return json.Marshal(struct {
			Type ObjectType `json:"type"`
			*TextObject
		}{ObjectText, v})
	case *ImageObject:
		return json.Marshal(struct {
			Type ObjectType `json:"type"`
			*ImageObject
		}{ObjectImage, v})
	case *ShapeObject:
		return json.Marshal(struct {
			Type ObjectType `json:"type"`
			*ShapeObject
		}{ObjectShape, v})
	case *TableObject:
		return json.Marshal(struct {
			Type ObjectType `json:"type"`
			*TableObject
		}{ObjectTable, v})
	case *ChartObject:
		return json.Marshal(struct {
			Type ObjectType `json:"type"`
			*ChartObject
		}{ObjectChart, v})
	default:
		return nil, fmt.Errorf("canvas: cannot marshal object of unknown type %T", o)
	}
}

// UnmarshalObject decodes a single object from its tagged JSON form.
func UnmarshalObject(data []byte) (Object, error) {
	var tag struct {
		Type ObjectType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("canvas: object type tag: %w", err)
	}
	var obj Object
	switch tag.Type {
	case ObjectText:
		obj = &TextObject{}
	case ObjectImage:
		obj = &ImageObject{}
	case ObjectShape:
		obj = &ShapeObject{}
	case ObjectTable:
		obj = &TableObject{}
	case ObjectChart:
		obj = &ChartObject{}
	default:
		return nil, fmt.Errorf("canvas: unknown object type %q", tag.Type)
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("canvas: decode %s object: %w", tag.Type, err)
	}
	return obj, nil
}

// slideAlias mirrors Slide with raw object payloads so the union can be
// decoded through the type tag.
type slideAlias struct {
	ID         string            `json:"id"`
	Type       SlideType         `json:"type"`
	Objects    []json.RawMessage `json:"objects"`
	Order      int               `json:"order"`
	Background *Background       `json:"background,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *Slide) MarshalJSON() ([]byte, error) {
	alias := slideAlias{
		ID:         s.ID,
		Type:       s.Type,
		Order:      s.Order,
		Background: s.Background,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	alias.Objects = make([]json.RawMessage, 0, len(s.Objects))
	for _, obj := range s.Objects {
		raw, err := MarshalObject(obj)
		if err != nil {
			return nil, err
		}
		alias.Objects = append(alias.Objects, raw)
	}
	return json.Marshal(alias)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Slide) UnmarshalJSON(data []byte) error {
	var alias slideAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	s.ID = alias.ID
	s.Type = alias.Type
	s.Order = alias.Order
	s.Background = alias.Background
	s.Notes = alias.Notes
	s.CreatedAt = alias.CreatedAt
	s.UpdatedAt = alias.UpdatedAt
	s.Objects = make([]Object, 0, len(alias.Objects))
	for _, raw := range alias.Objects {
		obj, err := UnmarshalObject(raw)
		if err != nil {
			return err
		}
		s.Objects = append(s.Objects, obj)
	}
	return nil
}

// Deck is the serialized form consumed by the CLI: an ordered set of slides
// plus the active template.
type Deck struct {
	Title    string    `json:"title,omitempty"`
	Slides   []*Slide  `json:"slides"`
	Template *Template `json:"template,omitempty"`
}

// ParseDeck decodes a deck document.
func ParseDeck(data []byte) (*Deck, error) {
	var d Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("canvas: decode deck: %w", err)
	}
	for _, s := range d.Slides {
		s.EnsureIDs()
	}
	return &d, nil
}
