package canvas

import (
	"image/color"
	"strings"
)

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (leading '#'
// optional) into an RGBA color. The second return reports success.
func ParseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		r, ok1 := hexNibble(s[0])
		g, ok2 := hexNibble(s[1])
		b, ok3 := hexNibble(s[2])
		if !ok1 || !ok2 || !ok3 {
			return color.RGBA{}, false
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6, 8:
		var v [4]uint8
		v[3] = 255
		for i := 0; i < len(s)/2; i++ {
			hi, ok1 := hexNibble(s[2*i])
			lo, ok2 := hexNibble(s[2*i+1])
			if !ok1 || !ok2 {
				return color.RGBA{}, false
			}
			v[i] = hi<<4 | lo
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, true
	default:
		return color.RGBA{}, false
	}
}

// ToARGB normalizes a model color string to the AARRGGBB hex form used by
// the deck backend, defaulting to the given fallback when parsing fails.
func ToARGB(s, fallback string) string {
	c, ok := ParseHexColor(s)
	if !ok {
		return fallback
	}
	const digits = "0123456789ABCDEF"
	out := make([]byte, 8)
	for i, b := range [4]uint8{c.A, c.R, c.G, c.B} {
		out[2*i] = digits[b>>4]
		out[2*i+1] = digits[b&0x0f]
	}
	return string(out)
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
