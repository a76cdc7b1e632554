package color

import stdcolor "image/color"

// Color is an 8-bit RGB triplet, the unit of LED output.
type Color struct {
	R, G, B uint8
}

func New(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Black is the all-off color.
var Black = Color{}

// Color16 is a 16-bit-per-channel color used internally by smoothing so
// sub-8-bit interpolation steps are not lost.
type Color16 struct {
	R, G, B uint16
}

// To16 widens c so that 0xFF maps to 0xFFFF.
func (c Color) To16() Color16 {
	return Color16{
		R: uint16(c.R) * 257,
		G: uint16(c.G) * 257,
		B: uint16(c.B) * 257,
	}
}

// To8 narrows c back to 8 bits per channel.
func (c Color16) To8() Color {
	return Color{
		R: uint8(c.R >> 8),
		G: uint8(c.G >> 8),
		B: uint8(c.B >> 8),
	}
}

// ToNRGBA returns c as an opaque image color.
func (c Color) ToNRGBA() stdcolor.NRGBA {
	return stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Scale multiplies each channel by s in [0,1].
func (c Color) Scale(s float64) Color {
	if s <= 0 {
		return Black
	}
	if s >= 1 {
		return c
	}
	return Color{
		R: uint8(float64(c.R) * s),
		G: uint8(float64(c.G) * s),
		B: uint8(float64(c.B) * s),
	}
}

// ClampChannel converts a float channel value to a byte the way the effect
// runtime requires: truncation toward zero, then clamped into [0,255].
func ClampChannel(v float64) uint8 {
	n := int(v)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// Fill sets every element of dst to c.
func Fill(dst []Color, c Color) {
	for i := range dst {
		dst[i] = c
	}
}

// ToBytes flattens cs into a packed RGB byte slice. dst must hold 3*len(cs).
func ToBytes(cs []Color, dst []byte) {
	for i, c := range cs {
		dst[i*3+0] = c.R
		dst[i*3+1] = c.G
		dst[i*3+2] = c.B
	}
}

// HSV converts h,s,v in [0,1] to an RGB color.
func HSV(h, s, v float64) Color {
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return Color{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)}
}
