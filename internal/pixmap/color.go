package pixmap

import "fmt"

// Color is a 24-bit RGB triple. Colors have no identity and are freely
// copied by value.
type Color struct {
	R, G, B uint8
}

// pack encodes the color into the low 24 bits of a cell word; the
// upper 8 bits are always zero.
func (c Color) pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// unpackColor decodes the low 24 bits of a cell word into a Color,
// ignoring any bits set above bit 23.
func unpackColor(word uint32) Color {
	return Color{
		R: uint8(word >> 16),
		G: uint8(word >> 8),
		B: uint8(word),
	}
}

// String renders the color as uppercase RRGGBB, the wire format used
// on output.
func (c Color) String() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}
