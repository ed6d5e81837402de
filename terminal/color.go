package terminal

// Color is an immutable 24-bit RGB value, or the ignored sentinel
// Comparable with ==
type Color struct {
	R, G, B uint8
	ignored bool
}

// ColorIgnored leaves the ambient color of a channel untouched
var ColorIgnored = Color{ignored: true}

// RGB constructs a concrete color
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Ignored reports whether c is the ignored sentinel
func (c Color) Ignored() bool {
	return c.ignored
}

// Hex returns the color as 0xRRGGBB, or -1 for the ignored sentinel
func (c Color) Hex() int32 {
	if c.ignored {
		return -1
	}
	return int32(c.R)<<16 | int32(c.G)<<8 | int32(c.B)
}

// String returns "#rrggbb" or "ignored"
func (c Color) String() string {
	if c.ignored {
		return "ignored"
	}
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[c.R>>4], digits[c.R&0xf],
		digits[c.G>>4], digits[c.G&0xf],
		digits[c.B>>4], digits[c.B&0xf],
	})
}

// colorState caches the colors last emitted to the terminal
// A channel is unknown until first emission or a successful platform sync
type colorState struct {
	fg, bg           Color
	fgKnown, bgKnown bool
}

// fgChanged reports whether emitting fg requires an SGR sequence
func (s *colorState) fgChanged(fg Color) bool {
	if fg.ignored {
		return false
	}
	return !s.fgKnown || fg != s.fg
}

// bgChanged reports whether emitting bg requires an SGR sequence
func (s *colorState) bgChanged(bg Color) bool {
	if bg.ignored {
		return false
	}
	return !s.bgKnown || bg != s.bg
}

// foreground returns the cached foreground, ColorIgnored when unknown
func (s *colorState) foreground() Color {
	if !s.fgKnown {
		return ColorIgnored
	}
	return s.fg
}

// background returns the cached background, ColorIgnored when unknown
func (s *colorState) background() Color {
	if !s.bgKnown {
		return ColorIgnored
	}
	return s.bg
}
