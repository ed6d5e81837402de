package terminal

// Classic 16-color console palette, ordered by console attribute index
// Bits: 1 blue, 2 green, 4 red, 8 intensity
var (
	Black       = RGB(0, 0, 0)
	DarkBlue    = RGB(0, 0, 128)
	DarkGreen   = RGB(0, 128, 0)
	DarkCyan    = RGB(0, 128, 128)
	DarkRed     = RGB(128, 0, 0)
	DarkMagenta = RGB(128, 0, 128)
	DarkYellow  = RGB(128, 128, 0)
	Gray        = RGB(192, 192, 192)
	DarkGray    = RGB(128, 128, 128)
	Blue        = RGB(0, 0, 255)
	Green       = RGB(0, 255, 0)
	Cyan        = RGB(0, 255, 255)
	Red         = RGB(255, 0, 0)
	Magenta     = RGB(255, 0, 255)
	Yellow      = RGB(255, 255, 0)
	White       = RGB(255, 255, 255)
)

// ConsolePalette maps a 4-bit console attribute to its RGB value
var ConsolePalette = [16]Color{
	Black, DarkBlue, DarkGreen, DarkCyan,
	DarkRed, DarkMagenta, DarkYellow, Gray,
	DarkGray, Blue, Green, Cyan,
	Red, Magenta, Yellow, White,
}

// paletteColor returns the palette entry for the low 4 bits of attr
func paletteColor(attr uint16) Color {
	return ConsolePalette[attr&0x0f]
}
