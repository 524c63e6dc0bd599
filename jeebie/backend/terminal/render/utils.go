// Package render holds the terminal backend's tcell-independent pieces:
// half-block pixel packing and the on-screen log buffer.
package render

// Shades are 0 (lightest) to 3 (darkest), as stored in the frame buffer.

// HalfBlock packs two vertically adjacent pixels into one terminal cell.
// The glyph is drawn in the foreground shade over the background shade.
func HalfBlock(top, bottom uint8) (glyph rune, fg, bg uint8) {
	if top == bottom {
		return '█', top, top
	}
	return '▀', top, bottom
}

// Clip truncates s to width runes, marking the cut with an ellipsis when
// there is room for one.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width > 3 {
		return string(r[:width-3]) + "..."
	}
	return string(r[:width])
}
