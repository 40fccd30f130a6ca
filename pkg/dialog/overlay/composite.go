package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Composite draws layer on top of base with its top-left corner at (x, y).
// Both are treated as line grids of the given width and height; cells of base
// outside the layer are preserved, styling included.
func Composite(base, layer string, x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	baseLines := fitLines(base, width, height)
	layerLines := strings.Split(layer, "\n")
	layerWidth := maxLineWidth(layerLines)

	for i, line := range layerLines {
		row := y + i
		if row < 0 || row >= height {
			continue
		}
		target := baseLines[row]
		left := ansi.Truncate(target, max(x, 0), "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		segment := padRight(line, layerWidth)
		if x < 0 {
			segment = dropColumns(segment, -x)
		}
		pos := max(x, 0) + ansi.StringWidth(segment)
		if pos > width {
			segment = ansi.Truncate(segment, width-max(x, 0), "")
			pos = width
		}
		right := dropColumns(target, pos)

		baseLines[row] = left + segment + right
	}
	return strings.Join(baseLines, "\n")
}

// Center composites layer in the middle of base, shifted by (dx, dy).
func Center(base, layer string, width, height, dx, dy int) string {
	lines := strings.Split(layer, "\n")
	x := (width-maxLineWidth(lines))/2 + dx
	y := (height-len(lines))/2 + dy
	return Composite(base, layer, max(x, 0), max(y, 0), width, height)
}

// fitLines pads or trims s to exactly height lines of width columns.
func fitLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padRight(ansi.Truncate(lines[i], width, ""), width)
	}
	return lines
}

func maxLineWidth(lines []string) int {
	widest := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// dropColumns removes the first cols visible columns of s.
func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return ansi.TruncateLeft(s, cols, "")
}
