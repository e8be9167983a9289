package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/thruflo/sortviz/internal/run"
)

// Partial block characters, one per eighth of a cell.
var eighths = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Bars draws values as a vertical bar chart width columns wide and height
// rows tall. Each bar's height is value/maxValue of the chart. When there are
// fewer values than columns each value spans width/len(values) columns;
// otherwise columns sample the values evenly.
func Bars(values []int, maxValue, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	rows := make([]strings.Builder, height)
	n := len(values)
	if n == 0 || maxValue <= 0 {
		blank := strings.Repeat(" ", width)
		lines := make([]string, height)
		for i := range lines {
			lines[i] = blank
		}
		return lines
	}

	span := max(width/n, 1)
	for col := range width {
		idx := col / span
		if span == 1 {
			idx = col * n / width
		}
		if idx >= n {
			// Right margin when width does not divide evenly.
			for r := range rows {
				rows[r].WriteString(" ")
			}
			continue
		}

		v := min(max(values[idx], 0), maxValue)
		filled := v * height * 8 / maxValue
		// Separate adjacent wide bars with a gap column.
		gap := span > 2 && col%span == span-1
		for r := range rows {
			level := height - 1 - r
			switch cell := filled - level*8; {
			case gap || cell <= 0:
				rows[r].WriteString(" ")
			case cell >= 8:
				rows[r].WriteString(eighths[8])
			default:
				rows[r].WriteString(eighths[cell])
			}
		}
	}

	lines := make([]string, height)
	for i := range rows {
		lines[i] = rows[i].String()
	}
	return lines
}

// PadOrTruncate pads or truncates a string to exactly width characters.
func PadOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	n := utf8.RuneCountInString(s)
	switch {
	case n == width:
		return s
	case n < width:
		return s + strings.Repeat(" ", width-n)
	}
	return Truncate(s, width)
}

// Truncate truncates a string to width, adding an ellipsis if needed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width >= 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}

// CenterText centers text within the given width.
func CenterText(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return PadOrTruncate(s, width)
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// Style applies ANSI style codes to text.
func Style(s string, codes ...string) string {
	if len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}

// StatusColor returns the color code for a run status.
func StatusColor(status run.Status) string {
	switch status {
	case run.StatusRunning:
		return FgGreen
	case run.StatusCompleted:
		return FgBrightGreen
	case run.StatusStopping, run.StatusCancelled:
		return FgYellow
	case run.StatusExhausted:
		return FgRed
	default:
		return ""
	}
}

// FormatStatus formats a status with its color.
func FormatStatus(status run.Status) string {
	color := StatusColor(status)
	if color == "" {
		return string(status)
	}
	return Style(string(status), color, Bold)
}
