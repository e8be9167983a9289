package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
)

// helpLine lists the key bindings.
const helpLine = "s start  x stop  r reset  m mute  ←/→ 1-6 algorithm  q quit"

// ViewState holds the data needed to render the visualizer.
type ViewState struct {
	Algorithm sorting.Algorithm
	Run       run.Info
	Muted     bool
	Values    []int
	MaxValue  int
}

// Render draws the full screen: a header, the bar chart and a help line.
// It always returns exactly height lines, each width characters wide
// before styling.
func (s ViewState) Render(width, height int) []string {
	width = max(width, 20)
	height = max(height, 5)

	lines := make([]string, 0, height)
	lines = append(lines, s.header(width), s.statusLine(width))

	chart := Bars(s.Values, s.MaxValue, width, height-3)
	lines = append(lines, chart...)
	lines = append(lines, Style(PadOrTruncate(helpLine, width), Dim))
	return lines
}

func (s ViewState) header(width int) string {
	algs := sorting.Algorithms()
	pos := slices.Index(algs, s.Algorithm) + 1

	var names []string
	for _, a := range algs {
		if a == s.Algorithm {
			names = append(names, "["+a.Title()+"]")
		} else {
			names = append(names, a.Title())
		}
	}

	title := fmt.Sprintf("sortviz %d/%d  %s", pos, len(algs), strings.Join(names, " "))
	return Style(PadOrTruncate(title, width), Bold)
}

func (s ViewState) statusLine(width int) string {
	sound := "on"
	if s.Muted {
		sound = "off"
	}

	parts := []string{
		fmt.Sprintf("status: %s", s.Run.Status),
		fmt.Sprintf("steps: %d", s.Run.Steps),
	}
	if s.Run.Shuffles > 0 {
		parts = append(parts, fmt.Sprintf("shuffles: %d", s.Run.Shuffles))
	}
	parts = append(parts, "sound: "+sound)

	line := PadOrTruncate(strings.Join(parts, " | "), width)
	// Color the status word after padding so escape codes do not count
	// towards the width.
	status := "status: " + string(s.Run.Status)
	return strings.Replace(line, status, "status: "+FormatStatus(s.Run.Status), 1)
}
