package analysis

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

const maxBarWidth = 50

// Colors used for bars when writing to a terminal.
const (
	defaultColor  = "\x1b[0m"
	positiveColor = "\x1b[32m"
	negativeColor = "\x1b[31m"
)

// Bar is one labelled value of a terminal plot.
type Bar struct {
	Label string
	Value float64
}

// PlotTerminal draws bars as a horizontal bar chart in ascending order. Bars
// are colored by sign when w is a terminal. Non-finite values are listed last
// without a bar and are left out of the scale.
func PlotTerminal(w io.Writer, bars []Bar, title string) error {
	var sorted, invalid []Bar
	for _, b := range bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			invalid = append(invalid, b)
		} else {
			sorted = append(sorted, b)
		}
	}
	if len(sorted) == 0 {
		_, err := fmt.Fprintf(w, "\n%s: no data\n", title)
		return err
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	minValue := sorted[0].Value
	maxValue := sorted[len(sorted)-1].Value
	labelWidth := len("Label")
	for _, b := range bars {
		labelWidth = max(labelWidth, len(b.Label))
	}
	color := isTerminal(w)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (Terminal Plot - Ascending Order):\n", title)
	fmt.Fprintf(&sb, "%-*s | %-10s | Bar Chart\n", labelWidth, "Label", "Value")
	sb.WriteString(strings.Repeat("-", labelWidth+1) + "|" + strings.Repeat("-", 12) + "|" + strings.Repeat("-", maxBarWidth) + "\n")

	for _, b := range sorted {
		var barWidth int
		if maxValue != minValue {
			barWidth = int((b.Value - minValue) / (maxValue - minValue) * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}
		if color {
			if b.Value < 0 {
				bar = negativeColor + bar + defaultColor
			} else {
				bar = positiveColor + bar + defaultColor
			}
		}
		fmt.Fprintf(&sb, "%-*s | %10.4f | %s\n", labelWidth, b.Label, b.Value, bar)
	}
	for _, b := range invalid {
		fmt.Fprintf(&sb, "%-*s | %10.4f |\n", labelWidth, b.Label, b.Value)
	}

	fmt.Fprintf(&sb, "\nScale: Min=%.6f, Max=%.6f\n", minValue, maxValue)
	_, err := io.WriteString(w, sb.String())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
