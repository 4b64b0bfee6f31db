package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/copilot"
)

const fallbackColor = "#7f7f7f"

// bar is one drawn bar. Frac is the height relative to the tallest bar;
// negative values are drawn flat.
type bar struct {
	label string
	text  string
	color string
	frac  float64
}

// barsOf flattens every series point of a bar chart.
func barsOf(c *copilot.ChartConfig) []bar {
	var bars []bar
	peak := 0.0
	for _, s := range c.Series {
		for _, p := range s.Data {
			peak = math.Max(peak, p.Value)
		}
	}
	for i, s := range c.Series {
		color := s.Color
		if color == "" {
			color = colorAt(c.Colors, i)
		}
		for _, p := range s.Data {
			b := bar{label: s.Name, text: p.Text, color: color}
			if peak > 0 && p.Value > 0 {
				b.frac = p.Value / peak
			}
			bars = append(bars, b)
		}
	}
	return bars
}

// slice is one pie wedge, with angles in radians measured clockwise from
// twelve o'clock.
type slice struct {
	label string
	text  string
	color string
	start float64
	end   float64
}

// slicesOf lays out the first series of a pie chart. Non-positive values
// get no wedge.
func slicesOf(c *copilot.ChartConfig) []slice {
	if len(c.Series) == 0 {
		return nil
	}
	points := c.Series[0].Data

	total := 0.0
	for _, p := range points {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total == 0 {
		return nil
	}

	var slices []slice
	angle := 0.0
	for i, p := range points {
		if p.Value <= 0 {
			continue
		}
		sweep := 2 * math.Pi * p.Value / total
		slices = append(slices, slice{
			label: p.Label,
			text:  p.Text,
			color: colorAt(c.Colors, i),
			start: angle,
			end:   angle + sweep,
		})
		angle += sweep
	}
	return slices
}

// pointOn returns the point at angle on a circle, in screen coordinates
// (y grows downward).
func pointOn(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Sin(angle), cy - r*math.Cos(angle)
}

func colorAt(colors []string, i int) string {
	if i < len(colors) && colors[i] != "" {
		return colors[i]
	}
	return fallbackColor
}

// rgb parses "#rrggbb"; anything else is the fallback gray.
func rgb(hex string) (int, int, int) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return 127, 127, 127
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
