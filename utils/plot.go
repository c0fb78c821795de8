package utils

import (
	"fmt"
	"slices"
	"strings"
)

const (
	ChartHeight     = 14
	YAxisLabelWidth = 7
	MaxAxisLabels   = 6
	MinLabelSpacing = 10
)

// Renderer abstracts styling so the chart can be built without a terminal.
type Renderer interface {
	Render(text string) string
}

// SimpleRenderer returns text unstyled.
type SimpleRenderer struct{}

func (s SimpleRenderer) Render(text string) string {
	return text
}

type ChartStyles struct {
	Muted Renderer
	Good  Renderer
}

// DataPoint is a single charted sample positioned by JVM uptime.
type DataPoint struct {
	Value     float64
	UptimeSec float64
	Icon      string // pre-rendered marker
}

type ChartConfig struct {
	Width  int
	Height int
	Styles ChartStyles
	Legend string
}

// CreatePlot renders a line chart of the data points with a y-axis in the
// given unit and an x-axis labeled in minutes of uptime.
func CreatePlot(dataPoints []DataPoint, unit string, config ChartConfig) string {
	if len(dataPoints) == 0 {
		return "No data"
	}

	values := make([]float64, len(dataPoints))
	for i, dp := range dataPoints {
		values[i] = dp.Value
	}

	maxVal, minVal := slices.Max(values), slices.Min(values)
	if maxVal == minVal {
		maxVal = minVal + 1 // avoid division by zero
	}

	width := config.Width - YAxisLabelWidth
	var lines []string

	chartGrid := make([][]string, config.Height)
	for i := range chartGrid {
		chartGrid[i] = make([]string, width)
		for j := range chartGrid[i] {
			chartGrid[i][j] = " "
		}
	}

	chartPoints := make([]struct{ x, y int }, len(dataPoints))
	for i, dp := range dataPoints {
		x := i * (width - 1) / max(1, len(dataPoints)-1)
		if len(dataPoints) == 1 {
			x = width / 2
		}
		// Value to row, inverted since the grid is drawn top-down
		y := int((maxVal-dp.Value)/(maxVal-minVal)*float64(config.Height-1) + 0.5)
		if y >= config.Height {
			y = config.Height - 1
		}
		if y < 0 {
			y = 0
		}
		if x < width {
			chartPoints[i] = struct{ x, y int }{x, y}
		}
	}

	for i := 0; i < len(chartPoints)-1; i++ {
		drawLine(chartGrid, chartPoints[i].x, chartPoints[i].y, chartPoints[i+1].x, chartPoints[i+1].y, width, config.Height, config.Styles.Muted)
	}

	// Markers override line characters at data points
	for i, point := range chartPoints {
		if point.x < width && point.y < config.Height {
			chartGrid[point.y][point.x] = dataPoints[i].Icon
		}
	}

	for row := 0; row < config.Height; row++ {
		threshold := maxVal - (maxVal-minVal)*float64(row)/float64(config.Height-1)
		label := fmt.Sprintf(" %6.1f%s", threshold, unit)
		lineStr := config.Styles.Muted.Render(label+" ┤") + strings.Join(chartGrid[row], "")
		lines = append(lines, lineStr)
	}

	uptimes := make([]float64, len(dataPoints))
	for i, dp := range dataPoints {
		uptimes[i] = dp.UptimeSec
	}
	lines = append(lines, createUptimeAxis(uptimes, width, config.Styles.Muted)...)

	if config.Legend != "" {
		lines = append(lines, "", config.Styles.Muted.Render(config.Legend))
	}

	return strings.Join(lines, "\n")
}

// drawLine draws a dotted connection between two grid points (Bresenham).
func drawLine(grid [][]string, x1, y1, x2, y2, width, height int, muted Renderer) {
	if x1 < 0 || x1 >= width || x2 < 0 || x2 >= width ||
		y1 < 0 || y1 >= height || y2 < 0 || y2 >= height {
		return
	}

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1

	for {
		if grid[y][x] == " " {
			grid[y][x] = muted.Render("·")
		}

		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// createUptimeAxis labels the x-axis with uptime minute marks.
func createUptimeAxis(uptimes []float64, width int, muted Renderer) []string {
	axisLine := strings.Repeat(" ", 10) + "└" + strings.Repeat("─", width)
	labelLine := strings.Repeat(" ", 10)

	numLabels := min(MaxAxisLabels, width/MinLabelSpacing)
	for i := range numLabels {
		idx := i * (len(uptimes) - 1) / max(1, numLabels-1)
		if idx >= len(uptimes) {
			idx = len(uptimes) - 1
		}

		label := fmt.Sprintf("%.1fm", uptimes[idx]/60)
		pos := i * width / max(1, numLabels-1)

		for len(labelLine)-10 < pos {
			labelLine += " "
		}
		labelLine += label
	}

	return []string{muted.Render(axisLine), muted.Render(labelLine)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
