package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jvmtools/gctriage/internal/triage"
	"github.com/jvmtools/gctriage/utils"
)

// lipglossRenderer adapts a lipgloss.Style to the chart Renderer interface.
type lipglossRenderer struct {
	style lipgloss.Style
}

func (r lipglossRenderer) Render(text string) string {
	return r.style.Render(text)
}

func chartStyles() utils.ChartStyles {
	return utils.ChartStyles{
		Muted: lipglossRenderer{utils.MutedStyle},
		Good:  lipglossRenderer{utils.GoodStyle},
	}
}

func (m *Model) renderMetrics() string {
	s := m.metrics
	var b strings.Builder

	section := func(title string) {
		b.WriteString(utils.TitleStyle.Render(title) + "\n")
	}
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", utils.MutedStyle.Render(label), utils.TextStyle.Render(value)))
	}

	section("Collections")
	row("Young", fmt.Sprintf("%d", s.YoungCount))
	row("Mixed", fmt.Sprintf("%d", s.MixedCount))
	row("Full", fmt.Sprintf("%d", s.FullCount))
	row("Evacuation failures", fmt.Sprintf("%d", s.EvacFailures))
	b.WriteString("\n")

	section("Pauses")
	row("P99", fmt.Sprintf("%.1fms", s.Pauses.P99Ms))
	row("Max", fmt.Sprintf("%.1fms", s.Pauses.MaxMs))
	row("Long pauses", fmt.Sprintf("%d", s.Pauses.LongCount))
	row("GC time ratio", fmt.Sprintf("%.1f%%", s.GCTimeRatio*100))
	b.WriteString("\n")

	section("Young intervals")
	if s.Young.Samples > 0 {
		row("Median", fmt.Sprintf("%.2fs", s.Young.MedianSec))
		row("P99", fmt.Sprintf("%.2fs", s.Young.P99Sec))
		row("Variability (CV)", fmt.Sprintf("%.2f", s.Young.CV))
	} else {
		row("Samples", "none")
	}
	b.WriteString("\n")

	section("Old generation")
	if s.OldGen.Samples > 0 {
		row("Trend", fmt.Sprintf("%+.1f regions/min", s.OldGen.PerMin))
		row("Range", fmt.Sprintf("%.0f -> %.0f regions", s.OldGen.First, s.OldGen.Last))
		if s.OccupancyPct > 0 {
			row("Occupancy", fmt.Sprintf("%.1f%% of capacity", s.OccupancyPct))
		}
		if mins, ok := s.ProjectedMinutesTo90Pct(); ok {
			row("Projected 90%", fmt.Sprintf("~%.0f min at current rate", mins))
		}
	} else {
		row("Samples", "none")
	}
	b.WriteString("\n")

	section("Metaspace")
	if s.Metaspace.Samples > 0 {
		row("Trend", fmt.Sprintf("%+.2f MB/min", s.Metaspace.PerMin))
		row("Range", fmt.Sprintf("%.1f -> %.1f MB", s.Metaspace.First, s.Metaspace.Last))
		row("Threshold GCs", fmt.Sprintf("%d", s.Metaspace.TriggerCount))
	} else {
		row("Samples", "none")
	}
	b.WriteString("\n")

	section("Humongous / TLAB")
	row("Humongous allocs", fmt.Sprintf("%d (%.1f/min)", s.Humongous.Count, s.Humongous.PerMin))
	if s.TLAB.Available {
		row("TLAB slow allocs", fmt.Sprintf("%d (%.1f/min)", s.TLAB.TotalSlow, s.TLAB.SlowPerMin))
	} else {
		row("TLAB slow allocs", "no data (enable -Xlog:gc+tlab=debug)")
	}

	return b.String()
}

func (m *Model) renderTrends() string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}

	var sections []string

	sections = append(sections, utils.TitleStyle.Render("Old regions after collection"))
	sections = append(sections, trendChart(m.metrics.OldGen.Points, "", width, markerFor(m.metrics.OldGen.PerMin)))

	sections = append(sections, "", utils.TitleStyle.Render("Metaspace used (MB)"))
	sections = append(sections, trendChart(m.metrics.Metaspace.Points, "MB", width, markerFor(m.metrics.Metaspace.PerMin)))

	return strings.Join(sections, "\n")
}

func markerFor(perMin float64) string {
	if perMin > 0 {
		return utils.WarningStyle.Render("●")
	}
	return utils.GoodStyle.Render("●")
}

func trendChart(points []triage.TrendPoint, unit string, width int, icon string) string {
	if len(points) == 0 {
		return utils.MutedStyle.Render("No samples in window")
	}

	dataPoints := make([]utils.DataPoint, len(points))
	for i, p := range points {
		dataPoints[i] = utils.DataPoint{
			Value:     p.Value,
			UptimeSec: p.Uptime,
			Icon:      icon,
		}
	}

	config := utils.ChartConfig{
		Width:  width,
		Height: utils.ChartHeight,
		Styles: chartStyles(),
	}

	return utils.CreatePlot(dataPoints, unit, config)
}
