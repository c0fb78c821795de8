package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jvmtools/gctriage/utils"
)

// Render produces the report in the requested output format. Renderers
// consume only the Report; every figure they print was fixed during
// detection, so two renders of the same report are byte-identical.
func Render(r *Report, format string) (string, error) {
	switch format {
	case "md":
		return RenderMarkdown(r), nil
	case "txt":
		return RenderText(r), nil
	case "cli":
		return RenderCLI(r), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want md, txt, cli, or tui)", format)
	}
}

func windowSpan(w Window) string {
	span := time.Duration((w.EndUptime - w.StartUptime) * float64(time.Second))
	return utils.FormatDuration(span)
}

func collectorLine(c CollectorInfo) string {
	if c.Assumed {
		return fmt.Sprintf("%s (assumed, no collector line in log)", c.Name)
	}
	return c.Name
}

// RenderMarkdown writes the full triage report as Markdown.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# GC Triage Report\n\n")
	fmt.Fprintf(&b, "**Summary:** %s\n\n", r.Summary())

	fmt.Fprintf(&b, "- Collector: %s\n", collectorLine(r.Collector))
	fmt.Fprintf(&b, "- Window: %.1fs to %.1fs uptime (%s)\n",
		r.Window.StartUptime, r.Window.EndUptime, windowSpan(r.Window))
	if r.OccupancyPct > 0 {
		fmt.Fprintf(&b, "- Old-gen occupancy: %.1f%% of heap capacity\n", r.OccupancyPct)
	}
	if r.Note != "" {
		fmt.Fprintf(&b, "- Note: %s\n", r.Note)
	}
	b.WriteString("\n")

	b.WriteString("## Findings\n\n")
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "### %s - %s\n\n", f.Title, f.Status)
		if f.Status != StatusNone {
			fmt.Fprintf(&b, "Confidence: %s\n\n", f.Confidence)
		}
		if len(f.Evidence) > 0 {
			b.WriteString("Evidence:\n\n")
			for _, e := range f.Evidence {
				fmt.Fprintf(&b, "- %s\n", e)
			}
			b.WriteString("\n")
		}
		if len(f.NextSteps) > 0 {
			b.WriteString("Next steps:\n\n")
			for _, s := range f.NextSteps {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderText writes the report as plain text with no styling, suitable for
// piping or attaching to a ticket.
func RenderText(r *Report) string {
	var b strings.Builder

	b.WriteString("GC TRIAGE REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Summary:   %s\n", r.Summary())
	fmt.Fprintf(&b, "Collector: %s\n", collectorLine(r.Collector))
	fmt.Fprintf(&b, "Window:    %.1fs to %.1fs uptime (%s)\n",
		r.Window.StartUptime, r.Window.EndUptime, windowSpan(r.Window))
	if r.OccupancyPct > 0 {
		fmt.Fprintf(&b, "Occupancy: %.1f%% of heap capacity\n", r.OccupancyPct)
	}
	if r.Note != "" {
		fmt.Fprintf(&b, "Note:      %s\n", r.Note)
	}
	b.WriteString("\n")

	for _, f := range r.Findings {
		if f.Status == StatusNone {
			fmt.Fprintf(&b, "[%-9s] %s\n", f.Status, f.Title)
		} else {
			fmt.Fprintf(&b, "[%-9s] %s (%s confidence)\n", f.Status, f.Title, f.Confidence)
		}
		for _, e := range f.Evidence {
			fmt.Fprintf(&b, "    evidence: %s\n", e)
		}
		for _, s := range f.NextSteps {
			fmt.Fprintf(&b, "    next: %s\n", s)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderCLI writes a styled terminal report.
func RenderCLI(r *Report) string {
	var b strings.Builder

	b.WriteString(utils.TitleStyle.Render("GC Triage") + "\n")
	b.WriteString(utils.MutedStyle.Render(strings.Repeat("─", 60)) + "\n\n")

	b.WriteString(summaryStyle(r).Render(r.Summary()) + "\n\n")

	b.WriteString(utils.MutedStyle.Render(fmt.Sprintf("Collector: %s  |  Window: %.1fs-%.1fs (%s)",
		collectorLine(r.Collector), r.Window.StartUptime, r.Window.EndUptime, windowSpan(r.Window))) + "\n")
	if r.OccupancyPct > 0 {
		occStyle := utils.TextStyle
		if r.OccupancyPct > 90 {
			occStyle = utils.CriticalStyle
		}
		b.WriteString(occStyle.Render(fmt.Sprintf("Old-gen occupancy: %.1f%%", r.OccupancyPct)) + "\n")
	}
	if r.Note != "" {
		b.WriteString(utils.WarningStyle.Render(r.Note) + "\n")
	}
	b.WriteString("\n")

	for _, f := range r.Findings {
		b.WriteString(fmt.Sprintf("%s %s\n", statusBadge(f), utils.TextStyle.Render(f.Title)))
		if f.Status == StatusNone {
			continue
		}
		for _, e := range f.Evidence {
			b.WriteString(utils.MutedStyle.Render("  • "+e) + "\n")
		}
		for _, s := range f.NextSteps {
			b.WriteString(utils.InfoStyle.Render("  → "+s) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func summaryStyle(r *Report) lipgloss.Style {
	switch r.ExitCode() {
	case 2:
		return utils.CriticalStyle
	case 1:
		return utils.WarningStyle
	default:
		return utils.GoodStyle
	}
}

func statusBadge(f Finding) string {
	switch f.Status {
	case StatusDetected:
		return utils.CriticalStyle.Render(fmt.Sprintf("[%s/%s]", f.Status, f.Confidence))
	case StatusSuspected:
		return utils.WarningStyle.Render(fmt.Sprintf("[%s/%s]", f.Status, f.Confidence))
	default:
		return utils.MutedStyle.Render("[NONE]")
	}
}
