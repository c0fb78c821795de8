package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	none := &Report{Findings: []Finding{
		{SuspectID: SuspectTLABExhaustion, Title: "TLAB exhaustion", Status: StatusNone},
	}}
	assert.Equal(t, "NO STRONG SIGNAL", none.Summary())

	single := &Report{Findings: []Finding{
		{SuspectID: SuspectLongPauses, Title: "Long STW pauses", Status: StatusDetected, Confidence: ConfidenceHigh},
	}}
	assert.Equal(t, "DETECTED - Long STW pauses (high confidence)", single.Summary())

	multi := &Report{Findings: []Finding{
		{SuspectID: SuspectLongPauses, Title: "Long STW pauses", Status: StatusDetected},
		{SuspectID: SuspectRetentionGrowth, Title: "Retention / leak-like growth", Status: StatusSuspected},
	}}
	assert.Equal(t, "2 issues flagged: Long STW pauses, Retention / leak-like growth", multi.Summary())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   int
	}{
		{
			name:   "nothing fired",
			report: Report{Findings: []Finding{{SuspectID: SuspectTLABExhaustion, Status: StatusNone}}},
			want:   0,
		},
		{
			name:   "ordinary detection",
			report: Report{Findings: []Finding{{SuspectID: SuspectLongPauses, Status: StatusDetected, Confidence: ConfidenceHigh}}},
			want:   1,
		},
		{
			name:   "wrong collector is critical",
			report: Report{Findings: []Finding{{SuspectID: SuspectWrongCollector, Status: StatusDetected, Confidence: ConfidenceHigh}}},
			want:   2,
		},
		{
			name:   "high-confidence retention is critical",
			report: Report{Findings: []Finding{{SuspectID: SuspectRetentionGrowth, Status: StatusSuspected, Confidence: ConfidenceHigh}}},
			want:   2,
		},
		{
			name:   "medium retention is not critical",
			report: Report{Findings: []Finding{{SuspectID: SuspectRetentionGrowth, Status: StatusSuspected, Confidence: ConfidenceMedium}}},
			want:   1,
		},
		{
			name:   "high-confidence allocation pressure is critical",
			report: Report{Findings: []Finding{{SuspectID: SuspectAllocationPressure, Status: StatusDetected, Confidence: ConfidenceHigh}}},
			want:   2,
		},
		{
			name: "occupancy past 90 percent escalates",
			report: Report{
				Findings:     []Finding{{SuspectID: SuspectLongPauses, Status: StatusDetected, Confidence: ConfidenceLow}},
				OccupancyPct: 93,
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.ExitCode())
		})
	}
}

func sampleReport() *Report {
	return &Report{
		Findings: []Finding{
			{
				SuspectID:  SuspectRetentionGrowth,
				Title:      "Retention / leak-like growth",
				Status:     StatusSuspected,
				Confidence: ConfidenceMedium,
				Evidence:   []string{"old-gen trend 7.5 regions/min (threshold 5.0 regions/min)"},
				NextSteps:  []string{"jcmd <pid> GC.class_histogram (check dominant classes)"},
			},
			{
				SuspectID: SuspectTLABExhaustion,
				Title:     "TLAB exhaustion",
				Status:    StatusNone,
				Evidence:  []string{"no TLAB data available: the log contains no gc+tlab debug lines"},
			},
		},
		Window:    Window{StartUptime: 0, EndUptime: 1200},
		Collector: CollectorInfo{Name: "G1"},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleReport())

	assert.Contains(t, out, "# GC Triage Report")
	assert.Contains(t, out, "**Summary:** SUSPECTED - Retention / leak-like growth (medium confidence)")
	assert.Contains(t, out, "### Retention / leak-like growth - SUSPECTED")
	assert.Contains(t, out, "- old-gen trend 7.5 regions/min")
	assert.Contains(t, out, "Collector: G1")
	assert.NotContains(t, out, "Note:")
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleReport())

	assert.Contains(t, out, "GC TRIAGE REPORT")
	assert.Contains(t, out, "[SUSPECTED] Retention / leak-like growth (medium confidence)")
	assert.Contains(t, out, "[NONE     ] TLAB exhaustion")
	assert.Contains(t, out, "Window:    0.0s to 1200.0s uptime (20m 0s)")
}

func TestRenderDispatch(t *testing.T) {
	r := sampleReport()

	for _, format := range []string{"md", "txt", "cli"} {
		out, err := Render(r, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, out)
	}

	_, err := Render(r, "json")
	require.Error(t, err)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, RenderText(r), RenderText(r))
	assert.Equal(t, RenderMarkdown(r), RenderMarkdown(r))
}
