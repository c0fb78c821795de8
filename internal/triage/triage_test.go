package triage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func youngLine(id int, uptime, pauseMs float64) string {
	return fmt.Sprintf("[%.3fs][info][gc] GC(%d) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) %.3fms",
		uptime, id, pauseMs)
}

func oldRegionsLine(id int, uptime float64, before, after int) string {
	return fmt.Sprintf("[%.3fs][info][gc,heap] GC(%d) Old regions: %d->%d", uptime, id, before, after)
}

// leakScenarioLog models a long-running service leaking into the old
// generation: frequent young collections every 0.39s with old regions
// climbing about 7.5 regions/min and no TLAB debug output.
func leakScenarioLog(events int) string {
	var b strings.Builder
	b.WriteString("[0.005s][info][gc] Using G1\n")

	regions := 100
	for i := 0; i < events; i++ {
		uptime := 10.0 + float64(i)*0.39
		b.WriteString(youngLine(i, uptime, 30) + "\n")
		if i%10 == 0 {
			next := 100 + int(7.5*uptime/60)
			b.WriteString(oldRegionsLine(i, uptime, regions, next) + "\n")
			regions = next
		}
	}
	return b.String()
}

func TestAnalyzeLeakScenario(t *testing.T) {
	report, metrics, err := Analyze(strings.NewReader(leakScenarioLog(4320)), DefaultThresholds())
	require.NoError(t, err)

	byID := make(map[string]Finding)
	for _, f := range report.Findings {
		byID[f.SuspectID] = f
	}

	alloc, ok := byID[SuspectAllocationPressure]
	require.True(t, ok)
	assert.Equal(t, StatusDetected, alloc.Status)
	assert.Equal(t, ConfidenceMedium, alloc.Confidence)

	retention, ok := byID[SuspectRetentionGrowth]
	require.True(t, ok)
	assert.Equal(t, StatusSuspected, retention.Status)
	assert.InDelta(t, 7.5, metrics.OldGen.PerMin, 0.3)
	assert.True(t, metrics.OldGen.MonotonicFloor)

	tlab, ok := byID[SuspectTLABExhaustion]
	require.True(t, ok)
	assert.Equal(t, StatusNone, tlab.Status)

	assert.InDelta(t, 0.39, metrics.Young.MedianSec, 0.001)
	assert.Equal(t, 1, report.ExitCode())
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	log := leakScenarioLog(500)

	report1, metrics1, err := Analyze(strings.NewReader(log), DefaultThresholds())
	require.NoError(t, err)
	report2, metrics2, err := Analyze(strings.NewReader(log), DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, report1, report2)
	assert.Equal(t, metrics1, metrics2)
}

func TestAnalyzeOversizedWindowMatchesFullLog(t *testing.T) {
	log := leakScenarioLog(500)

	full, _, err := Analyze(strings.NewReader(log), DefaultThresholds())
	require.NoError(t, err)

	th := DefaultThresholds()
	th.TailWindowMinutes = 600 // far past the ~3 minute data span
	windowed, _, err := Analyze(strings.NewReader(log), th)
	require.NoError(t, err)

	assert.Equal(t, full.Findings, windowed.Findings)
	assert.Empty(t, full.Note)
	assert.NotEmpty(t, windowed.Note)
	assert.True(t, windowed.Window.Clamped)
}

func TestAnalyzeLegacyCollectorIsCritical(t *testing.T) {
	log := strings.Join([]string{
		"[0.005s][info][gc] Using Parallel",
		youngLine(0, 10, 5),
		youngLine(1, 20, 5),
	}, "\n")

	report, _, err := Analyze(strings.NewReader(log), DefaultThresholds())
	require.NoError(t, err)

	var wrong *Finding
	for i := range report.Findings {
		if report.Findings[i].SuspectID == SuspectWrongCollector {
			wrong = &report.Findings[i]
		}
	}
	require.NotNil(t, wrong)
	assert.Equal(t, StatusDetected, wrong.Status)
	assert.Equal(t, ConfidenceHigh, wrong.Confidence)
	assert.Equal(t, 2, report.ExitCode())
}

func TestAnalyzePauseThresholdBoundary(t *testing.T) {
	atThreshold := youngLine(0, 10, 1000.0)
	report, _, err := Analyze(strings.NewReader(atThreshold), DefaultThresholds())
	require.NoError(t, err)

	found := false
	for _, f := range report.Findings {
		if f.SuspectID == SuspectLongPauses {
			found = true
			assert.Equal(t, StatusDetected, f.Status)
		}
	}
	assert.True(t, found, "a pause exactly at the threshold must fire")

	justUnder := youngLine(0, 10, 999.999)
	report, _, err = Analyze(strings.NewReader(justUnder), DefaultThresholds())
	require.NoError(t, err)
	for _, f := range report.Findings {
		assert.NotEqual(t, SuspectLongPauses, f.SuspectID)
	}
	assert.Equal(t, 0, report.ExitCode())
}

func TestAnalyzeTLABExhaustion(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= 12; i++ {
		uptime := float64(i) * 10
		b.WriteString(fmt.Sprintf("[%.3fs][debug][gc,tlab] GC(%d) TLAB totals: thrds: 8  refills: 40 max: 10 slow allocs: 100 max 20 waste: 2.1%%\n",
			uptime, i))
	}

	report, metrics, err := Analyze(strings.NewReader(b.String()), DefaultThresholds())
	require.NoError(t, err)

	assert.True(t, metrics.TLAB.Available)
	assert.Equal(t, 13, metrics.TLAB.Samples)
	assert.InDelta(t, 650.0, metrics.TLAB.SlowPerMin, 0.001)

	var tlab *Finding
	for i := range report.Findings {
		if report.Findings[i].SuspectID == SuspectTLABExhaustion {
			tlab = &report.Findings[i]
		}
	}
	require.NotNil(t, tlab)
	assert.Equal(t, StatusDetected, tlab.Status)
	assert.Equal(t, ConfidenceHigh, tlab.Confidence)
	assert.Equal(t, 1, report.ExitCode())
}

func TestAnalyzeUnsupportedInput(t *testing.T) {
	_, _, err := Analyze(strings.NewReader("application stdout\nnothing gc-shaped here\n"), DefaultThresholds())
	require.ErrorIs(t, err, ErrUnsupportedLog)
}

func TestAnalyzeRestartedJVMLog(t *testing.T) {
	// Two uptime segments appended to the same file; the run must not fail
	// and the window keys off the latest segment.
	log := strings.Join([]string{
		youngLine(0, 100, 5),
		youngLine(1, 200, 5),
		youngLine(0, 10, 5),
		youngLine(1, 50, 5),
	}, "\n")

	_, metrics, err := Analyze(strings.NewReader(log), DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 4, metrics.YoungCount)
	assert.Equal(t, 200.0, metrics.Window.EndUptime)
}
