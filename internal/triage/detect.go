package triage

import "fmt"

// A detector is a pure function of the aggregated metrics and the threshold
// configuration. A nil result means the suspect did not fire and produces no
// entry in the finding set.
type detector func(m *Metrics, th Thresholds) *Finding

// catalog fixes both the set of suspects and their reporting order.
var catalog = []detector{
	detectAllocationPressure,
	detectHumongousPressure,
	detectLongPauses,
	detectGCStarvation,
	detectMetaspaceLeak,
	detectTLABExhaustion,
	detectWrongCollector,
	detectRetentionGrowth,
}

// RunDetectors evaluates every suspect against the metrics and assembles the
// report. Detector order is the fixed catalog order regardless of severity.
func RunDetectors(m *Metrics, th Thresholds) *Report {
	report := &Report{
		Window:       m.Window,
		Collector:    m.Collector,
		OccupancyPct: m.OccupancyPct,
	}
	if m.Window.Requested && m.Window.Clamped {
		report.Note = "requested tail window exceeds the log span; analyzed the full log"
	}

	for _, detect := range catalog {
		if f := detect(m, th); f != nil {
			report.Findings = append(report.Findings, *f)
		}
	}
	return report
}

func detectAllocationPressure(m *Metrics, th Thresholds) *Finding {
	intervalHit := m.Young.Samples >= 1 && m.Young.MedianSec < th.YoungIntervalSec
	ratioHit := m.GCTimeRatio > th.GCTimeRatio
	if !intervalHit && !ratioHit {
		return nil
	}

	// High confidence needs both signals plus a dense, consistent sample;
	// a single firing condition caps at medium however many samples back it.
	confidence := ConfidenceLow
	switch {
	case intervalHit && ratioHit && m.Young.Samples >= denseSampleCount && m.Young.CV <= 1.0:
		confidence = ConfidenceHigh
	case m.Young.Samples >= mediumSampleCount:
		confidence = ConfidenceMedium
	}

	evidence := []string{
		fmt.Sprintf("young-GC median interval %.2fs (threshold %.2fs) over %d intervals", m.Young.MedianSec, th.YoungIntervalSec, m.Young.Samples),
		fmt.Sprintf("young-GC p99 interval %.2fs", m.Young.P99Sec),
		fmt.Sprintf("GC time is %.1f%% of window uptime (threshold %.1f%%)", m.GCTimeRatio*100, th.GCTimeRatio*100),
	}

	return &Finding{
		SuspectID:  SuspectAllocationPressure,
		Title:      "Allocation pressure / GC thrash",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence:   evidence,
		NextSteps: []string{
			"Short JFR capture with allocation profiling (jdk.ObjectAllocationSample)",
			"jcmd <pid> GC.class_histogram to find dominant allocation sites",
			"Review -Xmx / -XX:G1NewSizePercent against the observed allocation rate",
		},
	}
}

func detectHumongousPressure(m *Metrics, th Thresholds) *Finding {
	if m.Humongous.Count == 0 || m.Humongous.PerMin <= th.HumongousPerMin || m.Humongous.CoincidentSpikes == 0 {
		return nil
	}

	confidence := ConfidenceMedium
	if m.Humongous.CoincidentSpikes >= highLongPauses {
		confidence = ConfidenceHigh
	}
	if m.Humongous.Count < mediumSampleCount {
		confidence = ConfidenceLow
	}

	evidence := []string{
		fmt.Sprintf("%d humongous allocations (%.1f/min, threshold %.1f/min)", m.Humongous.Count, m.Humongous.PerMin, th.HumongousPerMin),
		fmt.Sprintf("%d allocations followed by a pause spike within %.0fs", m.Humongous.CoincidentSpikes, humongousLagSec),
	}
	if m.Humongous.PeakRegions > 0 {
		evidence = append(evidence, fmt.Sprintf("peak humongous footprint %d regions", m.Humongous.PeakRegions))
	}

	return &Finding{
		SuspectID:  SuspectHumongousPressure,
		Title:      "Humongous allocation pressure",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence:   evidence,
		NextSteps: []string{
			"Locate allocations larger than half a region (JFR jdk.ObjectAllocationSample, size filter)",
			"Consider a larger region size: -XX:G1HeapRegionSize=<2x current>",
		},
	}
}

func detectLongPauses(m *Metrics, th Thresholds) *Finding {
	if m.Pauses.LongCount == 0 || m.Pauses.P99Ms < th.LongPauseMs {
		return nil
	}

	confidence := ConfidenceLow
	switch {
	case m.Pauses.LongCount >= highLongPauses:
		confidence = ConfidenceHigh
	case m.Pauses.Count >= mediumSampleCount:
		confidence = ConfidenceMedium
	}

	return &Finding{
		SuspectID:  SuspectLongPauses,
		Title:      "Long STW pauses",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence: []string{
			fmt.Sprintf("%d pauses at or above %.0fms", m.Pauses.LongCount, th.LongPauseMs),
			fmt.Sprintf("pause p99 %.1fms, max %.1fms over %d pauses", m.Pauses.P99Ms, m.Pauses.MaxMs, m.Pauses.Count),
		},
		NextSteps: []string{
			"JFR recording covering GC and safepoint phases",
			"Increase logging: -Xlog:gc*,safepoint*",
			"Thread dump during a long pause if reproducible",
		},
	}
}

func detectGCStarvation(m *Metrics, th Thresholds) *Finding {
	if m.Gap.MaxGapSec <= th.MaxGCGapSec || m.Gap.StartOccupancyPct < th.GapOccupancyPct {
		return nil
	}

	confidence := ConfidenceMedium
	if m.Gap.MaxGapSec >= 2*th.MaxGCGapSec && m.Gap.StartOccupancyPct >= th.HighOccupancyPct {
		confidence = ConfidenceHigh
	}
	if m.Gap.Samples < mediumSampleCount {
		confidence = ConfidenceLow
	}

	return &Finding{
		SuspectID:  SuspectGCStarvation,
		Title:      "GC starvation / finalizer backlog",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence: []string{
			fmt.Sprintf("%.0fs without any GC starting at uptime %.0fs (threshold %.0fs)", m.Gap.MaxGapSec, m.Gap.GapStartUptime, th.MaxGCGapSec),
			fmt.Sprintf("old generation at %.1f%% of heap capacity when the gap began", m.Gap.StartOccupancyPct),
		},
		NextSteps: []string{
			"jcmd <pid> GC.finalizer_info to inspect the finalizer queue",
			"jstack during the quiet period; look for blocked reference-handler threads",
		},
	}
}

func detectMetaspaceLeak(m *Metrics, th Thresholds) *Finding {
	ms := m.Metaspace
	if ms.Samples < 2 || ms.PerMin <= th.MetaspaceMBPerMin {
		return nil
	}
	// Sustained growth, not a single spike: with enough samples the fit must
	// correlate strongly.
	if ms.Samples >= DefaultMinTrendPoints && ms.Correlation < 0.8 {
		return nil
	}

	confidence := ConfidenceLow
	switch {
	case ms.Samples >= mediumSampleCount && ms.TriggerCount >= 1:
		confidence = ConfidenceHigh
	case ms.Samples >= DefaultMinTrendPoints:
		confidence = ConfidenceMedium
	}

	evidence := []string{
		fmt.Sprintf("metaspace growing %.2f MB/min (threshold %.2f MB/min) across %d samples", ms.PerMin, th.MetaspaceMBPerMin, ms.Samples),
		fmt.Sprintf("used %.1f MB -> %.1f MB over %.1f min", ms.First, ms.Last, ms.SpanMinutes),
	}
	if ms.TriggerCount > 0 {
		evidence = append(evidence, fmt.Sprintf("%d metadata-GC-threshold triggered collections in window", ms.TriggerCount))
	}

	return &Finding{
		SuspectID:  SuspectMetaspaceLeak,
		Title:      "Metaspace leak",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence:   evidence,
		NextSteps: []string{
			"jcmd <pid> VM.classloader_stats to spot classloader churn",
			"Check for repeated dynamic class generation (proxies, scripting engines)",
		},
	}
}

func detectTLABExhaustion(m *Metrics, th Thresholds) *Finding {
	if !m.TLAB.Available {
		// Explicit, distinguishable non-finding: absence of gc+tlab=debug
		// output is an expected state, never a fabricated zero.
		return &Finding{
			SuspectID:  SuspectTLABExhaustion,
			Title:      "TLAB exhaustion",
			Status:     StatusNone,
			Confidence: ConfidenceLow,
			Evidence:   []string{"no TLAB data available: the log contains no gc+tlab debug lines"},
			NextSteps:  []string{"Re-run with -Xlog:gc+tlab=debug to capture slow-path allocation counts"},
		}
	}
	if m.TLAB.SlowPerMin <= th.TLABSlowPerMin {
		return nil
	}

	confidence := ConfidenceLow
	switch {
	case m.TLAB.Samples >= 10:
		confidence = ConfidenceHigh
	case m.TLAB.Samples >= DefaultMinTrendPoints:
		confidence = ConfidenceMedium
	}

	return &Finding{
		SuspectID:  SuspectTLABExhaustion,
		Title:      "TLAB exhaustion",
		Status:     StatusDetected,
		Confidence: confidence,
		Evidence: []string{
			fmt.Sprintf("%.0f slow-path allocations/min (threshold %.0f/min) across %d TLAB samples", m.TLAB.SlowPerMin, th.TLABSlowPerMin, m.TLAB.Samples),
		},
		NextSteps: []string{
			"Raise -XX:TLABSize or verify -XX:+ResizeTLAB is enabled",
			"Profile which threads allocate outside their TLAB (JFR jdk.ObjectAllocationOutsideTLAB)",
		},
	}
}

func detectWrongCollector(m *Metrics, _ Thresholds) *Finding {
	if m.Collector.Name != "Serial" && m.Collector.Name != "Parallel" {
		return nil
	}

	// A binary fact read straight off the log, so confidence is always high.
	return &Finding{
		SuspectID:  SuspectWrongCollector,
		Title:      "Wrong collector choice",
		Status:     StatusDetected,
		Confidence: ConfidenceHigh,
		Evidence: []string{
			fmt.Sprintf("collector identity line names %s, a legacy collector family", m.Collector.Name),
		},
		NextSteps: []string{
			"Switch to G1 (-XX:+UseG1GC) or a low-pause collector suited to the heap size",
			"Re-capture the log after the switch; this report only supports G1 semantics",
		},
	}
}

// How many leading and trailing trend samples appear verbatim in retention
// evidence; the middle is elided for long windows.
const retentionEvidenceEdge = 3

func detectRetentionGrowth(m *Metrics, th Thresholds) *Finding {
	og := m.OldGen
	if og.Samples < 2 || og.PerMin <= th.OldTrendThreshold {
		return nil
	}

	// High confidence requires a monotone floor AND at least one observed
	// mixed or full cycle; growth that never survived a reclaim attempt is a
	// weaker signal. Never DETECTED: the engine shows a trend consistent
	// with a leak, it does not prove one.
	confidence := ConfidenceMedium
	if og.Samples >= mediumSampleCount && og.MonotonicFloor && (m.MixedCount+m.FullCount) >= 1 {
		confidence = ConfidenceHigh
	}
	if og.Samples < DefaultMinTrendPoints {
		confidence = ConfidenceLow
	}

	evidence := []string{
		fmt.Sprintf("old-gen trend %.1f regions/min (threshold %.1f regions/min)", og.PerMin, th.OldTrendThreshold),
		fmt.Sprintf("delta %+.0f regions over %.1f min across %d collections", og.Delta, og.SpanMinutes, og.Samples),
		fmt.Sprintf("%d mixed and %d full collections inside the window", m.MixedCount, m.FullCount),
	}
	evidence = append(evidence, trendSampleLines(og.Points)...)
	if projected, ok := m.ProjectedMinutesTo90Pct(); ok {
		evidence = append(evidence, fmt.Sprintf("projected to reach 90%% of heap capacity in %.0f min at current rate", projected))
	}

	return &Finding{
		SuspectID:  SuspectRetentionGrowth,
		Title:      "Retention / leak-like growth",
		Status:     StatusSuspected,
		Confidence: confidence,
		Evidence:   evidence,
		NextSteps: []string{
			"jcmd <pid> GC.class_histogram (check dominant classes)",
			"Short JFR capture (10-30 min, allocations + GC phases)",
			"Heap dump + Eclipse MAT analysis if the trend persists past warmup",
		},
	}
}

// trendSampleLines renders windowed samples with their literal line numbers,
// eliding the middle of long runs so evidence stays readable.
func trendSampleLines(points []TrendPoint) []string {
	format := func(p TrendPoint) string {
		return fmt.Sprintf("line %d: %.0f regions at %.1f min", p.Line, p.Value, p.Uptime/60)
	}

	var lines []string
	if len(points) <= 2*retentionEvidenceEdge {
		for _, p := range points {
			lines = append(lines, format(p))
		}
		return lines
	}
	for _, p := range points[:retentionEvidenceEdge] {
		lines = append(lines, format(p))
	}
	lines = append(lines, fmt.Sprintf("... %d further samples elided ...", len(points)-2*retentionEvidenceEdge))
	for _, p := range points[len(points)-retentionEvidenceEdge:] {
		lines = append(lines, format(p))
	}
	return lines
}
