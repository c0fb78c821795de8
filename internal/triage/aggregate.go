package triage

import (
	"slices"

	"github.com/jvmtools/gctriage/utils"
)

// Pause spikes co-occurring with a humongous allocation are counted inside
// this lag, in seconds of uptime.
const humongousLagSec = 5.0

// IntervalStats summarizes young-GC inter-arrival times.
type IntervalStats struct {
	MedianSec float64
	P99Sec    float64
	Samples   int
	CV        float64 // squared coefficient of variation, consistency signal
}

// PauseStats summarizes the stop-the-world pause distribution across all GC
// event types.
type PauseStats struct {
	P99Ms     float64
	MaxMs     float64
	Count     int
	LongCount int // pauses >= the long-pause threshold, inclusive
}

// TrendPoint is one windowed sample feeding a trend fit, kept with its line
// number so evidence can cite the literal source.
type TrendPoint struct {
	Line   int
	Uptime float64 // seconds
	Value  float64
}

// TrendStats is a linear growth fit over windowed samples. PerMin comes from
// a least-squares fit when three or more samples exist and from the
// first-to-last delta when exactly two do; both are deterministic.
type TrendStats struct {
	PerMin         float64
	Delta          float64
	First, Last    float64
	SpanMinutes    float64
	Samples        int
	MonotonicFloor bool // no sample ever dropped below its predecessor
	Correlation    float64
	Points         []TrendPoint
}

// MetaspaceStats extends the trend with the number of metadata-GC-threshold
// triggered collections seen in the window.
type MetaspaceStats struct {
	TrendStats
	TriggerCount int
}

type HumongousStats struct {
	Count            int
	PerMin           float64
	PeakRegions      int
	CoincidentSpikes int // humongous allocs followed by a pause spike within the lag
}

// TLABStats distinguishes "no TLAB debug data anywhere in the file" from a
// genuine zero slow-allocation rate. Available is file-scoped, not
// window-scoped.
type TLABStats struct {
	Available  bool
	Samples    int
	TotalSlow  int
	SlowPerMin float64
}

type GapStats struct {
	MaxGapSec         float64
	GapStartUptime    float64
	StartOccupancyPct float64 // old-gen share of capacity at gap start; 0 when unknown
	Samples           int
}

type CollectorInfo struct {
	Name    string
	Assumed bool // no identity line seen; G1 assumed
}

// Metrics is the immutable per-category summary computed exactly once per
// run. Detectors consume it together with a Thresholds value and nothing
// else.
type Metrics struct {
	Window    Window
	Heap      HeapInfo
	Collector CollectorInfo

	Young     IntervalStats
	Pauses    PauseStats
	OldGen    TrendStats
	Metaspace MetaspaceStats
	Humongous HumongousStats
	TLAB      TLABStats
	Gap       GapStats

	YoungCount   int
	MixedCount   int
	FullCount    int
	EvacFailures int

	GCTimeRatio  float64 // share of window uptime spent paused
	OccupancyPct float64 // old-gen share of capacity after the last collection; 0 when unknown
}

// Aggregate runs the single metric pass over the windowed events. The
// threshold set is used only for the fixed long-pause cut; everything else
// about detection lives in the detector layer.
func Aggregate(events []Event, win Window, s *Stream, th Thresholds) *Metrics {
	m := &Metrics{
		Window:    win,
		Heap:      s.Heap,
		Collector: CollectorInfo{Name: "G1", Assumed: true},
	}

	var (
		youngUptimes []float64
		pauses       []float64
		oldPoints    []TrendPoint
		metaPoints   []TrendPoint
		humongous    []Event
		gcEvents     []Event
		totalPauseMs float64
	)

	for _, ev := range events {
		switch ev.Category {
		case YoungGC:
			m.YoungCount++
			youngUptimes = append(youngUptimes, ev.Uptime)
		case MixedGC:
			m.MixedCount++
		case FullGC:
			m.FullCount++
		case HumongousAlloc:
			humongous = append(humongous, ev)
		case EvacFailure:
			m.EvacFailures++
		case MetaspaceSample:
			metaPoints = append(metaPoints, TrendPoint{Line: ev.Line, Uptime: ev.Uptime, Value: ev.MetaspaceUsedMB})
			if ev.MetadataTriggered {
				m.Metaspace.TriggerCount++
			}
		case TLABSample:
			m.TLAB.Samples++
			m.TLAB.TotalSlow += ev.TLABSlowAllocs
		case CollectorIdentity:
			m.Collector = CollectorInfo{Name: ev.CollectorName}
		}

		if ev.IsGC() {
			gcEvents = append(gcEvents, ev)
			pauses = append(pauses, ev.PauseMs)
			totalPauseMs += ev.PauseMs
			if ev.PauseMs >= th.LongPauseMs {
				m.Pauses.LongCount++
			}
			if ev.HasOldRegions {
				oldPoints = append(oldPoints, TrendPoint{Line: ev.OldRegionsLine, Uptime: ev.Uptime, Value: float64(ev.OldRegionsAfter)})
			}
			if ev.HumongousRegions > m.Humongous.PeakRegions {
				m.Humongous.PeakRegions = ev.HumongousRegions
			}
		}
	}

	windowMinutes := (win.EndUptime - win.StartUptime) / 60

	m.Young = intervalStats(youngUptimes)
	m.Pauses.Count = len(pauses)
	if len(pauses) > 0 {
		sorted := slices.Clone(pauses)
		slices.Sort(sorted)
		m.Pauses.P99Ms = percentile(sorted, 99)
		m.Pauses.MaxMs = sorted[len(sorted)-1]
	}

	m.OldGen = fitTrend(oldPoints)
	m.Metaspace.TrendStats = fitTrend(metaPoints)

	m.Humongous.Count = len(humongous)
	if windowMinutes > 0 {
		m.Humongous.PerMin = float64(len(humongous)) / windowMinutes
	}
	m.Humongous.CoincidentSpikes = coincidentSpikes(humongous, gcEvents, m.Pauses.P99Ms)

	// TLAB availability is judged against the entire file so a window that
	// happens to exclude all TLAB lines is not mistaken for a missing flag.
	for _, ev := range s.Events {
		if ev.Category == TLABSample {
			m.TLAB.Available = true
			break
		}
	}
	if m.TLAB.Available && windowMinutes > 0 {
		m.TLAB.SlowPerMin = float64(m.TLAB.TotalSlow) / windowMinutes
	}

	m.Gap = gapStats(gcEvents, s.Heap)

	if win.EndUptime > win.StartUptime {
		m.GCTimeRatio = (totalPauseMs / 1000) / (win.EndUptime - win.StartUptime)
	}

	capacity := s.Heap.CapacityRegions()
	if capacity > 0 && m.OldGen.Samples > 0 {
		m.OccupancyPct = m.OldGen.Last / capacity * 100
	}

	return m
}

// ProjectedMinutesTo90Pct linearly extrapolates from the current old-gen
// occupancy and growth rate to 90% of heap capacity. Returns ok=false when
// the geometry is unknown or the trend is flat or shrinking.
func (m *Metrics) ProjectedMinutesTo90Pct() (float64, bool) {
	capacity := m.Heap.CapacityRegions()
	if capacity <= 0 || m.OldGen.PerMin <= 0 || m.OldGen.Samples == 0 {
		return 0, false
	}
	remaining := 0.9*capacity - m.OldGen.Last
	if remaining <= 0 {
		return 0, true // already at or past the mark
	}
	return remaining / m.OldGen.PerMin, true
}

func intervalStats(uptimes []float64) IntervalStats {
	var stats IntervalStats
	if len(uptimes) < 2 {
		return stats
	}

	intervals := make([]float64, 0, len(uptimes)-1)
	for i := 1; i < len(uptimes); i++ {
		intervals = append(intervals, uptimes[i]-uptimes[i-1])
	}
	stats.Samples = len(intervals)

	mean := utils.CalculateMean(intervals)
	stats.CV = utils.CalculateNormalizedVariance(intervals, mean)

	slices.Sort(intervals)
	stats.MedianSec = percentile(intervals, 50)
	stats.P99Sec = percentile(intervals, 99)
	return stats
}

// fitTrend computes the growth rate in units/minute. A least-squares fit over
// all samples when three or more exist; the first-to-last delta over elapsed
// minutes when exactly two do.
func fitTrend(points []TrendPoint) TrendStats {
	stats := TrendStats{Points: points, Samples: len(points), MonotonicFloor: true}
	if len(points) == 0 {
		return stats
	}

	stats.First = points[0].Value
	stats.Last = points[len(points)-1].Value
	stats.Delta = stats.Last - stats.First
	stats.SpanMinutes = (points[len(points)-1].Uptime - points[0].Uptime) / 60

	for i := 1; i < len(points); i++ {
		if points[i].Value < points[i-1].Value {
			stats.MonotonicFloor = false
			break
		}
	}

	switch {
	case len(points) == 2:
		if stats.SpanMinutes > 0 {
			stats.PerMin = stats.Delta / stats.SpanMinutes
			stats.Correlation = 1
		}
	case len(points) > 2:
		x := make([]float64, len(points))
		y := make([]float64, len(points))
		for i, p := range points {
			x[i] = p.Uptime / 60
			y[i] = p.Value
		}
		stats.PerMin, stats.Correlation = utils.LinearRegression(x, y)
	}
	return stats
}

// coincidentSpikes counts humongous allocations followed, within the lag, by
// a pause at or above the p99 of the window's pause distribution.
func coincidentSpikes(humongous, gcEvents []Event, spikeMs float64) int {
	if spikeMs <= 0 {
		return 0
	}
	count := 0
	for _, hu := range humongous {
		for _, gc := range gcEvents {
			if gc.Uptime < hu.Uptime {
				continue
			}
			if gc.Uptime > hu.Uptime+humongousLagSec {
				break
			}
			if gc.PauseMs >= spikeMs {
				count++
				break
			}
		}
	}
	return count
}

func gapStats(gcEvents []Event, heap HeapInfo) GapStats {
	var stats GapStats
	if len(gcEvents) < 2 {
		return stats
	}
	stats.Samples = len(gcEvents) - 1

	capacity := heap.CapacityRegions()
	for i := 1; i < len(gcEvents); i++ {
		gap := gcEvents[i].Uptime - gcEvents[i-1].Uptime
		if gap > stats.MaxGapSec {
			stats.MaxGapSec = gap
			stats.GapStartUptime = gcEvents[i-1].Uptime
			stats.StartOccupancyPct = 0
			if capacity > 0 && gcEvents[i-1].HasOldRegions {
				stats.StartOccupancyPct = float64(gcEvents[i-1].OldRegionsAfter) / capacity * 100
			}
		}
	}
	return stats
}

// percentile interpolates the nth percentile of an ascending-sorted slice.
func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := float64(pct) / 100 * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
