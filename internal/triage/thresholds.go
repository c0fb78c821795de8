package triage

// Built-in detector defaults. Only the tail window and the old-gen trend
// threshold are exposed as flags; the rest are fixed but live in the
// Thresholds struct so tests can exercise boundary values directly.
const (
	// Retention / old-gen trend
	DefaultOldTrendThreshold = 5.0 // regions/min

	// Long STW pauses
	DefaultLongPauseMs = 1000.0

	// Allocation pressure
	DefaultYoungIntervalSec = 1.0
	DefaultGCTimeRatio      = 0.10

	// Metaspace growth
	DefaultMetaspaceMBPerMin = 1.0

	// Humongous allocation pressure
	DefaultHumongousPerMin = 2.0

	// TLAB slow-path allocation
	DefaultTLABSlowPerMin = 50.0

	// GC starvation
	DefaultMaxGCGapSec    = 60.0
	DefaultGapOccupancy   = 70.0 // percent of heap capacity at gap start
	DefaultHighOccupancy  = 90.0 // percent; CRITICAL territory
	DefaultMinTrendPoints = 3    // below this, confidence degrades

	// Sample counts that separate confident verdicts from sparse-data ones
	denseSampleCount  = 20
	mediumSampleCount = 5
	highLongPauses    = 3
)

// Thresholds is the explicit configuration passed into the detector layer.
// It is never ambient: every detector takes it as a parameter.
type Thresholds struct {
	TailWindowMinutes float64 // <= 0 means analyze the entire file
	OldTrendThreshold float64 // regions/min

	LongPauseMs       float64
	YoungIntervalSec  float64
	GCTimeRatio       float64
	MetaspaceMBPerMin float64
	HumongousPerMin   float64
	TLABSlowPerMin    float64
	MaxGCGapSec       float64
	GapOccupancyPct   float64
	HighOccupancyPct  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OldTrendThreshold: DefaultOldTrendThreshold,
		LongPauseMs:       DefaultLongPauseMs,
		YoungIntervalSec:  DefaultYoungIntervalSec,
		GCTimeRatio:       DefaultGCTimeRatio,
		MetaspaceMBPerMin: DefaultMetaspaceMBPerMin,
		HumongousPerMin:   DefaultHumongousPerMin,
		TLABSlowPerMin:    DefaultTLABSlowPerMin,
		MaxGCGapSec:       DefaultMaxGCGapSec,
		GapOccupancyPct:   DefaultGapOccupancy,
		HighOccupancyPct:  DefaultHighOccupancy,
	}
}
