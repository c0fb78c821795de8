package triage

// Category identifies the semantic kind of a classified log line.
type Category int

const (
	YoungGC Category = iota
	MixedGC
	FullGC
	HumongousAlloc
	EvacFailure
	MetaspaceSample
	TLABSample
	CollectorIdentity
	SafepointMarker
)

var categoryNames = map[Category]string{
	YoungGC:           "young_gc",
	MixedGC:           "mixed_gc",
	FullGC:            "full_gc",
	HumongousAlloc:    "humongous_alloc",
	EvacFailure:       "evac_failure",
	MetaspaceSample:   "metaspace_sample",
	TLABSample:        "tlab_sample",
	CollectorIdentity: "collector_identity",
	SafepointMarker:   "safepoint_marker",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Categories lists every event category in fixed order, for deterministic
// sample-count reporting.
func Categories() []Category {
	return []Category{
		YoungGC, MixedGC, FullGC, HumongousAlloc, EvacFailure,
		MetaspaceSample, TLABSample, CollectorIdentity, SafepointMarker,
	}
}

// Event is one classified occurrence in the log. Uptime is the JVM uptime in
// seconds embedded in the line and is the only timestamp the engine uses.
// Payload fields are meaningful only for the matching category; region
// snapshots are merged in by the stream builder after classification.
type Event struct {
	Uptime   float64
	Category Category
	Line     int

	// Pause events (Young/Mixed/Full)
	PauseMs          float64
	Cause            string
	EvacFailed       bool
	HumongousTrigger bool

	// Region snapshot, attached to the owning pause event
	OldRegionsBefore int
	OldRegionsAfter  int
	OldRegionsLine   int
	HasOldRegions    bool
	HumongousRegions int

	// MetaspaceSample
	MetaspaceUsedMB      float64
	MetaspaceCommittedMB float64
	MetadataTriggered    bool

	// TLABSample
	TLABSlowAllocs int

	// CollectorIdentity
	CollectorName string

	// SafepointMarker
	SafepointTotalMs float64
}

// IsGC reports whether the event is a stop-the-world collection pause.
func (e *Event) IsGC() bool {
	return e.Category == YoungGC || e.Category == MixedGC || e.Category == FullGC
}

// HeapInfo carries heap geometry from the [gc,init] preamble. Both fields are
// zero when the log has no init section, in which case occupancy-based
// figures are reported as unavailable rather than guessed.
type HeapInfo struct {
	RegionSizeMB float64
	MaxHeapMB    float64
}

// CapacityRegions is the heap capacity expressed in G1 regions, or 0 when
// the geometry is unknown.
func (h HeapInfo) CapacityRegions() float64 {
	if h.RegionSizeMB <= 0 || h.MaxHeapMB <= 0 {
		return 0
	}
	return h.MaxHeapMB / h.RegionSizeMB
}
