package triage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jvmtools/gctriage/utils"
)

var (
	// [12.345s] — JVM uptime decoration, present on every unified-logging line
	uptimePattern = regexp.MustCompile(`\[(\d+(?:\.\d+)?)s\]`)

	// Using G1 / Using Serial / Using Parallel / Using The Z Garbage Collector
	collectorPattern = regexp.MustCompile(`Using (Serial|Parallel|G1|Shenandoah|The Z Garbage Collector|Z)\b`)

	// before->after pattern for memory measurements
	beforeAfter = `(\d+[KMGT])->(\d+[KMGT])\((\d+[KMGT])\)`

	// GC(0) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) 5.326ms
	pausePattern = regexp.MustCompile(`GC\((\d+)\)\s+Pause\s+(.+?)\s+` + beforeAfter + `\s+([\d.]+)ms`)

	// GC(7) Old regions: 100->105
	oldRegionsPattern = regexp.MustCompile(`GC\((\d+)\)\s+Old regions:\s+(\d+)->(\d+)`)

	// GC(7) Humongous regions: 5->3
	humongousRegionsPattern = regexp.MustCompile(`GC\((\d+)\)\s+Humongous regions:\s+(\d+)->(\d+)`)

	// Metaspace: 138K(320K)->138K(320K)
	metaspacePattern = regexp.MustCompile(`Metaspace:\s+(\d+)K\((\d+)K\)->(\d+)K\((\d+)K\)`)

	// Metaspace       used 16279K, capacity 17210K, committed 17408K, reserved 1064960K
	metaspaceSummaryPattern = regexp.MustCompile(`Metaspace\s+used\s+(\d+)K,.*committed\s+(\d+)K`)

	// TLAB totals: thrds: 8  refills: 100 max: 29 slow allocs: 5 ... (gc+tlab=debug only)
	tlabPattern = regexp.MustCompile(`TLAB totals:.*?slow allocs:\s+(\d+)`)

	// Safepoint "G1CollectForAllocation" ... Total: 1245017 ns
	safepointPattern = regexp.MustCompile(`Safepoint "([^"]+)".*Total:\s+(\d+)\s+ns`)

	// GC(12) To-space exhausted
	toSpacePattern = regexp.MustCompile(`GC\(\d+\)\s+To-space exhausted`)

	// [gc,init] Heap Region Size: 1M
	heapRegionPattern = regexp.MustCompile(`\[gc,init\]\s+Heap Region Size:\s+(\d+[KMGT])`)

	// [gc,init] Heap Max Capacity: 256M
	heapMaxPattern = regexp.MustCompile(`\[gc,init\]\s+Heap Max Capacity:\s+(\d+[KMGT])`)
)

// RecordKind distinguishes what a classified line contributes: a standalone
// Event, a region snapshot to merge into the previous pause event, or heap
// geometry from the init preamble.
type RecordKind int

const (
	RecordNone RecordKind = iota
	RecordEvent
	RecordOldRegions
	RecordHumongousRegions
	RecordHeapInit
)

type Record struct {
	Kind  RecordKind
	Event Event

	// RecordOldRegions / RecordHumongousRegions
	Before, After int
	Line          int

	// RecordHeapInit
	Heap HeapInfo
}

// Classifier recognizes the semantic category of raw log lines. It keeps the
// minimum of state needed for line-local classification: heap geometry seen
// in the preamble and the cause of the most recent pause, which tags the
// metaspace sample that follows a metadata-triggered collection.
type Classifier struct {
	heap           HeapInfo
	lastPauseCause string
}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// HeapInfo returns the heap geometry collected so far.
func (c *Classifier) HeapInfo() HeapInfo {
	return c.heap
}

// Classify inspects one raw line and returns its typed record. Lines that
// match no known pattern, or that match with malformed fields, come back as
// RecordNone; classification never fails the run.
func (c *Classifier) Classify(line string, lineNum int) Record {
	if m := heapRegionPattern.FindStringSubmatch(line); len(m) > 1 {
		if size, err := utils.ParseMemorySize(m[1]); err == nil {
			c.heap.RegionSizeMB = size.MB()
			return Record{Kind: RecordHeapInit, Heap: c.heap}
		}
		return Record{}
	}
	if m := heapMaxPattern.FindStringSubmatch(line); len(m) > 1 {
		if size, err := utils.ParseMemorySize(m[1]); err == nil {
			c.heap.MaxHeapMB = size.MB()
			return Record{Kind: RecordHeapInit, Heap: c.heap}
		}
		return Record{}
	}

	uptime, ok := extractUptime(line)
	if !ok {
		return Record{}
	}

	if m := pausePattern.FindStringSubmatch(line); len(m) >= 7 {
		return c.classifyPause(m, uptime, lineNum)
	}
	if m := oldRegionsPattern.FindStringSubmatch(line); len(m) >= 4 {
		before, err1 := strconv.Atoi(m[2])
		after, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			return Record{}
		}
		return Record{Kind: RecordOldRegions, Before: before, After: after, Line: lineNum}
	}
	if m := humongousRegionsPattern.FindStringSubmatch(line); len(m) >= 4 {
		before, err1 := strconv.Atoi(m[2])
		after, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			return Record{}
		}
		return Record{Kind: RecordHumongousRegions, Before: before, After: after, Line: lineNum}
	}
	if m := metaspacePattern.FindStringSubmatch(line); len(m) >= 5 {
		usedK, err1 := strconv.ParseFloat(m[3], 64)
		committedK, err2 := strconv.ParseFloat(m[4], 64)
		if err1 != nil || err2 != nil {
			return Record{}
		}
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:               uptime,
			Category:             MetaspaceSample,
			Line:                 lineNum,
			MetaspaceUsedMB:      usedK / 1024,
			MetaspaceCommittedMB: committedK / 1024,
			MetadataTriggered:    strings.Contains(c.lastPauseCause, "Metadata GC Threshold"),
		}}
	}
	if m := metaspaceSummaryPattern.FindStringSubmatch(line); len(m) >= 3 {
		usedK, err1 := strconv.ParseFloat(m[1], 64)
		committedK, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return Record{}
		}
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:               uptime,
			Category:             MetaspaceSample,
			Line:                 lineNum,
			MetaspaceUsedMB:      usedK / 1024,
			MetaspaceCommittedMB: committedK / 1024,
			MetadataTriggered:    strings.Contains(c.lastPauseCause, "Metadata GC Threshold"),
		}}
	}
	if m := tlabPattern.FindStringSubmatch(line); len(m) >= 2 {
		slow, err := strconv.Atoi(m[1])
		if err != nil {
			return Record{}
		}
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:         uptime,
			Category:       TLABSample,
			Line:           lineNum,
			TLABSlowAllocs: slow,
		}}
	}
	if toSpacePattern.MatchString(line) {
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:   uptime,
			Category: EvacFailure,
			Line:     lineNum,
		}}
	}
	if m := collectorPattern.FindStringSubmatch(line); len(m) >= 2 {
		name := m[1]
		if name == "The Z Garbage Collector" || name == "Z" {
			name = "ZGC"
		}
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:        uptime,
			Category:      CollectorIdentity,
			Line:          lineNum,
			CollectorName: name,
		}}
	}
	if m := safepointPattern.FindStringSubmatch(line); len(m) >= 3 {
		totalNs, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Record{}
		}
		return Record{Kind: RecordEvent, Event: Event{
			Uptime:           uptime,
			Category:         SafepointMarker,
			Line:             lineNum,
			SafepointTotalMs: totalNs / 1e6,
		}}
	}

	return Record{}
}

func (c *Classifier) classifyPause(m []string, uptime float64, lineNum int) Record {
	pauseMs, err := strconv.ParseFloat(m[6], 64)
	if err != nil {
		return Record{}
	}

	typeInfo := m[2]
	category, ok := pauseCategory(typeInfo)
	if !ok {
		return Record{}
	}

	cause := extractCause(typeInfo)
	c.lastPauseCause = cause

	return Record{Kind: RecordEvent, Event: Event{
		Uptime:           uptime,
		Category:         category,
		Line:             lineNum,
		PauseMs:          pauseMs,
		Cause:            cause,
		EvacFailed:       strings.Contains(typeInfo, "Evacuation Failure"),
		HumongousTrigger: strings.Contains(typeInfo, "Humongous Allocation"),
	}}
}

// pauseCategory maps the pause-type text between "Pause" and the heap
// transition ("Young (Normal) (G1 Evacuation Pause)") to an event category.
// The mapping keys off keywords rather than column order, so JDK version
// differences in parenthetical placement do not matter.
func pauseCategory(typeInfo string) (Category, bool) {
	fields := strings.Fields(typeInfo)
	if len(fields) == 0 {
		return 0, false
	}
	lower := strings.ToLower(typeInfo)
	switch {
	case strings.Contains(lower, "mixed"):
		return MixedGC, true
	case fields[0] == "Full":
		return FullGC, true
	case fields[0] == "Young":
		return YoungGC, true
	case fields[0] == "Remark" || fields[0] == "Cleanup":
		// Concurrent-cycle pauses count toward the pause distribution as
		// young-type STW events.
		return YoungGC, true
	}
	return 0, false
}

var causeKeywords = []string{
	"Allocation", "Pause", "System.gc", "Compaction",
	"Periodic Collection", "Ergonomics", "GCLocker", "Metadata GC Threshold",
}

func extractCause(typeInfo string) string {
	var parens []string
	start := -1
	for i, ch := range typeInfo {
		switch {
		case ch == '(':
			start = i + 1
		case ch == ')' && start != -1:
			parens = append(parens, typeInfo[start:i])
			start = -1
		}
	}

	for _, p := range parens {
		for _, kw := range causeKeywords {
			if strings.Contains(p, kw) {
				return p
			}
		}
	}
	if len(parens) > 0 {
		return parens[len(parens)-1]
	}
	return ""
}

func extractUptime(line string) (float64, bool) {
	m := uptimePattern.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, false
	}
	uptime, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return uptime, true
}
