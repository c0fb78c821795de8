package triage

import (
	"fmt"
	"strings"
)

type Status int

const (
	StatusNone Status = iota
	StatusSuspected
	StatusDetected
)

func (s Status) String() string {
	switch s {
	case StatusDetected:
		return "DETECTED"
	case StatusSuspected:
		return "SUSPECTED"
	default:
		return "NONE"
	}
}

type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Suspect identifiers, in fixed catalog order. Findings are always reported
// in this order, never by severity, so output is stable and diffable.
const (
	SuspectAllocationPressure = "allocation_pressure"
	SuspectHumongousPressure  = "humongous_pressure"
	SuspectLongPauses         = "long_stw_pauses"
	SuspectGCStarvation       = "gc_starvation"
	SuspectMetaspaceLeak      = "metaspace_leak"
	SuspectTLABExhaustion     = "tlab_exhaustion"
	SuspectWrongCollector     = "wrong_collector"
	SuspectRetentionGrowth    = "retention_growth"
)

// Finding is one detector's verdict. Created by exactly one detector,
// immutable afterward.
type Finding struct {
	SuspectID  string
	Title      string
	Status     Status
	Confidence Confidence
	Evidence   []string
	NextSteps  []string
}

// Report is the engine's complete output contract: the ordered finding set
// plus the window actually analyzed, sufficient for a renderer to produce
// Markdown or plain text without re-deriving any figure.
type Report struct {
	Findings     []Finding
	Window       Window
	Collector    CollectorInfo
	OccupancyPct float64
	Note         string // informational, e.g. window clamped to the data span
}

// Summary is the one-line verdict heading the report.
func (r *Report) Summary() string {
	var fired []Finding
	for _, f := range r.Findings {
		if f.Status == StatusDetected || f.Status == StatusSuspected {
			fired = append(fired, f)
		}
	}
	switch len(fired) {
	case 0:
		return "NO STRONG SIGNAL"
	case 1:
		return fmt.Sprintf("%s - %s (%s confidence)", fired[0].Status, fired[0].Title, fired[0].Confidence)
	default:
		names := make([]string, len(fired))
		for i, f := range fired {
			names[i] = f.Title
		}
		return fmt.Sprintf("%d issues flagged: %s", len(fired), strings.Join(names, ", "))
	}
}

// ExitCode maps the finding set to the process exit code: 0 when nothing
// fired, 2 when a CRITICAL condition holds (legacy collector, high-confidence
// retention, heap occupancy past 90%, high-confidence allocation pressure),
// 1 otherwise.
func (r *Report) ExitCode() int {
	fired := false
	critical := false

	for _, f := range r.Findings {
		switch f.Status {
		case StatusDetected, StatusSuspected:
			fired = true
		default:
			continue
		}

		switch f.SuspectID {
		case SuspectWrongCollector:
			if f.Status == StatusDetected {
				critical = true
			}
		case SuspectRetentionGrowth:
			if f.Status == StatusSuspected && f.Confidence == ConfidenceHigh {
				critical = true
			}
		case SuspectAllocationPressure:
			if f.Status == StatusDetected && f.Confidence == ConfidenceHigh {
				critical = true
			}
		}
	}

	if r.OccupancyPct > 90 {
		critical = true
	}

	switch {
	case !fired:
		return 0
	case critical:
		return 2
	default:
		return 1
	}
}
