package triage

import (
	"bufio"
	"io"
)

// Stream is the time-ordered event model built from one pass over the log.
// Events keeps raw-stream order; uptime regressions (a restarted JVM
// appending to the same file) open a new logical segment rather than failing,
// and the latest segment's uptime governs windowing.
type Stream struct {
	Events    []Event
	Heap      HeapInfo
	MaxUptime float64
	Segments  int
	Lines     int
}

// BuildStream classifies every line from r and assembles the event model.
// Region-snapshot lines are merged into the pause event they follow; a pause
// whose cause is a humongous allocation additionally yields a HumongousAlloc
// event at the same uptime. Returns ErrUnsupportedLog when a full pass
// produces no classifiable events.
func BuildStream(r io.Reader) (*Stream, error) {
	classifier := NewClassifier()
	stream := &Stream{Segments: 1}

	lastGC := -1 // index into stream.Events; appends may reallocate
	prevUptime := 0.0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		rec := classifier.Classify(scanner.Text(), lineNum)

		switch rec.Kind {
		case RecordEvent:
			ev := rec.Event
			if ev.Uptime < prevUptime {
				stream.Segments++
			}
			prevUptime = ev.Uptime
			if ev.Uptime > stream.MaxUptime {
				stream.MaxUptime = ev.Uptime
			}

			stream.Events = append(stream.Events, ev)
			if ev.IsGC() {
				lastGC = len(stream.Events) - 1
				if ev.HumongousTrigger {
					stream.Events = append(stream.Events, Event{
						Uptime:   ev.Uptime,
						Category: HumongousAlloc,
						Line:     ev.Line,
					})
				}
				if ev.EvacFailed {
					stream.Events = append(stream.Events, Event{
						Uptime:   ev.Uptime,
						Category: EvacFailure,
						Line:     ev.Line,
					})
				}
			}

		case RecordOldRegions:
			if lastGC >= 0 {
				gc := &stream.Events[lastGC]
				gc.OldRegionsBefore = rec.Before
				gc.OldRegionsAfter = rec.After
				gc.OldRegionsLine = rec.Line
				gc.HasOldRegions = true
			}

		case RecordHumongousRegions:
			if lastGC >= 0 {
				stream.Events[lastGC].HumongousRegions = rec.Before
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	stream.Lines = lineNum
	stream.Heap = classifier.HeapInfo()

	if len(stream.Events) == 0 {
		return nil, ErrUnsupportedLog
	}
	return stream, nil
}

// Window is the analyzed uptime interval plus per-category sample counts,
// exposed so the report layer never re-derives a figure.
type Window struct {
	StartUptime float64
	EndUptime   float64
	Clamped     bool // requested window exceeded the data span
	Requested   bool // a tail window was configured at all
	Counts      map[Category]int
}

// ApplyWindow filters the stream to the trailing window of tailMinutes before
// the latest observed uptime. A non-positive tailMinutes keeps everything; a
// window longer than the data span degrades to the full span.
func (s *Stream) ApplyWindow(tailMinutes float64) ([]Event, Window) {
	win := Window{
		EndUptime: s.MaxUptime,
		Counts:    make(map[Category]int),
	}

	cutoff := 0.0
	if tailMinutes > 0 {
		win.Requested = true
		cutoff = s.MaxUptime - tailMinutes*60
		if cutoff <= firstUptime(s.Events) {
			win.Clamped = true
			cutoff = 0
		}
	}
	win.StartUptime = cutoff

	var filtered []Event
	for _, ev := range s.Events {
		if ev.Uptime < cutoff {
			continue
		}
		filtered = append(filtered, ev)
		win.Counts[ev.Category]++
	}
	return filtered, win
}

func firstUptime(events []Event) float64 {
	if len(events) == 0 {
		return 0
	}
	first := events[0].Uptime
	for _, ev := range events[1:] {
		if ev.Uptime < first {
			first = ev.Uptime
		}
	}
	return first
}
