// Package triage turns a Java G1 unified-logging GC log into a short,
// deterministic incident-triage report. The pipeline is a strict
// classify -> build -> aggregate -> detect sequence: raw lines become typed
// events keyed on JVM uptime, a single pass over the trailing analysis
// window produces immutable per-category metrics, and a fixed catalog of
// suspect detectors maps those metrics to findings with literal evidence.
// Nothing survives across runs and nothing depends on wall-clock time, so
// identical input and configuration always produce identical output.
package triage

import "io"

// Analyze runs the full pipeline over one log. It reads r exactly once.
// Returns ErrUnsupportedLog when the input yields no classifiable events.
func Analyze(r io.Reader, th Thresholds) (*Report, *Metrics, error) {
	stream, err := BuildStream(r)
	if err != nil {
		return nil, nil, err
	}

	events, window := stream.ApplyWindow(th.TailWindowMinutes)
	metrics := Aggregate(events, window, stream, th)
	report := RunDetectors(metrics, th)
	return report, metrics, nil
}
