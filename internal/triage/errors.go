package triage

import "errors"

// ErrUnsupportedLog is returned when a full pass over the input produced zero
// classifiable events. Callers should report "not a supported G1 log" rather
// than rendering an empty, misleadingly healthy report. Per-line problems are
// never surfaced this way; malformed lines are discarded and the pass
// continues.
var ErrUnsupportedLog = errors.New("no recognizable G1 unified-logging events in input")
