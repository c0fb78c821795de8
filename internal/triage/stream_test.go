package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStreamMergesRegionSnapshots(t *testing.T) {
	log := strings.Join([]string{
		"[10.000s][info][gc] GC(0) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) 5.000ms",
		"[10.001s][info][gc,heap] GC(0) Old regions: 4->6",
		"[10.001s][info][gc,heap] GC(0) Humongous regions: 3->1",
	}, "\n")

	stream, err := BuildStream(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, stream.Events, 1)

	ev := stream.Events[0]
	assert.True(t, ev.HasOldRegions)
	assert.Equal(t, 4, ev.OldRegionsBefore)
	assert.Equal(t, 6, ev.OldRegionsAfter)
	assert.Equal(t, 2, ev.OldRegionsLine)
	assert.Equal(t, 3, ev.HumongousRegions)
}

func TestBuildStreamEmitsSyntheticEvents(t *testing.T) {
	log := strings.Join([]string{
		"[30.000s][info][gc] GC(10) Pause Young (Normal) (G1 Humongous Allocation) 20M->8M(64M) 7.000ms",
		"[40.000s][info][gc] GC(11) Pause Young (Normal) (Evacuation Failure) 60M->60M(64M) 95.000ms",
	}, "\n")

	stream, err := BuildStream(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, stream.Events, 4)

	assert.Equal(t, YoungGC, stream.Events[0].Category)
	assert.Equal(t, HumongousAlloc, stream.Events[1].Category)
	assert.Equal(t, stream.Events[0].Uptime, stream.Events[1].Uptime)

	assert.Equal(t, YoungGC, stream.Events[2].Category)
	assert.Equal(t, EvacFailure, stream.Events[3].Category)
}

func TestBuildStreamRegionSnapshotAttachesToOwningPause(t *testing.T) {
	// The snapshot must land on the pause event even when synthetic events
	// were appended after it.
	log := strings.Join([]string{
		"[30.000s][info][gc] GC(10) Pause Young (Normal) (G1 Humongous Allocation) 20M->8M(64M) 7.000ms",
		"[30.001s][info][gc,heap] GC(10) Old regions: 40->45",
	}, "\n")

	stream, err := BuildStream(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, stream.Events, 2)

	assert.Equal(t, YoungGC, stream.Events[0].Category)
	assert.True(t, stream.Events[0].HasOldRegions)
	assert.Equal(t, 45, stream.Events[0].OldRegionsAfter)
	assert.False(t, stream.Events[1].HasOldRegions)
}

func TestBuildStreamCountsSegments(t *testing.T) {
	log := strings.Join([]string{
		"[10.000s][info][gc] GC(0) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) 5.000ms",
		"[20.000s][info][gc] GC(1) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) 5.000ms",
		"[5.000s][info][gc] GC(0) Pause Young (Normal) (G1 Evacuation Pause) 9M->2M(16M) 5.000ms",
	}, "\n")

	stream, err := BuildStream(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 2, stream.Segments)
	assert.Equal(t, 20.0, stream.MaxUptime)
}

func TestBuildStreamRejectsUnrecognizableInput(t *testing.T) {
	_, err := BuildStream(strings.NewReader("not a gc log\njust text\n"))
	require.ErrorIs(t, err, ErrUnsupportedLog)

	_, err = BuildStream(strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedLog)
}

func TestApplyWindowTail(t *testing.T) {
	stream := &Stream{
		Events: []Event{
			{Uptime: 10, Category: YoungGC},
			{Uptime: 300, Category: YoungGC},
			{Uptime: 550, Category: YoungGC},
			{Uptime: 600, Category: YoungGC},
		},
		MaxUptime: 600,
	}

	events, win := stream.ApplyWindow(1)
	assert.Len(t, events, 2)
	assert.Equal(t, 540.0, win.StartUptime)
	assert.Equal(t, 600.0, win.EndUptime)
	assert.True(t, win.Requested)
	assert.False(t, win.Clamped)
	assert.Equal(t, 2, win.Counts[YoungGC])
}

func TestApplyWindowClampsToDataSpan(t *testing.T) {
	stream := &Stream{
		Events: []Event{
			{Uptime: 10, Category: YoungGC},
			{Uptime: 600, Category: YoungGC},
		},
		MaxUptime: 600,
	}

	events, win := stream.ApplyWindow(120)
	assert.Len(t, events, 2)
	assert.True(t, win.Requested)
	assert.True(t, win.Clamped)
	assert.Equal(t, 0.0, win.StartUptime)
}

func TestApplyWindowUnrequested(t *testing.T) {
	stream := &Stream{
		Events:    []Event{{Uptime: 10, Category: YoungGC}},
		MaxUptime: 10,
	}

	events, win := stream.ApplyWindow(0)
	assert.Len(t, events, 1)
	assert.False(t, win.Requested)
	assert.False(t, win.Clamped)
}
