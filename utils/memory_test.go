package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemorySize(t *testing.T) {
	tests := []struct {
		input string
		want  MemorySize
	}{
		{"9M", 9 * MB},
		{"1024K", 1 * MB},
		{"2G", 2 * GB},
		{"1T", 1 * TB},
		{"512B", 512 * Byte},
		{"256", 256 * Byte},
	}

	for _, tt := range tests {
		got, err := ParseMemorySize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseMemorySize("")
	assert.Error(t, err)
	_, err = ParseMemorySize("abc")
	assert.Error(t, err)
}

func TestMemorySizeString(t *testing.T) {
	assert.Equal(t, "9M", (9 * MB).String())
	assert.Equal(t, "1.50G", (MemorySize(1.5 * float64(GB))).String())
	assert.Equal(t, "0B", MemorySize(0).String())
}

func TestMemorySizeMB(t *testing.T) {
	assert.InDelta(t, 256.0, (256 * MB).MB(), 0.001)
	assert.InDelta(t, 0.5, (512 * KB).MB(), 0.001)
}
