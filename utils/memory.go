package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// MemorySize represents a memory size in bytes.
type MemorySize int64

const (
	Byte MemorySize = 1
	KB   MemorySize = 1024 * Byte
	MB   MemorySize = 1024 * KB
	GB   MemorySize = 1024 * MB
	TB   MemorySize = 1024 * GB
)

// String returns a human-readable representation of the memory size.
func (m MemorySize) String() string {
	if m <= 0 {
		return "0B"
	}

	formatValue := func(val float64, unit string) string {
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f%s", val, unit)
		}
		return fmt.Sprintf("%.2f%s", val, unit)
	}

	switch {
	case m >= TB:
		return formatValue(float64(m)/float64(TB), "T")
	case m >= GB:
		return formatValue(float64(m)/float64(GB), "G")
	case m >= MB:
		return formatValue(float64(m)/float64(MB), "M")
	case m >= KB:
		return formatValue(float64(m)/float64(KB), "K")
	default:
		return fmt.Sprintf("%dB", m)
	}
}

// MB returns the memory size as megabytes.
func (m MemorySize) MB() float64 {
	return float64(m) / float64(MB)
}

// ParseMemorySize parses a memory size string like "9M", "2G", "1024K".
func ParseMemorySize(s string) (MemorySize, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty memory size string")
	}

	var multiplier MemorySize = Byte
	valueStr := s

	switch strings.ToUpper(s[len(s)-1:]) {
	case "T":
		multiplier = TB
		valueStr = s[:len(s)-1]
	case "G":
		multiplier = GB
		valueStr = s[:len(s)-1]
	case "M":
		multiplier = MB
		valueStr = s[:len(s)-1]
	case "K":
		multiplier = KB
		valueStr = s[:len(s)-1]
	case "B":
		valueStr = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size: %s", s)
	}

	return MemorySize(value * float64(multiplier)), nil
}
