package utils

import (
	"fmt"
	"strings"
)

var sizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(byteCount int64) string {
	if byteCount < 0 {
		return "0b"
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(sizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", byteCount)
	}
	if value < 10 {
		formattedValue := strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0")
		return formattedValue + sizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, sizeUnits[unitIndex])
}
