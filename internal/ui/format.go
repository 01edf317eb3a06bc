package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Count formats a number with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Size formats a byte count
func Size(bytes int64) string {
	if bytes < 0 {
		return "?"
	}
	return humanize.Bytes(uint64(bytes))
}

// Millimeters formats a length
func Millimeters(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

// Dimensions formats a width x height pair in millimeters
func Dimensions(width, height float64) string {
	return fmt.Sprintf("%.1f × %.1f mm", width, height)
}
