package cachemgmt

import (
	"math"
	"strconv"
	"time"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with a 1024 base and at most two decimals,
// e.g. 1536 -> "1.5 KB". Negative counts are treated as zero.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}

func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	return math.Max(0, math.Min(100, p))
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
