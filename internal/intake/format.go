package intake

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with a binary unit and at most two decimals,
// e.g. 1536 -> "1.5 KB". Values past the terabyte range stay in TB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := 0
	for unit := int64(1024); i < len(sizeUnits)-1 && bytes >= unit; unit <<= 10 {
		i++
	}
	scaled := float64(bytes) / math.Pow(1024, float64(i))
	// Round to two places first, then print the shortest form so trailing
	// zeros disappear.
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(scaled, 'f', 2, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[i]
}
