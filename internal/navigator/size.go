package navigator

import (
	"math"
	"strconv"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with base-1024 units, using the largest
// unit whose scaled value is at least one, rounded to two decimals.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := 0
	scale := 1.0
	for i < len(sizeUnits)-1 && float64(bytes) >= scale*1024 {
		scale *= 1024
		i++
	}
	v := math.Round(float64(bytes)/scale*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
