// Package maths provides small numeric helpers for values decoded from JSON.
package maths

import (
	"math"
)

// RoundFloat64ToInt rounds a JSON numeric to the nearest int. NaN and
// infinities, which yt-dlp emits for unknown values, collapse to zero.
func RoundFloat64ToInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return int(math.Round(v))
}
