package bandfit

import "math"

func inf() float64 { return math.Inf(1) }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
