package credibility

import "math"

// sanitize maps NaN and infinities to 0 so that a malformed input can never
// leak a non-finite value into a score.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// clampScore rounds and bounds a raw component value into [0,100].
func clampScore(f float64) int {
	f = sanitize(f)
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// safeDiv divides a by b, returning 0 when b is 0 or the result would not
// be finite.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return sanitize(a / b)
}

// mean returns the arithmetic mean of vs, or 0 for an empty slice.
func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sanitize(sum / float64(len(vs)))
}

// stddev returns the population standard deviation of vs.
func stddev(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return sanitize(math.Sqrt(sum / float64(len(vs))))
}
