// Package recall decides which stored memories surface for a query and how a
// recall strengthens them.
package recall

import "math"

// CosineSimilarity returns dot(a, b) / (|a| * |b|) clamped to [-1, 1].
// A zero-magnitude operand, mismatched lengths or non-finite components give 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	sa, sb := maxAbs(a), maxAbs(b)
	if sa == 0 || sb == 0 || !finite(sa) || !finite(sb) {
		return 0
	}

	// Scaled so the largest component is 1: the squares can neither overflow
	// nor underflow, and sqrt(na*nb) stays exact for a == b.
	var dot, na, nb float64
	for i := range a {
		x, y := a[i]/sa, b[i]/sb
		dot += x * y
		na += x * x
		nb += y * y
	}

	denom := math.Sqrt(na * nb)
	if denom == 0 || !finite(denom) {
		return 0
	}

	s := dot / denom
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

// maxAbs is NaN when any component is NaN.
func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if math.IsNaN(x) {
			return math.NaN()
		}
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func zeroMagnitude(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
