package recall

import "math"

// minConsolidation keeps the decay exponent finite for factors at or near 0.
const minConsolidation = 1e-3

var probabilityNorm = 1 - math.Exp(-1)

// RecallProbability combines similarity with exponential time decay. The
// consolidation factor stretches the decay, so well consolidated memories
// fade slower. With relevance 1 and no elapsed time the result is exactly 1.
func RecallProbability(relevance, elapsed, consolidation float64) float64 {
	exponent := -relevance * math.Exp(-elapsed/math.Max(consolidation, minConsolidation))
	return (1 - math.Exp(exponent)) / probabilityNorm
}
