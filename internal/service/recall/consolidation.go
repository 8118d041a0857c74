package recall

import (
	"math"

	"github.com/sandevgo/mnemo/internal/core"
)

// maxSigmoid is the largest float64 below 1. For large inputs the closed form
// rounds to 1; clamping keeps Sigmoid(x) < 1 for every finite x.
var maxSigmoid = math.Nextafter(1, 0)

// Sigmoid maps elapsed seconds to a consolidation increment in [0, 1).
// It is 0 for x <= 0 (and NaN) and approaches 1 as x grows.
func Sigmoid(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	e := math.Exp(-x)
	return math.Min((1-e)/(1+e), maxSigmoid)
}

// Consolidator computes how a recall strengthens a memory.
type Consolidator struct {
	// MaxFactor caps growth of the consolidation factor. Zero means unbounded.
	// An existing factor above the cap is kept, never lowered.
	MaxFactor float64
}

// UpdateOnRecall returns the recall fields after m is recalled at now. The
// longer the gap since the last recall, the larger the consolidation gain.
func (c Consolidator) UpdateOnRecall(m core.Memory, now float64) core.RecallUpdate {
	factor := m.ConsolidationFactor + Sigmoid(now-m.LastRecalled)
	if c.MaxFactor > 0 && factor > c.MaxFactor {
		factor = math.Max(c.MaxFactor, m.ConsolidationFactor)
	}

	return core.RecallUpdate{
		RecallCount:         m.RecallCount + 1,
		LastRecalled:        math.Max(now, m.LastRecalled),
		ConsolidationFactor: factor,
	}
}

// UpdateOnRecall applies the unbounded rule.
func UpdateOnRecall(m core.Memory, now float64) core.RecallUpdate {
	return Consolidator{}.UpdateOnRecall(m, now)
}

// Recall returns a mutation that strengthens a memory in place, for use with
// core.MemoryRepository.UpdateMemory.
func (c Consolidator) Recall(now float64) core.MemoryMutation {
	return func(m *core.Memory) error {
		c.UpdateOnRecall(*m, now).Apply(m)
		return nil
	}
}
