package recall

import (
	"math"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.0, Sigmoid(0))
	assert.Equal(t, 0.0, Sigmoid(math.Copysign(0, -1)))
	assert.Equal(t, 0.0, Sigmoid(math.NaN()))

	for _, x := range []float64{-1e-300, -0.5, -1, -1e9, -math.MaxFloat64, math.Inf(-1)} {
		assert.Equal(t, 0.0, Sigmoid(x), "x = %v", x)
	}

	for _, x := range []float64{1e-9, 0.5, 1, 10, 40, 1e3, 1e308, math.MaxFloat64} {
		s := Sigmoid(x)
		assert.Greater(t, s, 0.0, "x = %v", x)
		assert.Less(t, s, 1.0, "x = %v", x)
	}

	assert.InDelta(t, math.Tanh(0.5), Sigmoid(1), 1e-15)
}

func TestSigmoid_StrictlyIncreasing(t *testing.T) {
	prev := Sigmoid(0)
	for i := 1; i <= 2000; i++ {
		x := float64(i) * 0.01
		s := Sigmoid(x)
		require.Greater(t, s, prev, "x = %v", x)
		prev = s
	}
}

func TestUpdateOnRecall(t *testing.T) {
	m := core.NewMemory("hello", []float64{1, 0}, 100)
	m.ID = 7

	upd := UpdateOnRecall(m, 102)

	assert.Equal(t, 1, upd.RecallCount)
	assert.Equal(t, 102.0, upd.LastRecalled)
	assert.InDelta(t, 1+Sigmoid(2), upd.ConsolidationFactor, 1e-15)

	upd.Apply(&m)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, "hello", m.Content)
	assert.Equal(t, 100.0, m.CreatedAt)
}

func TestUpdateOnRecall_ImmediateSuccessionAddsNothing(t *testing.T) {
	m := core.NewMemory("hello", []float64{1, 0}, 100)

	UpdateOnRecall(m, 160).Apply(&m)
	before := m.ConsolidationFactor

	UpdateOnRecall(m, 160).Apply(&m)
	assert.Equal(t, before, m.ConsolidationFactor)
	assert.Equal(t, 2, m.RecallCount)
}

func TestUpdateOnRecall_Monotone(t *testing.T) {
	m := core.NewMemory("hello", []float64{1, 0}, 0)
	now := 0.0
	steps := []float64{0, 0.3, 5, -20, 1e4, 0, 0.001, -1, 86400}

	for i, step := range steps {
		now += step
		prev := m
		UpdateOnRecall(m, now).Apply(&m)

		assert.GreaterOrEqual(t, m.ConsolidationFactor, prev.ConsolidationFactor, "step %d", i)
		assert.GreaterOrEqual(t, m.LastRecalled, prev.LastRecalled, "step %d", i)
		assert.Equal(t, prev.RecallCount+1, m.RecallCount, "step %d", i)
	}
}

func TestConsolidator_MaxFactor(t *testing.T) {
	c := Consolidator{MaxFactor: 1.5}

	m := core.NewMemory("hello", []float64{1, 0}, 0)
	c.UpdateOnRecall(m, 1000).Apply(&m)
	assert.Equal(t, 1.5, m.ConsolidationFactor)

	c.UpdateOnRecall(m, 5000).Apply(&m)
	assert.Equal(t, 1.5, m.ConsolidationFactor)

	// a factor already past the cap is never lowered
	over := core.NewMemory("old", []float64{1, 0}, 0)
	over.ConsolidationFactor = 3
	assert.Equal(t, 3.0, c.UpdateOnRecall(over, 1000).ConsolidationFactor)
}

func TestConsolidator_Recall(t *testing.T) {
	m := core.NewMemory("hello", []float64{1, 0}, 10)
	require.NoError(t, Consolidator{}.Recall(12)(&m))

	assert.Equal(t, 1, m.RecallCount)
	assert.Equal(t, 12.0, m.LastRecalled)
	assert.Greater(t, m.ConsolidationFactor, 1.0)
}
