package recall

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "scaled", a: []float64{1, 0}, b: []float64{5, 0}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 1}, b: []float64{-1, -1}, want: -1},
		{name: "zero query", a: []float64{0, 0, 0}, b: []float64{1, 2, 3}, want: 0},
		{name: "zero memory", a: []float64{1, 2, 3}, b: []float64{0, 0, 0}, want: 0},
		{name: "both zero", a: []float64{0, 0}, b: []float64{0, 0}, want: 0},
		{name: "length mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "nan component", a: []float64{math.NaN(), 1}, b: []float64{1, 1}, want: 0},
		{name: "inf component", a: []float64{math.Inf(1), 1}, b: []float64{1, 1}, want: 0},
		{name: "tiny parallel", a: []float64{1e-90, 2e-90}, b: []float64{2e-90, 4e-90}, want: 1},
		{name: "huge orthogonal", a: []float64{1e200, 0}, b: []float64{0, 1e200}, want: 0},
		{name: "mixed magnitudes", a: []float64{1e-150, 0}, b: []float64{1e150, 1e150}, want: math.Sqrt2 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCosineSimilarity_SelfIsExactlyOne(t *testing.T) {
	vectors := [][]float64{
		{1},
		{1, 2, 3},
		{0.1, -0.2, 0.3, -0.4},
		{1e-3, 7.25, -13.5, 0.0625, 2.2e-4},
		{0.017, -0.0042, 0.0311, 0.0009, -0.0278, 0.0133},
		{1e-90, 2e-90},
		{1e100, 1e100},
		{1e-200, -3e-200, 5e-201},
		{1e300, -1e300, 2e299},
		{1e-320, 1},
	}

	for _, v := range vectors {
		assert.Equal(t, 1.0, CosineSimilarity(v, v), "vector %v", v)
	}
}
