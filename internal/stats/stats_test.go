package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"odd count", []float64{5, 1, 3}, 3},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
		{"duplicates", []float64{2, 2, 2, 9}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.values))
		})
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestQuantileSorted(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, quantileSorted(values, 0))
	assert.Equal(t, 3.0, quantileSorted(values, 0.5))
	assert.Equal(t, 5.0, quantileSorted(values, 1))
	assert.Equal(t, 2.0, quantileSorted(values, 0.25))
	assert.Equal(t, 5.0, quantileSorted(values, 7), "q is clamped")
	assert.Equal(t, 1.5, quantileSorted([]float64{1, 2}, 0.5))
}

func TestFiveNumberSummary(t *testing.T) {
	min, q1, median, q3, max := FiveNumberSummary([]float64{9, 1, 5, 3, 7})

	assert.Equal(t, 1.0, min)
	assert.Equal(t, 3.0, q1)
	assert.Equal(t, 5.0, median)
	assert.Equal(t, 7.0, q3)
	assert.Equal(t, 9.0, max)

	min, q1, median, q3, max = FiveNumberSummary(nil)
	assert.Zero(t, min+q1+median+q3+max)
}
