package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
}

func TestTrailingMean(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	tests := []struct {
		name   string
		window int
		want   float64
	}{
		{name: "last one", window: 1, want: 40},
		{name: "last two", window: 2, want: 35},
		{name: "zero clamps to one", window: 0, want: 40},
		{name: "oversized uses all", window: 10, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrailingMean(values, tt.window))
		})
	}

	assert.Equal(t, 0.0, TrailingMean(nil, 3))
}

func TestLinearRegression(t *testing.T) {
	t.Run("perfect line", func(t *testing.T) {
		xs := []float64{1, 2, 3, 4}
		ys := []float64{7, 9, 11, 13}

		fit, ok := LinearRegression(xs, ys)
		assert.True(t, ok)
		assert.InDelta(t, 2.0, fit.Slope, 1e-9)
		assert.InDelta(t, 5.0, fit.Intercept, 1e-9)
		assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
		assert.InDelta(t, 15.0, fit.At(5), 1e-9)
	})

	t.Run("constant series", func(t *testing.T) {
		fit, ok := LinearRegression([]float64{1, 2, 3}, []float64{4, 4, 4})
		assert.True(t, ok)
		assert.Equal(t, 0.0, fit.Slope)
		assert.Equal(t, 0.0, fit.RSquared)
		assert.False(t, math.IsNaN(fit.RSquared))
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		_, ok := LinearRegression([]float64{1}, []float64{1})
		assert.False(t, ok)
		_, ok = LinearRegression([]float64{1, 2}, []float64{1})
		assert.False(t, ok)
		_, ok = LinearRegression([]float64{3, 3}, []float64{1, 2})
		assert.False(t, ok)
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 42.1, Round2(42.099999))
	assert.Equal(t, 0.3333, Round(1.0/3, 4))
	assert.Equal(t, -1.25, Round2(-1.2549))
}

func TestWindow(t *testing.T) {
	asOf := time.Date(2026, time.March, 2, 14, 30, 0, 0, time.UTC)
	w := Trailing(asOf, 5*time.Minute)

	assert.True(t, w.Contains(asOf))
	assert.True(t, w.Contains(asOf.Add(-5*time.Minute)))
	assert.False(t, w.Contains(asOf.Add(-5*time.Minute-time.Nanosecond)))
	assert.False(t, w.Contains(asOf.Add(time.Second)))
}

func TestMinuteBucket(t *testing.T) {
	at := time.Date(2026, time.March, 2, 14, 30, 59, 999, time.FixedZone("PST", -8*3600))
	assert.Equal(t, time.Date(2026, time.March, 2, 22, 30, 0, 0, time.UTC), MinuteBucket(at))
}

func TestLatest(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Hour)

	assert.True(t, Latest().IsZero())
	assert.Equal(t, b, Latest(a, b, time.Time{}))
}
