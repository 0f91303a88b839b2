package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 5.0, Mean([]float64{5}))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}), "single sample has no spread")
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))

	returns := []float64{0.01, -0.02, 0.005, 0.015}
	vol := AnnualizedVolatility(returns)
	assert.Greater(t, vol, 0.0)
	assert.InDelta(t, StdDev(returns)*15.8745, vol, 1e-3)
}

func TestCalculateReturns(t *testing.T) {
	t.Run("too few prices", func(t *testing.T) {
		assert.Empty(t, CalculateReturns([]float64{100}))
	})

	t.Run("day over day", func(t *testing.T) {
		returns := CalculateReturns([]float64{100, 110, 99})
		assert.InDelta(t, 0.10, returns[0], 1e-9)
		assert.InDelta(t, -0.10, returns[1], 1e-9)
	})

	t.Run("zero price yields zero return", func(t *testing.T) {
		returns := CalculateReturns([]float64{0, 100})
		assert.Equal(t, 0.0, returns[0])
	})
}
