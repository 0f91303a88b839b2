package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSISeries(t *testing.T) {
	t.Run("too few closes", func(t *testing.T) {
		series := RSISeries([]float64{100, 101, 102}, 14)
		require.Len(t, series, 3)
		for _, v := range series {
			assert.Nil(t, v)
		}
	})

	t.Run("warm-up values are nil", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100 + float64(i%4)
		}
		series := RSISeries(closes, 14)
		require.Len(t, series, 30)

		for i := 0; i < 14; i++ {
			assert.Nil(t, series[i], "index %d is inside the warm-up window", i)
		}
		for i := 14; i < 30; i++ {
			require.NotNil(t, series[i], "index %d", i)
			assert.GreaterOrEqual(t, *series[i], 0.0)
			assert.LessOrEqual(t, *series[i], 100.0)
		}
	})

	t.Run("monotonic gains pin the RSI at 100", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		series := RSISeries(closes, 14)
		require.NotNil(t, series[19])
		assert.InDelta(t, 100.0, *series[19], 1e-9)
	})

	t.Run("flat closes pin the RSI at 100", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100
		}
		series := RSISeries(closes, 14)
		for i := 14; i < 30; i++ {
			require.NotNil(t, series[i], "index %d", i)
			assert.InDelta(t, 100.0, *series[i], 1e-9, "zero average loss reads 100")
		}
	})

	t.Run("flat warm-up then a loss drops below 100", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100
		}
		closes[20] = 99
		series := RSISeries(closes, 14)
		require.NotNil(t, series[19])
		assert.InDelta(t, 100.0, *series[19], 1e-9)
		require.NotNil(t, series[20])
		assert.Less(t, *series[20], 100.0)
	})

	t.Run("monotonic losses pin the RSI at 0", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}
		series := RSISeries(closes, 14)
		require.NotNil(t, series[19])
		assert.InDelta(t, 0.0, *series[19], 1e-9)
	})

	t.Run("zero length", func(t *testing.T) {
		series := RSISeries([]float64{1, 2, 3}, 0)
		for _, v := range series {
			assert.Nil(t, v)
		}
	})
}

func TestRSI(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, RSI(nil, 14))
	})

	t.Run("returns the last series value", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		v := RSI(closes, 14)
		require.NotNil(t, v)
		assert.InDelta(t, 100.0, *v, 1e-9)
	})
}
