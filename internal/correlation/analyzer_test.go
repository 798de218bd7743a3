package correlation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/quotes"
)

func testParams() analysisconfig.CorrelationParams {
	return analysisconfig.CorrelationParams{
		LookbackPeriod: 10,
		MinCorrelation: 0.5,
	}
}

func seriesFromCloses(t *testing.T, symbol string, closes []float64) *quotes.Series {
	t.Helper()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]quotes.Bar, 0, len(closes))
	for i, c := range closes {
		bars = append(bars, quotes.Bar{Timestamp: start.AddDate(0, 0, i), Close: c})
	}

	s, err := quotes.BuildSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

// wavyCloses generates a price path with alternating non-trivial returns.
func wavyCloses(n int, scale float64) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		closes[i] = price
		if i%2 == 0 {
			price *= 1 + 0.01*scale
		} else {
			price *= 1 - 0.005*scale
		}
	}
	return closes
}

func TestAnalyzePerfectlyCorrelated(t *testing.T) {
	// Identical return paths at different price levels.
	a := NewAnalyzer(testParams())
	base := wavyCloses(15, 1)
	double := make([]float64, len(base))
	for i, c := range base {
		double[i] = 2 * c
	}

	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "A", base),
		seriesFromCloses(t, "B", double),
	})

	coef, ok := result.Matrix.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, coef, 1e-9)

	// A fully correlated pair leaves nothing diversified.
	assert.InDelta(t, 0.0, result.DiversificationScore, 1e-9)

	require.Len(t, result.HighPairs, 1)
	assert.Equal(t, "A", result.HighPairs[0].SymbolA)
	assert.Equal(t, "B", result.HighPairs[0].SymbolB)
	assert.Equal(t, "strong", result.HighPairs[0].Strength)
}

func TestAnalyzeInverseCorrelation(t *testing.T) {
	// Mirrored returns around a flat midpoint correlate at -1.
	n := 15
	up := make([]float64, n)
	down := make([]float64, n)
	for i := 0; i < n; i++ {
		delta := 1.0
		if i%2 == 0 {
			delta = -1.0
		}
		up[i] = 100 + delta
		down[i] = 100 - delta
	}

	a := NewAnalyzer(testParams())
	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "UP", up),
		seriesFromCloses(t, "DOWN", down),
	})

	coef, ok := result.Matrix.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, -1.0, coef, 1e-6)

	// |coef| drives both the score and the high-pair list.
	assert.InDelta(t, 0.0, result.DiversificationScore, 1e-6)
	assert.Len(t, result.HighPairs, 1)
}

func TestAnalyzeMatrixInvariants(t *testing.T) {
	a := NewAnalyzer(testParams())
	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "A", wavyCloses(15, 1)),
		seriesFromCloses(t, "B", wavyCloses(15, 2)),
		seriesFromCloses(t, "C", wavyCloses(15, 3)),
	})

	m := result.Matrix
	require.Equal(t, []string{"A", "B", "C"}, m.Symbols)

	for i := range m.Symbols {
		diag, ok := m.At(i, i)
		require.True(t, ok)
		assert.Equal(t, 1.0, diag)

		for j := range m.Symbols {
			vij, okIJ := m.At(i, j)
			vji, okJI := m.At(j, i)
			assert.Equal(t, okIJ, okJI)
			if okIJ {
				assert.Equal(t, vij, vji)
				assert.LessOrEqual(t, math.Abs(vij), 1.0+1e-9)
			}
		}
	}

	assert.GreaterOrEqual(t, result.DiversificationScore, 0.0)
	assert.LessOrEqual(t, result.DiversificationScore, 1.0)
}

func TestAnalyzeShortSeriesUndefined(t *testing.T) {
	// Three symbols, one with too-short history: the pair between the
	// two full series stays defined, both pairs involving the short one
	// are undefined, and the score comes from the defined pair alone.
	base := wavyCloses(15, 1)
	double := make([]float64, len(base))
	for i, c := range base {
		double[i] = 2 * c
	}

	a := NewAnalyzer(testParams())
	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "A", base),
		seriesFromCloses(t, "B", double),
		seriesFromCloses(t, "SHORT", wavyCloses(5, 1)),
	})

	coef, ok := result.Matrix.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, coef, 1e-9)
	_, ok = result.Matrix.At(0, 2)
	assert.False(t, ok)
	_, ok = result.Matrix.At(1, 2)
	assert.False(t, ok)
	assert.Equal(t, 2, result.UndefinedPairs)

	assert.InDelta(t, 0.0, result.DiversificationScore, 1e-9)

	// Full series keep a unit diagonal; the short one has no defined
	// self-correlation.
	diag, ok := result.Matrix.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, diag)
	_, ok = result.Matrix.At(2, 2)
	assert.False(t, ok)
}

func TestAnalyzeZeroVarianceUndefined(t *testing.T) {
	flat := make([]float64, 15)
	for i := range flat {
		flat[i] = 100
	}

	a := NewAnalyzer(testParams())
	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "FLAT", flat),
		seriesFromCloses(t, "A", wavyCloses(15, 1)),
	})

	_, ok := result.Matrix.At(0, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, result.UndefinedPairs)

	// No defined pairs at all: treated as fully diversified.
	assert.Equal(t, 1.0, result.DiversificationScore)
}

func TestAnalyzeWeakPairDoesNotPenalize(t *testing.T) {
	// Returns with period 2 against returns with period 4 are exactly
	// orthogonal over a window of 8, so the pair correlates at ~0.
	closesFromReturns := func(returns []float64) []float64 {
		closes := make([]float64, len(returns)+1)
		closes[0] = 100
		for i, r := range returns {
			closes[i+1] = closes[i] * (1 + r)
		}
		return closes
	}

	alternating := make([]float64, 8)
	paired := make([]float64, 8)
	for i := range alternating {
		alternating[i] = 0.01
		if i%2 == 1 {
			alternating[i] = -0.01
		}
		paired[i] = 0.01
		if i%4 >= 2 {
			paired[i] = -0.01
		}
	}

	a := NewAnalyzer(analysisconfig.CorrelationParams{LookbackPeriod: 8, MinCorrelation: 0.5})
	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "A", closesFromReturns(alternating)),
		seriesFromCloses(t, "B", closesFromReturns(paired)),
	})

	coef, ok := result.Matrix.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.0, coef, 1e-9)
	assert.InDelta(t, 0.0, result.AverageCorrelation, 1e-9)

	// The pair is defined but below the threshold, so it neither shows
	// up as a high pair nor lowers the score.
	assert.Empty(t, result.HighPairs)
	assert.Equal(t, 1.0, result.DiversificationScore)
}

func TestAnalyzeNoSeries(t *testing.T) {
	a := NewAnalyzer(testParams())
	result := a.Analyze(nil)

	assert.Empty(t, result.Matrix.Symbols)
	assert.Equal(t, 1.0, result.DiversificationScore)
	assert.Empty(t, result.HighPairs)
}

func TestWeightedAverage(t *testing.T) {
	a := NewAnalyzer(testParams())

	base := wavyCloses(15, 1)
	double := make([]float64, len(base))
	for i, c := range base {
		double[i] = 2 * c
	}

	result := a.Analyze([]*quotes.Series{
		seriesFromCloses(t, "A", base),
		seriesFromCloses(t, "B", double),
		seriesFromCloses(t, "SHORT", wavyCloses(5, 1)),
	})

	// Only the A/B pair is defined; its |coef| is 1.
	avg, ok := a.WeightedAverage(&result.Matrix, map[string]float64{"A": 0.5, "B": 0.5})
	require.True(t, ok)
	assert.InDelta(t, 1.0, avg, 1e-9)

	// A portfolio holding only the short series has no defined pair.
	_, ok = a.WeightedAverage(&result.Matrix, map[string]float64{"SHORT": 1})
	assert.False(t, ok)

	// Symbols outside the matrix are ignored.
	_, ok = a.WeightedAverage(&result.Matrix, map[string]float64{"ZZZ": 1})
	assert.False(t, ok)
}
