package correlation

import (
	"math"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/quotes"
)

// Matrix is a symmetric Pearson correlation matrix over daily returns.
// A nil entry means the correlation is undefined (a series too short
// for the lookback, or zero variance over it); a too-short series has
// an undefined diagonal as well.
type Matrix struct {
	Symbols []string     `json:"symbols"`
	Coef    [][]*float64 `json:"coefficients"`
}

// At returns the coefficient for a pair of indices, or false when it
// is undefined.
func (m *Matrix) At(i, j int) (float64, bool) {
	if m.Coef[i][j] == nil {
		return 0, false
	}
	return *m.Coef[i][j], true
}

// Pair is a symbol pair whose absolute correlation crossed the
// configured reporting threshold.
type Pair struct {
	SymbolA  string  `json:"symbol_a"`
	SymbolB  string  `json:"symbol_b"`
	Coef     float64 `json:"coefficient"`
	Strength string  `json:"strength"`
}

// Analysis is the correlation result for one portfolio's members.
type Analysis struct {
	Matrix               Matrix  `json:"matrix"`
	DiversificationScore float64 `json:"diversification_score"`
	AverageCorrelation   float64 `json:"average_correlation"`
	HighPairs            []Pair  `json:"high_correlation_pairs"`
	UndefinedPairs       int     `json:"undefined_pairs"`
}

// Analyzer computes pairwise return correlations and portfolio
// diversification diagnostics.
type Analyzer struct {
	params analysisconfig.CorrelationParams
}

func NewAnalyzer(params analysisconfig.CorrelationParams) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze builds the correlation matrix over the last LookbackPeriod
// daily returns of each series. Series order fixes the matrix symbol
// order. Pairs that cannot be correlated are left undefined; the run
// never fails on them.
func (a *Analyzer) Analyze(series []*quotes.Series) Analysis {
	n := len(series)
	m := Matrix{
		Symbols: make([]string, n),
		Coef:    make([][]*float64, n),
	}

	returns := make([][]float64, n)
	usable := make([]bool, n)
	for i, s := range series {
		m.Symbols[i] = s.Symbol
		m.Coef[i] = make([]*float64, n)
		returns[i], usable[i] = s.TailReturns(a.params.LookbackPeriod)
	}

	result := Analysis{Matrix: m, HighPairs: []Pair{}}

	var sumAbs, sumHigh float64
	var defined, high int
	for i := 0; i < n; i++ {
		// A series short of the lookback has no defined self-correlation.
		if usable[i] {
			one := 1.0
			m.Coef[i][i] = &one
		}

		for j := i + 1; j < n; j++ {
			coef, ok := pearson(returns[i], returns[j], a.params.LookbackPeriod)
			if !ok {
				result.UndefinedPairs++
				continue
			}
			c := coef
			m.Coef[i][j] = &c
			m.Coef[j][i] = &c

			sumAbs += math.Abs(coef)
			defined++

			if math.Abs(coef) >= a.params.MinCorrelation {
				sumHigh += math.Abs(coef)
				high++
				result.HighPairs = append(result.HighPairs, Pair{
					SymbolA:  m.Symbols[i],
					SymbolB:  m.Symbols[j],
					Coef:     coef,
					Strength: strength(coef),
				})
			}
		}
	}

	if defined > 0 {
		result.AverageCorrelation = sumAbs / float64(defined)
	}

	// Only pairs at or above MinCorrelation penalize the score; a
	// portfolio with no such pair counts as fully diversified.
	if high == 0 {
		result.DiversificationScore = 1
	} else {
		result.DiversificationScore = clamp01(1 - sumHigh/float64(high))
	}

	verify(&m)
	return result
}

// verify panics unless the matrix is symmetric and every defined
// diagonal entry is 1. Both hold by construction; a violation is a
// programming error.
func verify(m *Matrix) {
	for i := range m.Symbols {
		if m.Coef[i][i] != nil && *m.Coef[i][i] != 1 {
			panic("correlation: matrix diagonal is not 1")
		}
		for j := i + 1; j < len(m.Symbols); j++ {
			if m.Coef[i][j] != m.Coef[j][i] {
				panic("correlation: matrix is not symmetric")
			}
		}
	}
}

// WeightedAverage computes the weight-adjusted mean absolute pairwise
// correlation for one portfolio. Pairs with an undefined coefficient
// or a zero combined weight are skipped; no defined pair yields
// (0, false).
func (a *Analyzer) WeightedAverage(m *Matrix, weights map[string]float64) (float64, bool) {
	index := make(map[string]int, len(m.Symbols))
	for i, sym := range m.Symbols {
		index[sym] = i
	}

	var weighted, totalWeight float64
	var defined bool
	for symA, wA := range weights {
		for symB, wB := range weights {
			i, okA := index[symA]
			j, okB := index[symB]
			if !okA || !okB || i >= j {
				continue
			}
			coef, ok := m.At(i, j)
			if !ok {
				continue
			}
			w := wA * wB
			if w == 0 {
				continue
			}
			weighted += w * math.Abs(coef)
			totalWeight += w
			defined = true
		}
	}

	if !defined || totalWeight == 0 {
		return 0, false
	}
	return weighted / totalWeight, true
}

// pearson computes the Pearson coefficient over the trailing window of
// two aligned return series. Either series being shorter than the
// window, or having zero variance, makes the pair undefined.
func pearson(x, y []float64, window int) (float64, bool) {
	if len(x) < window || len(y) < window {
		return 0, false
	}
	x = x[len(x)-window:]
	y = y[len(y)-window:]

	var meanX, meanY float64
	for i := 0; i < window; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(window)
	meanY /= float64(window)

	var cov, varX, varY float64
	for i := 0; i < window; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

func strength(coef float64) string {
	if math.Abs(coef) > 0.8 {
		return "strong"
	}
	return "moderate"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
