package momentum

// rsi computes the Relative Strength Index over the full close series
// using Wilder smoothing. It returns the latest value, or false when
// fewer than period+1 closes are available.
func rsi(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// sma computes the simple moving average of the last period closes.
func sma(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// emaSeries computes the exponential moving average series for the
// given span, seeded with the SMA of the first span values. The
// returned slice is aligned with closes; entries before index span-1
// are zero and not meaningful.
func emaSeries(closes []float64, span int) []float64 {
	if span <= 0 || len(closes) < span {
		return nil
	}

	out := make([]float64, len(closes))
	var seed float64
	for _, c := range closes[:span] {
		seed += c
	}
	seed /= float64(span)
	out[span-1] = seed

	alpha := 2.0 / float64(span+1)
	for i := span; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// macd computes the latest MACD line, signal line, and histogram for
// the given fast/slow/signal spans, plus the previous histogram value
// when one exists. The MACD value needs slow+signal-1 closes; the
// previous histogram needs one more.
func macd(closes []float64, fast, slow, signal int) (line, sig, hist, prevHist float64, ok, prevOK bool) {
	if len(closes) < slow+signal-1 {
		return 0, 0, 0, 0, false, false
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	// MACD line is defined from index slow-1 onward.
	macdLine := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fastEMA[i]-slowEMA[i])
	}

	sigSeries := emaSeries(macdLine, signal)
	if sigSeries == nil {
		return 0, 0, 0, 0, false, false
	}

	last := len(macdLine) - 1
	line = macdLine[last]
	sig = sigSeries[last]
	hist = line - sig

	if last >= signal {
		prevHist = macdLine[last-1] - sigSeries[last-1]
		prevOK = true
	}
	return line, sig, hist, prevHist, true, prevOK
}
