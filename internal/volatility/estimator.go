// Package volatility estimates annualized volatility from historical closes.
// Estimates feed the pricing model; a zero estimate is a valid degenerate
// result and must not break pricing downstream.
package volatility

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hamedasgari20/covered-call-strategy/internal/marketdata"
)

// TradingDaysPerYear is the annualization base for daily observations.
const TradingDaysPerYear = 252

// ewmaLambda is the RiskMetrics decay factor for the EWMA estimator.
const ewmaLambda = 0.94

// ErrInsufficientData is returned when the series is shorter than the
// trailing window requires.
var ErrInsufficientData = errors.New("not enough price history for volatility window")

// Estimator selects the volatility model applied to the trailing window.
type Estimator string

const (
	// EstimatorClose is the close-to-close sample standard deviation.
	EstimatorClose Estimator = "close"
	// EstimatorEWMA is the exponentially weighted variance (RiskMetrics).
	EstimatorEWMA Estimator = "ewma"
)

// Valid returns true if the Estimator is one of the defined constants.
func (e Estimator) Valid() bool {
	switch e {
	case EstimatorClose, EstimatorEWMA:
		return true
	default:
		return false
	}
}

// Realized computes the annualized close-to-close volatility over the
// trailing window: the sample standard deviation of the last `window` log
// returns, scaled by sqrt(252). The series must hold at least window+1
// closes (one more observation than returns), otherwise
// ErrInsufficientData.
func Realized(series *marketdata.PriceSeries, window int) (float64, error) {
	if window < 2 {
		return 0, fmt.Errorf("volatility window must be >= 2, got %d", window)
	}
	if series.Len() < window+1 {
		return 0, fmt.Errorf("%w: need %d observations for window %d, have %d",
			ErrInsufficientData, window+1, window, series.Len())
	}
	rets := series.LogReturns()
	tail := rets[len(rets)-window:]
	return annualize(stat.StdDev(tail, nil)), nil
}

// EWMA computes the annualized exponentially weighted volatility over the
// trailing window, seeded with the oldest squared return in the window.
func EWMA(series *marketdata.PriceSeries, window int) (float64, error) {
	if window < 2 {
		return 0, fmt.Errorf("volatility window must be >= 2, got %d", window)
	}
	if series.Len() < window+1 {
		return 0, fmt.Errorf("%w: need %d observations for window %d, have %d",
			ErrInsufficientData, window+1, window, series.Len())
	}
	rets := series.LogReturns()
	tail := rets[len(rets)-window:]

	variance := tail[0] * tail[0]
	for _, r := range tail[1:] {
		variance = ewmaLambda*variance + (1-ewmaLambda)*r*r
	}
	return annualize(math.Sqrt(variance)), nil
}

// Rolling returns per-index estimates aligned with the series: entry i is
// the volatility of the window of returns ending at close i. Entries below
// index `window` have no full window behind them and are left at zero; the
// engine only reads indices >= window.
func Rolling(series *marketdata.PriceSeries, window int, est Estimator) ([]float64, error) {
	if !est.Valid() {
		return nil, fmt.Errorf("unknown volatility estimator %q", est)
	}
	if window < 2 {
		return nil, fmt.Errorf("volatility window must be >= 2, got %d", window)
	}
	if series.Len() < window+1 {
		return nil, fmt.Errorf("%w: need %d observations for window %d, have %d",
			ErrInsufficientData, window+1, window, series.Len())
	}

	rets := series.LogReturns()
	out := make([]float64, series.Len())
	for i := window; i < series.Len(); i++ {
		tail := rets[i-window : i]
		switch est {
		case EstimatorEWMA:
			variance := tail[0] * tail[0]
			for _, r := range tail[1:] {
				variance = ewmaLambda*variance + (1-ewmaLambda)*r*r
			}
			out[i] = annualize(math.Sqrt(variance))
		default:
			out[i] = annualize(stat.StdDev(tail, nil))
		}
	}
	return out, nil
}

func annualize(dailySD float64) float64 {
	v := dailySD * math.Sqrt(TradingDaysPerYear)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
