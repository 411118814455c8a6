// Package analysis computes comparative performance metrics over the value
// series produced by the simulators. All functions are pure; inputs are
// never mutated.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hamedasgari20/covered-call-strategy/internal/models"
	"github.com/hamedasgari20/covered-call-strategy/internal/volatility"
)

// ErrMisalignedSeries is returned when two compared records do not share
// the identical date sequence.
var ErrMisalignedSeries = errors.New("performance records are not date-aligned")

// Metrics summarizes one portfolio's value series.
type Metrics struct {
	TotalReturn          float64 `json:"total_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	MaxDrawdown          float64 `json:"max_drawdown"`
}

// Summary is the side-by-side comparison of the covered-call portfolio
// against buy and hold.
type Summary struct {
	CoveredCall      Metrics `json:"covered_call"`
	Baseline         Metrics `json:"baseline"`
	ReturnDifference float64 `json:"return_difference"`
	Steps            int     `json:"steps"`
}

// Analyze computes the metrics for one record. At least two observations
// are required to form a return.
func Analyze(rec *models.PerformanceRecord) (Metrics, error) {
	if rec.Len() < 2 {
		return Metrics{}, fmt.Errorf("need at least 2 observations to compute metrics, have %d", rec.Len())
	}

	values := rec.Values()
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return Metrics{}, fmt.Errorf("initial portfolio value is zero")
	}

	total := last/first - 1
	periods := float64(len(values) - 1)

	var annualized float64
	if total > -1 {
		annualized = math.Pow(1+total, volatility.TradingDaysPerYear/periods) - 1
	} else {
		annualized = -1
	}

	return Metrics{
		TotalReturn:          total,
		AnnualizedReturn:     annualized,
		AnnualizedVolatility: annualizedVolatility(values),
		MaxDrawdown:          maxDrawdown(values),
	}, nil
}

// Compare analyzes both records and pairs the results. The records must
// cover the identical date sequence.
func Compare(coveredCall, baseline *models.PerformanceRecord) (Summary, error) {
	if err := checkAlignment(coveredCall, baseline); err != nil {
		return Summary{}, err
	}

	cc, err := Analyze(coveredCall)
	if err != nil {
		return Summary{}, fmt.Errorf("covered call record: %w", err)
	}
	base, err := Analyze(baseline)
	if err != nil {
		return Summary{}, fmt.Errorf("baseline record: %w", err)
	}

	return Summary{
		CoveredCall:      cc,
		Baseline:         base,
		ReturnDifference: cc.TotalReturn - base.TotalReturn,
		Steps:            coveredCall.Len(),
	}, nil
}

func checkAlignment(a, b *models.PerformanceRecord) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %d vs %d observations", ErrMisalignedSeries, a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).Date.Equal(b.At(i).Date) {
			return fmt.Errorf("%w: index %d has %s vs %s", ErrMisalignedSeries, i,
				a.At(i).Date.Format("2006-01-02"), b.At(i).Date.Format("2006-01-02"))
		}
	}
	return nil
}

// annualizedVolatility is the sample standard deviation of the periodic
// simple returns, scaled by sqrt(252).
func annualizedVolatility(values []float64) float64 {
	rets := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		rets = append(rets, values[i]/values[i-1]-1)
	}
	if len(rets) < 2 {
		return 0
	}
	sd := stat.StdDev(rets, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(volatility.TradingDaysPerYear)
}

// maxDrawdown is the largest peak-to-trough decline over the value series,
// as a positive fraction of the peak.
func maxDrawdown(values []float64) float64 {
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
