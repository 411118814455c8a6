package marketdata

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic series builders. These skip weekend dates so the generated
// calendar looks like real trading days, which matters for the monthly
// roll schedule.

// nextTradingDay advances d by one day, skipping Saturday and Sunday.
func nextTradingDay(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// tradingDays returns n consecutive weekdays starting at start
// (moved forward if start falls on a weekend).
func tradingDays(start time.Time, n int) []time.Time {
	d := start
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = d
		d = nextTradingDay(d)
	}
	return days
}

// SyntheticFlat returns n observations at a constant price.
func SyntheticFlat(start time.Time, n int, price float64) *PriceSeries {
	days := tradingDays(start, n)
	points := make([]Point, n)
	for i, d := range days {
		points[i] = Point{Date: d, Close: price}
	}
	s, err := NewPriceSeries(points)
	if err != nil {
		panic(err) // constant positive price cannot fail validation
	}
	return s
}

// SyntheticLinear returns n observations moving linearly from first to last.
func SyntheticLinear(start time.Time, n int, first, last float64) *PriceSeries {
	days := tradingDays(start, n)
	points := make([]Point, n)
	for i, d := range days {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		points[i] = Point{Date: d, Close: first + (last-first)*frac}
	}
	s, err := NewPriceSeries(points)
	if err != nil {
		panic(err)
	}
	return s
}

// SyntheticWalk returns a geometric random walk with the given annualized
// drift and volatility. The same seed always produces the same series, so
// demo runs are reproducible.
func SyntheticWalk(start time.Time, n int, initial, drift, vol float64, seed int64) *PriceSeries {
	days := tradingDays(start, n)
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic series, not crypto

	dt := 1.0 / 252.0
	points := make([]Point, n)
	price := initial
	for i, d := range days {
		points[i] = Point{Date: d, Close: price}
		step := (drift-0.5*vol*vol)*dt + vol*math.Sqrt(dt)*rng.NormFloat64()
		price *= math.Exp(step)
	}
	s, err := NewPriceSeries(points)
	if err != nil {
		panic(err)
	}
	return s
}
