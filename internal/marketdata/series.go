// Package marketdata provides the historical price series consumed by the
// backtest core, along with the loaders that produce it: CSV files, synthetic
// generators for demos and tests, and a remote daily-close fetcher.
package marketdata

import (
	"fmt"
	"math"
	"time"
)

// Point is a single (date, closing price) observation.
type Point struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of daily closes for one underlying.
// It is immutable once constructed: dates are strictly increasing and every
// close is positive. The simulators treat it as the single source of truth
// for a run.
type PriceSeries struct {
	points []Point
}

// NewPriceSeries validates and wraps a slice of observations.
// The input slice is copied so later mutation by the caller cannot
// corrupt the series.
func NewPriceSeries(points []Point) (*PriceSeries, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("price series is empty")
	}
	for i, p := range points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return nil, fmt.Errorf("price series: close at index %d (%s) must be a positive number, got %v",
				i, p.Date.Format("2006-01-02"), p.Close)
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			return nil, fmt.Errorf("price series: dates must be strictly increasing, index %d (%s) follows %s",
				i, p.Date.Format("2006-01-02"), points[i-1].Date.Format("2006-01-02"))
		}
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return &PriceSeries{points: cp}, nil
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	return len(s.points)
}

// At returns the observation at index i.
func (s *PriceSeries) At(i int) Point {
	return s.points[i]
}

// Close returns the closing price at index i.
func (s *PriceSeries) Close(i int) float64 {
	return s.points[i].Close
}

// Date returns the date of the observation at index i.
func (s *PriceSeries) Date(i int) time.Time {
	return s.points[i].Date
}

// First returns the earliest observation.
func (s *PriceSeries) First() Point {
	return s.points[0]
}

// Last returns the most recent observation.
func (s *PriceSeries) Last() Point {
	return s.points[len(s.points)-1]
}

// Points returns a copy of all observations.
func (s *PriceSeries) Points() []Point {
	cp := make([]Point, len(s.points))
	copy(cp, s.points)
	return cp
}

// LogReturns returns the log returns between consecutive closes.
// The result has Len()-1 entries; entry i is ln(close[i+1]/close[i]).
func (s *PriceSeries) LogReturns() []float64 {
	if len(s.points) < 2 {
		return nil
	}
	rets := make([]float64, len(s.points)-1)
	for i := 1; i < len(s.points); i++ {
		rets[i-1] = math.Log(s.points[i].Close / s.points[i-1].Close)
	}
	return rets
}
