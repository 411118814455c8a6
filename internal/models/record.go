package models

import "time"

// ValuePoint is one (date, portfolio value) observation.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PerformanceRecord is an append-only value series, one entry per
// simulation step. Both simulators produce one; the analyzer consumes
// them in date-aligned pairs.
type PerformanceRecord struct {
	Points []ValuePoint `json:"points"`
}

// Append adds one observation.
func (r *PerformanceRecord) Append(date time.Time, value float64) {
	r.Points = append(r.Points, ValuePoint{Date: date, Value: value})
}

// Len returns the number of observations.
func (r *PerformanceRecord) Len() int {
	return len(r.Points)
}

// At returns the observation at index i.
func (r *PerformanceRecord) At(i int) ValuePoint {
	return r.Points[i]
}

// Values returns a copy of the value column.
func (r *PerformanceRecord) Values() []float64 {
	vals := make([]float64, len(r.Points))
	for i, p := range r.Points {
		vals[i] = p.Value
	}
	return vals
}

// Dates returns a copy of the date column.
func (r *PerformanceRecord) Dates() []time.Time {
	dates := make([]time.Time, len(r.Points))
	for i, p := range r.Points {
		dates[i] = p.Date
	}
	return dates
}
