package strategy

import (
	"time"

	"github.com/hamedasgari20/covered-call-strategy/internal/models"
)

// Baseline is the buy-and-hold comparison portfolio: all capital into
// shares at the first simulated close, then nothing but mark-to-market.
type Baseline struct {
	state  models.BaselineState
	record models.PerformanceRecord
}

// NewBaseline performs the initial purchase.
func NewBaseline(initialCapital, firstSpot float64) *Baseline {
	return &Baseline{
		state: models.BaselineState{Cash: 0, Shares: initialCapital / firstSpot},
	}
}

// State returns a copy of the portfolio state.
func (b *Baseline) State() models.BaselineState {
	return b.state
}

// Record returns the accumulated value series.
func (b *Baseline) Record() *models.PerformanceRecord {
	return &b.record
}

// MarkToMarket appends the current portfolio value to the record.
func (b *Baseline) MarkToMarket(date time.Time, spot float64) {
	b.record.Append(date, b.state.Value(spot))
}
