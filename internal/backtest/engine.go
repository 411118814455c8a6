// Package backtest orchestrates one deterministic covered-call run: it
// validates the parameters against the series, builds the roll schedule,
// advances the covered-call and buy-and-hold simulators in lockstep, and
// hands the aligned value series to the analyzer. Single-threaded,
// single-pass, no I/O, no logging.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hamedasgari20/covered-call-strategy/internal/analysis"
	"github.com/hamedasgari20/covered-call-strategy/internal/marketdata"
	"github.com/hamedasgari20/covered-call-strategy/internal/models"
	"github.com/hamedasgari20/covered-call-strategy/internal/strategy"
	"github.com/hamedasgari20/covered-call-strategy/internal/volatility"
)

// ErrInvalidParams is returned when a parameter combination is rejected
// before the simulation starts.
var ErrInvalidParams = errors.New("invalid backtest parameters")

// ErrInsufficientData is returned when the series cannot cover the
// volatility warmup plus a usable backtest horizon.
var ErrInsufficientData = errors.New("not enough price history for backtest horizon")

// Params are the per-run inputs to the engine. They arrive as an explicit
// struct constructed by the caller; the engine holds no other state.
type Params struct {
	InitialCapital         float64                 `json:"initial_capital"`
	RiskFreeRate           float64                 `json:"risk_free_rate"`
	RollFrequencyDays      int                     `json:"roll_frequency_days"`
	ScheduleMode           strategy.ScheduleMode   `json:"roll_schedule"`
	MoneynessOffset        float64                 `json:"moneyness_offset"`
	AssignmentPolicy       models.AssignmentPolicy `json:"assignment_policy"`
	RepurchaseOnAssignment bool                    `json:"repurchase_on_assignment"`
	FeePerWrite            float64                 `json:"fee_per_write"`
	FeePct                 float64                 `json:"fee_pct"`
	VolWindow              int                     `json:"volatility_window_days"`
	VolEstimator           volatility.Estimator    `json:"volatility_estimator"`
}

// Validate rejects malformed parameter combinations. Series-dependent
// checks (horizon length) happen in Run.
func (p Params) Validate() error {
	switch {
	case p.InitialCapital <= 0:
		return fmt.Errorf("%w: initial_capital must be > 0, got %v", ErrInvalidParams, p.InitialCapital)
	case p.RiskFreeRate < 0:
		return fmt.Errorf("%w: risk_free_rate must be >= 0, got %v", ErrInvalidParams, p.RiskFreeRate)
	case !p.ScheduleMode.Valid():
		return fmt.Errorf("%w: roll_schedule must be fixed or monthly, got %q", ErrInvalidParams, p.ScheduleMode)
	case p.ScheduleMode == strategy.ScheduleFixed && p.RollFrequencyDays <= 0:
		return fmt.Errorf("%w: roll_frequency_days must be > 0, got %d", ErrInvalidParams, p.RollFrequencyDays)
	case p.MoneynessOffset <= -1:
		return fmt.Errorf("%w: moneyness_offset %v makes every strike non-positive", ErrInvalidParams, p.MoneynessOffset)
	case !p.AssignmentPolicy.Valid():
		return fmt.Errorf("%w: assignment_policy must be physical_delivery or cash_settled, got %q",
			ErrInvalidParams, p.AssignmentPolicy)
	case p.FeePerWrite < 0:
		return fmt.Errorf("%w: fee_per_write must be >= 0, got %v", ErrInvalidParams, p.FeePerWrite)
	case p.FeePct < 0 || p.FeePct >= 1:
		return fmt.Errorf("%w: fee_pct must be in [0, 1), got %v", ErrInvalidParams, p.FeePct)
	case p.VolWindow < 2:
		return fmt.Errorf("%w: volatility_window_days must be >= 2, got %d", ErrInvalidParams, p.VolWindow)
	case !p.VolEstimator.Valid():
		return fmt.Errorf("%w: volatility estimator must be close or ewma, got %q", ErrInvalidParams, p.VolEstimator)
	}
	return nil
}

// Result is everything one run produced.
type Result struct {
	RunID       string                    `json:"run_id"`
	CreatedAt   time.Time                 `json:"created_at"`
	Params      Params                    `json:"params"`
	CoveredCall models.PerformanceRecord  `json:"covered_call"`
	Baseline    models.PerformanceRecord  `json:"baseline"`
	Contracts   []*models.OptionContract  `json:"contracts"`
	Summary     analysis.Summary          `json:"summary"`
	FinalState  models.PortfolioState     `json:"final_state"`
}

// Engine runs covered-call backtests for one set of parameters.
type Engine struct {
	params Params
}

// NewEngine validates the parameters and creates an engine.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// Run executes the backtest over the series. The first VolWindow
// observations are warmup for the volatility estimator; the simulation
// covers the remainder. Either the whole run completes or an error is
// returned with no partial result.
func (e *Engine) Run(series *marketdata.PriceSeries) (*Result, error) {
	p := e.params

	start := p.VolWindow
	horizon := series.Len() - start
	if horizon < 2 {
		return nil, fmt.Errorf("%w: series has %d observations, volatility warmup needs %d and the horizon at least 2",
			ErrInsufficientData, series.Len(), p.VolWindow)
	}
	if p.ScheduleMode == strategy.ScheduleFixed && p.RollFrequencyDays >= horizon {
		return nil, fmt.Errorf("%w: roll_frequency_days %d must be shorter than the %d-step horizon",
			ErrInvalidParams, p.RollFrequencyDays, horizon)
	}

	vols, err := volatility.Rolling(series, p.VolWindow, p.VolEstimator)
	if err != nil {
		return nil, err
	}

	schedule, err := strategy.BuildSchedule(series, start, p.ScheduleMode, p.RollFrequencyDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	writes := make(map[int]strategy.WriteEvent, len(schedule))
	for _, ev := range schedule {
		writes[ev.WriteIndex] = ev
	}

	firstSpot := series.Close(start)
	cc := strategy.NewCoveredCall(strategy.CoveredCallConfig{
		InitialCapital:         p.InitialCapital,
		RiskFreeRate:           p.RiskFreeRate,
		MoneynessOffset:        p.MoneynessOffset,
		Policy:                 p.AssignmentPolicy,
		RepurchaseOnAssignment: p.RepurchaseOnAssignment,
		FeePerWrite:            p.FeePerWrite,
		FeePct:                 p.FeePct,
	}, firstSpot)
	base := strategy.NewBaseline(p.InitialCapital, firstSpot)

	last := series.Len() - 1
	for i := start; i <= last; i++ {
		date, spot := series.Date(i), series.Close(i)

		// Settle before writing: an expiry shares its index with the
		// next scheduled write.
		if open := cc.State().Open; open != nil && i >= open.ExpiryIndex {
			if err := cc.Settle(spot); err != nil {
				return nil, fmt.Errorf("settling at %s: %w", date.Format("2006-01-02"), err)
			}
		}

		if ev, ok := writes[i]; ok && cc.CanWrite() {
			if err := cc.WriteCall(ev, date, expiryDate(series, ev.ExpiryIndex), spot, vols[i]); err != nil {
				return nil, fmt.Errorf("writing call at %s: %w", date.Format("2006-01-02"), err)
			}
		}

		if i == last {
			cc.Finalize(date, spot)
		} else {
			cc.MarkToMarket(date, spot)
		}
		base.MarkToMarket(date, spot)
	}

	summary, err := analysis.Compare(cc.Record(), base.Record())
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:       uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Params:      p,
		CoveredCall: *cc.Record(),
		Baseline:    *base.Record(),
		Contracts:   cc.Contracts(),
		Summary:     summary,
		FinalState:  cc.State(),
	}, nil
}

// expiryDate maps an expiry index to a calendar date; an index one past
// the series end borrows the final date, since such contracts are marked
// at intrinsic on the final close.
func expiryDate(series *marketdata.PriceSeries, idx int) time.Time {
	if idx >= series.Len() {
		return series.Last().Date
	}
	return series.Date(idx)
}
