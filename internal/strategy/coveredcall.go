// Package strategy implements the covered-call and buy-and-hold simulators
// plus the roll schedule that drives write and expiry events.
package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/hamedasgari20/covered-call-strategy/internal/models"
	"github.com/hamedasgari20/covered-call-strategy/internal/pricing"
	"github.com/hamedasgari20/covered-call-strategy/internal/volatility"
)

// strikeTick is the increment strikes are rounded to.
const strikeTick = 0.01

// CoveredCallConfig holds the per-run strategy parameters. The engine
// derives it from the application config; there is no global state.
type CoveredCallConfig struct {
	InitialCapital         float64
	RiskFreeRate           float64
	MoneynessOffset        float64
	Policy                 models.AssignmentPolicy
	RepurchaseOnAssignment bool
	FeePerWrite            float64
	FeePct                 float64
}

// CoveredCall steps a covered-call portfolio through the series: an
// initial share purchase, then a write/settle cycle per the roll schedule.
// All mutation of the portfolio state happens here.
type CoveredCall struct {
	cfg       CoveredCallConfig
	state     models.PortfolioState
	machine   *models.StateMachine
	record    models.PerformanceRecord
	contracts []*models.OptionContract
}

// NewCoveredCall creates a simulator and performs the initial purchase:
// all capital into shares at the first simulated close.
func NewCoveredCall(cfg CoveredCallConfig, firstSpot float64) *CoveredCall {
	shares := cfg.InitialCapital / firstSpot
	return &CoveredCall{
		cfg:     cfg,
		state:   models.PortfolioState{Cash: 0, Shares: shares},
		machine: models.NewStateMachine(),
	}
}

// State returns a copy of the current portfolio state.
func (s *CoveredCall) State() models.PortfolioState {
	return s.state
}

// Machine returns the contract lifecycle state machine.
func (s *CoveredCall) Machine() *models.StateMachine {
	return s.machine
}

// Record returns the accumulated value series.
func (s *CoveredCall) Record() *models.PerformanceRecord {
	return &s.record
}

// Contracts returns every contract written during the run.
func (s *CoveredCall) Contracts() []*models.OptionContract {
	return s.contracts
}

// CanWrite reports whether a scheduled write can happen now. It is false
// while a contract is open and permanently false once the leg closed after
// an unrepurchased assignment.
func (s *CoveredCall) CanWrite() bool {
	return s.machine.CanWrite()
}

// HasOpenContract reports whether a written call is outstanding.
func (s *CoveredCall) HasOpenContract() bool {
	return s.state.Open != nil
}

// WriteCall writes a new call at the scheduled event: strike at
// spot*(1+offset) rounded to the tick, premium from the pricing model using
// the supplied volatility estimate, fees deducted from the credit.
func (s *CoveredCall) WriteCall(ev WriteEvent, writeDate, expiryDate time.Time, spot, sigma float64) error {
	if err := s.machine.IsValidTransition(models.StateContractOpen, "call_written"); err != nil {
		return err
	}

	strike := roundToTick(spot*(1+s.cfg.MoneynessOffset), strikeTick)
	if strike <= 0 {
		return fmt.Errorf("moneyness offset %.4f yields non-positive strike at spot %.2f",
			s.cfg.MoneynessOffset, spot)
	}

	tYears := float64(ev.ExpiryIndex-ev.WriteIndex) / volatility.TradingDaysPerYear
	perShare, err := pricing.Call(spot, strike, tYears, s.cfg.RiskFreeRate, sigma)
	if err != nil {
		return fmt.Errorf("pricing call at %s: %w", writeDate.Format("2006-01-02"), err)
	}

	premium := perShare * s.state.Shares
	fees := s.cfg.FeePerWrite + s.cfg.FeePct*premium
	s.state.Cash += premium - fees

	contract := models.NewOptionContract(writeDate, expiryDate,
		ev.WriteIndex, ev.ExpiryIndex, spot, strike, premium)
	s.state.Open = contract
	s.contracts = append(s.contracts, contract)

	return s.machine.Transition(models.StateContractOpen, "call_written")
}

// Settle consumes the open contract at its expiry. Below or at the strike
// the call expires worthless. Above it, settlement follows the configured
// assignment policy:
//
//   - physical delivery: shares are called away at the strike. If
//     repurchase is enabled the full cash balance is reinvested at the
//     current spot; otherwise the covered-call leg terminates and cash
//     idles until the end of the run.
//   - cash settled: the intrinsic value is paid out of cash and the
//     shares are retained.
func (s *CoveredCall) Settle(spot float64) error {
	c := s.state.Open
	if c == nil {
		return fmt.Errorf("settle: no open contract")
	}
	c.SpotAtExpiry = spot

	if !c.InTheMoney(spot) {
		s.state.Open = nil
		return s.machine.Transition(models.StateIdle, "expired_worthless")
	}

	c.Assigned = true
	switch s.cfg.Policy {
	case models.CashSettled:
		s.state.Cash -= (spot - c.Strike) * s.state.Shares
		s.state.Open = nil
		return s.machine.Transition(models.StateIdle, "assigned_cash_settled")

	case models.PhysicalDelivery:
		s.state.Cash += c.Strike * s.state.Shares
		s.state.Shares = 0
		s.state.Open = nil
		if s.cfg.RepurchaseOnAssignment {
			s.state.Shares = s.state.Cash / spot
			s.state.Cash = 0
			return s.machine.Transition(models.StateIdle, "assigned_repurchased")
		}
		return s.machine.Transition(models.StateLegClosed, "assigned_no_repurchase")

	default:
		return fmt.Errorf("unknown assignment policy %q", s.cfg.Policy)
	}
}

// MarkToMarket appends the current portfolio value to the record.
func (s *CoveredCall) MarkToMarket(date time.Time, spot float64) {
	s.record.Append(date, s.state.Value(spot))
}

// Finalize appends the terminal mark: the final value less the intrinsic
// liability of any contract still open when the data ends.
func (s *CoveredCall) Finalize(date time.Time, spot float64) {
	s.record.Append(date, s.state.TerminalValue(spot))
}

func roundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}
