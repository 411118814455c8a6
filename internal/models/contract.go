// Package models provides the data structures and state management for
// covered-call backtest positions.
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AssignmentPolicy selects how an in-the-money call is settled at expiry.
type AssignmentPolicy string

const (
	// PhysicalDelivery calls the shares away at the strike price.
	PhysicalDelivery AssignmentPolicy = "physical_delivery"
	// CashSettled pays out the intrinsic value in cash; shares are kept.
	CashSettled AssignmentPolicy = "cash_settled"
)

// Valid returns true if the AssignmentPolicy is one of the defined constants.
func (p AssignmentPolicy) Valid() bool {
	switch p {
	case PhysicalDelivery, CashSettled:
		return true
	default:
		return false
	}
}

// OptionContract is one written call. It is created at a write event and
// consumed at its expiry event; its whole lifecycle nests inside a single
// roll interval.
type OptionContract struct {
	ID          string    `json:"id"`
	WriteDate   time.Time `json:"write_date"`
	ExpiryDate  time.Time `json:"expiry_date"`
	WriteIndex  int       `json:"write_index"`
	ExpiryIndex int       `json:"expiry_index"`
	SpotAtWrite float64   `json:"spot_at_write"`
	Strike      float64   `json:"strike"`
	Premium     float64   `json:"premium"`
	// Settlement fields, populated when the contract is consumed.
	SpotAtExpiry float64 `json:"spot_at_expiry,omitempty"`
	Assigned     bool    `json:"assigned"`
}

// NewOptionContract creates a written call with a fresh ID.
func NewOptionContract(writeDate, expiryDate time.Time, writeIndex, expiryIndex int,
	spot, strike, premium float64) *OptionContract {
	return &OptionContract{
		ID:          uuid.NewString(),
		WriteDate:   writeDate,
		ExpiryDate:  expiryDate,
		WriteIndex:  writeIndex,
		ExpiryIndex: expiryIndex,
		SpotAtWrite: spot,
		Strike:      strike,
		Premium:     premium,
	}
}

// Intrinsic returns the call's intrinsic value at the given spot.
func (c *OptionContract) Intrinsic(spot float64) float64 {
	return math.Max(spot-c.Strike, 0)
}

// InTheMoney reports whether the call would be exercised at the given spot.
func (c *OptionContract) InTheMoney(spot float64) bool {
	return spot > c.Strike
}
