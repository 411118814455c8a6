// Package storage persists completed backtest runs so the CLI and the
// dashboard can read them back later.
package storage

import (
	"time"

	"github.com/hamedasgari20/covered-call-strategy/internal/backtest"
)

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	Steps             int       `json:"steps"`
	CoveredCallReturn float64   `json:"covered_call_return"`
	BaselineReturn    float64   `json:"baseline_return"`
}

// Interface defines the contract for run persistence.
//
// Implementations must be safe for concurrent use: the dashboard reads
// while the CLI may still be writing.
type Interface interface {
	SaveRun(res *backtest.Result) error
	GetRun(id string) (*backtest.Result, error)
	ListRuns() []RunInfo

	Load() error
	Save() error
}

// NewStorage creates the default storage implementation (JSON file).
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface.
var _ Interface = (*JSONStorage)(nil)
