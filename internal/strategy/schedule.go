package strategy

import (
	"fmt"

	"github.com/hamedasgari20/covered-call-strategy/internal/marketdata"
)

// ScheduleMode selects how write dates are laid out over the series.
type ScheduleMode string

const (
	// ScheduleFixed writes every N trading days, expiring N days later.
	ScheduleFixed ScheduleMode = "fixed"
	// ScheduleMonthly writes on the first trading day of each month,
	// expiring at the next write date.
	ScheduleMonthly ScheduleMode = "monthly"
)

// Valid returns true if the ScheduleMode is one of the defined constants.
func (m ScheduleMode) Valid() bool {
	switch m {
	case ScheduleFixed, ScheduleMonthly:
		return true
	default:
		return false
	}
}

// WriteEvent is one scheduled call write. ExpiryIndex may point one past
// the final observation, in which case the contract is still open when the
// data ends and gets marked at intrinsic on the final close.
type WriteEvent struct {
	WriteIndex  int
	ExpiryIndex int
}

// BuildSchedule lays out the write events over series indices [start, Len).
// In fixed mode `every` is the roll interval in trading days; in monthly
// mode it is ignored.
func BuildSchedule(series *marketdata.PriceSeries, start int, mode ScheduleMode, every int) ([]WriteEvent, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown schedule mode %q", mode)
	}
	if start < 0 || start >= series.Len() {
		return nil, fmt.Errorf("schedule start index %d outside series of length %d", start, series.Len())
	}

	switch mode {
	case ScheduleMonthly:
		return monthlySchedule(series, start), nil
	default:
		if every <= 0 {
			return nil, fmt.Errorf("roll interval must be > 0 trading days, got %d", every)
		}
		return fixedSchedule(series.Len(), start, every), nil
	}
}

func fixedSchedule(length, start, every int) []WriteEvent {
	var events []WriteEvent
	for i := start; i < length; i += every {
		events = append(events, WriteEvent{WriteIndex: i, ExpiryIndex: i + every})
	}
	return events
}

func monthlySchedule(series *marketdata.PriceSeries, start int) []WriteEvent {
	var writes []int
	for i := start; i < series.Len(); i++ {
		if i == start {
			writes = append(writes, i)
			continue
		}
		prev, cur := series.Date(i-1), series.Date(i)
		if cur.Month() != prev.Month() || cur.Year() != prev.Year() {
			writes = append(writes, i)
		}
	}

	events := make([]WriteEvent, len(writes))
	for i, w := range writes {
		expiry := series.Len()
		if i+1 < len(writes) {
			expiry = writes[i+1]
		}
		events[i] = WriteEvent{WriteIndex: w, ExpiryIndex: expiry}
	}
	return events
}
