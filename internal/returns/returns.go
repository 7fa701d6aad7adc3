// Package returns derives trailing percentage changes from a daily price
// series. The reference-selection policy deliberately degrades to the oldest
// available observation instead of failing when history is short.
package returns

import (
	"errors"
	"math"

	"github.com/SeolheeYun/portfolio-optimizer-agent/internal/domain"
)

var (
	// ErrEmptySeries indicates a series with no observations.
	ErrEmptySeries = errors.New("empty price series")
	// ErrZeroReference indicates a zero-valued reference price, which would
	// make the percentage change undefined.
	ErrZeroReference = errors.New("zero-valued reference price")
)

// Horizon is a trailing comparison window.
type Horizon int

const (
	Day Horizon = iota
	Week
	Month
)

// Reference selects the comparison value for a horizon from a series ordered
// oldest to newest:
//
//	Day:   second-to-last observation, or the last one when only one exists.
//	Week:  the observation 5 positions from the end (5 trading days, not a
//	       calendar week), or the oldest one when fewer than 5 exist.
//	Month: always the oldest observation.
//
// A short series therefore still yields a reference for every horizon.
func Reference(series []float64, h Horizon) float64 {
	n := len(series)
	switch h {
	case Day:
		if n >= 2 {
			return series[n-2]
		}
		return series[n-1]
	case Week:
		if n >= 5 {
			return series[n-5]
		}
		return series[0]
	default:
		return series[0]
	}
}

// Change computes the percentage change from reference to current, rounded to
// two decimals. A zero reference is an error, never NaN or Inf.
func Change(current, reference float64) (float64, error) {
	if reference == 0 {
		return 0, ErrZeroReference
	}
	return Round2((current - reference) / reference * 100), nil
}

// Compute derives the full metrics record for a non-empty series ordered
// oldest to newest. The current value is the last observation. A length-1
// series produces 0% on every horizon.
func Compute(series []float64) (domain.ReturnMetrics, error) {
	if len(series) == 0 {
		return domain.ReturnMetrics{}, ErrEmptySeries
	}

	current := series[len(series)-1]
	m := domain.ReturnMetrics{Current: Round2(current)}

	var err error
	if m.Change1dPct, err = Change(current, Reference(series, Day)); err != nil {
		return domain.ReturnMetrics{}, err
	}
	if m.Change1wPct, err = Change(current, Reference(series, Week)); err != nil {
		return domain.ReturnMetrics{}, err
	}
	if m.Change1mPct, err = Change(current, Reference(series, Month)); err != nil {
		return domain.ReturnMetrics{}, err
	}
	return m, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
