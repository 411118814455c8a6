// Package pricing implements closed-form European call pricing under the
// lognormal diffusion assumption. All functions are pure: no state, no I/O.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDomain is returned when a pricing input falls outside the model's
// valid domain, e.g. a negative volatility produced by an estimator bug.
var ErrDomain = errors.New("pricing input outside valid domain")

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Call returns the theoretical premium of a European call.
//
// Inputs: spot and strike > 0, tYears >= 0, rate >= 0, sigma >= 0
// (annualized). When sigma or tYears is zero the variance term of the
// formula vanishes, so the premium collapses to intrinsic value; this is
// special-cased rather than letting a division by zero propagate.
// The result is always >= 0.
func Call(spot, strike, tYears, rate, sigma float64) (float64, error) {
	if err := validate(spot, strike, tYears, rate, sigma); err != nil {
		return 0, err
	}
	if sigma == 0 || tYears == 0 {
		return intrinsic(spot, strike), nil
	}

	d1, d2 := dTerms(spot, strike, tYears, rate, sigma)
	premium := spot*stdNormal.CDF(d1) - strike*math.Exp(-rate*tYears)*stdNormal.CDF(d2)
	if premium < 0 {
		// Guard against floating point noise for deep OTM inputs.
		premium = 0
	}
	return premium, nil
}

// CallDelta returns the call's sensitivity to the underlying, N(d1).
// In the degenerate zero-variance case the call behaves like a forward
// when in the money (delta 1) and expires worthless otherwise (delta 0).
func CallDelta(spot, strike, tYears, rate, sigma float64) (float64, error) {
	if err := validate(spot, strike, tYears, rate, sigma); err != nil {
		return 0, err
	}
	if sigma == 0 || tYears == 0 {
		if spot > strike {
			return 1, nil
		}
		return 0, nil
	}
	d1, _ := dTerms(spot, strike, tYears, rate, sigma)
	return stdNormal.CDF(d1), nil
}

func dTerms(spot, strike, tYears, rate, sigma float64) (d1, d2 float64) {
	sqrtT := math.Sqrt(tYears)
	d1 = (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*tYears) / (sigma * sqrtT)
	d2 = d1 - sigma*sqrtT
	return d1, d2
}

func intrinsic(spot, strike float64) float64 {
	return math.Max(spot-strike, 0)
}

func validate(spot, strike, tYears, rate, sigma float64) error {
	switch {
	case !isFinite(spot) || spot <= 0:
		return fmt.Errorf("%w: spot must be > 0, got %v", ErrDomain, spot)
	case !isFinite(strike) || strike <= 0:
		return fmt.Errorf("%w: strike must be > 0, got %v", ErrDomain, strike)
	case !isFinite(tYears) || tYears < 0:
		return fmt.Errorf("%w: time to expiry must be >= 0 years, got %v", ErrDomain, tYears)
	case !isFinite(rate) || rate < 0:
		return fmt.Errorf("%w: risk-free rate must be >= 0, got %v", ErrDomain, rate)
	case !isFinite(sigma) || sigma < 0:
		return fmt.Errorf("%w: volatility must be >= 0, got %v", ErrDomain, sigma)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
