package volatility

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hamedasgari20/covered-call-strategy/internal/marketdata"
)

func flatSeries(n int) *marketdata.PriceSeries {
	return marketdata.SyntheticFlat(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), n, 100)
}

// alternatingSeries bounces between 100 and 101 so the log returns are
// +r, -r, +r, ... with r = ln(1.01).
func alternatingSeries(n int) *marketdata.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]marketdata.Point, n)
	d := start
	for i := range points {
		close := 100.0
		if i%2 == 1 {
			close = 101.0
		}
		points[i] = marketdata.Point{Date: d, Close: close}
		d = d.AddDate(0, 0, 1)
	}
	s, err := marketdata.NewPriceSeries(points)
	if err != nil {
		panic(err)
	}
	return s
}

func TestRealizedFlatSeriesIsZero(t *testing.T) {
	got, err := Realized(flatSeries(40), 30)
	if err != nil {
		t.Fatalf("Realized: %v", err)
	}
	if got != 0 {
		t.Errorf("flat series volatility = %v, want 0", got)
	}
}

func TestRealizedKnownValue(t *testing.T) {
	// Window of 4 returns +r, -r, +r, -r: mean 0, sample variance 4r^2/3.
	got, err := Realized(alternatingSeries(5), 4)
	if err != nil {
		t.Fatalf("Realized: %v", err)
	}
	r := math.Log(1.01)
	want := 2 * r / math.Sqrt(3) * math.Sqrt(TradingDaysPerYear)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Realized = %v, want %v", got, want)
	}
}

func TestRealizedWindowBoundary(t *testing.T) {
	s := flatSeries(31)

	// Exactly window+1 observations is the minimum.
	if _, err := Realized(s, 30); err != nil {
		t.Errorf("window 30 over 31 observations should work, got %v", err)
	}

	_, err := Realized(s, 31)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("window 31 over 31 observations: got %v, want ErrInsufficientData", err)
	}
}

func TestRealizedRejectsTinyWindow(t *testing.T) {
	if _, err := Realized(flatSeries(40), 1); err == nil {
		t.Error("window 1 should be rejected")
	}
}

func TestEWMAFlatSeriesIsZero(t *testing.T) {
	got, err := EWMA(flatSeries(40), 30)
	if err != nil {
		t.Fatalf("EWMA: %v", err)
	}
	if got != 0 {
		t.Errorf("flat series EWMA volatility = %v, want 0", got)
	}
}

func TestEWMAPositiveForMovingSeries(t *testing.T) {
	got, err := EWMA(alternatingSeries(40), 30)
	if err != nil {
		t.Fatalf("EWMA: %v", err)
	}
	if got <= 0 {
		t.Errorf("EWMA volatility = %v, want > 0", got)
	}
}

func TestRolling(t *testing.T) {
	s := alternatingSeries(40)
	window := 30

	vols, err := Rolling(s, window, EstimatorClose)
	if err != nil {
		t.Fatalf("Rolling: %v", err)
	}
	if len(vols) != s.Len() {
		t.Fatalf("len(vols) = %d, want %d", len(vols), s.Len())
	}
	for i := 0; i < window; i++ {
		if vols[i] != 0 {
			t.Errorf("warmup entry %d = %v, want 0", i, vols[i])
		}
	}
	for i := window; i < s.Len(); i++ {
		if vols[i] <= 0 {
			t.Errorf("entry %d = %v, want > 0", i, vols[i])
		}
	}
}

func TestRollingRejectsUnknownEstimator(t *testing.T) {
	if _, err := Rolling(alternatingSeries(40), 30, Estimator("garch")); err == nil {
		t.Error("unknown estimator should be rejected")
	}
}

func TestEstimatorValid(t *testing.T) {
	if !EstimatorClose.Valid() || !EstimatorEWMA.Valid() {
		t.Error("defined estimators must be valid")
	}
	if Estimator("").Valid() || Estimator("parkinson").Valid() {
		t.Error("undefined estimators must be invalid")
	}
}
