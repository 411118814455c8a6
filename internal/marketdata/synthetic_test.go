package marketdata

import (
	"testing"
	"time"
)

func TestSyntheticSeriesSkipWeekends(t *testing.T) {
	// 2024-01-06 is a Saturday; the first observation must land on Monday.
	s := SyntheticFlat(day(2024, 1, 6), 10, 100)
	if got := s.First().Date; !got.Equal(day(2024, 1, 8)) {
		t.Errorf("first date = %s, want 2024-01-08", got.Format("2006-01-02"))
	}
	for i := 0; i < s.Len(); i++ {
		wd := s.Date(i).Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Errorf("index %d falls on a weekend (%s)", i, s.Date(i).Format("2006-01-02 Mon"))
		}
	}
}

func TestSyntheticFlat(t *testing.T) {
	s := SyntheticFlat(day(2024, 1, 2), 5, 42.5)
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		if s.Close(i) != 42.5 {
			t.Errorf("Close(%d) = %v, want 42.5", i, s.Close(i))
		}
	}
}

func TestSyntheticLinear(t *testing.T) {
	s := SyntheticLinear(day(2024, 1, 2), 11, 100, 150)
	if s.Close(0) != 100 || s.Close(10) != 150 {
		t.Errorf("endpoints = %v, %v; want 100, 150", s.Close(0), s.Close(10))
	}
	if got := s.Close(5); got != 125 {
		t.Errorf("midpoint = %v, want 125", got)
	}
}

func TestSyntheticWalkDeterministic(t *testing.T) {
	a := SyntheticWalk(day(2024, 1, 2), 50, 100, 0.07, 0.2, 7)
	b := SyntheticWalk(day(2024, 1, 2), 50, 100, 0.07, 0.2, 7)
	for i := 0; i < a.Len(); i++ {
		if a.Close(i) != b.Close(i) {
			t.Fatalf("same seed diverged at index %d: %v vs %v", i, a.Close(i), b.Close(i))
		}
	}

	c := SyntheticWalk(day(2024, 1, 2), 50, 100, 0.07, 0.2, 8)
	same := true
	for i := 1; i < a.Len(); i++ {
		if a.Close(i) != c.Close(i) {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical walks")
	}
}
