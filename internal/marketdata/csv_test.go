package marketdata

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := "date,close\n2024-01-02,100.5\n2024-01-03,101.25\n"
	s, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Close(0) != 100.5 || s.Close(1) != 101.25 {
		t.Errorf("closes = %v, %v; want 100.5, 101.25", s.Close(0), s.Close(1))
	}
}

func TestReadCSVWithoutHeader(t *testing.T) {
	input := "2024-01-02,100\n2024-01-03,101\n"
	s, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header only", "date,close\n"},
		{"bad date mid-file", "2024-01-02,100\nnot-a-date,101\n"},
		{"bad close", "2024-01-02,100\n2024-01-03,abc\n"},
		{"missing column", "2024-01-02,100\n2024-01-03\n"},
		{"negative close", "2024-01-02,100\n2024-01-03,-5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	orig, err := NewPriceSeries([]Point{
		{Date: day(2024, 1, 2), Close: 100.25},
		{Date: day(2024, 1, 3), Close: 101},
		{Date: day(2024, 1, 4), Close: 99.875},
	})
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, orig); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if back.Len() != orig.Len() {
		t.Fatalf("round trip lost rows: %d vs %d", back.Len(), orig.Len())
	}
	for i := 0; i < orig.Len(); i++ {
		if !back.Date(i).Equal(orig.Date(i)) || back.Close(i) != orig.Close(i) {
			t.Errorf("row %d: got (%s, %v), want (%s, %v)", i,
				back.Date(i).Format("2006-01-02"), back.Close(i),
				orig.Date(i).Format("2006-01-02"), orig.Close(i))
		}
	}
}
