package analysis

import (
	"bytes"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	s, err := Compare(
		record(jan2(), 100, 105, 110),
		record(jan2(), 100, 110, 120),
	)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"total return", "max drawdown", "buy & hold", "10.00%", "20.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
