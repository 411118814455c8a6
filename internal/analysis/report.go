package analysis

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Render writes the comparison summary as a side-by-side text table.
func Render(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "metric\tcovered call\tbuy & hold\n")
	fmt.Fprintf(tw, "total return\t%.2f%%\t%.2f%%\n",
		s.CoveredCall.TotalReturn*100, s.Baseline.TotalReturn*100)
	fmt.Fprintf(tw, "annualized return\t%.2f%%\t%.2f%%\n",
		s.CoveredCall.AnnualizedReturn*100, s.Baseline.AnnualizedReturn*100)
	fmt.Fprintf(tw, "annualized volatility\t%.2f%%\t%.2f%%\n",
		s.CoveredCall.AnnualizedVolatility*100, s.Baseline.AnnualizedVolatility*100)
	fmt.Fprintf(tw, "max drawdown\t%.2f%%\t%.2f%%\n",
		s.CoveredCall.MaxDrawdown*100, s.Baseline.MaxDrawdown*100)
	fmt.Fprintf(tw, "steps\t%d\t%d\n", s.Steps, s.Steps)
	fmt.Fprintf(tw, "return difference\t%.2f%%\t\n", s.ReturnDifference*100)

	return tw.Flush()
}
