package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const csvDateLayout = "2006-01-02"

// LoadCSV reads a two-column "date,close" file into a PriceSeries.
// A header row is skipped when the first field does not parse as a date.
// Rows must already be in chronological order; NewPriceSeries rejects
// anything else.
func LoadCSV(path string) (*PriceSeries, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a user-provided data file
	if err != nil {
		return nil, fmt.Errorf("opening price file: %w", err)
	}
	defer func() { _ = f.Close() }()

	series, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return series, nil
}

// ReadCSV parses "date,close" records from r.
func ReadCSV(r io.Reader) (*PriceSeries, error) {
	points, err := parseCSVPoints(r)
	if err != nil {
		return nil, err
	}
	return NewPriceSeries(points)
}

// parseCSVPoints reads raw records without series-level validation, so
// callers merging partial chunks can tolerate empty documents.
func parseCSVPoints(r io.Reader) ([]Point, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var points []Point
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date,close got %d fields", line, len(record))
		}

		date, err := time.Parse(csvDateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				// Header row
				continue
			}
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, record[0], err)
		}

		close, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid close %q: %w", line, record[1], err)
		}

		points = append(points, Point{Date: date, Close: close})
	}

	return points, nil
}

// WriteCSV writes the series back out in the same "date,close" format,
// with a header row.
func WriteCSV(w io.Writer, s *PriceSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "close"}); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		rec := []string{p.Date.Format(csvDateLayout), strconv.FormatFloat(p.Close, 'f', -1, 64)}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
