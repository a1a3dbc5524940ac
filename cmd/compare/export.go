package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"climate-compare/internal/reconcile"
)

// alignedRow is one point of a reconciled comparison in CSV form.
// Time is empty on the yearly axis and Value is empty when missing.
type alignedRow struct {
	Mode   string `csv:"mode"`
	Kind   string `csv:"kind"`
	Series string `csv:"series"`
	Year   int    `csv:"year"`
	Time   string `csv:"time"`
	Value  string `csv:"value"`
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// alignedRows flattens an alignment, stations first then figures
func alignedRows(alignment reconcile.Alignment) ([]*alignedRow, error) {
	var rows []*alignedRow
	mode := string(alignment.Mode())

	switch a := alignment.(type) {
	case *reconcile.Breakdown:
		for _, s := range a.Stations {
			for _, p := range s.Points {
				value := p.Value
				rows = append(rows, &alignedRow{
					Mode:   mode,
					Kind:   "station",
					Series: s.Station,
					Year:   p.Time.Year(),
					Time:   p.Time.Format(time.RFC3339),
					Value:  formatValue(&value),
				})
			}
		}
		for _, f := range a.Figures {
			for _, p := range f.Points {
				rows = append(rows, &alignedRow{
					Mode:   mode,
					Kind:   "figure",
					Series: f.NameValue,
					Year:   p.Year,
					Time:   p.Time.Format(time.RFC3339),
					Value:  formatValue(p.Value),
				})
			}
		}
	case *reconcile.YearlyAverage:
		for _, s := range a.Stations {
			for _, p := range s.Points {
				rows = append(rows, &alignedRow{Mode: mode, Kind: "station", Series: s.Station, Year: p.Year, Value: formatValue(p.Value)})
			}
		}
		for _, f := range a.Figures {
			for _, p := range f.Points {
				rows = append(rows, &alignedRow{Mode: mode, Kind: "figure", Series: f.NameValue, Year: p.Year, Value: formatValue(p.Value)})
			}
		}
	default:
		return nil, fmt.Errorf("unsupported alignment %T", alignment)
	}

	return rows, nil
}

// writeCSV writes the alignment as CSV with a header row
func writeCSV(w io.Writer, alignment reconcile.Alignment) error {
	rows, err := alignedRows(alignment)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}

// exportCSV writes the alignment to path. A failed close is reported since
// buffered rows may not have reached the file.
func exportCSV(path string, alignment reconcile.Alignment) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if err := writeCSV(file, alignment); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
