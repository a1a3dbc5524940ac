package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"climate-compare/internal/reconcile"
)

func TestWriteCSV_Breakdown(t *testing.T) {
	ts := time.Date(2016, 7, 2, 0, 0, 0, 0, time.UTC)
	value := 56000.0
	alignment := &reconcile.Breakdown{
		Midpoints: []time.Time{ts},
		Stations: []reconcile.StationSeries{
			{Station: "Hyytiälä", Points: []reconcile.TimePoint{{Time: ts, Value: 410.5}}},
		},
		Figures: []reconcile.FigureTimeSeries{
			{NameValue: "Khk_yht", Points: []reconcile.FigureTimePoint{
				{Year: 2016, Time: ts, Value: &value},
				{Year: 2017, Time: ts.AddDate(1, 0, 0)},
			}},
		},
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, alignment); err != nil {
		t.Fatalf("writeCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"mode,kind,series,year,time,value",
		"breakdown,station,Hyytiälä,2016,2016-07-02T00:00:00Z,410.5",
		"breakdown,figure,Khk_yht,2016,2016-07-02T00:00:00Z,56000",
		"breakdown,figure,Khk_yht,2017,2017-07-02T00:00:00Z,",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestAlignedRows_YearlyAverage(t *testing.T) {
	mean := 405.25
	alignment := &reconcile.YearlyAverage{
		Stations: []reconcile.StationYearly{
			{Station: "Värriö", Points: []reconcile.YearPoint{{Year: 2015, Value: &mean}}},
		},
		Figures: []reconcile.FigureYearly{
			{NameValue: "Khk_yht", Points: []reconcile.YearPoint{{Year: 2015}}},
		},
	}

	rows, err := alignedRows(alignment)
	if err != nil {
		t.Fatalf("alignedRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Value != "405.25" || rows[0].Time != "" || rows[0].Mode != "yearly_average" {
		t.Errorf("station row = %+v, want value 405.25 without time", rows[0])
	}
	if rows[1].Kind != "figure" || rows[1].Value != "" {
		t.Errorf("figure row = %+v, want an empty value", rows[1])
	}
}

func TestExportCSV(t *testing.T) {
	mean := 405.25
	alignment := &reconcile.YearlyAverage{
		Stations: []reconcile.StationYearly{
			{Station: "Värriö", Points: []reconcile.YearPoint{{Year: 2015, Value: &mean}}},
		},
	}

	path := filepath.Join(t.TempDir(), "aligned.csv")
	if err := exportCSV(path, alignment); err != nil {
		t.Fatalf("exportCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "mode,kind,series,year,time,value\nyearly_average,station,Värriö,2015,,405.25\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestExportCSV_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "aligned.csv")
	err := exportCSV(path, &reconcile.YearlyAverage{})
	if err == nil {
		t.Fatal("exportCSV() error = nil, want an error")
	}
	if !strings.Contains(err.Error(), "failed to create") {
		t.Errorf("error = %v, want a create failure", err)
	}
}
