package aggregation

import (
	"errors"
	"math"
	"testing"
	"time"

	"climate-compare/internal/models"
)

const (
	hyytiala = "HYY_META.CO2icos168"
	varrio   = "VAR_EDDY.av_c"
	kumpula  = "KUM_EDDY.av_c_ep"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		want    Summary
		wantErr error
	}{
		{name: "empty series", values: []float64{}, wantErr: ErrEmptySeries},
		{name: "nil series", values: nil, wantErr: ErrEmptySeries},
		{name: "single value", values: []float64{3.0}, want: Summary{Min: 3.0, Max: 3.0, Mean: 3.0}},
		{name: "three values", values: []float64{1.0, 5.0, 3.0}, want: Summary{Min: 1.0, Max: 5.0, Mean: 3.0}},
		{name: "zero is a value", values: []float64{0, 0}, want: Summary{Min: 0, Max: 0, Mean: 0}},
		{name: "missing value", values: []float64{1.0, math.NaN()}, wantErr: ErrMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.values)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Aggregate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Aggregate() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConcentrationsOnDate(t *testing.T) {
	station := models.NewStation(hyytiala)
	station.AddSample(time.Date(2020, 3, 1, 23, 0, 0, 0, time.UTC), 1)
	station.AddSample(time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), 2)
	// out of order sample from another day between two matches
	station.AddSample(time.Date(2020, 3, 5, 12, 0, 0, 0, time.UTC), 100)
	station.AddSample(time.Date(2020, 3, 2, 23, 59, 59, 0, time.UTC), 4)
	station.AddSample(time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC), 5)

	got := ConcentrationsOnDate(station, time.Date(2020, 3, 2, 15, 30, 0, 0, time.UTC))
	want := []float64{2, 4}

	if len(got) != len(want) {
		t.Fatalf("ConcentrationsOnDate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ConcentrationsOnDate()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDailyAggregate_NoSamplesOnDate(t *testing.T) {
	station := models.NewStation(hyytiala)
	station.AddSample(time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC), 1)

	_, err := DailyAggregate(station, time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("DailyAggregate() error = %v, want %v", err, ErrEmptySeries)
	}
}

func newStation(identifier string, date time.Time, values ...float64) *models.Station {
	s := models.NewStation(identifier)
	for i, v := range values {
		s.AddSample(date.Add(time.Duration(i)*time.Hour), v)
	}
	return s
}

func TestDailyAcrossStations(t *testing.T) {
	registry := models.DefaultStationRegistry()
	day := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, 3)

	t.Run("attribution and missing stations", func(t *testing.T) {
		stations := []*models.Station{
			newStation(hyytiala, day, 400, 410),
			newStation(varrio, otherDay, 1, 2),
			newStation(kumpula, day, 405, 420),
		}

		got, err := DailyAcrossStations(stations, day, registry)
		if err != nil {
			t.Fatalf("DailyAcrossStations() error = %v", err)
		}

		if got.Min != 400 || got.MinStation != "Hyytiälä" {
			t.Errorf("Min = %v at %v, want 400 at Hyytiälä", got.Min, got.MinStation)
		}
		if got.Max != 420 || got.MaxStation != "Kumpula" {
			t.Errorf("Max = %v at %v, want 420 at Kumpula", got.Max, got.MaxStation)
		}
		// mean of per-station means (405 and 412.5)
		if got.Mean != 408.75 {
			t.Errorf("Mean = %v, want 408.75", got.Mean)
		}
		if len(got.Missing) != 1 || got.Missing[0] != "Värriö" {
			t.Errorf("Missing = %v, want [Värriö]", got.Missing)
		}
	})

	t.Run("ties resolve to first station", func(t *testing.T) {
		stations := []*models.Station{
			newStation(kumpula, day, 5, 9),
			newStation(hyytiala, day, 5, 9),
		}

		got, err := DailyAcrossStations(stations, day, registry)
		if err != nil {
			t.Fatalf("DailyAcrossStations() error = %v", err)
		}
		if got.MinStation != "Kumpula" {
			t.Errorf("MinStation = %v, want Kumpula", got.MinStation)
		}
		if got.MaxStation != "Kumpula" {
			t.Errorf("MaxStation = %v, want Kumpula", got.MaxStation)
		}
	})

	t.Run("all stations missing", func(t *testing.T) {
		stations := []*models.Station{
			newStation(hyytiala, otherDay, 1),
			models.NewStation(varrio),
		}

		got, err := DailyAcrossStations(stations, day, registry)
		if !errors.Is(err, ErrEmptySeries) {
			t.Fatalf("DailyAcrossStations() error = %v, want %v", err, ErrEmptySeries)
		}
		if len(got.Missing) != 2 {
			t.Errorf("Missing = %v, want two stations", got.Missing)
		}
	})

	t.Run("unknown identifier", func(t *testing.T) {
		stations := []*models.Station{newStation("NOPE.x", day, 1)}

		_, err := DailyAcrossStations(stations, day, registry)
		var regErr *models.RegistryError
		if !errors.As(err, &regErr) {
			t.Errorf("DailyAcrossStations() error = %v, want *models.RegistryError", err)
		}
	})
}

func TestSummarizeStations(t *testing.T) {
	registry := models.DefaultStationRegistry()
	day := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	stations := []*models.Station{
		newStation(varrio, day, 2, 4),
		models.NewStation(kumpula),
		newStation(hyytiala, day, 1),
	}

	got, err := SummarizeStations(stations, registry)
	if err != nil {
		t.Fatalf("SummarizeStations() error = %v", err)
	}

	wantOrder := []string{"Hyytiälä", "Kumpula", "Värriö"}
	if len(got) != len(wantOrder) {
		t.Fatalf("len(SummarizeStations()) = %d, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Station != name {
			t.Errorf("SummarizeStations()[%d].Station = %v, want %v", i, got[i].Station, name)
		}
	}

	if got[1].Summary != nil {
		t.Errorf("Kumpula Summary = %+v, want nil", got[1].Summary)
	}
	if got[2].Summary == nil || got[2].Summary.Mean != 3 {
		t.Errorf("Värriö Summary = %+v, want mean 3", got[2].Summary)
	}
}
